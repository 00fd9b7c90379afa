package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thisisjab/pinotbroker/api"
	"github.com/thisisjab/pinotbroker/broker"
	"github.com/thisisjab/pinotbroker/config"
)

func main() {
	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "./.config.yaml", "path to config file")
	watch := flag.Bool("watch", true, "reload the log level when the config file changes")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	rt, err := cfg.Parse()
	if err != nil {
		if rt != nil && rt.Logger != nil {
			rt.Logger.Error("cannot parse config file", "error", err)
			os.Exit(1)
		}
		panic(fmt.Errorf("cannot parse config file: %w", err))
	}
	logger := rt.Logger

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			logger.Error("server panic", "error", r)
		}
	}()

	// Setup signal handling to catch Ctrl+C (SIGINT) or Terminate (SIGTERM)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received signal. shutting down.", "signal", sig)
		cancel()
	}()

	if *watch {
		go func() {
			if err := config.Watch(ctx, *cfgPath, rt.LogLevel, logger); err != nil && ctx.Err() == nil {
				logger.Error("config watcher stopped.", "error", err)
			}
		}()
	}

	if rt.ClickHouse != nil {
		if err := rt.ClickHouse.Connect(ctx); err != nil {
			logger.Error("backend error.", "error", err)
			os.Exit(1)
		}
		defer rt.ClickHouse.Close() //nolint:errcheck
	} else {
		logger.Warn("no backend configured. only literal queries will be answered.")
	}

	b, err := broker.New(rt.Broker, logger)
	if err != nil {
		logger.Error("broker error.", "error", err)
		os.Exit(1)
	}

	// Create server
	server, err := api.NewServer(rt.API, b, logger)
	if err != nil {
		logger.Error("server error.", "error", err)
		os.Exit(1)
	}

	// Run server
	if err := server.Serve(ctx); err != nil {
		logger.Error("server error.", "error", err)
		cancel()
		os.Exit(1)
	}

	logger.Info("server stopped.")
}
