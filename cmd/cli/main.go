package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/thisisjab/pinotbroker/broker"
	"github.com/thisisjab/pinotbroker/config"
	"github.com/thisisjab/pinotbroker/function"
	"github.com/thisisjab/pinotbroker/querier"
	"github.com/thisisjab/pinotbroker/querier/parser"
)

func main() {
	sql := flag.String("sql", "", "SQL query to run")
	cfgPath := flag.String("config", "", "optional config file for user functions and the backend")
	verbose := flag.Bool("v", false, "log debug messages to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	)

	if *sql == "" {
		fmt.Fprintln(os.Stderr, "usage: cli -sql \"SELECT now()\"")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	brokerCfg, err := brokerConfig(ctx, *cfgPath)
	if err != nil {
		logger.Error("cannot configure broker.", "error", err)
		os.Exit(1)
	}

	b, err := broker.New(brokerCfg, logger)
	if err != nil {
		logger.Error("broker error.", "error", err)
		os.Exit(1)
	}

	q, err := parser.Parse(*sql)
	if err != nil {
		logger.Error("invalid query.", "error", err)
		os.Exit(1)
	}

	resp, err := b.Query(ctx, querier.QueryRequest{Query: q})
	if err != nil {
		logger.Error("query failed.", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		logger.Error("cannot encode response.", "error", err)
		os.Exit(1)
	}
}

// brokerConfig builds the broker from a config file, or with the built-in
// functions only when path is empty.
func brokerConfig(ctx context.Context, path string) (broker.Config, error) {
	if path == "" {
		registry, err := function.NewRegistry()
		if err != nil {
			return broker.Config{}, err
		}
		return broker.Config{Registry: registry}, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return broker.Config{}, err
	}

	rt, err := cfg.Parse()
	if err != nil {
		return broker.Config{}, err
	}

	if rt.ClickHouse != nil {
		if err := rt.ClickHouse.Connect(ctx); err != nil {
			return broker.Config{}, err
		}
	}

	return rt.Broker, nil
}
