package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/thisisjab/pinotbroker/querier"
)

const defaultMaxBodyBytes = 1_048_576

type server struct {
	cfg     Config
	logger  *slog.Logger
	querier querier.Querier
}

func NewServer(cfg Config, q querier.Querier, logger *slog.Logger) (*server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	return &server{
		cfg:     cfg,
		logger:  logger,
		querier: q,
	}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoverPanicMiddleware)
	r.Use(middleware.StripSlashes)
	r.Use(s.requestLoggerMiddleware)
	r.Use(s.corsMiddleware)

	r.NotFound(s.notFoundHandler)
	r.MethodNotAllowed(s.methodNotAllowedHandler)

	r.Get("/health", s.healthCheckHandler)
	r.Post("/query/sql", s.querySQLHandler)

	return r
}

func (s *server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server", "addr", s.cfg.Addr)
		if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("failed to shutdown server", "addr", s.cfg.Addr, "error", err)
		}
	}()

	var serverErr error
	if s.cfg.CertFile != "" && s.cfg.KeyFile != "" {
		s.logger.Info("starting server with TLS", "addr", s.cfg.Addr)
		serverErr = srv.ListenAndServeTLS(s.cfg.CertFile, s.cfg.KeyFile)
	} else {
		s.logger.Info("starting server without TLS", "addr", s.cfg.Addr)
		serverErr = srv.ListenAndServe()
	}

	if serverErr != nil && serverErr != http.ErrServerClosed {
		return serverErr
	}

	return nil
}
