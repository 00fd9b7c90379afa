package broker

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/function"
	"github.com/thisisjab/pinotbroker/querier"
	"github.com/thisisjab/pinotbroker/querier/ast"
)

type Config struct {
	Registry *function.Registry

	// Clock is the time source of now() and ago(). Defaults to the system
	// clock.
	Clock function.Clock

	// Backend answers queries that read stored data. When nil such queries
	// fail with fault.NoBackendCode.
	Backend querier.Querier
}

func (c Config) validate() error {
	if c.Registry == nil {
		return errors.New("function registry is required")
	}

	return nil
}

// Broker answers literal-only queries locally and hands everything else to
// the configured backend.
type Broker struct {
	cfg       Config
	logger    *slog.Logger
	evaluator *Evaluator
}

func New(cfg Config, logger *slog.Logger) (*Broker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Broker{
		cfg:       cfg,
		logger:    logger,
		evaluator: NewEvaluator(cfg.Registry, cfg.Clock),
	}, nil
}

// Evaluator returns the broker's compile-time evaluator.
func (b *Broker) Evaluator() *Evaluator {
	return b.evaluator
}

// BuildResponse runs the literal-only fast path. The boolean is false when
// the query reads stored data and the caller must execute it elsewhere.
func (b *Broker) BuildResponse(q *ast.Query) (*querier.BrokerResponse, bool, error) {
	if !IsLiteralOnly(q) {
		return nil, false, nil
	}

	if q.IsExplain {
		return explainResponse(), true, nil
	}

	resp, err := b.evaluator.synthesize(q)
	if err != nil {
		return nil, true, err
	}

	return resp, true, nil
}

// Query implements querier.Querier.
func (b *Broker) Query(ctx context.Context, req querier.QueryRequest) (*querier.BrokerResponse, error) {
	if req.Query == nil {
		return nil, fault.New(fault.BadInputCode, "Query is required.")
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	start := time.Now()
	logger := b.logger.With("request_id", req.ID)

	resp, handled, err := b.BuildResponse(req.Query)
	if err != nil {
		logger.Debug("literal query failed", "error", err)
		return nil, err
	}

	if handled {
		logger.Debug("answered literal query", "columns", resp.ResultTable.DataSchema.Size(), "explain", req.Query.IsExplain)
	} else {
		if b.cfg.Backend == nil {
			return nil, fault.New(fault.NoBackendCode, "Query reads table data but no backend is configured.")
		}

		logger.Info("delegating query to backend", "table", req.Query.Table, "explain", req.Query.IsExplain)

		resp, err = b.cfg.Backend.Query(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	resp.RequestID = req.ID
	resp.TimeUsedMs = time.Since(start).Milliseconds()

	return resp, nil
}
