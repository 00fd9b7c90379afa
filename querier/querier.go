package querier

import (
	"context"

	"github.com/thisisjab/pinotbroker/querier/ast"
)

type QueryRequest struct {
	// ID identifies the request in logs and in the response.
	ID    string
	Query *ast.Query
}

// Querier answers a compiled query. The broker fast path and every
// execution backend implement it.
type Querier interface {
	Query(ctx context.Context, req QueryRequest) (*BrokerResponse, error)
}
