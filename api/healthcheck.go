package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/thisisjab/pinotbroker/querier"
	"github.com/thisisjab/pinotbroker/querier/parser"
)

const healthCheckSQL = "SELECT 1"

type healthResponse struct {
	Status     string `json:"status"`
	RequestID  string `json:"requestId"`
	TimeUsedMs int64  `json:"timeUsedMs"`
}

// healthCheckHandler answers a literal query through the broker, so a
// healthy response means parsing and evaluation work end to end.
func (s *server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	q, err := parser.Parse(healthCheckSQL)
	if s.returnOnError(w, r, requestID, err) {
		return
	}

	resp, err := s.querier.Query(r.Context(), querier.QueryRequest{ID: requestID, Query: q})
	if s.returnOnError(w, r, requestID, err) {
		return
	}

	s.writeJson(w, http.StatusOK, healthResponse{ //nolint:errcheck
		Status:     "OK",
		RequestID:  resp.RequestID,
		TimeUsedMs: resp.TimeUsedMs,
	})
}
