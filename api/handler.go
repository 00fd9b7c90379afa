package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/querier"
	"github.com/thisisjab/pinotbroker/querier/parser"
)

type sqlRequest struct {
	SQL string `json:"sql"`
}

// querySQLHandler compiles the SQL in the request body and returns the
// broker response. Failed requests carry the error in "exceptions".
func (s *server) querySQLHandler(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	// Reading query object from request
	var body sqlRequest
	if s.returnOnError(w, r, requestID, s.readJson(w, r, &body)) {
		return
	}

	if strings.TrimSpace(body.SQL) == "" {
		s.handleError(w, r, requestID, fault.New(fault.BadInputCode, "").WithMetadata(fault.FieldErrorsMetadata{
			"sql": []string{"Must not be empty."},
		}))
		return
	}

	q, err := parser.Parse(body.SQL)
	if s.returnOnError(w, r, requestID, err) {
		return
	}

	// Getting response
	resp, err := s.querier.Query(r.Context(), querier.QueryRequest{ID: requestID, Query: q})
	if s.returnOnError(w, r, requestID, err) {
		return
	}

	if err := s.writeJson(w, http.StatusOK, resp); err != nil {
		s.internalServerError(w, r, requestID, err)
	}
}

func (s *server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.handleError(w, r, "", fault.New(fault.NotFoundCode, ""))
}

func (s *server) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed, errorResponse{
		Exceptions: []querier.QueryException{{ErrorCode: "method_not_allowed", Message: "Method not allowed."}},
	})
}
