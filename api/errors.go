package api

import (
	"errors"
	"net/http"

	"github.com/thisisjab/pinotbroker/fault"
	"github.com/thisisjab/pinotbroker/querier"
)

type errorResponse struct {
	RequestID  string                   `json:"requestId,omitempty"`
	Exceptions []querier.QueryException `json:"exceptions"`
	Metadata   map[string]any           `json:"metadata,omitempty"`
}

// returnOnError writes err to the client and reports whether it did.
func (s *server) returnOnError(w http.ResponseWriter, r *http.Request, requestID string, err error) bool {
	if err == nil {
		return false
	}
	s.handleError(w, r, requestID, err)
	return true
}

func (s *server) handleError(w http.ResponseWriter, r *http.Request, requestID string, err error) {
	var f fault.Fault
	if !errors.As(err, &f) {
		s.internalServerError(w, r, requestID, err)
		return
	}

	res := errorResponse{
		RequestID:  requestID,
		Exceptions: []querier.QueryException{{ErrorCode: string(f.Code()), Message: f.Error()}},
	}

	switch f.Code() {
	case fault.BadInputCode:
		if md, ok := f.Metadata().(fault.FieldErrorsMetadata); ok {
			// This is a 422 error since it's related to specific field
			if f.Message() == "" {
				res.Exceptions[0].Message = "Request has invalid fields."
			}
			res.Metadata = map[string]any{"fields": md}
			s.writeError(w, r, http.StatusUnprocessableEntity, res)
		} else {
			s.writeError(w, r, http.StatusBadRequest, res)
		}

	case fault.UnknownFunctionCode, fault.ArityOrTypeCode, fault.FunctionEvaluationCode:
		s.writeError(w, r, http.StatusBadRequest, res)

	case fault.NotFoundCode:
		if f.Message() == "" {
			res.Exceptions[0].Message = "Requested resource not found."
		}
		s.writeError(w, r, http.StatusNotFound, res)

	case fault.NoBackendCode:
		s.writeError(w, r, http.StatusNotImplemented, res)

	case fault.BackendCode:
		s.logError(w, r, err)
		res.Exceptions[0].Message = f.Message()
		s.writeError(w, r, http.StatusBadGateway, res)

	default:
		s.internalServerError(w, r, requestID, f)
	}
}

func (s *server) logError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("internal server error", "method", r.Method, "path", r.RequestURI, "remote-addr", r.RemoteAddr, "error", err)
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, response errorResponse) {
	s.writeJson(w, status, response) //nolint:errcheck
}

func (s *server) internalServerError(w http.ResponseWriter, r *http.Request, requestID string, err error) {
	s.logError(w, r, err)

	code := fault.CodeOf(err)
	if code == fault.UnknownCode {
		code = "internal"
	}

	s.writeError(w, r, http.StatusInternalServerError, errorResponse{
		RequestID:  requestID,
		Exceptions: []querier.QueryException{{ErrorCode: string(code), Message: "Internal server error"}},
	})
}
