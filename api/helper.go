package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/thisisjab/pinotbroker/fault"
)

// readJson decodes exactly one JSON value from the request body into dst,
// rejecting unknown fields and bodies over cfg.MaxBodyBytes.
func (s *server) readJson(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fault.New(fault.BadInputCode, "Request body must only contain a single JSON object.")
	}

	return nil
}

// decodeError maps encoding/json failures to bad_input faults. Errors tied
// to one field carry it as field metadata.
func decodeError(err error) error {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError

	switch {
	case errors.As(err, &syntaxError):
		return fault.Newf(fault.BadInputCode, "Malformed JSON at character %d.", syntaxError.Offset)

	case errors.Is(err, io.ErrUnexpectedEOF):
		return fault.New(fault.BadInputCode, "Malformed JSON.")

	case errors.As(err, &typeError) && typeError.Field != "":
		return fieldError(typeError.Field, fmt.Sprintf("Expected type %s.", typeError.Type))

	case errors.As(err, &typeError):
		return fault.Newf(fault.BadInputCode, "Malformed JSON at character %d.", typeError.Offset)

	case errors.Is(err, io.EOF):
		return fault.New(fault.BadInputCode, "Request body cannot be empty.")

	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return fieldError(field, "Key is unknown.")

	case errors.As(err, &maxBytesError):
		return fault.Newf(fault.BadInputCode, "Request body must not be larger than %d bytes.", maxBytesError.Limit)

	default:
		return err
	}
}

func fieldError(field, msg string) error {
	return fault.New(fault.BadInputCode, "").WithMetadata(fault.FieldErrorsMetadata{field: []string{msg}})
}

// writeJson writes data with status. Nothing is written when data cannot be
// encoded, so the caller can still send an error response.
func (s *server) writeJson(w http.ResponseWriter, status int, data any) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(js, '\n')) //nolint:errcheck

	return nil
}
