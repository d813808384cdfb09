package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"ouvidoria.app/internal/auth"
	"ouvidoria.app/internal/thread"
	"ouvidoria.app/internal/token"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the error envelope: a short machine id plus a human
// description.
func writeError(w http.ResponseWriter, code int, id, description string) {
	writeJSON(w, code, map[string]any{
		"error":       id,
		"description": description,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

// handleDomainError maps sentinel errors from the auth and thread packages
// onto HTTP statuses. Unknown failures become an opaque 500.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, token.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	case errors.Is(err, auth.ErrEmailInUse):
		writeError(w, http.StatusConflict, "email_used", "email already in use")
	case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, thread.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, thread.ErrForbidden), errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "operation not allowed for this account")
	case errors.Is(err, thread.ErrNotFound), errors.Is(err, auth.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "resource not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
