package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"volleyball-league/internal/league"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error     string   `json:"error"`
	RequestID string   `json:"requestId,omitempty"`
	Step      string   `json:"step,omitempty"`
	Completed []string `json:"completed,omitempty"`
	Created   any      `json:"created,omitempty"`
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:     err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// writeError maps league errors to HTTP statuses. The manager has already
// logged them; only unexpected errors are logged here.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writePartialError(w, r, err, nil)
}

// writePartialError is writeError for operations that stored a row before
// failing. created is echoed back so the client can repair or remove it.
func writePartialError(w http.ResponseWriter, r *http.Request, err error, created any) {
	resp := errorResponse{
		Error:     err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
		Created:   created,
	}
	status := statusFor(err)

	var inconsistent *league.InconsistentStateError
	if errors.As(err, &inconsistent) {
		resp.Step = inconsistent.Step
		resp.Completed = inconsistent.Completed
	}
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case league.IsInconsistent(err):
		return http.StatusConflict
	case league.IsValidation(err):
		return http.StatusBadRequest
	case league.IsNotFound(err):
		return http.StatusNotFound
	case league.IsStore(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
