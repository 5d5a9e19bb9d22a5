package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/beesaferoot/imobipro/internal/backup"
	"github.com/beesaferoot/imobipro/internal/batch"
	"github.com/beesaferoot/imobipro/internal/billing"
	"github.com/beesaferoot/imobipro/internal/period"
	"github.com/beesaferoot/imobipro/internal/store"
)

// resultResponse is the JSON shape of a batch result.
type resultResponse struct {
	Created  int             `json:"created"`
	Ignored  int             `json:"ignored"`
	Errored  int             `json:"errored"`
	Failures []batch.Failure `json:"failures"`
}

func newResultResponse(res batch.Result) resultResponse {
	failures := res.Failures
	if failures == nil {
		failures = []batch.Failure{}
	}
	return resultResponse{Created: res.Created, Ignored: res.Ignored, Errored: res.Errored(), Failures: failures}
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON encode error: %v", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// decodeJSON decodes the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// parseID extracts a numeric path parameter.
func parseID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "invalid id: "+raw)
		return 0, false
	}
	return uint(id), true
}

// parseToday reads the optional ?today=YYYY-MM-DD override, defaulting to now.
func parseToday(w http.ResponseWriter, r *http.Request, now time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get("today")
	if raw == "" {
		return now, true
	}
	t, err := period.ParseISO(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return time.Time{}, false
	}
	return t, true
}

// errorToHTTP maps domain errors to HTTP responses.
func errorToHTTP(w http.ResponseWriter, err error) {
	var valErr *batch.ValidationError
	switch {
	case errors.As(err, &valErr),
		errors.Is(err, billing.ErrDueDateRequired),
		errors.Is(err, billing.ErrDateRequired):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, backup.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, "UNSUPPORTED", err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
