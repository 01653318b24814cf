package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"khata/internal/core"
	"khata/internal/log"
	"khata/internal/reports"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidMonthLabel), errors.Is(err, core.ErrInvalidKind), errors.Is(err, core.ErrEmptyCategory):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, reports.ErrInvalidQuery):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// monthParam parses a required "month" query parameter given as a sheet
// label like "Jul-25".
func monthParam(r *http.Request) (core.MonthKey, error) {
	label := strings.TrimSpace(r.URL.Query().Get("month"))
	return core.ParseMonthLabel(label)
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// cached serves GET responses from the LRU cache keyed by path and query.
// Only successful responses are cached.
func (s *Server) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if q := r.URL.RawQuery; q != "" {
			key += "?" + q
		}

		if body, found := s.respCache.Get(key); found {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set("X-Cache", "hit")
			_, _ = w.Write(body)
			return
		}

		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		if rec.status == http.StatusOK {
			s.respCache.Set(key, bytes.Clone(rec.body.Bytes()))
		}
	}
}

// recordingWriter tees the response body so cached can store it.
type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *recordingWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
