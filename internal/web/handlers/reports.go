// Package handlers implements the HTTP API handlers.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/at-addrcompare/internal/compare"
	"github.com/at-addrcompare/internal/errors"
	"github.com/at-addrcompare/internal/logging"
	"github.com/at-addrcompare/internal/report"
)

// Reconciler runs one reconciliation. *compare.Runner implements it.
type Reconciler interface {
	Run(ctx context.Context, gkz int) (*compare.Run, error)
}

// RunObserver is told about every reconciliation a request triggered.
type RunObserver interface {
	ObserveRun(run *compare.Run, err error, took time.Duration)
}

// ReportsHandler serves reconciliation reports.
type ReportsHandler struct {
	Runner        Reconciler
	Observer      RunObserver
	DefaultFormat string
	RunTimeout    time.Duration
}

// GetReport runs a reconciliation for the municipality in the path and
// renders it in the format named by the format query parameter.
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	gkz, err := strconv.Atoi(mux.Vars(r)["gkz"])
	if err != nil {
		writeError(w, errors.NewValidationError("gkz", mux.Vars(r)["gkz"], "not a number"))
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = strings.ToLower(h.DefaultFormat)
	}
	renderer, err := report.ForFormat(format)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if h.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	run, err := h.Runner.Run(ctx, gkz)
	if h.Observer != nil {
		h.Observer.ObserveRun(run, err, time.Since(start))
	}
	if err != nil {
		logger.Error().Err(err).Int("gkz", gkz).Msg("reconciliation failed")
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, run.Result, run.Meta()); err != nil {
		logger.Error().Err(err).Str("format", format).Msg("failed to render report")
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType(format))
	w.Header().Set("X-Run-ID", run.ID)
	if format == "xlsx" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="addresses-%d.xlsx"`, gkz))
	}
	w.Write(buf.Bytes())
}

// Health reports that the server is up.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusCode maps an error to the HTTP status it is reported with.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, errors.ErrInvalidInput), errors.Is(err, errors.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := StatusCode(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = http.StatusText(code)
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
