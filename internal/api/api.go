package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eniz1806/ecsizer/internal/config"
	"github.com/eniz1806/ecsizer/internal/metrics"
	"github.com/eniz1806/ecsizer/internal/sizing"
)

// APIHandler serves the calculator REST API at /api/v1/.
type APIHandler struct {
	defaults config.DefaultsConfig
	metrics  *metrics.Collector
	router   chi.Router
}

func NewAPIHandler(cfg *config.Config, mc *metrics.Collector) *APIHandler {
	h := &APIHandler{
		defaults: cfg.Defaults,
		metrics:  mc,
	}

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/usage", h.handleUsageQuery)
		r.Post("/usage", h.handleUsageJSON)
		r.Get("/defaults", h.handleDefaults)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	h.router = r

	return h
}

func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.metrics.RecordRequest(r.Method)
	h.router.ServeHTTP(w, r)
}

// calculate runs the calculator and writes the error response on failure.
func (h *APIHandler) calculate(w http.ResponseWriter, req sizing.Request) (sizing.Report, bool) {
	rep, err := sizing.Calculate(req)
	switch {
	case err == nil:
		h.metrics.RecordCalculation()
		return rep, true
	case errors.Is(err, sizing.ErrInvalidConfiguration):
		h.metrics.RecordInvalidConfiguration()
		writeError(w, http.StatusUnprocessableEntity, sizing.ErrorMessage(err))
	case errors.Is(err, sizing.ErrInvalidInput):
		h.metrics.RecordInputError()
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("api: calculate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "calculation failed")
	}
	return sizing.Report{}, false
}
