package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lei/plr-summary/internal/provider"
	"github.com/lei/plr-summary/internal/service"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Handlers contains HTTP handler functions
type Handlers struct {
	service *service.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{service: svc}
}

// Health handles health check requests
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthDetails handles GET /health/details
func (h *Handlers) HealthDetails(w http.ResponseWriter, r *http.Request) {
	health := h.service.HealthCheck(r.Context())

	status := http.StatusOK
	if health["status"] != "healthy" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

// ListSummaries handles GET /v1/namespaces/{namespace}/pipelineruns
func (h *Handlers) ListSummaries(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())
	namespace := chi.URLParam(r, "namespace")
	query := r.URL.Query()

	filter, err := parseFilter(query.Get("search"), query.Get("status"), query.Get("finished"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := h.service.ListSummaries(r.Context(), namespace, query.Get("selector"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	filtered := FilterSummaries(summaries, filter)

	if logger != nil {
		logger.Debug("summaries listed",
			"namespace", namespace,
			"total", len(summaries),
			"returned", len(filtered))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summaries": filtered,
	})
}

// GetSummary handles GET /v1/namespaces/{namespace}/pipelineruns/{name}/summary
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	summary, err := h.service.Summary(r.Context(), namespace, name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
	})
}

// GetHistory handles GET /v1/namespaces/{namespace}/pipelineruns/{name}/history
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	// Parse optional limit parameter
	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
			if limit > maxHistoryLimit {
				limit = maxHistoryLimit
			}
		}
	}

	history, err := h.service.History(r.Context(), namespace, name, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"history": history,
	})
}

// StreamEvents handles GET /v1/namespaces/{namespace}/pipelineruns/{name}/events
func (h *Handlers) StreamEvents(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())
	namespace := chi.URLParam(r, "namespace")
	name := chi.URLParam(r, "name")

	flusher, ok := w.(http.Flusher)
	if !ok {
		if logger != nil {
			logger.Error("streaming not supported by response writer")
		}
		respondError(w, r, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events := h.service.Watch(r.Context(), namespace, name)

	// The first event decides between an error response and a stream
	first, ok := <-events
	if !ok {
		return
	}
	if first.Err != nil {
		handleServiceError(w, r, first.Err)
		return
	}

	if logger != nil {
		logger.Info("starting event stream", "run_id", namespace+"/"+name)
	}

	// The stream lasts until the run finishes, past the server write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && logger != nil {
		logger.Debug("could not clear write deadline", "error", err)
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	requestID := GetRequestID(r.Context())
	fmt.Fprintf(w, "event: connected\ndata: {\"request_id\":\"%s\"}\n\n", requestID)

	writeEvent := func(event string, payload interface{}) {
		data, err := json.Marshal(payload)
		if err != nil {
			if logger != nil {
				logger.Error("failed to encode event", "event", event, "error", err)
			}
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	writeEvent("summary", first.Summary)
	for ev := range events {
		if ev.Err != nil {
			// Cannot change headers after streaming starts, but MUST log
			if logger != nil {
				logger.Warn("stream fetch error", "run_id", namespace+"/"+name, "error", ev.Err)
			}
			writeEvent("error", map[string]string{"message": ev.Err.Error(), "request_id": requestID})
			continue
		}
		writeEvent("summary", ev.Summary)
	}

	if r.Context().Err() == nil {
		writeEvent("done", map[string]string{"request_id": requestID})
	}

	if logger != nil {
		logger.Info("event stream completed", "run_id", namespace+"/"+name)
	}
}

// ListViews handles GET /v1/views
func (h *Handlers) ListViews(w http.ResponseWriter, r *http.Request) {
	views := h.service.ListViews(r.Context())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"views": views,
	})
}

// ViewSummaries handles GET /v1/views/{view_id}/summaries
func (h *Handlers) ViewSummaries(w http.ResponseWriter, r *http.Request) {
	viewID := chi.URLParam(r, "view_id")
	query := r.URL.Query()

	filter, err := parseFilter(query.Get("search"), query.Get("status"), query.Get("finished"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view, summaries, err := h.service.ViewSummaries(r.Context(), viewID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"view":      view,
		"summaries": FilterSummaries(summaries, filter),
	})
}

func parseFilter(search, status, finished string) (SummaryFilter, error) {
	statuses, err := parseStatusParam(status)
	if err != nil {
		return SummaryFilter{}, err
	}
	return SummaryFilter{
		Search:   search,
		Statuses: statuses,
		Finished: parseBoolParam(finished),
	}, nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes a JSON error response with logging
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logger := GetLogger(r.Context())
	requestID := GetRequestID(r.Context())

	if logger != nil {
		logger.Error("returning error response",
			"status", status,
			"message", message,
			"request_id", requestID)
	}

	w.Header().Set("X-Request-ID", requestID)
	respondJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message":    message,
			"code":       status,
			"request_id": requestID,
		},
	})
}

// handleServiceError maps service errors to HTTP responses with detailed logging
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := GetLogger(r.Context())
	requestID := GetRequestID(r.Context())

	// Log original error with full details
	if logger != nil {
		logger.Error("service error occurred",
			"error", err.Error(),
			"error_type", fmt.Sprintf("%T", err),
			"request_id", requestID)
	}

	switch {
	case errors.Is(err, service.ErrViewNotFound):
		respondError(w, r, http.StatusNotFound, "view not found")
	case errors.Is(err, service.ErrRunNotFound):
		respondError(w, r, http.StatusNotFound, "pipeline run not found")
	case errors.Is(err, service.ErrHistoryDisabled):
		respondError(w, r, http.StatusNotImplemented, "summary history is disabled")
	case errors.Is(err, provider.ErrUnauthorized):
		respondError(w, r, http.StatusBadGateway, "cluster authentication failed")
	case errors.Is(err, provider.ErrProviderUnavailable):
		respondError(w, r, http.StatusBadGateway, "cluster temporarily unavailable")
	default:
		// Check if it's a ProviderError
		var providerErr *provider.ProviderError
		if errors.As(err, &providerErr) {
			if logger != nil {
				logger.Error("provider error details",
					"provider_code", providerErr.Code,
					"provider_message", providerErr.Message,
					"underlying_error", providerErr.Err)
			}

			if providerErr.Code >= 400 && providerErr.Code < 500 {
				respondError(w, r, providerErr.Code, providerErr.Message)
			} else {
				respondError(w, r, http.StatusBadGateway, "provider error")
			}
		} else {
			respondError(w, r, http.StatusInternalServerError, "internal server error")
		}
	}
}
