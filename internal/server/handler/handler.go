// Package handler implements the HTTP handlers of the campus tasks API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cityu-campus/tasks-api/internal/analytics"
	"github.com/cityu-campus/tasks-api/internal/corpus"
	"github.com/cityu-campus/tasks-api/internal/search"
	"github.com/cityu-campus/tasks-api/internal/search/cache"
	"github.com/cityu-campus/tasks-api/internal/store"
	apperrors "github.com/cityu-campus/tasks-api/pkg/errors"
	"github.com/cityu-campus/tasks-api/pkg/logger"
	"github.com/cityu-campus/tasks-api/pkg/metrics"
)

// Version is the API version reported on the root route.
const Version = "1.0.0"

// Handler serves the campus tasks API. cache, collector, and metrics may be
// nil when the corresponding subsystem is disabled.
type Handler struct {
	corpus       *corpus.Manager
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler.
func New(
	manager *corpus.Manager,
	queryCache *cache.QueryCache,
	collector *analytics.Collector,
	m *metrics.Metrics,
	defaultLimit, maxResults int,
) *Handler {
	return &Handler{
		corpus:       manager,
		cache:        queryCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "api-handler"),
	}
}

// Root serves the service banner.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "CityU Campus Tasks API",
		"version": Version,
	})
}

// Tasks lists task records, optionally filtered by category and status.
func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	tasks := h.corpus.Store().Tasks(
		r.URL.Query().Get("category"),
		r.URL.Query().Get("status"),
	)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// TaskByID returns a single task record.
func (h *Handler) TaskByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, ok := h.corpus.Store().Task(id)
	if !ok {
		h.writeError(w, apperrors.ErrTaskNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

// NPCs lists NPC records.
func (h *Handler) NPCs(w http.ResponseWriter, r *http.Request) {
	npcs := h.corpus.Store().NPCs()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"npcs":  npcs,
		"count": len(npcs),
	})
}

// NPCByID returns a single NPC record.
func (h *Handler) NPCByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	npc, ok := h.corpus.Store().NPC(id)
	if !ok {
		h.writeError(w, apperrors.ErrNPCNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, npc)
}

// Knowledge lists knowledge records, optionally scoped to one task.
func (h *Handler) Knowledge(w http.ResponseWriter, r *http.Request) {
	records := h.corpus.Store().Knowledge(r.URL.Query().Get("task_id"))
	if records == nil {
		records = []store.Knowledge{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

// Search ranks tasks by BM25 relevance to the free-text query.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a non-negative integer"))
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	engine := h.corpus.TaskEngine()
	var results []search.Result
	cacheHit := false
	if h.cache != nil {
		results, cacheHit = h.cache.GetOrCompute(ctx, query, limit, func() []search.Result {
			return engine.Search(query, limit)
		})
	} else {
		results = engine.Search(query, limit)
	}

	latency := time.Since(start)
	h.recordSearchMetrics(results, cacheHit, latency)
	log.Info("search completed",
		"query", query,
		"returned", len(results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.collector != nil {
		eventType := analytics.EventSearch
		switch {
		case cacheHit:
			eventType = analytics.EventCacheHit
		case len(results) == 0:
			eventType = analytics.EventZeroResult
		}
		h.collector.Track(analytics.SearchEvent{
			Type:      eventType,
			Query:     query,
			Terms:     engine.Tokenize(query),
			Returned:  len(results),
			LatencyMs: latency.Milliseconds(),
			CacheHit:  cacheHit,
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

// Stats reports corpus statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.corpus.Store().Stats())
}

func (h *Handler) recordSearchMetrics(results []search.Result, cacheHit bool, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	resultType := "hit"
	if len(results) == 0 {
		resultType = "zero_result"
	}
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(len(results)))
	if h.cache != nil {
		if cacheHit {
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError resolves the HTTP status from the error's sentinel mapping,
// preferring an explicit AppError status and message.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": message})
}
