package handler

import (
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/cityu-campus/tasks-api/pkg/errors"
	"github.com/cityu-campus/tasks-api/pkg/logger"
)

// DebugIndex dumps the current index and cache statistics.
func (h *Handler) DebugIndex(w http.ResponseWriter, r *http.Request) {
	taskIdx := h.corpus.TaskEngine().Index()
	kbIdx := h.corpus.KnowledgeEngine().Index()

	dump := map[string]any{
		"task_index": map[string]any{
			"documents":       taskIdx.Size(),
			"vocabulary_size": taskIdx.VocabularySize(),
			"avg_doc_length":  taskIdx.AvgDocLength(),
		},
		"knowledge_index": map[string]any{
			"documents":       kbIdx.Size(),
			"vocabulary_size": kbIdx.VocabularySize(),
			"avg_doc_length":  kbIdx.AvgDocLength(),
		},
		"loaded_at": h.corpus.LoadedAt().Format(time.RFC3339),
	}
	if h.cache != nil {
		hits, misses := h.cache.Stats()
		total := hits + misses
		hitRate := "n/a"
		if total > 0 {
			hitRate = fmt.Sprintf("%.1f%%", float64(hits)/float64(total)*100)
		}
		dump["cache"] = map[string]any{
			"hits":     hits,
			"misses":   misses,
			"hit_rate": hitRate,
		}
	}
	h.writeJSON(w, http.StatusOK, dump)
}

// DebugReload reloads the corpus and rebuilds both indexes. The new index is
// published atomically; in-flight queries keep the previous snapshot.
func (h *Handler) DebugReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if err := h.corpus.Reload(ctx); err != nil {
		log.Error("corpus reload failed", "error", err)
		h.writeError(w, apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "reload failed"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "reloaded",
		"tasks":     h.corpus.TaskEngine().Index().Size(),
		"knowledge": h.corpus.KnowledgeEngine().Index().Size(),
	})
}
