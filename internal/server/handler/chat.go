package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cityu-campus/tasks-api/internal/analytics"
	apperrors "github.com/cityu-campus/tasks-api/pkg/errors"
	"github.com/cityu-campus/tasks-api/pkg/logger"
)

const (
	chatCitationLimit   = 3
	chatSuggestionLimit = 3
)

// ChatRequest is the JSON body of the NPC chat endpoint.
type ChatRequest struct {
	Question string `json:"question"`
}

// Citation is a knowledge snippet backing an NPC answer.
type Citation struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// MapAnchor points the client's map at the task location.
type MapAnchor struct {
	LocationName string  `json:"location_name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

// Suggestion is a related task surfaced alongside the answer.
type Suggestion struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ChatResponse is the NPC chat answer with its supporting material.
type ChatResponse struct {
	TaskID          string       `json:"task_id"`
	Answer          string       `json:"answer"`
	Citations       []Citation   `json:"citations"`
	MapAnchor       MapAnchor    `json:"map_anchor"`
	Suggestions     []Suggestion `json:"suggestions"`
	UncertainReason string       `json:"uncertain_reason,omitempty"`
}

// Chat answers a question about a task by retrieving the best-matching
// knowledge snippets. Snippets belonging to the asked task are preferred;
// when the match comes from another task's knowledge the response says so.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	taskID := r.PathValue("task_id")
	task, ok := h.corpus.Store().Task(taskID)
	if !ok {
		h.writeError(w, apperrors.ErrTaskNotFound)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid request body"))
		return
	}
	if req.Question == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "question is required"))
		return
	}

	hits := h.corpus.KnowledgeEngine().Search(req.Question, chatCitationLimit*2)

	var own, other []Citation
	for _, hit := range hits {
		// The knowledge engine indexes snippets by kb_id.
		rec, ok := h.corpus.Store().KnowledgeRecord(hit.TaskID)
		if !ok {
			continue
		}
		c := Citation{
			Source:  citationSource(rec.Source, rec.KnowledgeType),
			Content: rec.Content,
			Score:   hit.Score,
		}
		if rec.TaskID == taskID {
			own = append(own, c)
		} else {
			other = append(other, c)
		}
	}

	resp := ChatResponse{
		TaskID: taskID,
		MapAnchor: MapAnchor{
			LocationName: task.LocationName,
			Lat:          task.LocationLat,
			Lng:          task.LocationLng,
		},
		Citations:   []Citation{},
		Suggestions: []Suggestion{},
	}
	switch {
	case len(own) > 0:
		resp.Citations = truncateCitations(own, chatCitationLimit)
		resp.Answer = resp.Citations[0].Content
	case len(other) > 0:
		resp.Citations = truncateCitations(other, chatCitationLimit)
		resp.Answer = resp.Citations[0].Content
		resp.UncertainReason = "no knowledge for this task matched; answer drawn from related tasks"
	default:
		resp.Answer = "抱歉，没有找到相关资料。"
		resp.UncertainReason = "no matching knowledge records"
	}

	for _, hit := range h.corpus.TaskEngine().Search(req.Question, chatSuggestionLimit) {
		if hit.TaskID == taskID {
			continue
		}
		if related, ok := h.corpus.Store().Task(hit.TaskID); ok {
			resp.Suggestions = append(resp.Suggestions, Suggestion{
				TaskID:      related.TaskID,
				Title:       related.Title,
				Description: related.Description,
			})
		}
	}

	log.Info("npc chat answered",
		"task_id", taskID,
		"citations", len(resp.Citations),
		"uncertain", resp.UncertainReason != "",
		"latency_ms", time.Since(start).Milliseconds(),
	)
	if h.collector != nil {
		h.collector.Track(analytics.SearchEvent{
			Type:      analytics.EventChat,
			Query:     req.Question,
			Returned:  len(resp.Citations),
			LatencyMs: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
			RequestID: logger.RequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func citationSource(source, knowledgeType string) string {
	if source != "" {
		return source
	}
	if knowledgeType != "" {
		return knowledgeType
	}
	return "knowledge base"
}

func truncateCitations(citations []Citation, limit int) []Citation {
	if len(citations) > limit {
		return citations[:limit]
	}
	return citations
}
