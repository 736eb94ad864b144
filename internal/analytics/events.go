// Package analytics publishes search usage events to Kafka for an external
// analytics pipeline. Publishing is fire-and-forget: the API never blocks
// on the broker.
package analytics

import "time"

// EventType labels a search event.
type EventType string

const (
	EventSearch     EventType = "search"
	EventCacheHit   EventType = "cache_hit"
	EventZeroResult EventType = "zero_result"
	EventChat       EventType = "npc_chat"
	EventReload     EventType = "corpus_reload"
)

// SearchEvent records one ranked query.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// ReloadEvent records a corpus reload and index rebuild.
type ReloadEvent struct {
	Type       EventType `json:"type"`
	Tasks      int       `json:"tasks"`
	Vocabulary int       `json:"vocabulary"`
	Timestamp  time.Time `json:"timestamp"`
}
