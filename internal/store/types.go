// Package store loads and holds the campus corpus: task records from CSV or
// PostgreSQL, NPC and knowledge-base records from JSONL. The loaded snapshot
// is immutable; a reload produces a new snapshot.
package store

// Task is a campus task record.
type Task struct {
	TaskID            string  `json:"task_id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	Difficulty        string  `json:"difficulty"`
	Status            string  `json:"status"`
	CourseCode        string  `json:"course_code,omitempty"`
	EstimatedDuration int     `json:"estimated_duration"`
	LocationName      string  `json:"location_name"`
	LocationLat       float64 `json:"location_lat"`
	LocationLng       float64 `json:"location_lng"`
	NPCID             string  `json:"npc_id"`
}

// NPC is a campus NPC record.
type NPC struct {
	NPCID       string  `json:"npc_id"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Description string  `json:"description,omitempty"`
	LocationLat float64 `json:"location_lat"`
	LocationLng float64 `json:"location_lng"`
	Available   bool    `json:"available"`
}

// Knowledge is a single knowledge-base snippet attached to a task.
type Knowledge struct {
	KBID          string   `json:"kb_id"`
	TaskID        string   `json:"task_id"`
	KnowledgeType string   `json:"knowledge_type"`
	Source        string   `json:"source,omitempty"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags,omitempty"`
	CourseCode    string   `json:"course_code,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	EstimatedTime int      `json:"estimated_time,omitempty"`
}

// Snapshot is one immutable load of the full corpus.
type Snapshot struct {
	Tasks     []Task
	NPCs      []NPC
	Knowledge []Knowledge
}
