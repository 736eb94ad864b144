package store

import (
	"sync/atomic"
)

// Store publishes the current corpus snapshot. Like the search index, the
// snapshot is replaced wholesale on reload via an atomic pointer swap, so
// readers never observe a partially-loaded corpus.
type Store struct {
	current atomic.Pointer[view]
}

// view is a Snapshot plus derived lookup maps, built once per load.
type view struct {
	snap        *Snapshot
	tasksByID   map[string]*Task
	npcsByID    map[string]*NPC
	knowledgeBy map[string][]Knowledge
	kbByID      map[string]*Knowledge
}

// New creates a Store holding an empty corpus.
func New() *Store {
	s := &Store{}
	s.Publish(&Snapshot{})
	return s
}

// Publish swaps in a new corpus snapshot.
func (s *Store) Publish(snap *Snapshot) {
	v := &view{
		snap:        snap,
		tasksByID:   make(map[string]*Task, len(snap.Tasks)),
		npcsByID:    make(map[string]*NPC, len(snap.NPCs)),
		knowledgeBy: make(map[string][]Knowledge, len(snap.Tasks)),
		kbByID:      make(map[string]*Knowledge, len(snap.Knowledge)),
	}
	for i := range snap.Tasks {
		v.tasksByID[snap.Tasks[i].TaskID] = &snap.Tasks[i]
	}
	for i := range snap.NPCs {
		v.npcsByID[snap.NPCs[i].NPCID] = &snap.NPCs[i]
	}
	for i := range snap.Knowledge {
		rec := &snap.Knowledge[i]
		v.knowledgeBy[rec.TaskID] = append(v.knowledgeBy[rec.TaskID], *rec)
		v.kbByID[rec.KBID] = rec
	}
	s.current.Store(v)
}

// Snapshot returns the current corpus snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load().snap
}

// Tasks returns the tasks matching the optional category and status filters.
func (s *Store) Tasks(category, status string) []Task {
	snap := s.Snapshot()
	if category == "" && status == "" {
		return snap.Tasks
	}
	out := make([]Task, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		if category != "" && t.Category != category {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Task looks up a task by ID.
func (s *Store) Task(id string) (*Task, bool) {
	t, ok := s.current.Load().tasksByID[id]
	return t, ok
}

// NPCs returns every NPC record.
func (s *Store) NPCs() []NPC {
	return s.Snapshot().NPCs
}

// NPC looks up an NPC by ID.
func (s *Store) NPC(id string) (*NPC, bool) {
	n, ok := s.current.Load().npcsByID[id]
	return n, ok
}

// KnowledgeRecord looks up a knowledge snippet by its kb_id.
func (s *Store) KnowledgeRecord(id string) (*Knowledge, bool) {
	k, ok := s.current.Load().kbByID[id]
	return k, ok
}

// Knowledge returns the knowledge records for a task, or every record when
// taskID is empty.
func (s *Store) Knowledge(taskID string) []Knowledge {
	if taskID == "" {
		return s.Snapshot().Knowledge
	}
	return s.current.Load().knowledgeBy[taskID]
}
