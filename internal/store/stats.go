package store

// TaskStats aggregates the task corpus.
type TaskStats struct {
	TotalTasks      int            `json:"total_tasks"`
	Categories      map[string]int `json:"categories"`
	Difficulties    map[string]int `json:"difficulties"`
	Statuses        map[string]int `json:"statuses"`
	Courses         map[string]int `json:"courses"`
	AvgDuration     float64        `json:"avg_duration"`
	MinDuration     int            `json:"min_duration"`
	MaxDuration     int            `json:"max_duration"`
	UniqueLocations int            `json:"unique_locations"`
	UniqueNPCs      int            `json:"unique_npcs"`
}

// KnowledgeStats aggregates the knowledge base.
type KnowledgeStats struct {
	TotalRecords     int            `json:"total_records"`
	KnowledgeTypes   map[string]int `json:"knowledge_types"`
	Difficulties     map[string]int `json:"difficulties"`
	Courses          map[string]int `json:"courses"`
	Tags             map[string]int `json:"tags"`
	AvgContentLength float64        `json:"avg_content_length"`
	AvgTagsCount     float64        `json:"avg_tags_count"`
	AvgEstimatedTime float64        `json:"avg_estimated_time"`
}

// Stats is the full corpus statistics report.
type Stats struct {
	Tasks     TaskStats      `json:"tasks"`
	Knowledge KnowledgeStats `json:"knowledge"`
	NPCCount  int            `json:"npc_count"`
}

const noCourse = "uncategorized"

// Stats computes aggregate statistics over the current snapshot.
func (s *Store) Stats() Stats {
	snap := s.Snapshot()

	ts := TaskStats{
		TotalTasks:   len(snap.Tasks),
		Categories:   make(map[string]int),
		Difficulties: make(map[string]int),
		Statuses:     make(map[string]int),
		Courses:      make(map[string]int),
	}
	locations := make(map[string]struct{})
	npcs := make(map[string]struct{})
	totalDuration := 0
	for i, t := range snap.Tasks {
		ts.Categories[orUnknown(t.Category)]++
		ts.Difficulties[orUnknown(t.Difficulty)]++
		ts.Statuses[orUnknown(t.Status)]++
		if t.CourseCode != "" {
			ts.Courses[t.CourseCode]++
		} else {
			ts.Courses[noCourse]++
		}
		totalDuration += t.EstimatedDuration
		if i == 0 || t.EstimatedDuration < ts.MinDuration {
			ts.MinDuration = t.EstimatedDuration
		}
		if t.EstimatedDuration > ts.MaxDuration {
			ts.MaxDuration = t.EstimatedDuration
		}
		locations[t.LocationName] = struct{}{}
		npcs[t.NPCID] = struct{}{}
	}
	if ts.TotalTasks > 0 {
		ts.AvgDuration = float64(totalDuration) / float64(ts.TotalTasks)
	}
	ts.UniqueLocations = len(locations)
	ts.UniqueNPCs = len(npcs)

	ks := KnowledgeStats{
		TotalRecords:   len(snap.Knowledge),
		KnowledgeTypes: make(map[string]int),
		Difficulties:   make(map[string]int),
		Courses:        make(map[string]int),
		Tags:           make(map[string]int),
	}
	totalContent := 0
	totalTags := 0
	totalTime := 0
	for _, k := range snap.Knowledge {
		ks.KnowledgeTypes[orUnknown(k.KnowledgeType)]++
		ks.Difficulties[orUnknown(k.Difficulty)]++
		if k.CourseCode != "" {
			ks.Courses[k.CourseCode]++
		} else {
			ks.Courses[noCourse]++
		}
		totalContent += len([]rune(k.Content))
		totalTags += len(k.Tags)
		for _, tag := range k.Tags {
			ks.Tags[tag]++
		}
		totalTime += k.EstimatedTime
	}
	if ks.TotalRecords > 0 {
		n := float64(ks.TotalRecords)
		ks.AvgContentLength = float64(totalContent) / n
		ks.AvgTagsCount = float64(totalTags) / n
		ks.AvgEstimatedTime = float64(totalTime) / n
	}

	return Stats{Tasks: ts, Knowledge: ks, NPCCount: len(snap.NPCs)}
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
