package store

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/cityu-campus/tasks-api/pkg/config"
)

// Loader reads the corpus from the data directory. Malformed rows degrade
// to zero values with a logged warning; only unreadable files are fatal.
type Loader struct {
	cfg    config.StoreConfig
	tasks  TaskSource
	logger *slog.Logger
}

// TaskSource abstracts where task records come from (CSV file or Postgres).
type TaskSource interface {
	LoadTasks(ctx context.Context) ([]Task, error)
}

// NewLoader creates a Loader using the given task source. A nil source
// falls back to the CSV file from the config.
func NewLoader(cfg config.StoreConfig, tasks TaskSource) *Loader {
	l := &Loader{
		cfg:    cfg,
		tasks:  tasks,
		logger: slog.Default().With("component", "store-loader"),
	}
	if l.tasks == nil {
		l.tasks = csvTaskSource{path: filepath.Join(cfg.DataDir, cfg.TasksFile), logger: l.logger}
	}
	return l
}

// Load reads tasks, NPCs, and knowledge records concurrently and returns a
// fresh Snapshot.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tasks, err := l.tasks.LoadTasks(ctx)
		if err != nil {
			return fmt.Errorf("loading tasks: %w", err)
		}
		snap.Tasks = tasks
		return nil
	})
	g.Go(func() error {
		npcs, err := l.loadNPCs()
		if err != nil {
			return fmt.Errorf("loading npcs: %w", err)
		}
		snap.NPCs = npcs
		return nil
	})
	g.Go(func() error {
		kb, err := l.loadKnowledge()
		if err != nil {
			return fmt.Errorf("loading knowledge base: %w", err)
		}
		snap.Knowledge = kb
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	l.logger.Info("corpus loaded",
		"tasks", len(snap.Tasks),
		"npcs", len(snap.NPCs),
		"knowledge_records", len(snap.Knowledge),
	)
	return snap, nil
}

// loadNPCs reads the NPC JSONL file. A missing file is treated as an empty
// corpus, not an error.
func (l *Loader) loadNPCs() ([]NPC, error) {
	path := filepath.Join(l.cfg.DataDir, l.cfg.NPCsFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("npc file missing, continuing with empty set", "path", path)
			return []NPC{}, nil
		}
		return nil, err
	}
	defer f.Close()

	npcs := make([]NPC, 0, 32)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var npc NPC
		if err := json.Unmarshal(raw, &npc); err != nil {
			l.logger.Warn("skipping malformed npc record", "path", path, "line", line, "error", err)
			continue
		}
		npcs = append(npcs, npc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return npcs, nil
}

// loadKnowledge reads the knowledge-base JSONL file. Records without an
// explicit kb_id get a positional one so search results stay addressable.
func (l *Loader) loadKnowledge() ([]Knowledge, error) {
	path := filepath.Join(l.cfg.DataDir, l.cfg.KnowledgeFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("knowledge file missing, continuing with empty set", "path", path)
			return []Knowledge{}, nil
		}
		return nil, err
	}
	defer f.Close()

	records := make([]Knowledge, 0, 64)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Knowledge
		if err := json.Unmarshal(raw, &rec); err != nil {
			l.logger.Warn("skipping malformed knowledge record", "path", path, "line", line, "error", err)
			continue
		}
		if rec.KBID == "" {
			rec.KBID = fmt.Sprintf("KB%04d", line)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

// csvTaskSource reads task records from the tasks CSV file.
type csvTaskSource struct {
	path   string
	logger *slog.Logger
}

func (s csvTaskSource) LoadTasks(ctx context.Context) ([]Task, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return []Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	tasks := make([]Task, 0, 64)
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			s.logger.Warn("skipping malformed task row", "path", s.path, "line", line, "error", err)
			continue
		}
		task := Task{
			TaskID:       field(row, "task_id"),
			Title:        field(row, "title"),
			Description:  field(row, "description"),
			Category:     field(row, "category"),
			Difficulty:   field(row, "difficulty"),
			Status:       field(row, "status"),
			CourseCode:   field(row, "course_code"),
			LocationName: field(row, "location_name"),
			NPCID:        field(row, "npc_id"),
		}
		task.EstimatedDuration = parseIntField(s.logger, s.path, line, "estimated_duration", field(row, "estimated_duration"))
		task.LocationLat = parseFloatField(s.logger, s.path, line, "location_lat", field(row, "location_lat"))
		task.LocationLng = parseFloatField(s.logger, s.path, line, "location_lng", field(row, "location_lng"))
		if task.TaskID == "" {
			s.logger.Warn("skipping task row without task_id", "path", s.path, "line", line)
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func parseIntField(logger *slog.Logger, path string, line int, name, raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid numeric field, using 0", "path", path, "line", line, "field", name, "value", raw)
		return 0
	}
	return v
}

func parseFloatField(logger *slog.Logger, path string, line int, name, raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("invalid numeric field, using 0", "path", path, "line", line, "field", name, "value", raw)
		return 0
	}
	return v
}
