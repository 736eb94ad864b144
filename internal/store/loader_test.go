package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cityu-campus/tasks-api/pkg/config"
)

func writeDataDir(t *testing.T, files map[string]string) config.StoreConfig {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return config.StoreConfig{
		Source:        "csv",
		DataDir:       dir,
		TasksFile:     "tasks.csv",
		NPCsFile:      "npcs.jsonl",
		KnowledgeFile: "task_kb.jsonl",
	}
}

const tasksCSV = `task_id,title,description,category,difficulty,status,course_code,estimated_duration,location_name,location_lat,location_lng,npc_id
T001,图书馆打卡,在图书馆完成学习任务,study,easy,active,CS1302,30,邵逸夫图书馆,22.3364,114.2654,NPC01
T002,食堂用餐,体验校园美食,life,easy,active,,45,学生食堂,22.3371,114.2612,NPC02
`

func TestLoadFullCorpus(t *testing.T) {
	cfg := writeDataDir(t, map[string]string{
		"tasks.csv": tasksCSV,
		"npcs.jsonl": `{"npc_id":"NPC01","name":"陈老师","role":"librarian","location_lat":22.3364,"location_lng":114.2654,"available":true}
{"npc_id":"NPC02","name":"王师傅","role":"chef","available":false}
`,
		"task_kb.jsonl": `{"kb_id":"KB0001","task_id":"T001","knowledge_type":"guide","source":"library_handbook","content":"图书馆开放时间为早八点至晚十一点","tags":["时间","规则"],"estimated_time":5}
{"task_id":"T002","knowledge_type":"tip","content":"食堂二楼有粤菜窗口"}
`,
	})

	snap, err := NewLoader(cfg, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(snap.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(snap.Tasks))
	}
	first := snap.Tasks[0]
	if first.TaskID != "T001" || first.Title != "图书馆打卡" {
		t.Errorf("first task = %+v", first)
	}
	if first.EstimatedDuration != 30 {
		t.Errorf("EstimatedDuration = %d, want 30", first.EstimatedDuration)
	}
	if first.LocationLat != 22.3364 || first.LocationLng != 114.2654 {
		t.Errorf("coordinates = (%v, %v)", first.LocationLat, first.LocationLng)
	}
	if snap.Tasks[1].CourseCode != "" {
		t.Errorf("T002 course code = %q, want empty", snap.Tasks[1].CourseCode)
	}

	if len(snap.NPCs) != 2 {
		t.Fatalf("got %d npcs, want 2", len(snap.NPCs))
	}
	if !snap.NPCs[0].Available || snap.NPCs[1].Available {
		t.Errorf("npc availability = %v, %v", snap.NPCs[0].Available, snap.NPCs[1].Available)
	}

	if len(snap.Knowledge) != 2 {
		t.Fatalf("got %d knowledge records, want 2", len(snap.Knowledge))
	}
	if snap.Knowledge[0].KBID != "KB0001" {
		t.Errorf("first kb_id = %q, want KB0001", snap.Knowledge[0].KBID)
	}
	// Records without an explicit kb_id get a positional one.
	if snap.Knowledge[1].KBID != "KB0002" {
		t.Errorf("generated kb_id = %q, want KB0002", snap.Knowledge[1].KBID)
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	cfg := writeDataDir(t, map[string]string{
		"tasks.csv": `task_id,title,description,estimated_duration,location_lat
T001,图书馆打卡,在图书馆完成学习任务,notanumber,alsobad
,无编号任务,should be skipped,10,22.0
T003,实验室预约,预约化学实验室设备,20,22.33
`,
		"npcs.jsonl": `{"npc_id":"NPC01","name":"陈老师"}
{not valid json
{"npc_id":"NPC02","name":"王师傅"}
`,
		"task_kb.jsonl": `{"task_id":"T001","content":"ok"}
garbage line
`,
	})

	snap, err := NewLoader(cfg, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Row without task_id is dropped, bad numerics degrade to zero.
	if len(snap.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2: %+v", len(snap.Tasks), snap.Tasks)
	}
	if snap.Tasks[0].EstimatedDuration != 0 || snap.Tasks[0].LocationLat != 0 {
		t.Errorf("bad numeric fields not zeroed: %+v", snap.Tasks[0])
	}
	if snap.Tasks[1].TaskID != "T003" {
		t.Errorf("second task = %q, want T003", snap.Tasks[1].TaskID)
	}

	if len(snap.NPCs) != 2 {
		t.Errorf("got %d npcs, want 2", len(snap.NPCs))
	}
	if len(snap.Knowledge) != 1 {
		t.Errorf("got %d knowledge records, want 1", len(snap.Knowledge))
	}
}

// TestLoadMissingOptionalFiles verifies absent NPC and knowledge files load
// as empty sets while a missing tasks file is fatal.
func TestLoadMissingOptionalFiles(t *testing.T) {
	cfg := writeDataDir(t, map[string]string{"tasks.csv": tasksCSV})

	snap, err := NewLoader(cfg, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Tasks) != 2 {
		t.Errorf("got %d tasks, want 2", len(snap.Tasks))
	}
	if len(snap.NPCs) != 0 || len(snap.Knowledge) != 0 {
		t.Errorf("missing files should yield empty sets: npcs=%d kb=%d",
			len(snap.NPCs), len(snap.Knowledge))
	}

	empty := writeDataDir(t, nil)
	if _, err := NewLoader(empty, nil).Load(context.Background()); err == nil {
		t.Error("expected error for missing tasks file")
	}
}

func TestLoadEmptyTasksFile(t *testing.T) {
	cfg := writeDataDir(t, map[string]string{"tasks.csv": ""})

	snap, err := NewLoader(cfg, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Tasks) != 0 {
		t.Errorf("got %d tasks, want 0", len(snap.Tasks))
	}
}

// fakeTaskSource lets tests inject tasks without touching the filesystem.
type fakeTaskSource struct {
	tasks []Task
	err   error
}

func (f fakeTaskSource) LoadTasks(ctx context.Context) ([]Task, error) {
	return f.tasks, f.err
}

func TestLoadCustomTaskSource(t *testing.T) {
	cfg := writeDataDir(t, nil)
	src := fakeTaskSource{tasks: []Task{{TaskID: "T900", Title: "外部任务"}}}

	snap, err := NewLoader(cfg, src).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].TaskID != "T900" {
		t.Errorf("tasks = %+v, want single T900", snap.Tasks)
	}
}
