package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cityu-campus/tasks-api/pkg/postgres"
)

// PostgresTaskSource loads task records from the tasks table.
type PostgresTaskSource struct {
	client *postgres.Client
	logger *slog.Logger
}

// NewPostgresTaskSource wraps a connected postgres client.
func NewPostgresTaskSource(client *postgres.Client) *PostgresTaskSource {
	return &PostgresTaskSource{
		client: client,
		logger: slog.Default().With("component", "postgres-task-source"),
	}
}

const tasksQuery = `
SELECT task_id, title, description, category, difficulty, status,
       COALESCE(course_code, ''), COALESCE(estimated_duration, 0),
       COALESCE(location_name, ''), COALESCE(location_lat, 0),
       COALESCE(location_lng, 0), COALESCE(npc_id, '')
FROM tasks
ORDER BY task_id`

// LoadTasks reads every task row ordered by task_id so rebuilds are
// deterministic.
func (s *PostgresTaskSource) LoadTasks(ctx context.Context) ([]Task, error) {
	rows, err := s.client.DB.QueryContext(ctx, tasksQuery)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0, 64)
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.TaskID, &t.Title, &t.Description, &t.Category, &t.Difficulty,
			&t.Status, &t.CourseCode, &t.EstimatedDuration, &t.LocationName,
			&t.LocationLat, &t.LocationLng, &t.NPCID,
		); err != nil {
			s.logger.Warn("skipping unscannable task row", "error", err)
			continue
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}
