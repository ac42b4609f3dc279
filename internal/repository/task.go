package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/google/uuid"
)

// insertTask stores a new open task
func insertTask(ctx context.Context, q queryer, t *models.Task) error {
	t.ID = uuid.NewString()
	t.CreatedAt = now()
	if t.Status == "" {
		t.Status = models.TaskOpen
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO tasks (id, meeting_id, title, assignee, due_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.MeetingID, t.Title, t.Assignee, nullableTime(t.DueDate), t.Status, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// ListTasksByMeeting returns the tasks created from a meeting
func (r *Repository) ListTasksByMeeting(ctx context.Context, meetingID string) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, meeting_id, title, assignee, due_date, status, created_at
		FROM tasks
		WHERE meeting_id = $1
		ORDER BY created_at, id`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t := &models.Task{}
		var due sql.NullTime
		if err := rows.Scan(&t.ID, &t.MeetingID, &t.Title, &t.Assignee, &due, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.DueDate = timePtr(due)
		t.CreatedAt = t.CreatedAt.UTC()
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
