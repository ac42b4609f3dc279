package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/google/uuid"
)

const meetingColumns = `id, household_id, title, notes, scheduled_at, external_attendees,
	decisions_made, action_items, summary, created_at, updated_at`

// meetingRow holds the JSON-encoded list columns of a meeting
type meetingRow struct {
	attendees, decisions, actionItems, summary string
}

func encodeMeeting(m *models.Meeting) (meetingRow, error) {
	var row meetingRow
	for _, f := range []struct {
		dst *string
		v   any
	}{
		{&row.attendees, nonNil(m.ExternalAttendees)},
		{&row.decisions, nonNil(m.DecisionsMade)},
		{&row.actionItems, nonNil(m.ActionItems)},
	} {
		b, err := json.Marshal(f.v)
		if err != nil {
			return row, err
		}
		*f.dst = string(b)
	}
	if m.Summary != nil {
		b, err := json.Marshal(m.Summary)
		if err != nil {
			return row, err
		}
		row.summary = string(b)
	}
	return row, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// CreateMeeting stores a meeting with its notes
func (r *Repository) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	m.ID = uuid.NewString()
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt
	row, err := encodeMeeting(m)
	if err != nil {
		return fmt.Errorf("failed to encode meeting: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meetings (`+meetingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, m.HouseholdID, m.Title, m.Notes, m.ScheduledAt.UTC(), row.attendees, row.decisions,
		row.actionItems, row.summary, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

// UpdateMeeting saves a meeting's action items and summary
func (r *Repository) UpdateMeeting(ctx context.Context, m *models.Meeting) error {
	return updateMeeting(ctx, r.db, m)
}

func updateMeeting(ctx context.Context, q queryer, m *models.Meeting) error {
	m.UpdatedAt = now()
	row, err := encodeMeeting(m)
	if err != nil {
		return fmt.Errorf("failed to encode meeting: %w", err)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE meetings
		SET action_items = $2, summary = $3, updated_at = $4
		WHERE id = $1`,
		m.ID, row.actionItems, row.summary, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("meeting", m.ID)
	}
	return nil
}

// CreateActionItemTasks stores a task for each given action item index and
// links it back to the item in the same transaction. On failure no task is
// stored and the meeting's task links are left as they were.
func (r *Repository) CreateActionItemTasks(ctx context.Context, m *models.Meeting, tasks map[int]*models.Task) error {
	indexes := make([]int, 0, len(tasks))
	for i := range tasks {
		if i < 0 || i >= len(m.ActionItems) {
			return fmt.Errorf("action item %d out of range", i)
		}
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	err := r.withTx(ctx, func(q queryer) error {
		for _, i := range indexes {
			t := tasks[i]
			t.MeetingID = m.ID
			if err := insertTask(ctx, q, t); err != nil {
				return err
			}
			m.ActionItems[i].TaskID = t.ID
		}
		return updateMeeting(ctx, q, m)
	})
	if err != nil {
		for _, i := range indexes {
			m.ActionItems[i].TaskID = ""
			tasks[i].ID = ""
		}
	}
	return err
}

// FindMeetingByID retrieves a meeting
func (r *Repository) FindMeetingByID(ctx context.Context, id string) (*models.Meeting, error) {
	m := &models.Meeting{}
	var row meetingRow
	err := r.db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id).
		Scan(&m.ID, &m.HouseholdID, &m.Title, &m.Notes, &m.ScheduledAt, &row.attendees,
			&row.decisions, &row.actionItems, &row.summary, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("meeting", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find meeting: %w", err)
	}

	if err := json.Unmarshal([]byte(row.attendees), &m.ExternalAttendees); err != nil {
		return nil, fmt.Errorf("failed to decode attendees: %w", err)
	}
	if err := json.Unmarshal([]byte(row.decisions), &m.DecisionsMade); err != nil {
		return nil, fmt.Errorf("failed to decode decisions: %w", err)
	}
	if err := json.Unmarshal([]byte(row.actionItems), &m.ActionItems); err != nil {
		return nil, fmt.Errorf("failed to decode action items: %w", err)
	}
	if row.summary != "" {
		m.Summary = &models.MeetingSummary{}
		if err := json.Unmarshal([]byte(row.summary), m.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary: %w", err)
		}
	}
	m.ScheduledAt = m.ScheduledAt.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m, nil
}
