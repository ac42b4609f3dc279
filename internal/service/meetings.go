package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
)

// CreateMeeting stores a meeting with its notes
func (s *Service) CreateMeeting(ctx context.Context, m *models.Meeting) (*models.Meeting, error) {
	if m.HouseholdID == "" {
		return nil, apperr.Validation("householdId", "is required")
	}
	if m.Title == "" {
		return nil, apperr.Validation("title", "is required")
	}
	if m.ScheduledAt.IsZero() {
		return nil, apperr.Validation("scheduledAt", "is required")
	}
	for i, a := range m.ExternalAttendees {
		if a.Name == "" {
			return nil, apperr.Validation(fmt.Sprintf("externalAttendees[%d].name", i), "is required")
		}
	}
	for i, d := range m.DecisionsMade {
		if d.Description == "" {
			return nil, apperr.Validation(fmt.Sprintf("decisionsMade[%d].description", i), "is required")
		}
	}
	for i, a := range m.ActionItems {
		if a.Description == "" {
			return nil, apperr.Validation(fmt.Sprintf("actionItems[%d].description", i), "is required")
		}
		m.ActionItems[i].TaskID = ""
	}
	m.Summary = nil

	if err := s.repo.CreateMeeting(ctx, m); err != nil {
		return nil, err
	}
	s.log.Infof("Meeting %s created for household %s", m.ID, m.HouseholdID)
	return m, nil
}

// GetMeeting returns a meeting by ID
func (s *Service) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	return s.repo.FindMeetingByID(ctx, id)
}

// GenerateSummary runs the summary generator over a meeting's notes and saves the result
func (s *Service) GenerateSummary(ctx context.Context, id string) (*models.Meeting, error) {
	m, err := s.repo.FindMeetingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := s.summarizer.Generate(ctx, m.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}
	m.Summary = &models.MeetingSummary{
		Text:        out.Text,
		Topics:      out.Topics,
		Generator:   s.summarizer.Name(),
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}

	if err := s.repo.UpdateMeeting(ctx, m); err != nil {
		return nil, err
	}
	s.log.Infof("Summary generated for meeting %s using %s", m.ID, s.summarizer.Name())
	return m, nil
}

// ConvertActionItemsToTasks creates a task for each action item that does not
// have one yet and links it back to the item. The tasks and the links are
// stored together, so repeated calls create nothing new.
func (s *Service) ConvertActionItemsToTasks(ctx context.Context, id string) ([]*models.Task, error) {
	m, err := s.repo.FindMeetingByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pending := map[int]*models.Task{}
	for i, item := range m.ActionItems {
		if item.TaskID != "" {
			continue
		}
		pending[i] = &models.Task{
			Title:    item.Description,
			Assignee: item.Assignee,
			DueDate:  item.DueDate,
		}
	}
	if len(pending) == 0 {
		return []*models.Task{}, nil
	}

	if err := s.repo.CreateActionItemTasks(ctx, m, pending); err != nil {
		return nil, err
	}

	created := make([]*models.Task, 0, len(pending))
	for i := range m.ActionItems {
		if t, ok := pending[i]; ok {
			created = append(created, t)
		}
	}
	s.log.Infof("Created %d tasks from meeting %s", len(created), m.ID)
	return created, nil
}

// ListMeetingTasks returns the tasks created from a meeting
func (s *Service) ListMeetingTasks(ctx context.Context, id string) ([]*models.Task, error) {
	if _, err := s.repo.FindMeetingByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListTasksByMeeting(ctx, id)
}
