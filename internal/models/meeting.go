package models

import "time"

// ExternalAttendee is a meeting participant outside the advisory team
type ExternalAttendee struct {
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Decision is an outcome agreed during a meeting
type Decision struct {
	Description string `json:"description"`
	DecidedBy   string `json:"decidedBy,omitempty"`
}

// ActionItem is a follow-up captured in meeting notes. TaskID is set once it
// has been converted to a task.
type ActionItem struct {
	Description string     `json:"description"`
	Assignee    string     `json:"assignee,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	TaskID      string     `json:"taskId,omitempty"`
}

// Meeting represents a client meeting and its notes
type Meeting struct {
	ID                string             `json:"id"`
	HouseholdID       string             `json:"householdId"`
	Title             string             `json:"title"`
	Notes             string             `json:"notes"`
	ScheduledAt       time.Time          `json:"scheduledAt"`
	ExternalAttendees []ExternalAttendee `json:"externalAttendees"`
	DecisionsMade     []Decision         `json:"decisionsMade"`
	ActionItems       []ActionItem       `json:"actionItems"`
	Summary           *MeetingSummary    `json:"summary,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// MeetingSummary is the generated digest of meeting notes
type MeetingSummary struct {
	Text        string    `json:"text"`
	Topics      []string  `json:"topics"`
	Generator   string    `json:"generator"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// TaskOpen is the status of a newly created task
const TaskOpen = "open"

// Task is a unit of follow-up work for the advisory team
type Task struct {
	ID        string     `json:"id"`
	MeetingID string     `json:"meetingId,omitempty"`
	Title     string     `json:"title"`
	Assignee  string     `json:"assignee,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}
