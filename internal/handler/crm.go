package handler

import (
	"net/http"
	"time"

	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/gorilla/mux"
)

// CreateEmailTemplate stores a new email template
func (h *Handler) CreateEmailTemplate(w http.ResponseWriter, r *http.Request) {
	var t models.EmailTemplate
	if err := decodeJSON(r, &t); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateEmailTemplate(r.Context(), &t)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListEmailTemplates returns all templates
func (h *Handler) ListEmailTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.ListEmailTemplates(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if templates == nil {
		templates = []*models.EmailTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

// GetEmailTemplate returns one template
func (h *Handler) GetEmailTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetEmailTemplate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type previewEmailRequest struct {
	To        string         `json:"to"`
	Variables map[string]any `json:"variables"`
}

// PreviewEmailTemplate renders a template as a message/rfc822 document
func (h *Handler) PreviewEmailTemplate(w http.ResponseWriter, r *http.Request) {
	var req previewEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	raw, err := h.svc.PreviewEmailTemplate(r.Context(), mux.Vars(r)["id"], req.To, req.Variables)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "message/rfc822")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

type meetingRequest struct {
	HouseholdID       string                    `json:"householdId"`
	Title             string                    `json:"title"`
	Notes             string                    `json:"notes"`
	ScheduledAt       time.Time                 `json:"scheduledAt"`
	ExternalAttendees []models.ExternalAttendee `json:"externalAttendees"`
	DecisionsMade     []models.Decision         `json:"decisionsMade"`
	ActionItems       []models.ActionItem       `json:"actionItems"`
}

// CreateMeeting stores a meeting and its notes
func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.svc.CreateMeeting(r.Context(), &models.Meeting{
		HouseholdID:       req.HouseholdID,
		Title:             req.Title,
		Notes:             req.Notes,
		ScheduledAt:       req.ScheduledAt,
		ExternalAttendees: req.ExternalAttendees,
		DecisionsMade:     req.DecisionsMade,
		ActionItems:       req.ActionItems,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMeeting returns one meeting
func (h *Handler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetMeeting(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// GenerateMeetingSummary summarizes a meeting's notes
func (h *Handler) GenerateMeetingSummary(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GenerateSummary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ConvertActionItems turns a meeting's open action items into tasks
func (h *Handler) ConvertActionItems(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ConvertActionItemsToTasks(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tasks)
}

// ListMeetingTasks returns tasks created from a meeting
func (h *Handler) ListMeetingTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListMeetingTasks(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}
