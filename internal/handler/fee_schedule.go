package handler

import (
	"net/http"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type scheduleRequest struct {
	EntityType    models.EntityType    `json:"entityType"`
	EntityID      string               `json:"entityId"`
	Name          string               `json:"name"`
	FeeType       models.FeeType       `json:"feeType"`
	Frequency     models.Frequency     `json:"frequency"`
	BillingMethod models.BillingMethod `json:"billingMethod"`
	Tiers         []models.FeeTier     `json:"tiers"`
	MinimumFee    *decimal.Decimal     `json:"minimumFee"`
	MaximumFee    *decimal.Decimal     `json:"maximumFee"`
	EffectiveDate string               `json:"effectiveDate"`
}

func (req *scheduleRequest) toModel() (*models.FeeSchedule, error) {
	effective, err := parseDate("effectiveDate", req.EffectiveDate)
	if err != nil {
		return nil, err
	}
	return &models.FeeSchedule{
		EntityType:    req.EntityType,
		EntityID:      req.EntityID,
		Name:          req.Name,
		FeeType:       req.FeeType,
		Frequency:     req.Frequency,
		BillingMethod: req.BillingMethod,
		Tiers:         req.Tiers,
		MinimumFee:    req.MinimumFee,
		MaximumFee:    req.MaximumFee,
		EffectiveDate: effective,
	}, nil
}

func decodeSchedule(r *http.Request) (*models.FeeSchedule, error) {
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req.toModel()
}

// CreateFeeSchedule handles fee schedule creation
func (h *Handler) CreateFeeSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := decodeSchedule(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.svc.CreateFeeSchedule(r.Context(), schedule)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListFeeSchedules returns every fee schedule
func (h *Handler) ListFeeSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.svc.ListFeeSchedules(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if schedules == nil {
		schedules = []*models.FeeSchedule{}
	}
	writeJSON(w, http.StatusOK, schedules)
}

// GetFeeSchedule returns one fee schedule
func (h *Handler) GetFeeSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.svc.GetFeeSchedule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// GetEntityFeeSchedule returns the schedule billing a household, account or person
func (h *Handler) GetEntityFeeSchedule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	schedule, err := h.svc.GetFeeScheduleForEntity(r.Context(), models.EntityType(vars["entityType"]), vars["entityId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// UpdateFeeSchedule replaces a schedule's terms and tiers
func (h *Handler) UpdateFeeSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := decodeSchedule(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	updated, err := h.svc.UpdateFeeSchedule(r.Context(), mux.Vars(r)["id"], schedule)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteFeeSchedule removes a schedule
func (h *Handler) DeleteFeeSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteFeeSchedule(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type calculationRequest struct {
	FeeScheduleID  string           `json:"feeScheduleId"`
	BillableAmount *decimal.Decimal `json:"billableAmount"`
}

// CalculateFee computes the fee for a stored schedule
func (h *Handler) CalculateFee(w http.ResponseWriter, r *http.Request) {
	var req calculationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.FeeScheduleID == "" {
		h.writeError(w, r, apperr.Validation("feeScheduleId", "is required"))
		return
	}
	if req.BillableAmount == nil {
		h.writeError(w, r, apperr.Validation("billableAmount", "is required"))
		return
	}

	res, err := h.svc.CalculateFee(r.Context(), req.FeeScheduleID, *req.BillableAmount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type previewRequest struct {
	FeeType        models.FeeType   `json:"feeType"`
	Tiers          []models.FeeTier `json:"tiers"`
	MinimumFee     *decimal.Decimal `json:"minimumFee"`
	MaximumFee     *decimal.Decimal `json:"maximumFee"`
	BillableAmount *decimal.Decimal `json:"billableAmount"`
}

// PreviewFee computes a fee for unsaved tiers
func (h *Handler) PreviewFee(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.BillableAmount == nil {
		h.writeError(w, r, apperr.Validation("billableAmount", "is required"))
		return
	}

	res, err := h.svc.PreviewFee(&models.FeeSchedule{
		FeeType:    req.FeeType,
		Tiers:      req.Tiers,
		MinimumFee: req.MinimumFee,
		MaximumFee: req.MaximumFee,
	}, *req.BillableAmount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
