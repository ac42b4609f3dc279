package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/integrations/custodian"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// maxImportSize bounds custodian position uploads
const maxImportSize = 10 << 20

type balanceRequest struct {
	EntityType models.EntityType `json:"entityType"`
	EntityID   string            `json:"entityId"`
	AsOf       string            `json:"asOf"`
	Amount     *decimal.Decimal  `json:"amount"`
	Source     string            `json:"source"`
}

// RecordBalance stores a billable balance
func (h *Handler) RecordBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	asOf, err := parseDate("asOf", req.AsOf)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Amount == nil {
		h.writeError(w, r, apperr.Validation("amount", "is required"))
		return
	}

	rec, err := h.svc.RecordBalance(r.Context(), &models.BalanceRecord{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		AsOf:       asOf,
		Amount:     *req.Amount,
		Source:     req.Source,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// ListBalances returns an entity's balance history
func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	balances, err := h.svc.ListBalances(r.Context(), models.EntityType(vars["entityType"]), vars["entityId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if balances == nil {
		balances = []*models.BalanceRecord{}
	}
	writeJSON(w, http.StatusOK, balances)
}

type billingRunRequest struct {
	AsOf string `json:"asOf"`
}

// RunBilling invoices all schedules for the period containing asOf (default today)
func (h *Handler) RunBilling(w http.ResponseWriter, r *http.Request) {
	var req billingRunRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	asOf := time.Now().UTC()
	if req.AsOf != "" {
		var err error
		if asOf, err = parseDate("asOf", req.AsOf); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	summary, err := h.svc.RunBilling(r.Context(), asOf)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type invoiceResponse struct {
	*models.Invoice
	Verified bool `json:"verified"`
}

// ListInvoices returns a schedule's invoices with their signature status
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.ListInvoices(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoiceResponse{Invoice: inv, Verified: h.svc.VerifyInvoice(inv)})
	}
	writeJSON(w, http.StatusOK, out)
}

// RevealAccountNumber returns the decrypted custodian account number of a balance
func (h *Handler) RevealAccountNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.svc.RevealAccountNumber(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accountNumber": number})
}

// ImportCustodianPositions records balances from an uploaded XML position file
func (h *Handler) ImportCustodianPositions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("position file exceeds %d bytes", tooLarge.Limit),
				Field: "body",
			})
			return
		}
		h.writeError(w, r, apperr.Validation("body", "failed to read body"))
		return
	}
	st, err := custodian.ParsePositions(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	records, err := h.svc.ImportStatement(r.Context(), st)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, records)
}
