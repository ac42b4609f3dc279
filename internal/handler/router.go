package handler

import (
	"net/http"

	"github.com/Dan9191/advisor-crm/internal/config"
	"github.com/Dan9191/advisor-crm/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route. Everything except health and metrics requires a bearer token.
func NewRouter(h *Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(h.log))

	// Public routes
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Protected routes
	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg))

	api.HandleFunc("/fee-schedules", h.CreateFeeSchedule).Methods(http.MethodPost)
	api.HandleFunc("/fee-schedules", h.ListFeeSchedules).Methods(http.MethodGet)
	api.HandleFunc("/fee-schedules/preview", h.PreviewFee).Methods(http.MethodPost)
	api.HandleFunc("/fee-schedules/{id}", h.GetFeeSchedule).Methods(http.MethodGet)
	api.HandleFunc("/fee-schedules/{id}", h.UpdateFeeSchedule).Methods(http.MethodPut)
	api.HandleFunc("/fee-schedules/{id}", h.DeleteFeeSchedule).Methods(http.MethodDelete)
	api.HandleFunc("/fee-schedules/{id}/invoices", h.ListInvoices).Methods(http.MethodGet)
	api.HandleFunc("/fee-calculations", h.CalculateFee).Methods(http.MethodPost)

	api.HandleFunc("/entities/{entityType}/{entityId}/fee-schedule", h.GetEntityFeeSchedule).Methods(http.MethodGet)
	api.HandleFunc("/entities/{entityType}/{entityId}/balances", h.ListBalances).Methods(http.MethodGet)
	api.HandleFunc("/balances", h.RecordBalance).Methods(http.MethodPost)
	api.HandleFunc("/balances/{id}/account-number", h.RevealAccountNumber).Methods(http.MethodGet)
	api.HandleFunc("/billing/runs", h.RunBilling).Methods(http.MethodPost)
	api.HandleFunc("/custodian/imports", h.ImportCustodianPositions).Methods(http.MethodPost)

	api.HandleFunc("/email-templates", h.CreateEmailTemplate).Methods(http.MethodPost)
	api.HandleFunc("/email-templates", h.ListEmailTemplates).Methods(http.MethodGet)
	api.HandleFunc("/email-templates/{id}", h.GetEmailTemplate).Methods(http.MethodGet)
	api.HandleFunc("/email-templates/{id}/preview", h.PreviewEmailTemplate).Methods(http.MethodPost)

	api.HandleFunc("/meetings", h.CreateMeeting).Methods(http.MethodPost)
	api.HandleFunc("/meetings/{id}", h.GetMeeting).Methods(http.MethodGet)
	api.HandleFunc("/meetings/{id}/summary", h.GenerateMeetingSummary).Methods(http.MethodPost)
	api.HandleFunc("/meetings/{id}/tasks", h.ConvertActionItems).Methods(http.MethodPost)
	api.HandleFunc("/meetings/{id}/tasks", h.ListMeetingTasks).Methods(http.MethodGet)

	return r
}
