package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/fees"
	"github.com/Dan9191/advisor-crm/internal/metrics"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/Dan9191/advisor-crm/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordBalance stores a billable balance for an entity
func (s *Service) RecordBalance(ctx context.Context, b *models.BalanceRecord) (*models.BalanceRecord, error) {
	if err := prepareBalance(b); err != nil {
		return nil, err
	}
	if err := s.repo.CreateBalance(ctx, b); err != nil {
		return nil, err
	}
	s.log.Infof("Balance %s recorded for %s %s as of %s", b.Amount.StringFixed(2), b.EntityType, b.EntityID, b.AsOf.Format("2006-01-02"))
	return b, nil
}

// prepareBalance validates a balance and normalizes its date and source
func prepareBalance(b *models.BalanceRecord) error {
	if !b.EntityType.Valid() {
		return apperr.Validation("entityType", "unknown entity type %q", b.EntityType)
	}
	if b.EntityID == "" {
		return apperr.Validation("entityId", "is required")
	}
	if b.AsOf.IsZero() {
		return apperr.Validation("asOf", "is required")
	}
	if b.Amount.IsNegative() {
		return apperr.Validation("amount", "must not be negative")
	}
	if b.Source == "" {
		b.Source = "manual"
	}
	b.AsOf = truncateDay(b.AsOf)
	return nil
}

// ListBalances returns an entity's balance history
func (s *Service) ListBalances(ctx context.Context, entityType models.EntityType, entityID string) ([]*models.BalanceRecord, error) {
	return s.repo.ListBalances(ctx, entityType, entityID)
}

// RunBilling invoices every effective schedule for one period. Advance
// schedules bill the period containing asOf, valued at its start; arrears
// schedules bill the previous period, valued at its end. Periods already
// invoiced are skipped, so reruns are safe.
func (s *Service) RunBilling(ctx context.Context, asOf time.Time) (*models.BillingRunSummary, error) {
	asOf = truncateDay(asOf)
	summary := &models.BillingRunSummary{AsOf: asOf, Invoiced: []models.Invoice{}, Skipped: []models.BillingSkipped{}}

	schedules, err := s.repo.ListFeeSchedules(ctx)
	if err != nil {
		metrics.BillingRunsTotal.WithLabelValues(metrics.Status(err)).Inc()
		return nil, err
	}

	for _, schedule := range schedules {
		inv, reason, err := s.billSchedule(ctx, schedule, asOf)
		if err != nil {
			metrics.BillingRunsTotal.WithLabelValues(metrics.Status(err)).Inc()
			return nil, fmt.Errorf("billing schedule %s: %w", schedule.ID, err)
		}
		if inv == nil {
			summary.Skipped = append(summary.Skipped, models.BillingSkipped{ScheduleID: schedule.ID, Reason: reason})
			continue
		}
		summary.Invoiced = append(summary.Invoiced, *inv)
	}

	metrics.BillingRunsTotal.WithLabelValues("ok").Inc()
	s.log.Infof("Billing run as of %s: %d invoiced, %d skipped",
		asOf.Format("2006-01-02"), len(summary.Invoiced), len(summary.Skipped))
	return summary, nil
}

func (s *Service) billSchedule(ctx context.Context, schedule *models.FeeSchedule, asOf time.Time) (*models.Invoice, string, error) {
	var start, end, valuation time.Time
	if schedule.BillingMethod == models.BillingArrears {
		start, end = fees.PreviousPeriod(schedule.Frequency, asOf)
		valuation = end
	} else {
		start, end = fees.Period(schedule.Frequency, asOf)
		valuation = start
	}
	if schedule.EffectiveDate.After(end) {
		return nil, "not yet effective", nil
	}

	exists, err := s.repo.InvoiceExists(ctx, schedule.ID, start)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "already invoiced", nil
	}

	amount := decimal.Zero
	bal, err := s.repo.LatestBalance(ctx, schedule.EntityType, schedule.EntityID, valuation)
	switch {
	case err == nil:
		amount = bal.Amount
	case apperr.IsNotFound(err):
		if schedule.FeeType.IsPercentage() {
			return nil, "no balance", nil
		}
	default:
		return nil, "", err
	}

	res, err := fees.Calculate(schedule, amount)
	metrics.FeeCalculationsTotal.WithLabelValues(string(schedule.FeeType), metrics.Status(err)).Inc()
	if err != nil {
		return nil, err.Error(), nil
	}

	inv := &models.Invoice{
		ID:             uuid.NewString(),
		ScheduleID:     schedule.ID,
		EntityType:     schedule.EntityType,
		EntityID:       schedule.EntityID,
		PeriodStart:    start,
		PeriodEnd:      end,
		BillableAmount: amount,
		AnnualFee:      res.TotalFee,
		Amount:         fees.PeriodFee(schedule.FeeType, schedule.Frequency, res.TotalFee),
		EffectiveRate:  res.EffectiveRate,
		BillingMethod:  schedule.BillingMethod,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	inv.HMAC = utils.GenerateHMAC(s.config.HMACSecret, invoiceFields(inv)...)

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		if apperr.IsConflict(err) {
			return nil, "already invoiced", nil
		}
		return nil, "", err
	}

	f, _ := inv.Amount.Float64()
	metrics.BilledAmount.WithLabelValues(string(schedule.FeeType)).Observe(f)
	s.log.Infof("Invoice %s: %s for schedule %s, period %s to %s", inv.ID, inv.Amount.StringFixed(2),
		schedule.ID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	return inv, "", nil
}

// ListInvoices returns the invoices issued for a schedule
func (s *Service) ListInvoices(ctx context.Context, scheduleID string) ([]*models.Invoice, error) {
	return s.repo.ListInvoices(ctx, scheduleID)
}

// VerifyInvoice checks that an invoice's amounts match its signature
func (s *Service) VerifyInvoice(inv *models.Invoice) bool {
	return utils.VerifyHMAC(inv.HMAC, s.config.HMACSecret, invoiceFields(inv)...)
}

func invoiceFields(inv *models.Invoice) []string {
	return []string{
		inv.ID,
		inv.ScheduleID,
		inv.PeriodStart.Format("2006-01-02"),
		inv.PeriodEnd.Format("2006-01-02"),
		inv.BillableAmount.StringFixed(2),
		inv.Amount.StringFixed(2),
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
