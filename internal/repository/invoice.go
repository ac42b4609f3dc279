package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/google/uuid"
)

const invoiceColumns = `id, schedule_id, entity_type, entity_id, period_start, period_end, billable_amount,
	annual_fee, amount, effective_rate, billing_method, hmac, created_at`

// CreateInvoice stores an invoice. A second invoice for the same schedule and
// period start is a ConflictError.
func (r *Repository) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now()
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.ScheduleID, inv.EntityType, inv.EntityID, inv.PeriodStart.UTC(), inv.PeriodEnd.UTC(),
		inv.BillableAmount, inv.AnnualFee, inv.Amount, inv.EffectiveRate, inv.BillingMethod, inv.HMAC, inv.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("invoice", fmt.Sprintf("%s@%s", inv.ScheduleID, inv.PeriodStart.Format("2006-01-02")))
	}
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// InvoiceExists reports whether a schedule was already billed for a period
func (r *Repository) InvoiceExists(ctx context.Context, scheduleID string, periodStart time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices WHERE schedule_id = $1 AND period_start = $2`,
		scheduleID, periodStart.UTC()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check invoice: %w", err)
	}
	return n > 0, nil
}

// ListInvoices returns a schedule's invoices, oldest period first
func (r *Repository) ListInvoices(ctx context.Context, scheduleID string) ([]*models.Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE schedule_id = $1 ORDER BY period_start`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv := &models.Invoice{}
		err := rows.Scan(&inv.ID, &inv.ScheduleID, &inv.EntityType, &inv.EntityID, &inv.PeriodStart, &inv.PeriodEnd,
			&inv.BillableAmount, &inv.AnnualFee, &inv.Amount, &inv.EffectiveRate, &inv.BillingMethod, &inv.HMAC, &inv.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		inv.PeriodStart = inv.PeriodStart.UTC()
		inv.PeriodEnd = inv.PeriodEnd.UTC()
		inv.CreatedAt = inv.CreatedAt.UTC()
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
