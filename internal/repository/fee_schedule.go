package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const scheduleColumns = `id, entity_type, entity_id, name, fee_type, frequency, billing_method,
	minimum_fee, maximum_fee, effective_date, created_by, created_at, updated_at`

func entityKey(t models.EntityType, id string) string {
	return fmt.Sprintf("%s/%s", t, id)
}

// CreateFeeSchedule stores a schedule and its tiers in one transaction
func (r *Repository) CreateFeeSchedule(ctx context.Context, s *models.FeeSchedule) error {
	s.ID = uuid.NewString()
	s.CreatedAt = now()
	s.UpdatedAt = s.CreatedAt

	err := r.withTx(ctx, func(q queryer) error {
		query := `
			INSERT INTO fee_schedules (` + scheduleColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
		_, err := q.ExecContext(ctx, query,
			s.ID, s.EntityType, s.EntityID, s.Name, s.FeeType, s.Frequency, s.BillingMethod,
			nullableDecimal(s.MinimumFee), nullableDecimal(s.MaximumFee), s.EffectiveDate.UTC(),
			s.CreatedBy, s.CreatedAt, s.UpdatedAt)
		if err != nil {
			return err
		}
		return insertTiers(ctx, q, s.ID, s.Tiers)
	})
	if isUniqueViolation(err) {
		return apperr.Conflict("fee schedule", entityKey(s.EntityType, s.EntityID))
	}
	if err != nil {
		return fmt.Errorf("failed to create fee schedule: %w", err)
	}
	return nil
}

// UpdateFeeSchedule replaces a schedule's fields and tiers
func (r *Repository) UpdateFeeSchedule(ctx context.Context, s *models.FeeSchedule) error {
	s.UpdatedAt = now()

	err := r.withTx(ctx, func(q queryer) error {
		query := `
			UPDATE fee_schedules
			SET entity_type = $2, entity_id = $3, name = $4, fee_type = $5, frequency = $6,
				billing_method = $7, minimum_fee = $8, maximum_fee = $9, effective_date = $10, updated_at = $11
			WHERE id = $1`
		res, err := q.ExecContext(ctx, query,
			s.ID, s.EntityType, s.EntityID, s.Name, s.FeeType, s.Frequency, s.BillingMethod,
			nullableDecimal(s.MinimumFee), nullableDecimal(s.MaximumFee), s.EffectiveDate.UTC(), s.UpdatedAt)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperr.NotFound("fee schedule", s.ID)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM fee_tiers WHERE schedule_id = $1`, s.ID); err != nil {
			return err
		}
		return insertTiers(ctx, q, s.ID, s.Tiers)
	})
	switch {
	case isUniqueViolation(err):
		return apperr.Conflict("fee schedule", entityKey(s.EntityType, s.EntityID))
	case apperr.IsNotFound(err):
		return err
	case err != nil:
		return fmt.Errorf("failed to update fee schedule: %w", err)
	}
	return nil
}

// DeleteFeeSchedule removes a schedule and its tiers
func (r *Repository) DeleteFeeSchedule(ctx context.Context, id string) error {
	err := r.withTx(ctx, func(q queryer) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM fee_tiers WHERE schedule_id = $1`, id); err != nil {
			return err
		}
		res, err := q.ExecContext(ctx, `DELETE FROM fee_schedules WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperr.NotFound("fee schedule", id)
		}
		return nil
	})
	if err != nil && !apperr.IsNotFound(err) {
		return fmt.Errorf("failed to delete fee schedule: %w", err)
	}
	return err
}

// FindFeeScheduleByID retrieves a schedule with its tiers
func (r *Repository) FindFeeScheduleByID(ctx context.Context, id string) (*models.FeeSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM fee_schedules WHERE id = $1`
	s, err := r.scanSchedule(ctx, r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("fee schedule", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fee schedule: %w", err)
	}
	return s, nil
}

// FindFeeScheduleByEntity retrieves the schedule billing an entity
func (r *Repository) FindFeeScheduleByEntity(ctx context.Context, entityType models.EntityType, entityID string) (*models.FeeSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM fee_schedules WHERE entity_type = $1 AND entity_id = $2`
	s, err := r.scanSchedule(ctx, r.db.QueryRowContext(ctx, query, entityType, entityID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("fee schedule", entityKey(entityType, entityID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fee schedule: %w", err)
	}
	return s, nil
}

// ListFeeSchedules returns all schedules ordered by creation time
func (r *Repository) ListFeeSchedules(ctx context.Context) ([]*models.FeeSchedule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+scheduleColumns+` FROM fee_schedules ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list fee schedules: %w", err)
	}

	var schedules []*models.FeeSchedule
	for rows.Next() {
		s, err := scanScheduleRow(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan fee schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to list fee schedules: %w", err)
	}
	// Close before loading tiers so a single-connection pool is free again
	rows.Close()

	for _, s := range schedules {
		if s.Tiers, err = r.loadTiers(ctx, s.ID); err != nil {
			return nil, err
		}
	}
	return schedules, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduleRow(row rowScanner) (*models.FeeSchedule, error) {
	s := &models.FeeSchedule{}
	var minFee, maxFee decimal.NullDecimal
	err := row.Scan(&s.ID, &s.EntityType, &s.EntityID, &s.Name, &s.FeeType, &s.Frequency, &s.BillingMethod,
		&minFee, &maxFee, &s.EffectiveDate, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.MinimumFee = decimalPtr(minFee)
	s.MaximumFee = decimalPtr(maxFee)
	s.EffectiveDate = s.EffectiveDate.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func (r *Repository) scanSchedule(ctx context.Context, row *sql.Row) (*models.FeeSchedule, error) {
	s, err := scanScheduleRow(row)
	if err != nil {
		return nil, err
	}
	if s.Tiers, err = r.loadTiers(ctx, s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) loadTiers(ctx context.Context, scheduleID string) ([]models.FeeTier, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT min_value, max_value, rate
		FROM fee_tiers
		WHERE schedule_id = $1
		ORDER BY position`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee tiers: %w", err)
	}
	defer rows.Close()

	var tiers []models.FeeTier
	for rows.Next() {
		var t models.FeeTier
		var max decimal.NullDecimal
		if err := rows.Scan(&t.MinValue, &max, &t.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan fee tier: %w", err)
		}
		t.MaxValue = decimalPtr(max)
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

func insertTiers(ctx context.Context, q queryer, scheduleID string, tiers []models.FeeTier) error {
	for i, t := range tiers {
		_, err := q.ExecContext(ctx, `
			INSERT INTO fee_tiers (schedule_id, position, min_value, max_value, rate)
			VALUES ($1, $2, $3, $4, $5)`,
			scheduleID, i, t.MinValue, nullableDecimal(t.MaxValue), t.Rate)
		if err != nil {
			return err
		}
	}
	return nil
}
