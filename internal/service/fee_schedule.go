package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/fees"
	"github.com/Dan9191/advisor-crm/internal/metrics"
	"github.com/Dan9191/advisor-crm/internal/middleware"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/shopspring/decimal"
)

// CreateFeeSchedule validates and stores a schedule. An entity may have only
// one schedule; a second one is rejected with a ConflictError.
func (s *Service) CreateFeeSchedule(ctx context.Context, schedule *models.FeeSchedule) (*models.FeeSchedule, error) {
	if err := fees.ValidateSchedule(schedule); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindFeeScheduleByEntity(ctx, schedule.EntityType, schedule.EntityID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("fee schedule", fmt.Sprintf("%s/%s", schedule.EntityType, schedule.EntityID))
	}

	schedule.CreatedBy = middleware.UserID(ctx)
	if err := s.repo.CreateFeeSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	s.log.Infof("Fee schedule %s created for %s %s", schedule.ID, schedule.EntityType, schedule.EntityID)
	return schedule, nil
}

// GetFeeSchedule returns a schedule by ID
func (s *Service) GetFeeSchedule(ctx context.Context, id string) (*models.FeeSchedule, error) {
	return s.repo.FindFeeScheduleByID(ctx, id)
}

// GetFeeScheduleForEntity returns the schedule billing an entity
func (s *Service) GetFeeScheduleForEntity(ctx context.Context, entityType models.EntityType, entityID string) (*models.FeeSchedule, error) {
	if !entityType.Valid() {
		return nil, apperr.Validation("entityType", "unknown entity type %q", entityType)
	}
	return s.repo.FindFeeScheduleByEntity(ctx, entityType, entityID)
}

// ListFeeSchedules returns all schedules
func (s *Service) ListFeeSchedules(ctx context.Context) ([]*models.FeeSchedule, error) {
	return s.repo.ListFeeSchedules(ctx)
}

// UpdateFeeSchedule replaces a schedule's terms and tiers
func (s *Service) UpdateFeeSchedule(ctx context.Context, id string, schedule *models.FeeSchedule) (*models.FeeSchedule, error) {
	if err := fees.ValidateSchedule(schedule); err != nil {
		return nil, err
	}

	current, err := s.repo.FindFeeScheduleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.EntityType != schedule.EntityType || current.EntityID != schedule.EntityID {
		other, err := s.repo.FindFeeScheduleByEntity(ctx, schedule.EntityType, schedule.EntityID)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		if other != nil {
			return nil, apperr.Conflict("fee schedule", fmt.Sprintf("%s/%s", schedule.EntityType, schedule.EntityID))
		}
	}

	schedule.ID = id
	schedule.CreatedBy = current.CreatedBy
	schedule.CreatedAt = current.CreatedAt
	if err := s.repo.UpdateFeeSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	s.log.Infof("Fee schedule %s updated", id)
	return schedule, nil
}

// DeleteFeeSchedule removes a schedule and its tiers
func (s *Service) DeleteFeeSchedule(ctx context.Context, id string) error {
	if err := s.repo.DeleteFeeSchedule(ctx, id); err != nil {
		return err
	}
	s.log.Infof("Fee schedule %s deleted", id)
	return nil
}

// CalculateFee computes the fee a stored schedule charges on billableAmount
func (s *Service) CalculateFee(ctx context.Context, scheduleID string, billableAmount decimal.Decimal) (*models.FeeCalculationResult, error) {
	schedule, err := s.repo.FindFeeScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	res, err := fees.Calculate(schedule, billableAmount)
	metrics.FeeCalculationsTotal.WithLabelValues(string(schedule.FeeType), metrics.Status(err)).Inc()
	return res, err
}

// PreviewFee validates an unsaved schedule and computes its fee, so tier
// editors can show the result before saving.
func (s *Service) PreviewFee(schedule *models.FeeSchedule, billableAmount decimal.Decimal) (*models.FeeCalculationResult, error) {
	if !schedule.FeeType.Valid() {
		return nil, apperr.Validation("feeType", "unknown fee type %q", schedule.FeeType)
	}
	if err := fees.ValidateTiers(schedule.FeeType, schedule.Tiers); err != nil {
		return nil, err
	}
	res, err := fees.Calculate(schedule, billableAmount)
	metrics.FeeCalculationsTotal.WithLabelValues(string(schedule.FeeType), metrics.Status(err)).Inc()
	return res, err
}
