package fees

import (
	"fmt"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
)

// ValidateSchedule checks a schedule before it is stored
func ValidateSchedule(s *models.FeeSchedule) error {
	if !s.EntityType.Valid() {
		return apperr.Validation("entityType", "unknown entity type %q", s.EntityType)
	}
	if s.EntityID == "" {
		return apperr.Validation("entityId", "is required")
	}
	if !s.FeeType.Valid() {
		return apperr.Validation("feeType", "unknown fee type %q", s.FeeType)
	}
	if !s.Frequency.Valid() {
		return apperr.Validation("frequency", "unknown frequency %q", s.Frequency)
	}
	if !s.BillingMethod.Valid() {
		return apperr.Validation("billingMethod", "unknown billing method %q", s.BillingMethod)
	}
	if s.EffectiveDate.IsZero() {
		return apperr.Validation("effectiveDate", "is required")
	}
	if err := ValidateTiers(s.FeeType, s.Tiers); err != nil {
		return err
	}
	if s.MinimumFee != nil && s.MinimumFee.IsNegative() {
		return apperr.Validation("minimumFee", "must not be negative")
	}
	if s.MaximumFee != nil && s.MaximumFee.IsNegative() {
		return apperr.Validation("maximumFee", "must not be negative")
	}
	if s.MinimumFee != nil && s.MaximumFee != nil && s.MinimumFee.GreaterThan(*s.MaximumFee) {
		return apperr.Validation("minimumFee", "must not exceed maximumFee")
	}
	return nil
}

// ValidateTiers checks that tiers form an ascending, contiguous partition of
// [first minValue, ∞). Percentage schedules must start at zero.
func ValidateTiers(feeType models.FeeType, tiers []models.FeeTier) error {
	if len(tiers) == 0 {
		return apperr.Validation("tiers", "at least one tier is required")
	}
	if feeType.IsPercentage() && !tiers[0].MinValue.IsZero() {
		return apperr.Validation("tiers[0].minValue", "must be 0 for %s schedules", feeType)
	}

	last := len(tiers) - 1
	for i, t := range tiers {
		field := func(name string) string { return fmt.Sprintf("tiers[%d].%s", i, name) }

		if t.MinValue.IsNegative() {
			return apperr.Validation(field("minValue"), "must not be negative")
		}
		if t.Rate.IsNegative() {
			return apperr.Validation(field("rate"), "must not be negative")
		}
		if i == last {
			if t.MaxValue != nil {
				return apperr.Validation(field("maxValue"), "last tier must be unbounded")
			}
			continue
		}
		if t.MaxValue == nil {
			return apperr.Validation(field("maxValue"), "only the last tier may be unbounded")
		}
		if !t.MaxValue.GreaterThan(t.MinValue) {
			return apperr.Validation(field("maxValue"), "must be greater than minValue")
		}
		if !t.MaxValue.Equal(tiers[i+1].MinValue) {
			return apperr.Validation(fmt.Sprintf("tiers[%d].minValue", i+1),
				"must equal the previous tier's maxValue %s", t.MaxValue.String())
		}
	}
	return nil
}
