// Package fees resolves fee tiers for a billable amount and validates fee schedules.
package fees

import (
	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/shopspring/decimal"
)

var basisPoints = decimal.NewFromInt(10000)

// Calculate computes the fee a schedule charges on billableAmount.
//
// Percentage fee types (aum, performance) are charged marginally: each tier's
// rate applies only to the part of the amount inside [minValue, maxValue).
// All other fee types charge the rate of the single tier containing the
// amount. The raw fee is then floored at MinimumFee and capped at MaximumFee,
// in that order.
func Calculate(schedule *models.FeeSchedule, billableAmount decimal.Decimal) (*models.FeeCalculationResult, error) {
	if billableAmount.IsNegative() {
		return nil, apperr.Validation("billableAmount", "must not be negative")
	}
	if len(schedule.Tiers) == 0 {
		return nil, apperr.Validation("tiers", "at least one tier is required")
	}

	var breakdown []models.TierCharge
	if schedule.FeeType.IsPercentage() {
		breakdown = marginal(schedule.Tiers, billableAmount)
	} else {
		breakdown = bracket(schedule.Tiers, billableAmount)
	}

	raw := decimal.Zero
	for _, c := range breakdown {
		raw = raw.Add(c.Fee)
	}

	total := clamp(raw, schedule.MinimumFee, schedule.MaximumFee)

	return &models.FeeCalculationResult{
		TotalFee:      total,
		EffectiveRate: EffectiveRate(total, billableAmount),
		RawFee:        raw,
		Breakdown:     breakdown,
	}, nil
}

// EffectiveRate expresses fee as basis points of amount, rounded to 2 places.
// A zero amount yields a zero rate.
func EffectiveRate(fee, amount decimal.Decimal) decimal.Decimal {
	if amount.IsZero() {
		return decimal.Zero
	}
	return fee.Div(amount).Mul(basisPoints).Round(2)
}

func marginal(tiers []models.FeeTier, amount decimal.Decimal) []models.TierCharge {
	charges := make([]models.TierCharge, 0, len(tiers))
	for i, t := range tiers {
		if amount.LessThanOrEqual(t.MinValue) {
			break
		}
		upper := amount
		if t.MaxValue != nil && t.MaxValue.LessThan(amount) {
			upper = *t.MaxValue
		}
		portion := upper.Sub(t.MinValue)
		if !portion.IsPositive() {
			continue
		}
		charges = append(charges, models.TierCharge{
			TierIndex: i,
			MinValue:  t.MinValue,
			MaxValue:  t.MaxValue,
			Portion:   portion,
			Rate:      t.Rate,
			Fee:       portion.Mul(t.Rate),
		})
	}
	return charges
}

func bracket(tiers []models.FeeTier, amount decimal.Decimal) []models.TierCharge {
	i, ok := locate(tiers, amount)
	if !ok {
		return nil
	}
	t := tiers[i]
	return []models.TierCharge{{
		TierIndex: i,
		MinValue:  t.MinValue,
		MaxValue:  t.MaxValue,
		Portion:   amount,
		Rate:      t.Rate,
		Fee:       t.Rate,
	}}
}

// locate returns the index of the tier whose [minValue, maxValue) contains amount.
func locate(tiers []models.FeeTier, amount decimal.Decimal) (int, bool) {
	for i, t := range tiers {
		if amount.LessThan(t.MinValue) {
			continue
		}
		if t.MaxValue == nil || amount.LessThan(*t.MaxValue) {
			return i, true
		}
	}
	return 0, false
}

func clamp(fee decimal.Decimal, minimum, maximum *decimal.Decimal) decimal.Decimal {
	if minimum != nil {
		fee = decimal.Max(*minimum, fee)
	}
	if maximum != nil {
		fee = decimal.Min(*maximum, fee)
	}
	return fee
}
