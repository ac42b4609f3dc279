package fees

import (
	"testing"
	"time"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func tier(min string, max *decimal.Decimal, rate string) models.FeeTier {
	return models.FeeTier{MinValue: d(min), MaxValue: max, Rate: d(rate)}
}

func aumSchedule() *models.FeeSchedule {
	return &models.FeeSchedule{
		EntityType:    models.EntityHousehold,
		EntityID:      "h-1",
		FeeType:       models.FeeTypeAUM,
		Frequency:     models.FrequencyQuarterly,
		BillingMethod: models.BillingAdvance,
		EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Tiers: []models.FeeTier{
			tier("0", dp("1000000"), "0.01"),
			tier("1000000", nil, "0.005"),
		},
	}
}

func TestCalculateMarginalAUM(t *testing.T) {
	res, err := Calculate(aumSchedule(), d("1500000"))
	require.NoError(t, err)

	assert.Equal(t, "12500", res.TotalFee.String())
	assert.Equal(t, "83.33", res.EffectiveRate.String())
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, "1000000", res.Breakdown[0].Portion.String())
	assert.Equal(t, "10000", res.Breakdown[0].Fee.String())
	assert.Equal(t, "500000", res.Breakdown[1].Portion.String())
	assert.Equal(t, "2500", res.Breakdown[1].Fee.String())
}

func TestCalculateWithinFirstTier(t *testing.T) {
	res, err := Calculate(aumSchedule(), d("250000"))
	require.NoError(t, err)
	assert.Equal(t, "2500", res.TotalFee.String())
	assert.Equal(t, "100", res.EffectiveRate.String())
	assert.Len(t, res.Breakdown, 1)
}

func TestCalculateMatchesSumOfOverlaps(t *testing.T) {
	s := &models.FeeSchedule{
		FeeType: models.FeeTypePerformance,
		Tiers: []models.FeeTier{
			tier("0", dp("250000"), "0.0125"),
			tier("250000", dp("1000000"), "0.01"),
			tier("1000000", dp("5000000"), "0.0075"),
			tier("5000000", nil, "0.005"),
		},
	}
	for _, amt := range []string{"0", "1", "249999.99", "250000", "999999", "1000000", "4200000", "12000000"} {
		amount := d(amt)
		want := decimal.Zero
		for _, tr := range s.Tiers {
			upper := amount
			if tr.MaxValue != nil {
				upper = decimal.Min(amount, *tr.MaxValue)
			}
			if overlap := upper.Sub(tr.MinValue); overlap.IsPositive() {
				want = want.Add(overlap.Mul(tr.Rate))
			}
		}
		res, err := Calculate(s, amount)
		require.NoError(t, err)
		assert.True(t, want.Equal(res.TotalFee), "amount %s: want %s got %s", amt, want, res.TotalFee)
	}
}

func TestCalculateMonotonic(t *testing.T) {
	s := aumSchedule()
	prev := decimal.Zero
	for amt := int64(0); amt <= 3_000_000; amt += 37_500 {
		res, err := Calculate(s, decimal.NewFromInt(amt))
		require.NoError(t, err)
		assert.True(t, res.TotalFee.GreaterThanOrEqual(prev), "fee decreased at %d", amt)
		prev = res.TotalFee
	}
}

func TestCalculateFlatIgnoresAmount(t *testing.T) {
	s := &models.FeeSchedule{
		FeeType: models.FeeTypeFlat,
		Tiers:   []models.FeeTier{tier("0", nil, "5000")},
	}
	for _, amt := range []string{"0", "10", "1500000", "99999999"} {
		res, err := Calculate(s, d(amt))
		require.NoError(t, err)
		assert.Equal(t, "5000", res.TotalFee.String())
	}
}

func TestCalculateBracketPicksContainingTier(t *testing.T) {
	s := &models.FeeSchedule{
		FeeType: models.FeeTypeSubscription,
		Tiers: []models.FeeTier{
			tier("0", dp("500000"), "1200"),
			tier("500000", dp("2000000"), "3000"),
			tier("2000000", nil, "6000"),
		},
	}

	cases := map[string]string{
		"0":       "1200",
		"499999":  "1200",
		"500000":  "3000",
		"1999999": "3000",
		"2000000": "6000",
	}
	for amt, want := range cases {
		res, err := Calculate(s, d(amt))
		require.NoError(t, err)
		assert.Equal(t, want, res.TotalFee.String(), "amount %s", amt)
	}
}

func TestCalculateBracketBelowFirstTier(t *testing.T) {
	s := &models.FeeSchedule{
		FeeType: models.FeeTypeTransaction,
		Tiers:   []models.FeeTier{tier("100", nil, "25")},
	}
	res, err := Calculate(s, d("50"))
	require.NoError(t, err)
	assert.True(t, res.TotalFee.IsZero())
	assert.Empty(t, res.Breakdown)
}

func TestCalculateMinimumFee(t *testing.T) {
	s := aumSchedule()
	s.MinimumFee = dp("2000")

	res, err := Calculate(s, d("120000"))
	require.NoError(t, err)
	assert.Equal(t, "1200", res.RawFee.String())
	assert.Equal(t, "2000", res.TotalFee.String())
}

func TestCalculateMaximumFee(t *testing.T) {
	s := aumSchedule()
	s.MaximumFee = dp("10000")

	res, err := Calculate(s, d("1500000"))
	require.NoError(t, err)
	assert.Equal(t, "10000", res.TotalFee.String())
}

func TestCalculateMinimumBeforeMaximum(t *testing.T) {
	// floor then ceiling: the ceiling wins when both bind
	s := aumSchedule()
	s.MinimumFee = dp("5000")
	s.MaximumFee = dp("3000")

	res, err := Calculate(s, d("100000"))
	require.NoError(t, err)
	assert.Equal(t, "3000", res.TotalFee.String())
}

func TestCalculateZeroAmount(t *testing.T) {
	s := aumSchedule()
	s.MinimumFee = dp("500")

	res, err := Calculate(s, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "500", res.TotalFee.String())
	assert.True(t, res.EffectiveRate.IsZero())
}

func TestCalculateRejectsBadInput(t *testing.T) {
	_, err := Calculate(aumSchedule(), d("-1"))
	require.Error(t, err)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "billableAmount", verr.Field)

	_, err = Calculate(&models.FeeSchedule{FeeType: models.FeeTypeAUM}, d("10"))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tiers", verr.Field)
}
