package fees

import (
	"time"

	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/shopspring/decimal"
)

func monthsPerPeriod(f models.Frequency) int {
	switch f {
	case models.FrequencyMonthly:
		return 1
	case models.FrequencyQuarterly:
		return 3
	case models.FrequencySemiAnnual:
		return 6
	default:
		return 12
	}
}

// PeriodsPerYear returns how many billing periods a frequency has in a year
func PeriodsPerYear(f models.Frequency) int {
	return 12 / monthsPerPeriod(f)
}

// Period returns the first and last day of the calendar billing period
// containing asOf.
func Period(f models.Frequency, asOf time.Time) (time.Time, time.Time) {
	m := monthsPerPeriod(f)
	y, month, _ := asOf.Date()
	startMonth := ((int(month)-1)/m)*m + 1
	start := time.Date(y, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, m, -1)
	return start, end
}

// PreviousPeriod returns the billing period immediately before the one containing asOf
func PreviousPeriod(f models.Frequency, asOf time.Time) (time.Time, time.Time) {
	start, _ := Period(f, asOf)
	return Period(f, start.AddDate(0, 0, -1))
}

// PeriodFee converts a calculated fee into the amount billed for one period.
// Percentage rates are annual and get prorated; absolute amounts are already
// per period.
func PeriodFee(feeType models.FeeType, f models.Frequency, fee decimal.Decimal) decimal.Decimal {
	if !feeType.IsPercentage() {
		return fee.Round(2)
	}
	return fee.Div(decimal.NewFromInt(int64(PeriodsPerYear(f)))).Round(2)
}
