package fees

import (
	"testing"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScheduleAccepts(t *testing.T) {
	require.NoError(t, ValidateSchedule(aumSchedule()))

	flat := aumSchedule()
	flat.FeeType = models.FeeTypeFlat
	flat.Tiers = []models.FeeTier{tier("0", nil, "5000")}
	require.NoError(t, ValidateSchedule(flat))
}

func TestValidateTiersReportsOffendingIndex(t *testing.T) {
	cases := []struct {
		name    string
		feeType models.FeeType
		tiers   []models.FeeTier
		field   string
	}{
		{"empty", models.FeeTypeAUM, nil, "tiers"},
		{"aum starts above zero", models.FeeTypeAUM, []models.FeeTier{tier("10", nil, "0.01")}, "tiers[0].minValue"},
		{"gap", models.FeeTypeAUM, []models.FeeTier{
			tier("0", dp("100"), "0.01"),
			tier("150", nil, "0.005"),
		}, "tiers[1].minValue"},
		{"overlap", models.FeeTypeAUM, []models.FeeTier{
			tier("0", dp("100"), "0.01"),
			tier("100", dp("500"), "0.008"),
			tier("400", nil, "0.005"),
		}, "tiers[2].minValue"},
		{"inverted", models.FeeTypeAUM, []models.FeeTier{
			tier("0", dp("0"), "0.01"),
			tier("0", nil, "0.005"),
		}, "tiers[0].maxValue"},
		{"bounded last tier", models.FeeTypeAUM, []models.FeeTier{
			tier("0", dp("100"), "0.01"),
		}, "tiers[0].maxValue"},
		{"unbounded middle tier", models.FeeTypeFlat, []models.FeeTier{
			tier("0", nil, "10"),
			tier("100", nil, "20"),
		}, "tiers[0].maxValue"},
		{"negative rate", models.FeeTypeFlat, []models.FeeTier{
			tier("0", dp("100"), "10"),
			tier("100", nil, "-20"),
		}, "tiers[1].rate"},
		{"negative min", models.FeeTypeHourly, []models.FeeTier{tier("-5", nil, "250")}, "tiers[0].minValue"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTiers(tc.feeType, tc.tiers)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidateScheduleFields(t *testing.T) {
	s := aumSchedule()
	s.FeeType = "retainer"
	assert.True(t, apperr.IsValidation(ValidateSchedule(s)))

	s = aumSchedule()
	s.EntityType = "team"
	assert.True(t, apperr.IsValidation(ValidateSchedule(s)))

	s = aumSchedule()
	s.Frequency = "weekly"
	assert.True(t, apperr.IsValidation(ValidateSchedule(s)))

	s = aumSchedule()
	s.MinimumFee = dp("5000")
	s.MaximumFee = dp("1000")
	err := ValidateSchedule(s)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "minimumFee", verr.Field)
}
