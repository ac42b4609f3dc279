package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// EntityType identifies the kind of business entity a schedule bills
type EntityType string

const (
	EntityHousehold EntityType = "household"
	EntityAccount   EntityType = "account"
	EntityPerson    EntityType = "person"
)

func (e EntityType) Valid() bool {
	switch e {
	case EntityHousehold, EntityAccount, EntityPerson:
		return true
	}
	return false
}

// FeeType selects how tier rates are interpreted
type FeeType string

const (
	FeeTypeAUM          FeeType = "aum"
	FeeTypeFlat         FeeType = "flat"
	FeeTypeHourly       FeeType = "hourly"
	FeeTypePerformance  FeeType = "performance"
	FeeTypeSubscription FeeType = "subscription"
	FeeTypeTransaction  FeeType = "transaction"
)

func (f FeeType) Valid() bool {
	switch f {
	case FeeTypeAUM, FeeTypeFlat, FeeTypeHourly, FeeTypePerformance, FeeTypeSubscription, FeeTypeTransaction:
		return true
	}
	return false
}

// IsPercentage reports whether tier rates are fractions applied marginally
// rather than absolute amounts.
func (f FeeType) IsPercentage() bool {
	return f == FeeTypeAUM || f == FeeTypePerformance
}

// Frequency is the billing cadence
type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semi-annual"
	FrequencyAnnual     Frequency = "annual"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiAnnual, FrequencyAnnual:
		return true
	}
	return false
}

// BillingMethod decides whether a period is billed at its start or end
type BillingMethod string

const (
	BillingAdvance BillingMethod = "advance"
	BillingArrears BillingMethod = "arrears"
)

func (b BillingMethod) Valid() bool {
	return b == BillingAdvance || b == BillingArrears
}

// FeeTier is one band of a fee schedule. MaxValue is exclusive and nil on the last tier.
type FeeTier struct {
	MinValue decimal.Decimal  `json:"minValue" yaml:"minValue"`
	MaxValue *decimal.Decimal `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`
	Rate     decimal.Decimal  `json:"rate" yaml:"rate"`
}

// FeeSchedule is the fee agreement for a single household, account or person
type FeeSchedule struct {
	ID            string           `json:"id"`
	EntityType    EntityType       `json:"entityType" yaml:"entityType"`
	EntityID      string           `json:"entityId" yaml:"entityId"`
	Name          string           `json:"name" yaml:"name"`
	FeeType       FeeType          `json:"feeType" yaml:"feeType"`
	Frequency     Frequency        `json:"frequency" yaml:"frequency"`
	BillingMethod BillingMethod    `json:"billingMethod" yaml:"billingMethod"`
	Tiers         []FeeTier        `json:"tiers" yaml:"tiers"`
	MinimumFee    *decimal.Decimal `json:"minimumFee,omitempty" yaml:"minimumFee,omitempty"`
	MaximumFee    *decimal.Decimal `json:"maximumFee,omitempty" yaml:"maximumFee,omitempty"`
	EffectiveDate time.Time        `json:"effectiveDate" yaml:"effectiveDate"`
	CreatedBy     string           `json:"createdBy,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// TierCharge is the contribution of one tier to a calculated fee
type TierCharge struct {
	TierIndex int              `json:"tierIndex"`
	MinValue  decimal.Decimal  `json:"minValue"`
	MaxValue  *decimal.Decimal `json:"maxValue,omitempty"`
	Portion   decimal.Decimal  `json:"portion"`
	Rate      decimal.Decimal  `json:"rate"`
	Fee       decimal.Decimal  `json:"fee"`
}

// FeeCalculationResult is computed on demand and never persisted.
// EffectiveRate is expressed in basis points.
type FeeCalculationResult struct {
	TotalFee      decimal.Decimal `json:"totalFee"`
	EffectiveRate decimal.Decimal `json:"effectiveRate"`
	RawFee        decimal.Decimal `json:"rawFee"`
	Breakdown     []TierCharge    `json:"breakdown,omitempty"`
}
