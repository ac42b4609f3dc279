package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceRecord is a point-in-time billable balance for an entity
type BalanceRecord struct {
	ID            string          `json:"id"`
	EntityType    EntityType      `json:"entityType"`
	EntityID      string          `json:"entityId"`
	AsOf          time.Time       `json:"asOf"`
	Amount        decimal.Decimal `json:"amount"`
	Source        string          `json:"source"`
	AccountMask   string          `json:"accountMask,omitempty"`
	AccountCipher string          `json:"-"` // Encrypted custodian account number
	CreatedAt     time.Time       `json:"createdAt"`
}

// Invoice is the fee billed for one schedule and one billing period
type Invoice struct {
	ID             string          `json:"id"`
	ScheduleID     string          `json:"scheduleId"`
	EntityType     EntityType      `json:"entityType"`
	EntityID       string          `json:"entityId"`
	PeriodStart    time.Time       `json:"periodStart"`
	PeriodEnd      time.Time       `json:"periodEnd"`
	BillableAmount decimal.Decimal `json:"billableAmount"`
	AnnualFee      decimal.Decimal `json:"annualFee"`
	Amount         decimal.Decimal `json:"amount"`
	EffectiveRate  decimal.Decimal `json:"effectiveRate"`
	BillingMethod  BillingMethod   `json:"billingMethod"`
	HMAC           string          `json:"hmac"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// BillingRunSummary reports the outcome of one billing run
type BillingRunSummary struct {
	AsOf     time.Time        `json:"asOf"`
	Invoiced []Invoice        `json:"invoiced"`
	Skipped  []BillingSkipped `json:"skipped"`
}

// BillingSkipped names a schedule the run did not invoice and why
type BillingSkipped struct {
	ScheduleID string `json:"scheduleId"`
	Reason     string `json:"reason"`
}
