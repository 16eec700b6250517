package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CreditLine on-chain credit line refreshed from live contract reads
type CreditLine struct {
	ID                  string          `sql:"size:42;PRIMARY_KEY" json:"id"`
	Borrower            string          `sql:"size:42" json:"borrower"`
	Balance             decimal.Decimal `sql:"type:decimal(65,0)" json:"balance"`
	InterestApr         decimal.Decimal `sql:"type:decimal(65,0)" json:"interest_apr"`
	InterestAprDecimal  decimal.Decimal `sql:"type:decimal(65,18)" json:"interest_apr_decimal"`
	InterestAccruedAsOf int64           `json:"interest_accrued_as_of"`
	PaymentPeriodInDays int64           `json:"payment_period_in_days"`
	TermInDays          int64           `json:"term_in_days"`
	NextDueTime         int64           `json:"next_due_time"`
	Limit               decimal.Decimal `sql:"type:decimal(65,0)" json:"limit"`
	MaxLimit            decimal.Decimal `sql:"type:decimal(65,0)" json:"max_limit"`
	InterestOwed        decimal.Decimal `sql:"type:decimal(65,0)" json:"interest_owed"`
	TermEndTime         int64           `json:"term_end_time"`
	LastFullPaymentTime int64           `json:"last_full_payment_time"`
	LateFeeApr          decimal.Decimal `sql:"type:decimal(65,0)" json:"late_fee_apr"`
	Version             ContractVersion `sql:"size:16" json:"version"`
	CapabilityProbed    bool            `json:"capability_probed"`
	CreatedTime         int64           `json:"created_time"`
	UpdatedTime         int64           `json:"updated_time"`
}

// EntityKind implements Entity
func (c *CreditLine) EntityKind() Kind { return KindCreditLine }

// EntityID implements Entity
func (c *CreditLine) EntityID() string { return c.ID }

// CreditLineStore credit line read store
type CreditLineStore interface {
	Find(ctx context.Context, id string) (*CreditLine, error)
}

// Lateness computed at query time against the current time
type Lateness struct {
	IsLate      bool `json:"is_late"`
	IsInDefault bool `json:"is_in_default"`
}

// CreditLineService query time credit line computations
type CreditLineService interface {
	Lateness(ctx context.Context, line *CreditLine, now time.Time) (*Lateness, error)
}
