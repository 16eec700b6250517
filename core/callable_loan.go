package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// CallableLoan single tranche loan whose lenders may call back principal
type CallableLoan struct {
	ID                    string          `sql:"size:42;PRIMARY_KEY" json:"id"`
	Borrower              string          `sql:"size:42" json:"borrower"`
	CreditLine            string          `sql:"size:42" json:"credit_line"`
	TotalDeposited        decimal.Decimal `sql:"type:decimal(65,0)" json:"total_deposited"`
	Backers               StringList      `sql:"type:TEXT" json:"backers"`
	NumBackers            int64           `json:"num_backers"`
	Tokens                StringList      `sql:"type:TEXT" json:"tokens"`
	PrincipalAmount       decimal.Decimal `sql:"type:decimal(65,0)" json:"principal_amount"`
	PrincipalAmountRepaid decimal.Decimal `sql:"type:decimal(65,0)" json:"principal_amount_repaid"`
	InterestAmountRepaid  decimal.Decimal `sql:"type:decimal(65,0)" json:"interest_amount_repaid"`
	InterestApr           decimal.Decimal `sql:"type:decimal(65,0)" json:"interest_apr"`
	InterestAprDecimal    decimal.Decimal `sql:"type:decimal(65,18)" json:"interest_apr_decimal"`
	PaymentPeriodInDays   int64           `json:"payment_period_in_days"`
	TermStartTime         int64           `json:"term_start_time"`
	TermEndTime           int64           `json:"term_end_time"`
	RepaymentSchedule     StringList      `sql:"type:TEXT" json:"repayment_schedule"`
	IsPaused              bool            `json:"is_paused"`
	CreatedTime           int64           `json:"created_time"`
	UpdatedTime           int64           `json:"updated_time"`
}

// EntityKind implements Entity
func (l *CallableLoan) EntityKind() Kind { return KindCallableLoan }

// EntityID implements Entity
func (l *CallableLoan) EntityID() string { return l.ID }

// CallableLoanStore callable loan read store
type CallableLoanStore interface {
	Find(ctx context.Context, id string) (*CallableLoan, error)
}
