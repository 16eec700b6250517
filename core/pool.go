package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// TranchedPool a tranched (junior/senior) lending pool
type TranchedPool struct {
	ID                              string          `sql:"size:42;PRIMARY_KEY" json:"id"`
	CreditLine                      string          `sql:"size:42" json:"credit_line"`
	Borrower                        string          `sql:"size:42;index:idx_tranched_pools_borrower" json:"borrower"`
	JuniorFeePercent                decimal.Decimal `sql:"type:decimal(65,0)" json:"junior_fee_percent"`
	ReserveFeePercent               decimal.Decimal `sql:"type:decimal(65,18)" json:"reserve_fee_percent"`
	TotalDeposited                  decimal.Decimal `sql:"type:decimal(65,0)" json:"total_deposited"`
	JuniorDeposited                 decimal.Decimal `sql:"type:decimal(65,0)" json:"junior_deposited"`
	EstimatedSeniorPoolContribution decimal.Decimal `sql:"type:decimal(65,0)" json:"estimated_senior_pool_contribution"`
	EstimatedTotalAssets            decimal.Decimal `sql:"type:decimal(65,0)" json:"estimated_total_assets"`
	EstimatedLeverageRatio          decimal.Decimal `sql:"type:decimal(65,18)" json:"estimated_leverage_ratio"`
	EstimatedJuniorApy              decimal.Decimal `sql:"type:decimal(65,18)" json:"estimated_junior_apy"`
	PrincipalAmountRepaid           decimal.Decimal `sql:"type:decimal(65,0)" json:"principal_amount_repaid"`
	InterestAmountRepaid            decimal.Decimal `sql:"type:decimal(65,0)" json:"interest_amount_repaid"`
	IsPaused                        bool            `json:"is_paused"`
	DrawdownsPaused                 bool            `json:"drawdowns_paused"`
	IsV1StyleDeal                   bool            `json:"is_v1_style_deal"`
	Version                         ContractVersion `sql:"size:16" json:"version"`
	Backers                         StringList      `sql:"type:TEXT" json:"backers"`
	NumBackers                      int64           `json:"num_backers"`
	Tokens                          StringList      `sql:"type:TEXT" json:"tokens"`
	NumSlices                       int64           `json:"num_slices"`
	RepaymentSchedule               StringList      `sql:"type:TEXT" json:"repayment_schedule"`
	FundableAt                      int64           `json:"fundable_at"`
	CreatedTime                     int64           `json:"created_time"`
	UpdatedTime                     int64           `json:"updated_time"`
}

// EntityKind implements Entity
func (p *TranchedPool) EntityKind() Kind { return KindTranchedPool }

// EntityID implements Entity
func (p *TranchedPool) EntityID() string { return p.ID }

// Tranche junior or senior tranche of a pool slice
type Tranche struct {
	ID                  string          `sql:"size:96;PRIMARY_KEY" json:"id"`
	Pool                string          `sql:"size:42;index:idx_tranches_pool" json:"pool"`
	TrancheID           int64           `json:"tranche_id"`
	Slice               int64           `json:"slice"`
	IsJunior            bool            `json:"is_junior"`
	PrincipalDeposited  decimal.Decimal `sql:"type:decimal(65,0)" json:"principal_deposited"`
	PrincipalSharePrice decimal.Decimal `sql:"type:decimal(65,0)" json:"principal_share_price"`
	InterestSharePrice  decimal.Decimal `sql:"type:decimal(65,0)" json:"interest_share_price"`
	LockedUntil         int64           `json:"locked_until"`
}

// EntityKind implements Entity
func (t *Tranche) EntityKind() Kind { return KindTranche }

// EntityID implements Entity
func (t *Tranche) EntityID() string { return t.ID }

// TrancheEntityID id of a tranche entity
func TrancheEntityID(pool string, trancheID int64) string {
	return fmt.Sprintf("%s-%d", pool, trancheID)
}

// IsJuniorTranche senior tranches have odd ids, junior tranches even ones
func IsJuniorTranche(trancheID int64) bool {
	return trancheID > 0 && trancheID%2 == 0
}

// ScheduledRepayment one period of a loan repayment schedule
type ScheduledRepayment struct {
	ID                   string          `sql:"size:96;PRIMARY_KEY" json:"id"`
	Loan                 string          `sql:"size:42;index:idx_scheduled_repayments_loan" json:"loan"`
	PaymentPeriod        int64           `json:"payment_period"`
	EstimatedPaymentDate int64           `json:"estimated_payment_date"`
	Interest             decimal.Decimal `sql:"type:decimal(65,0)" json:"interest"`
	Principal            decimal.Decimal `sql:"type:decimal(65,0)" json:"principal"`
}

// EntityKind implements Entity
func (s *ScheduledRepayment) EntityKind() Kind { return KindScheduledRepayment }

// EntityID implements Entity
func (s *ScheduledRepayment) EntityID() string { return s.ID }

// ScheduledRepaymentID id of a schedule entry
func ScheduledRepaymentID(loan string, period int64) string {
	return fmt.Sprintf("%s-%d", loan, period)
}

// ListPoolsQuery pool listing query
type ListPoolsQuery struct {
	Borrower string
	Offset   int
	Limit    int
}

// TranchedPoolStore pool read store
type TranchedPoolStore interface {
	Find(ctx context.Context, id string) (*TranchedPool, error)
	List(ctx context.Context, query ListPoolsQuery) ([]*TranchedPool, error)
	ListTranches(ctx context.Context, pool string) ([]*Tranche, error)
	ListSchedule(ctx context.Context, loan string) ([]*ScheduledRepayment, error)
}
