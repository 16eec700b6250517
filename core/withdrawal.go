package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// WithdrawalRosterID id of the roster singleton
const WithdrawalRosterID = "1"

// WithdrawalRequest epoch based senior pool withdrawal request, keyed by token id
type WithdrawalRequest struct {
	ID               string          `sql:"size:78;PRIMARY_KEY" json:"id"`
	User             string          `sql:"column:user_address;size:42;index:idx_withdrawal_requests_user" json:"user"`
	TokenID          string          `sql:"size:78" json:"token_id"`
	FiduRequested    decimal.Decimal `sql:"type:decimal(65,0)" json:"fidu_requested"`
	UsdcWithdrawable decimal.Decimal `sql:"type:decimal(65,0)" json:"usdc_withdrawable"`
	RequestedAt      int64           `json:"requested_at"`
	IncreasedAt      int64           `json:"increased_at"`
	CanceledAt       int64           `json:"canceled_at"`
}

// EntityKind implements Entity
func (r *WithdrawalRequest) EntityKind() Kind { return KindWithdrawalRequest }

// EntityID implements Entity
func (r *WithdrawalRequest) EntityID() string { return r.ID }

// WithdrawalRoster ordered ids of every request ever made, append only
type WithdrawalRoster struct {
	ID       string     `sql:"size:8;PRIMARY_KEY" json:"id"`
	Requests StringList `sql:"type:TEXT" json:"requests"`
}

// EntityKind implements Entity
func (r *WithdrawalRoster) EntityKind() Kind { return KindWithdrawalRoster }

// EntityID implements Entity
func (r *WithdrawalRoster) EntityID() string { return r.ID }

// Add append a request id, duplicates are ignored
func (r *WithdrawalRoster) Add(id string) bool {
	return r.Requests.AddUnique(id)
}

// WithdrawalEpoch a closed withdrawal epoch
type WithdrawalEpoch struct {
	ID             string          `sql:"size:78;PRIMARY_KEY" json:"id"`
	Epoch          int64           `json:"epoch"`
	EndsAt         int64           `json:"ends_at"`
	FiduRequested  decimal.Decimal `sql:"type:decimal(65,0)" json:"fidu_requested"`
	FiduLiquidated decimal.Decimal `sql:"type:decimal(65,0)" json:"fidu_liquidated"`
	UsdcAllocated  decimal.Decimal `sql:"type:decimal(65,0)" json:"usdc_allocated"`
}

// EntityKind implements Entity
func (e *WithdrawalEpoch) EntityKind() Kind { return KindWithdrawalEpoch }

// EntityID implements Entity
func (e *WithdrawalEpoch) EntityID() string { return e.ID }

// WithdrawalDisbursement pro-rata share of an epoch allocated to one request
type WithdrawalDisbursement struct {
	ID             string          `sql:"size:160;PRIMARY_KEY" json:"id"`
	User           string          `sql:"column:user_address;size:42;index:idx_withdrawal_disbursements_user" json:"user"`
	TokenID        string          `sql:"size:78" json:"token_id"`
	Epoch          int64           `sql:"index:idx_withdrawal_disbursements_epoch" json:"epoch"`
	AllocatedAt    int64           `json:"allocated_at"`
	UsdcAllocated  decimal.Decimal `sql:"type:decimal(65,0)" json:"usdc_allocated"`
	FiduLiquidated decimal.Decimal `sql:"type:decimal(65,0)" json:"fidu_liquidated"`
}

// EntityKind implements Entity
func (d *WithdrawalDisbursement) EntityKind() Kind { return KindWithdrawalDisbursement }

// EntityID implements Entity
func (d *WithdrawalDisbursement) EntityID() string { return d.ID }

// DisbursementID id of the disbursement of a request in an epoch
func DisbursementID(epoch int64, request string) string {
	return fmt.Sprintf("%d-%s", epoch, request)
}

// DisbursementPostponement records an epoch extension seen by an active request
type DisbursementPostponement struct {
	ID         string `sql:"size:200;PRIMARY_KEY" json:"id"`
	User       string `sql:"column:user_address;size:42" json:"user"`
	TokenID    string `sql:"size:78" json:"token_id"`
	Epoch      int64  `json:"epoch"`
	OldEndsAt  int64  `json:"old_ends_at"`
	NewEndsAt  int64  `json:"new_ends_at"`
	ExtendedAt int64  `json:"extended_at"`
}

// EntityKind implements Entity
func (p *DisbursementPostponement) EntityKind() Kind { return KindDisbursementPostponement }

// EntityID implements Entity
func (p *DisbursementPostponement) EntityID() string { return p.ID }

// PostponementID id of a postponement
func PostponementID(epoch, oldEndsAt int64, request string) string {
	return fmt.Sprintf("%d-%d-%s", epoch, oldEndsAt, request)
}

// WithdrawalStore withdrawal read store
type WithdrawalStore interface {
	FindRequest(ctx context.Context, id string) (*WithdrawalRequest, error)
	ListRequests(ctx context.Context, user string) ([]*WithdrawalRequest, error)
	ListEpochs(ctx context.Context, offset, limit int) ([]*WithdrawalEpoch, error)
	ListDisbursements(ctx context.Context, request string) ([]*WithdrawalDisbursement, error)
}
