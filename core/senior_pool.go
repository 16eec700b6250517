package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// SeniorPool the senior pool singleton, keyed by its contract address
type SeniorPool struct {
	ID                      string          `sql:"size:42;PRIMARY_KEY" json:"id"`
	TotalShares             decimal.Decimal `sql:"type:decimal(65,0)" json:"total_shares"`
	Assets                  decimal.Decimal `sql:"type:decimal(65,0)" json:"assets"`
	SharePrice              decimal.Decimal `sql:"type:decimal(65,0)" json:"share_price"`
	TotalLoansOutstanding   decimal.Decimal `sql:"type:decimal(65,0)" json:"total_loans_outstanding"`
	TotalInvested           decimal.Decimal `sql:"type:decimal(65,0)" json:"total_invested"`
	TotalWrittenDown        decimal.Decimal `sql:"type:decimal(65,0)" json:"total_written_down"`
	TotalInterestCollected  decimal.Decimal `sql:"type:decimal(65,0)" json:"total_interest_collected"`
	TotalPrincipalCollected decimal.Decimal `sql:"type:decimal(65,0)" json:"total_principal_collected"`
	TranchedPools           StringList      `sql:"type:TEXT" json:"tranched_pools"`
	LatestEpochID           int64           `json:"latest_epoch_id"`
	UpdatedTime             int64           `json:"updated_time"`
}

// EntityKind implements Entity
func (s *SeniorPool) EntityKind() Kind { return KindSeniorPool }

// EntityID implements Entity
func (s *SeniorPool) EntityID() string { return s.ID }

// SeniorPoolStore senior pool read store
type SeniorPoolStore interface {
	Find(ctx context.Context) (*SeniorPool, error)
}
