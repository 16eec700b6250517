package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProtocolID id of the protocol singleton
const ProtocolID = "1"

// Protocol protocol wide totals, counters only ever grow
type Protocol struct {
	ID                      string          `sql:"size:8;PRIMARY_KEY" json:"id"`
	TotalWritedowns         decimal.Decimal `sql:"type:decimal(65,0)" json:"total_writedowns"`
	TotalDrawdowns          decimal.Decimal `sql:"type:decimal(65,0)" json:"total_drawdowns"`
	TotalPrincipalCollected decimal.Decimal `sql:"type:decimal(65,0)" json:"total_principal_collected"`
	TotalInterestCollected  decimal.Decimal `sql:"type:decimal(65,0)" json:"total_interest_collected"`
	TotalReserveCollected   decimal.Decimal `sql:"type:decimal(65,0)" json:"total_reserve_collected"`
	TotalUsdcAllocated      decimal.Decimal `sql:"type:decimal(65,0)" json:"total_usdc_allocated"`
	TotalFiduLiquidated     decimal.Decimal `sql:"type:decimal(65,0)" json:"total_fidu_liquidated"`
	DefaultLeverageRatio    decimal.Decimal `sql:"type:decimal(65,18)" json:"default_leverage_ratio"`
	LatenessGraceDays       int64           `json:"lateness_grace_days"`
	ReserveDenominator      int64           `json:"reserve_denominator"`
	TranchedPools           StringList      `sql:"type:TEXT" json:"tranched_pools"`
	CallableLoans           StringList      `sql:"type:TEXT" json:"callable_loans"`
}

// EntityKind implements Entity
func (p *Protocol) EntityKind() Kind { return KindProtocol }

// EntityID implements Entity
func (p *Protocol) EntityID() string { return p.ID }

// ProtocolStore protocol read store
type ProtocolStore interface {
	Find(ctx context.Context) (*Protocol, error)
}
