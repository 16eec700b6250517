package core

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"
)

// ChainReader read only access to contract state
type ChainReader interface {
	// Call invoke a view method, block nil means latest.
	// A revert is reported as ErrCallReverted
	Call(ctx context.Context, contract, method string, block *big.Int, args ...interface{}) ([]interface{}, error)
}

// ConfigIndex index of a number in the protocol config contract
type ConfigIndex int64

const (
	ConfigReserveDenominator        ConfigIndex = 3
	ConfigLatenessGracePeriodInDays ConfigIndex = 5
	ConfigLeverageRatio             ConfigIndex = 9
)

// CreditLineState live credit line fields
type CreditLineState struct {
	Borrower            string
	Balance             decimal.Decimal
	InterestApr         decimal.Decimal
	InterestAccruedAsOf int64
	PaymentPeriodInDays int64
	TermInDays          int64
	NextDueTime         int64
	Limit               decimal.Decimal
	InterestOwed        decimal.Decimal
	TermEndTime         int64
	LastFullPaymentTime int64
	LateFeeApr          decimal.Decimal
}

// TrancheState live tranche info
type TrancheState struct {
	ID                  int64
	PrincipalDeposited  decimal.Decimal
	PrincipalSharePrice decimal.Decimal
	InterestSharePrice  decimal.Decimal
	LockedUntil         int64
}

// PoolState live tranched pool settings
type PoolState struct {
	CreditLine       string
	JuniorFeePercent decimal.Decimal
	NumSlices        int64
	Paused           bool
	DrawdownsPaused  bool
	FundableAt       int64
	CreatedAt        int64
}

// SeniorPoolState live senior pool totals
type SeniorPoolState struct {
	SharePrice            decimal.Decimal
	Assets                decimal.Decimal
	TotalLoansOutstanding decimal.Decimal
	TotalShares           decimal.Decimal
}

// CallableLoanState live callable loan terms
type CallableLoanState struct {
	Borrower            string
	CreditLine          string
	Balance             decimal.Decimal
	Limit               decimal.Decimal
	InterestApr         decimal.Decimal
	TermStartTime       int64
	TermEndTime         int64
	PaymentPeriodInDays int64
	Paused              bool
}

// ContractService typed contract reads pinned to a block, block 0 means latest
type ContractService interface {
	CreditLine(ctx context.Context, address string, block uint64) (*CreditLineState, error)
	// MaxLimit returns ErrCallReverted on credit lines deployed before v2.2
	MaxLimit(ctx context.Context, address string, block uint64) (decimal.Decimal, error)
	IsLate(ctx context.Context, address string, block uint64) (bool, error)
	WithinPrincipalGracePeriod(ctx context.Context, address string, block uint64) (bool, error)
	Tranche(ctx context.Context, pool string, trancheID int64, block uint64) (*TrancheState, error)
	PoolSettings(ctx context.Context, pool string, block uint64) (*PoolState, error)
	SeniorPool(ctx context.Context, block uint64) (*SeniorPoolState, error)
	EstimateInvestment(ctx context.Context, pool string, block uint64) (decimal.Decimal, error)
	CallableLoanTerms(ctx context.Context, loan string, block uint64) (*CallableLoanState, error)
	ConfigNumber(ctx context.Context, index ConfigIndex, block uint64) (decimal.Decimal, error)
	ReserveFeePercent(ctx context.Context, block uint64) (decimal.Decimal, error)
	LatenessGracePeriodInDays(ctx context.Context, block uint64) (int64, error)
}
