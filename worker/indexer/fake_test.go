package indexer

import (
	"context"
	"fmt"
	"testing"

	"lendex/core"
	"lendex/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	seniorPoolAddress     = "0x00000000000000000000000000000000000000a1"
	stakingRewardsAddress = "0x00000000000000000000000000000000000000a2"
	configAddress         = "0x00000000000000000000000000000000000000a3"
	factoryAddress        = "0x00000000000000000000000000000000000000a4"
	poolAddress           = "0x00000000000000000000000000000000000000b1"
	creditLineAddress     = "0x00000000000000000000000000000000000000c1"
	loanAddress           = "0x00000000000000000000000000000000000000d1"
	alice                 = "0x00000000000000000000000000000000000000e1"
	bob                   = "0x00000000000000000000000000000000000000e2"
	borrowerAddress       = "0x00000000000000000000000000000000000000f1"

	baseTime int64 = 1700000000
)

type fakeContracts struct {
	lines      map[string]*core.CreditLineState
	maxLimits  map[string]decimal.Decimal
	pools      map[string]*core.PoolState
	investment map[string]decimal.Decimal
	loans      map[string]*core.CallableLoanState
	senior     core.SeniorPoolState
	reserveFee decimal.Decimal
	maxCalls   int
	fail       error
}

func newFakeContracts() *fakeContracts {
	return &fakeContracts{
		lines:      map[string]*core.CreditLineState{},
		maxLimits:  map[string]decimal.Decimal{},
		pools:      map[string]*core.PoolState{},
		investment: map[string]decimal.Decimal{},
		loans:      map[string]*core.CallableLoanState{},
		senior: core.SeniorPoolState{
			SharePrice:  decimal.New(1, 18),
			Assets:      decimal.New(1, 12),
			TotalShares: decimal.New(1, 24),
		},
		reserveFee: decimal.NewFromInt(10),
	}
}

func (f *fakeContracts) CreditLine(ctx context.Context, address string, block uint64) (*core.CreditLineState, error) {
	if f.fail != nil {
		return nil, f.fail
	}

	line, ok := f.lines[address]
	if !ok {
		return nil, fmt.Errorf("no credit line %s", address)
	}

	state := *line
	return &state, nil
}

func (f *fakeContracts) MaxLimit(ctx context.Context, address string, block uint64) (decimal.Decimal, error) {
	f.maxCalls++
	if v, ok := f.maxLimits[address]; ok {
		return v, nil
	}

	return decimal.Zero, core.ErrCallReverted
}

func (f *fakeContracts) IsLate(ctx context.Context, address string, block uint64) (bool, error) {
	return false, core.ErrCallReverted
}

func (f *fakeContracts) WithinPrincipalGracePeriod(ctx context.Context, address string, block uint64) (bool, error) {
	return false, core.ErrCallReverted
}

func (f *fakeContracts) Tranche(ctx context.Context, pool string, trancheID int64, block uint64) (*core.TrancheState, error) {
	if f.fail != nil {
		return nil, f.fail
	}

	return &core.TrancheState{ID: trancheID, PrincipalSharePrice: decimal.New(1, 18)}, nil
}

func (f *fakeContracts) PoolSettings(ctx context.Context, pool string, block uint64) (*core.PoolState, error) {
	settings, ok := f.pools[pool]
	if !ok {
		return nil, fmt.Errorf("no pool %s", pool)
	}

	state := *settings
	return &state, nil
}

func (f *fakeContracts) SeniorPool(ctx context.Context, block uint64) (*core.SeniorPoolState, error) {
	if f.fail != nil {
		return nil, f.fail
	}

	state := f.senior
	return &state, nil
}

func (f *fakeContracts) EstimateInvestment(ctx context.Context, pool string, block uint64) (decimal.Decimal, error) {
	if v, ok := f.investment[pool]; ok {
		return v, nil
	}

	return decimal.Zero, core.ErrCallReverted
}

func (f *fakeContracts) CallableLoanTerms(ctx context.Context, loan string, block uint64) (*core.CallableLoanState, error) {
	terms, ok := f.loans[loan]
	if !ok {
		return nil, fmt.Errorf("no loan %s", loan)
	}

	state := *terms
	return &state, nil
}

func (f *fakeContracts) ConfigNumber(ctx context.Context, index core.ConfigIndex, block uint64) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeContracts) ReserveFeePercent(ctx context.Context, block uint64) (decimal.Decimal, error) {
	return f.reserveFee, nil
}

func (f *fakeContracts) LatenessGracePeriodInDays(ctx context.Context, block uint64) (int64, error) {
	return 30, nil
}

func newTestIndexer(t *testing.T) (*Indexer, *memory.Store, *fakeContracts) {
	t.Helper()

	store := memory.New()
	contracts := newFakeContracts()
	w := New(Config{
		Contracts: core.Contracts{
			SeniorPool:     seniorPoolAddress,
			StakingRewards: stakingRewardsAddress,
			Config:         configAddress,
			Factory:        factoryAddress,
		},
		Protocol: core.ProtocolConfig{
			V2_2MigrationTime:        core.DefaultV2_2MigrationTime,
			DefaultLeverageRatio:     decimal.NewFromInt(4),
			DefaultLatenessGraceDays: 30,
		},
	}, memory.NewEventLog(), store, contracts)

	return w, store, contracts
}

func event(block uint64, logIndex uint, kind core.ContractKind, address, name string, params map[string]string) *core.Event {
	return eventAt(baseTime+int64(block)*12, block, logIndex, kind, address, name, params)
}

func eventAt(timestamp int64, block uint64, logIndex uint, kind core.ContractKind, address, name string, params map[string]string) *core.Event {
	txHash := fmt.Sprintf("0x%064x", block)
	return core.NewEvent(block, logIndex, timestamp, txHash, address, kind, name, params)
}

func load(t *testing.T, store *memory.Store, e core.Entity) {
	t.Helper()

	ok, err := store.Load(context.Background(), e)
	require.Nil(t, err)
	require.True(t, ok, "%s not found", core.EntityKey(e))
}
