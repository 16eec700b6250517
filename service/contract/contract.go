package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"lendex/core"
	"lendex/pkg/finance"
	"lendex/pkg/number"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type contractService struct {
	reader    core.ChainReader
	contracts core.Contracts
}

// New new contract service
func New(reader core.ChainReader, contracts core.Contracts) core.ContractService {
	return &contractService{
		reader:    reader,
		contracts: contracts,
	}
}

// reader collects typed reads of one contract, the first failure is kept
type reader struct {
	ctx     context.Context
	chain   core.ChainReader
	address string
	block   *big.Int
	err     error
}

func (s *contractService) at(ctx context.Context, address string, block uint64) *reader {
	return &reader{
		ctx:     ctx,
		chain:   s.reader,
		address: address,
		block:   number.Block(block),
	}
}

func (r *reader) call(method string, args ...interface{}) []interface{} {
	if r.err != nil {
		return nil
	}

	out, err := r.chain.Call(r.ctx, r.address, method, r.block, args...)
	if err != nil {
		r.err = err
		return nil
	}

	if len(out) == 0 {
		r.err = fmt.Errorf("%s.%s: no output", r.address, method)
		return nil
	}

	return out
}

func (r *reader) bigAt(out []interface{}, i int, method string) decimal.Decimal {
	if out == nil || r.err != nil {
		return decimal.Zero
	}

	if i >= len(out) {
		r.err = fmt.Errorf("%s.%s: missing output %d", r.address, method, i)
		return decimal.Zero
	}

	v, ok := out[i].(*big.Int)
	if !ok {
		r.err = fmt.Errorf("%s.%s: output %d is %T", r.address, method, i, out[i])
		return decimal.Zero
	}

	return number.FromBig(v)
}

func (r *reader) Decimal(method string, args ...interface{}) decimal.Decimal {
	return r.bigAt(r.call(method, args...), 0, method)
}

func (r *reader) Int64(method string, args ...interface{}) int64 {
	return r.Decimal(method, args...).IntPart()
}

func (r *reader) Address(method string) string {
	out := r.call(method)
	if out == nil {
		return ""
	}

	v, ok := out[0].(common.Address)
	if !ok {
		r.err = fmt.Errorf("%s.%s: output is %T", r.address, method, out[0])
		return ""
	}

	return normalize(v)
}

func (r *reader) Bool(method string) bool {
	out := r.call(method)
	if out == nil {
		return false
	}

	v, ok := out[0].(bool)
	if !ok {
		r.err = fmt.Errorf("%s.%s: output is %T", r.address, method, out[0])
		return false
	}

	return v
}

func normalize(a common.Address) string {
	return core.NormalizeAddress(a.Hex())
}

func (s *contractService) CreditLine(ctx context.Context, address string, block uint64) (*core.CreditLineState, error) {
	r := s.at(ctx, address, block)
	state := &core.CreditLineState{
		Borrower:            r.Address("borrower"),
		Balance:             r.Decimal("balance"),
		InterestApr:         r.Decimal("interestApr"),
		InterestAccruedAsOf: r.Int64("interestAccruedAsOf"),
		PaymentPeriodInDays: r.Int64("paymentPeriodInDays"),
		TermInDays:          r.Int64("termInDays"),
		NextDueTime:         r.Int64("nextDueTime"),
		Limit:               r.Decimal("limit"),
		InterestOwed:        r.Decimal("interestOwed"),
		TermEndTime:         r.Int64("termEndTime"),
		LastFullPaymentTime: r.Int64("lastFullPaymentTime"),
		LateFeeApr:          r.Decimal("lateFeeApr"),
	}

	return state, r.err
}

func (s *contractService) MaxLimit(ctx context.Context, address string, block uint64) (decimal.Decimal, error) {
	r := s.at(ctx, address, block)
	v := r.Decimal("maxLimit")
	return v, r.err
}

func (s *contractService) IsLate(ctx context.Context, address string, block uint64) (bool, error) {
	r := s.at(ctx, address, block)
	v := r.Bool("isLate")
	return v, r.err
}

func (s *contractService) WithinPrincipalGracePeriod(ctx context.Context, address string, block uint64) (bool, error) {
	r := s.at(ctx, address, block)
	v := r.Bool("withinPrincipalGracePeriod")
	return v, r.err
}

func (s *contractService) Tranche(ctx context.Context, pool string, trancheID int64, block uint64) (*core.TrancheState, error) {
	r := s.at(ctx, pool, block)
	out := r.call("getTranche", big.NewInt(trancheID))
	state := &core.TrancheState{
		ID:                  r.bigAt(out, 0, "getTranche").IntPart(),
		PrincipalDeposited:  r.bigAt(out, 1, "getTranche"),
		PrincipalSharePrice: r.bigAt(out, 2, "getTranche"),
		InterestSharePrice:  r.bigAt(out, 3, "getTranche"),
		LockedUntil:         r.bigAt(out, 4, "getTranche").IntPart(),
	}

	if r.err != nil {
		return nil, r.err
	}

	if state.ID != trancheID {
		return nil, fmt.Errorf("%w: pool %s has no tranche %d", core.ErrMalformedEvent, pool, trancheID)
	}

	return state, nil
}

func (s *contractService) PoolSettings(ctx context.Context, pool string, block uint64) (*core.PoolState, error) {
	r := s.at(ctx, pool, block)
	state := &core.PoolState{
		CreditLine:       r.Address("creditLine"),
		JuniorFeePercent: r.Decimal("juniorFeePercent"),
		NumSlices:        r.Int64("numSlices"),
		Paused:           r.Bool("paused"),
		DrawdownsPaused:  r.Bool("drawdownsPaused"),
		FundableAt:       r.Int64("fundableAt"),
		CreatedAt:        r.Int64("createdAt"),
	}

	return state, r.err
}

func (s *contractService) SeniorPool(ctx context.Context, block uint64) (*core.SeniorPoolState, error) {
	r := s.at(ctx, s.contracts.SeniorPool, block)
	state := &core.SeniorPoolState{
		SharePrice:            r.Decimal("sharePrice"),
		Assets:                r.Decimal("assets"),
		TotalLoansOutstanding: r.Decimal("totalLoansOutstanding"),
	}

	if r.err != nil {
		return nil, r.err
	}

	if s.contracts.Fidu == "" {
		return nil, errors.New("fidu contract address not set")
	}

	fidu := s.at(ctx, s.contracts.Fidu, block)
	state.TotalShares = fidu.Decimal("totalSupply")
	if fidu.err != nil {
		return nil, fidu.err
	}

	return state, nil
}

func (s *contractService) EstimateInvestment(ctx context.Context, pool string, block uint64) (decimal.Decimal, error) {
	r := s.at(ctx, s.contracts.SeniorPool, block)
	v := r.Decimal("estimateInvestment", common.HexToAddress(pool))
	return v, r.err
}

func (s *contractService) CallableLoanTerms(ctx context.Context, loan string, block uint64) (*core.CallableLoanState, error) {
	r := s.at(ctx, loan, block)
	state := &core.CallableLoanState{
		Borrower:            r.Address("borrower"),
		CreditLine:          r.Address("creditLine"),
		Balance:             r.Decimal("balance"),
		Limit:               r.Decimal("limit"),
		InterestApr:         r.Decimal("interestApr"),
		TermStartTime:       r.Int64("termStartTime"),
		TermEndTime:         r.Int64("termEndTime"),
		PaymentPeriodInDays: r.Int64("paymentPeriodInDays"),
		Paused:              r.Bool("paused"),
	}

	return state, r.err
}

func (s *contractService) ConfigNumber(ctx context.Context, index core.ConfigIndex, block uint64) (decimal.Decimal, error) {
	r := s.at(ctx, s.contracts.Config, block)
	v := r.Decimal("getNumber", big.NewInt(int64(index)))
	return v, r.err
}

func (s *contractService) ReserveFeePercent(ctx context.Context, block uint64) (decimal.Decimal, error) {
	denominator, err := s.ConfigNumber(ctx, core.ConfigReserveDenominator, block)
	if err != nil {
		return decimal.Zero, err
	}

	return finance.ReserveFeePercent(denominator), nil
}

func (s *contractService) LatenessGracePeriodInDays(ctx context.Context, block uint64) (int64, error) {
	days, err := s.ConfigNumber(ctx, core.ConfigLatenessGracePeriodInDays, block)
	if err != nil {
		return 0, err
	}

	return days.IntPart(), nil
}
