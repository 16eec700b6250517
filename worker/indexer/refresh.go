package indexer

import (
	"context"
	"errors"

	"lendex/core"
	"lendex/pkg/finance"

	"github.com/shopspring/decimal"
)

// refreshCreditLine re-read the whole credit line at the event block
func (w *Indexer) refreshCreditLine(ctx context.Context, b *Batch, address string) (*core.CreditLine, error) {
	line, exists, err := b.CreditLine(address)
	if err != nil {
		return nil, err
	}

	state, err := w.contracts.CreditLine(ctx, address, b.Block)
	if err != nil {
		return nil, err
	}

	if !exists {
		line.CreatedTime = b.Timestamp
	}

	line.Borrower = state.Borrower
	line.Balance = state.Balance
	line.InterestApr = state.InterestApr
	line.InterestAprDecimal = finance.AprDecimal(state.InterestApr)
	line.InterestAccruedAsOf = state.InterestAccruedAsOf
	line.PaymentPeriodInDays = state.PaymentPeriodInDays
	line.TermInDays = state.TermInDays
	line.NextDueTime = state.NextDueTime
	line.Limit = state.Limit
	line.InterestOwed = state.InterestOwed
	line.TermEndTime = state.TermEndTime
	line.LastFullPaymentTime = state.LastFullPaymentTime
	line.LateFeeApr = state.LateFeeApr
	line.UpdatedTime = b.Timestamp

	if err := w.resolveVersion(ctx, b, line); err != nil {
		return nil, err
	}

	b.Save(line)
	return line, nil
}

// resolveVersion probe maxLimit() on every refresh after the v2.2 migration.
// A revert means the line has no v2.2 capability at this block
func (w *Indexer) resolveVersion(ctx context.Context, b *Batch, line *core.CreditLine) error {
	if b.Timestamp < w.cfg.Protocol.V2_2MigrationTime {
		line.Version = core.ContractVersionBeforeV2_2
		line.MaxLimit = line.Limit
		return nil
	}

	maxLimit, err := w.contracts.MaxLimit(ctx, line.ID, b.Block)
	switch {
	case errors.Is(err, core.ErrCallReverted):
		line.Version = core.ContractVersionBeforeV2_2
		line.MaxLimit = line.Limit
	case err != nil:
		return err
	default:
		line.Version = core.ContractVersionV2_2
		line.MaxLimit = decimal.Max(maxLimit, line.Limit)
	}

	line.CapabilityProbed = true
	return nil
}

func (w *Indexer) refreshSeniorPool(ctx context.Context, b *Batch) (*core.SeniorPool, error) {
	pool, err := b.SeniorPool()
	if err != nil {
		return nil, err
	}

	state, err := w.contracts.SeniorPool(ctx, b.Block)
	if err != nil {
		return nil, err
	}

	pool.SharePrice = state.SharePrice
	pool.Assets = state.Assets
	pool.TotalLoansOutstanding = state.TotalLoansOutstanding
	pool.TotalShares = state.TotalShares
	pool.UpdatedTime = b.Timestamp
	b.Save(pool)
	return pool, nil
}

func (w *Indexer) refreshTranche(ctx context.Context, b *Batch, pool string, trancheID int64) (*core.Tranche, error) {
	state, err := w.contracts.Tranche(ctx, pool, trancheID, b.Block)
	if err != nil {
		return nil, err
	}

	tranche, err := b.Tranche(pool, trancheID)
	if err != nil {
		return nil, err
	}

	tranche.Pool = pool
	tranche.TrancheID = trancheID
	tranche.Slice = (trancheID - 1) / 2
	tranche.IsJunior = core.IsJuniorTranche(trancheID)
	tranche.PrincipalDeposited = state.PrincipalDeposited
	tranche.PrincipalSharePrice = state.PrincipalSharePrice
	tranche.InterestSharePrice = state.InterestSharePrice
	tranche.LockedUntil = state.LockedUntil
	b.Save(tranche)
	return tranche, nil
}

// updatePoolEstimates recompute the leverage ratio and the junior apy of the pool
func (w *Indexer) updatePoolEstimates(ctx context.Context, b *Batch, pool *core.TranchedPool) error {
	line, exists, err := b.CreditLine(pool.CreditLine)
	if err != nil {
		return err
	}

	if !exists {
		if line, err = w.refreshCreditLine(ctx, b, pool.CreditLine); err != nil {
			return err
		}
	}

	protocol, err := b.Protocol()
	if err != nil {
		return err
	}

	senior, err := w.contracts.EstimateInvestment(ctx, pool.ID, b.Block)
	if errors.Is(err, core.ErrCallReverted) {
		senior, err = decimal.Zero, nil
	}

	if err != nil {
		return err
	}

	pool.EstimatedSeniorPoolContribution = senior
	pool.EstimatedTotalAssets = pool.JuniorDeposited.Add(senior)
	pool.EstimatedLeverageRatio = finance.EstimatedLeverageRatio(
		pool.JuniorDeposited,
		pool.EstimatedTotalAssets,
		protocol.DefaultLeverageRatio,
	)
	pool.EstimatedJuniorApy = finance.EstimateJuniorAPY(finance.JuniorAPYInput{
		IsV1StyleDeal:      pool.IsV1StyleDeal,
		Balance:            line.Balance,
		Limit:              line.Limit,
		MaxLimit:           line.MaxLimit,
		InterestAprDecimal: line.InterestAprDecimal,
		LeverageRatio:      pool.EstimatedLeverageRatio,
		JuniorFeePercent:   pool.JuniorFeePercent,
		ReserveFeePercent:  pool.ReserveFeePercent,
	})
	pool.UpdatedTime = b.Timestamp
	b.Save(pool)
	return nil
}

// regenerateSchedule delete the previous repayment schedule and create a new one
func regenerateSchedule(b *Batch, loan string, previous core.StringList, repayments []finance.Repayment) core.StringList {
	for _, id := range previous {
		b.Delete(&core.ScheduledRepayment{ID: id})
	}

	ids := make(core.StringList, 0, len(repayments))
	for _, r := range repayments {
		s := &core.ScheduledRepayment{
			ID:                   core.ScheduledRepaymentID(loan, r.Period),
			Loan:                 loan,
			PaymentPeriod:        r.Period,
			EstimatedPaymentDate: r.Date,
			Interest:             r.Interest,
			Principal:            r.Principal,
		}

		b.Save(s)
		ids = append(ids, s.ID)
	}

	return ids
}
