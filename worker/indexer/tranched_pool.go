package indexer

import (
	"context"
	"fmt"

	"lendex/core"
	"lendex/pkg/finance"

	"github.com/shopspring/decimal"
)

func (w *Indexer) requirePool(b *Batch, e *core.Event) (*core.TranchedPool, error) {
	pool, ok, err := b.TranchedPool(e.Address)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s at %s emitted by unknown pool %s", core.ErrMalformedEvent, e.Name, e.Position(), e.Address)
	}

	return pool, nil
}

func (w *Indexer) handlePoolDeposit(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	owner := r.Address("owner")
	trancheID := r.Int64("tranche")
	tokenID := r.String("tokenId")
	amount := r.Decimal("amount")
	if err := r.Err(); err != nil {
		return err
	}

	pool, err := w.requirePool(b, e)
	if err != nil {
		return err
	}

	if _, err := w.refreshTranche(ctx, b, pool.ID, trancheID); err != nil {
		return err
	}

	add(&pool.TotalDeposited, amount)
	if core.IsJuniorTranche(trancheID) {
		add(&pool.JuniorDeposited, amount)
	}

	pool.Backers.AddUnique(owner)
	pool.NumBackers = int64(len(pool.Backers))
	pool.Tokens.AddUnique(tokenID)

	if err := w.updatePoolEstimates(ctx, b, pool); err != nil {
		return err
	}

	if err := b.EnsureUser(owner); err != nil {
		return err
	}

	tx := core.NewTransaction(e, core.TransactionTranchedPoolDeposit, owner)
	tx.Loan = pool.ID
	tx.SentAmount, tx.SentToken = amount, core.TokenUSDC
	return b.AddTransaction(tx)
}

func (w *Indexer) handlePoolWithdrawal(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	owner := r.Address("owner")
	trancheID := r.Int64("tranche")
	interest := r.Decimal("interestWithdrawn")
	principal := r.Decimal("principalWithdrawn")
	if err := r.Err(); err != nil {
		return err
	}

	pool, err := w.requirePool(b, e)
	if err != nil {
		return err
	}

	tranche, err := w.refreshTranche(ctx, b, pool.ID, trancheID)
	if err != nil {
		return err
	}

	// principal leaves the pool only before the tranche is locked
	if tranche.LockedUntil == 0 {
		pool.TotalDeposited = pool.TotalDeposited.Sub(principal)
		if tranche.IsJunior {
			pool.JuniorDeposited = pool.JuniorDeposited.Sub(principal)
		}
	}

	if err := w.updatePoolEstimates(ctx, b, pool); err != nil {
		return err
	}

	tx := core.NewTransaction(e, core.TransactionTranchedPoolWithdrawal, owner)
	tx.Loan = pool.ID
	tx.ReceivedAmount, tx.ReceivedToken = interest.Add(principal), core.TokenUSDC
	return b.AddTransaction(tx)
}

func (w *Indexer) handlePoolDrawdown(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	borrower := r.Address("borrower")
	amount := r.Decimal("amount")
	if err := r.Err(); err != nil {
		return err
	}

	pool, err := w.requirePool(b, e)
	if err != nil {
		return err
	}

	line, err := w.refreshCreditLine(ctx, b, pool.CreditLine)
	if err != nil {
		return err
	}

	termStart := line.TermEndTime - line.TermInDays*finance.SecondsPerDay
	pool.RepaymentSchedule = regenerateSchedule(b, pool.ID, pool.RepaymentSchedule, finance.RepaymentSchedule(
		line.Balance,
		line.InterestAprDecimal,
		termStart,
		line.TermEndTime,
		line.PaymentPeriodInDays,
	))

	protocol, err := b.Protocol()
	if err != nil {
		return err
	}

	add(&protocol.TotalDrawdowns, amount)
	b.Save(protocol)

	if err := w.updatePoolEstimates(ctx, b, pool); err != nil {
		return err
	}

	tx := core.NewTransaction(e, core.TransactionTranchedPoolDrawdown, borrower)
	tx.Loan = pool.ID
	tx.ReceivedAmount, tx.ReceivedToken = amount, core.TokenUSDC
	return b.AddTransaction(tx)
}

func (w *Indexer) handlePoolPayment(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	payer := r.Address("payer")
	interest := r.Decimal("interestAmount")
	principal := r.Decimal("principalAmount")
	reserve := r.Decimal("reserveAmount")
	if err := r.Err(); err != nil {
		return err
	}

	pool, err := w.requirePool(b, e)
	if err != nil {
		return err
	}

	if _, err := w.refreshCreditLine(ctx, b, pool.CreditLine); err != nil {
		return err
	}

	add(&pool.InterestAmountRepaid, interest)
	add(&pool.PrincipalAmountRepaid, principal)

	if err := collect(b, interest, principal, reserve); err != nil {
		return err
	}

	if err := w.updatePoolEstimates(ctx, b, pool); err != nil {
		return err
	}

	tx := core.NewTransaction(e, core.TransactionTranchedPoolRepayment, payer)
	tx.Loan = pool.ID
	tx.SentAmount, tx.SentToken = interest.Add(principal), core.TokenUSDC
	return b.AddTransaction(tx)
}

func (w *Indexer) handleTrancheLocked(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	trancheID := r.Int64("trancheId")
	if err := r.Err(); err != nil {
		return err
	}

	pool, err := w.requirePool(b, e)
	if err != nil {
		return err
	}

	if _, err := w.refreshTranche(ctx, b, pool.ID, trancheID); err != nil {
		return err
	}

	return w.updatePoolEstimates(ctx, b, pool)
}

func (w *Indexer) handleSliceCreated(ctx context.Context, b *Batch, e *core.Event) error {
	pool, err := w.requirePool(b, e)
	if err != nil {
		return err
	}

	settings, err := w.contracts.PoolSettings(ctx, pool.ID, b.Block)
	if err != nil {
		return err
	}

	pool.NumSlices = settings.NumSlices
	pool.FundableAt = settings.FundableAt
	pool.UpdatedTime = b.Timestamp
	b.Save(pool)
	return nil
}

func (w *Indexer) setPoolFlag(b *Batch, e *core.Event, set func(pool *core.TranchedPool)) error {
	pool, err := w.requirePool(b, e)
	if err != nil {
		return err
	}

	set(pool)
	pool.UpdatedTime = b.Timestamp
	b.Save(pool)
	return nil
}

func (w *Indexer) handleDrawdownsPaused(ctx context.Context, b *Batch, e *core.Event) error {
	return w.setPoolFlag(b, e, func(pool *core.TranchedPool) { pool.DrawdownsPaused = true })
}

func (w *Indexer) handleDrawdownsUnpaused(ctx context.Context, b *Batch, e *core.Event) error {
	return w.setPoolFlag(b, e, func(pool *core.TranchedPool) { pool.DrawdownsPaused = false })
}

func (w *Indexer) handlePoolPaused(ctx context.Context, b *Batch, e *core.Event) error {
	return w.setPoolFlag(b, e, func(pool *core.TranchedPool) { pool.IsPaused = true })
}

func (w *Indexer) handlePoolUnpaused(ctx context.Context, b *Batch, e *core.Event) error {
	return w.setPoolFlag(b, e, func(pool *core.TranchedPool) { pool.IsPaused = false })
}

func (w *Indexer) handleCreditLineMigrated(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	line := r.Address("newCreditLine")
	if err := r.Err(); err != nil {
		return err
	}

	pool, err := w.requirePool(b, e)
	if err != nil {
		return err
	}

	refreshed, err := w.refreshCreditLine(ctx, b, line)
	if err != nil {
		return err
	}

	pool.CreditLine = line
	pool.Version = refreshed.Version

	return w.updatePoolEstimates(ctx, b, pool)
}

// collect add a repayment to the protocol totals
func collect(b *Batch, interest, principal, reserve decimal.Decimal) error {
	protocol, err := b.Protocol()
	if err != nil {
		return err
	}

	add(&protocol.TotalInterestCollected, interest)
	add(&protocol.TotalPrincipalCollected, principal)
	add(&protocol.TotalReserveCollected, reserve)
	b.Save(protocol)
	return nil
}
