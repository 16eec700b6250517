package indexer

import (
	"context"

	"lendex/core"
	"lendex/pkg/finance"
)

func (w *Indexer) handlePoolCreated(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	address := r.Address("pool")
	borrower := r.Address("borrower")
	if err := r.Err(); err != nil {
		return err
	}

	pool, exists, err := b.TranchedPool(address)
	if err != nil {
		return err
	}

	if !exists {
		pool.CreatedTime = b.Timestamp
	}

	settings, err := w.contracts.PoolSettings(ctx, address, b.Block)
	if err != nil {
		return err
	}

	reserveFee, err := w.contracts.ReserveFeePercent(ctx, b.Block)
	if err != nil {
		return err
	}

	pool.Borrower = borrower
	pool.CreditLine = settings.CreditLine
	pool.JuniorFeePercent = settings.JuniorFeePercent
	pool.ReserveFeePercent = reserveFee
	pool.NumSlices = settings.NumSlices
	pool.IsPaused = settings.Paused
	pool.DrawdownsPaused = settings.DrawdownsPaused
	pool.FundableAt = settings.FundableAt
	pool.IsV1StyleDeal = w.cfg.Protocol.IsV1StyleDeal(address)

	line, err := w.refreshCreditLine(ctx, b, pool.CreditLine)
	if err != nil {
		return err
	}
	pool.Version = line.Version

	protocol, err := b.Protocol()
	if err != nil {
		return err
	}

	if protocol.TranchedPools.AddUnique(address) {
		b.Save(protocol)
	}

	if err := b.EnsureUser(borrower); err != nil {
		return err
	}

	return w.updatePoolEstimates(ctx, b, pool)
}

func (w *Indexer) handleCallableLoanCreated(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	address := r.Address("loan")
	borrower := r.Address("borrower")
	if err := r.Err(); err != nil {
		return err
	}

	loan, exists, err := b.CallableLoan(address)
	if err != nil {
		return err
	}

	if !exists {
		loan.CreatedTime = b.Timestamp
	}

	terms, err := w.contracts.CallableLoanTerms(ctx, address, b.Block)
	if err != nil {
		return err
	}

	loan.Borrower = borrower
	applyLoanTerms(loan, terms)
	loan.UpdatedTime = b.Timestamp
	b.Save(loan)

	protocol, err := b.Protocol()
	if err != nil {
		return err
	}

	if protocol.CallableLoans.AddUnique(address) {
		b.Save(protocol)
	}

	return b.EnsureUser(borrower)
}

func (w *Indexer) handleBorrowerCreated(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	borrower := r.Address("borrower")
	owner := r.Address("owner")
	if err := r.Err(); err != nil {
		return err
	}

	if err := b.EnsureBorrower(borrower, owner); err != nil {
		return err
	}

	return b.EnsureUser(owner)
}

func applyLoanTerms(loan *core.CallableLoan, terms *core.CallableLoanState) {
	if terms.CreditLine != "" {
		loan.CreditLine = terms.CreditLine
	}
	loan.InterestApr = terms.InterestApr
	loan.InterestAprDecimal = finance.AprDecimal(terms.InterestApr)
	loan.PaymentPeriodInDays = terms.PaymentPeriodInDays
	loan.TermStartTime = terms.TermStartTime
	loan.TermEndTime = terms.TermEndTime
	loan.IsPaused = terms.Paused
}
