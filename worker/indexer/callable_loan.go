package indexer

import (
	"context"
	"fmt"

	"lendex/core"
	"lendex/pkg/finance"
)

func (w *Indexer) requireLoan(b *Batch, e *core.Event) (*core.CallableLoan, error) {
	loan, ok, err := b.CallableLoan(e.Address)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s at %s emitted by unknown callable loan %s", core.ErrMalformedEvent, e.Name, e.Position(), e.Address)
	}

	return loan, nil
}

func (w *Indexer) handleLoanDeposit(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	owner := r.Address("owner")
	tokenID := r.String("tokenId")
	amount := r.Decimal("amount")
	if err := r.Err(); err != nil {
		return err
	}

	loan, err := w.requireLoan(b, e)
	if err != nil {
		return err
	}

	add(&loan.TotalDeposited, amount)
	loan.Backers.AddUnique(owner)
	loan.NumBackers = int64(len(loan.Backers))
	loan.Tokens.AddUnique(tokenID)
	loan.UpdatedTime = b.Timestamp
	b.Save(loan)

	if err := b.EnsureUser(owner); err != nil {
		return err
	}

	tx := core.NewTransaction(e, core.TransactionCallableLoanDeposit, owner)
	tx.Loan = loan.ID
	tx.SentAmount, tx.SentToken = amount, core.TokenUSDC
	return b.AddTransaction(tx)
}

func (w *Indexer) handleLoanWithdrawal(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	owner := r.Address("owner")
	interest := r.Decimal("interestWithdrawn")
	principal := r.Decimal("principalWithdrawn")
	if err := r.Err(); err != nil {
		return err
	}

	loan, err := w.requireLoan(b, e)
	if err != nil {
		return err
	}

	// before the first drawdown principal goes back to the lender
	if loan.PrincipalAmount.IsZero() {
		loan.TotalDeposited = loan.TotalDeposited.Sub(principal)
	}

	loan.UpdatedTime = b.Timestamp
	b.Save(loan)

	tx := core.NewTransaction(e, core.TransactionCallableLoanWithdrawal, owner)
	tx.Loan = loan.ID
	tx.ReceivedAmount, tx.ReceivedToken = interest.Add(principal), core.TokenUSDC
	return b.AddTransaction(tx)
}

func (w *Indexer) handleLoanDrawdown(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	borrower := r.Address("borrower")
	amount := r.Decimal("amount")
	if err := r.Err(); err != nil {
		return err
	}

	loan, err := w.requireLoan(b, e)
	if err != nil {
		return err
	}

	terms, err := w.contracts.CallableLoanTerms(ctx, loan.ID, b.Block)
	if err != nil {
		return err
	}

	applyLoanTerms(loan, terms)
	add(&loan.PrincipalAmount, amount)
	loan.RepaymentSchedule = regenerateSchedule(b, loan.ID, loan.RepaymentSchedule, finance.RepaymentSchedule(
		loan.PrincipalAmount,
		loan.InterestAprDecimal,
		loan.TermStartTime,
		loan.TermEndTime,
		loan.PaymentPeriodInDays,
	))
	loan.UpdatedTime = b.Timestamp
	b.Save(loan)

	protocol, err := b.Protocol()
	if err != nil {
		return err
	}

	add(&protocol.TotalDrawdowns, amount)
	b.Save(protocol)

	tx := core.NewTransaction(e, core.TransactionCallableLoanDrawdown, borrower)
	tx.Loan = loan.ID
	tx.ReceivedAmount, tx.ReceivedToken = amount, core.TokenUSDC
	return b.AddTransaction(tx)
}

func (w *Indexer) handleLoanPayment(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	payer := r.Address("payer")
	interest := r.Decimal("interestAmount")
	principal := r.Decimal("principalAmount")
	reserve := r.Decimal("reserveAmount")
	if err := r.Err(); err != nil {
		return err
	}

	loan, err := w.requireLoan(b, e)
	if err != nil {
		return err
	}

	add(&loan.InterestAmountRepaid, interest)
	add(&loan.PrincipalAmountRepaid, principal)
	loan.UpdatedTime = b.Timestamp
	b.Save(loan)

	if err := collect(b, interest, principal, reserve); err != nil {
		return err
	}

	tx := core.NewTransaction(e, core.TransactionCallableLoanRepayment, payer)
	tx.Loan = loan.ID
	tx.SentAmount, tx.SentToken = interest.Add(principal), core.TokenUSDC
	return b.AddTransaction(tx)
}

func (w *Indexer) setLoanPaused(b *Batch, e *core.Event, paused bool) error {
	loan, err := w.requireLoan(b, e)
	if err != nil {
		return err
	}

	loan.IsPaused = paused
	loan.UpdatedTime = b.Timestamp
	b.Save(loan)
	return nil
}

func (w *Indexer) handleLoanPaused(ctx context.Context, b *Batch, e *core.Event) error {
	return w.setLoanPaused(b, e, true)
}

func (w *Indexer) handleLoanUnpaused(ctx context.Context, b *Batch, e *core.Event) error {
	return w.setLoanPaused(b, e, false)
}
