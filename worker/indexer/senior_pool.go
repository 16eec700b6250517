package indexer

import (
	"context"

	"lendex/core"
	"lendex/pkg/finance"

	"github.com/fox-one/pkg/logger"
)

func (w *Indexer) handleSeniorPoolDeposit(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	provider := r.Address("capitalProvider")
	amount := r.Decimal("amount")
	shares := r.Decimal("shares")
	if err := r.Err(); err != nil {
		return err
	}

	if _, err := w.refreshSeniorPool(ctx, b); err != nil {
		return err
	}

	// recorded by DepositedAndStaked
	if provider == w.cfg.Contracts.StakingRewards {
		logger.FromContext(ctx).Debugln("skip deposit made by staking rewards", e.Position())
		return nil
	}

	if err := b.EnsureUser(provider); err != nil {
		return err
	}

	tx := core.NewTransaction(e, core.TransactionSeniorPoolDeposit, provider)
	tx.SentAmount, tx.SentToken = amount, core.TokenUSDC
	tx.ReceivedAmount, tx.ReceivedToken = shares, core.TokenFIDU
	if price, ok := finance.FiduPrice(amount, shares); ok {
		tx.FiduPrice = price
	}

	return b.AddTransaction(tx)
}

func (w *Indexer) handleDepositedAndStaked(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	user := r.Address("user")
	deposited := r.Decimal("depositedAmount")
	shares := r.Decimal("amount")
	if err := r.Err(); err != nil {
		return err
	}

	if err := b.EnsureUser(user); err != nil {
		return err
	}

	tx := core.NewTransaction(e, core.TransactionSeniorPoolDepositAndStake, user)
	tx.SentAmount, tx.SentToken = deposited, core.TokenUSDC
	tx.ReceivedAmount, tx.ReceivedToken = shares, core.TokenFIDU
	if price, ok := finance.FiduPrice(deposited, shares); ok {
		tx.FiduPrice = price
	}

	return b.AddTransaction(tx)
}

func (w *Indexer) handleSeniorPoolWithdrawal(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	provider := r.Address("capitalProvider")
	userAmount := r.Decimal("userAmount")
	if err := r.Err(); err != nil {
		return err
	}

	pool, err := w.refreshSeniorPool(ctx, b)
	if err != nil {
		return err
	}

	if err := b.EnsureUser(provider); err != nil {
		return err
	}

	tx := core.NewTransaction(e, core.TransactionSeniorPoolWithdrawal, provider)
	tx.ReceivedAmount, tx.ReceivedToken = userAmount, core.TokenUSDC
	tx.FiduPrice = pool.SharePrice
	return b.AddTransaction(tx)
}

func (w *Indexer) handleInterestCollected(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	amount := r.Decimal("amount")
	if err := r.Err(); err != nil {
		return err
	}

	pool, err := w.refreshSeniorPool(ctx, b)
	if err != nil {
		return err
	}

	add(&pool.TotalInterestCollected, amount)
	return nil
}

func (w *Indexer) handlePrincipalCollected(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	amount := r.Decimal("amount")
	if err := r.Err(); err != nil {
		return err
	}

	pool, err := w.refreshSeniorPool(ctx, b)
	if err != nil {
		return err
	}

	add(&pool.TotalPrincipalCollected, amount)
	return nil
}

func (w *Indexer) handleReserveFundsCollected(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	amount := r.Decimal("amount")
	if err := r.Err(); err != nil {
		return err
	}

	if _, err := w.refreshSeniorPool(ctx, b); err != nil {
		return err
	}

	protocol, err := b.Protocol()
	if err != nil {
		return err
	}

	add(&protocol.TotalReserveCollected, amount)
	b.Save(protocol)
	return nil
}

func (w *Indexer) handlePrincipalWrittenDown(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	amount := r.Decimal("amount")
	if err := r.Err(); err != nil {
		return err
	}

	pool, err := w.refreshSeniorPool(ctx, b)
	if err != nil {
		return err
	}

	// writedowns are negative, write ups positive
	pool.TotalWrittenDown = pool.TotalWrittenDown.Sub(amount)
	if amount.IsNegative() {
		protocol, err := b.Protocol()
		if err != nil {
			return err
		}

		add(&protocol.TotalWritedowns, amount.Abs())
		b.Save(protocol)
	}

	return nil
}

func (w *Indexer) handleInvestmentMade(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	address := r.Address("tranchedPool")
	amount := r.Decimal("amount")
	if err := r.Err(); err != nil {
		return err
	}

	sp, err := w.refreshSeniorPool(ctx, b)
	if err != nil {
		return err
	}

	add(&sp.TotalInvested, amount)
	sp.TranchedPools.AddUnique(address)

	pool, exists, err := b.TranchedPool(address)
	if err != nil || !exists {
		return err
	}

	return w.updatePoolEstimates(ctx, b, pool)
}
