package indexer

import (
	"context"
	"fmt"

	"lendex/core"
	"lendex/pkg/finance"

	"github.com/shopspring/decimal"
)

func (w *Indexer) requireRequest(b *Batch, e *core.Event, tokenID string) (*core.WithdrawalRequest, error) {
	req, ok, err := b.WithdrawalRequest(tokenID)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s at %s references unknown withdrawal request %s", core.ErrMalformedEvent, e.Name, e.Position(), tokenID)
	}

	return req, nil
}

func (w *Indexer) handleWithdrawalRequested(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	tokenID := r.String("tokenId")
	operator := r.Address("operator")
	fidu := r.Decimal("fiduRequested")
	if err := r.Err(); err != nil {
		return err
	}

	req, _, err := b.WithdrawalRequest(tokenID)
	if err != nil {
		return err
	}

	req.User = operator
	req.TokenID = tokenID
	req.FiduRequested = fidu
	req.RequestedAt = b.Timestamp
	b.Save(req)

	roster, err := b.Roster()
	if err != nil {
		return err
	}

	if roster.Add(tokenID) {
		b.Save(roster)
	}

	if err := b.EnsureUser(operator); err != nil {
		return err
	}

	tx := core.NewTransaction(e, core.TransactionWithdrawalRequest, operator)
	tx.SentAmount, tx.SentToken = fidu, core.TokenFIDU
	return b.AddTransaction(tx)
}

func (w *Indexer) handleWithdrawalAddedTo(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	tokenID := r.String("tokenId")
	operator := r.Address("operator")
	fidu := r.Decimal("fiduRequested")
	if err := r.Err(); err != nil {
		return err
	}

	req, err := w.requireRequest(b, e, tokenID)
	if err != nil {
		return err
	}

	add(&req.FiduRequested, fidu)
	req.IncreasedAt = b.Timestamp
	b.Save(req)

	roster, err := b.Roster()
	if err != nil {
		return err
	}

	if roster.Add(tokenID) {
		b.Save(roster)
	}

	tx := core.NewTransaction(e, core.TransactionAddToWithdrawalRequest, operator)
	tx.SentAmount, tx.SentToken = fidu, core.TokenFIDU
	return b.AddTransaction(tx)
}

func (w *Indexer) handleWithdrawalCanceled(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	tokenID := r.String("tokenId")
	operator := r.Address("operator")
	canceled := r.Decimal("fiduCanceled")
	if err := r.Err(); err != nil {
		return err
	}

	req, err := w.requireRequest(b, e, tokenID)
	if err != nil {
		return err
	}

	req.FiduRequested = decimal.Zero
	req.CanceledAt = b.Timestamp
	b.Save(req)

	tx := core.NewTransaction(e, core.TransactionCancelWithdrawalRequest, operator)
	tx.ReceivedAmount, tx.ReceivedToken = canceled, core.TokenFIDU
	return b.AddTransaction(tx)
}

// activeRequests requests of the roster with fidu still requested, in roster order
func activeRequests(b *Batch, e *core.Event) ([]*core.WithdrawalRequest, error) {
	roster, err := b.Roster()
	if err != nil {
		return nil, err
	}

	var requests []*core.WithdrawalRequest
	for _, id := range roster.Requests {
		req, ok, err := b.WithdrawalRequest(id)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, fmt.Errorf("%w: roster entry %s has no withdrawal request (%s)", core.ErrMalformedEvent, id, e.Position())
		}

		if req.FiduRequested.IsPositive() {
			requests = append(requests, req)
		}
	}

	return requests, nil
}

// handleEpochEnded distribute the epoch pro rata over every active request
func (w *Indexer) handleEpochEnded(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	epochID := r.Int64("epochId")
	endsAt := r.Int64("endsAt")
	fiduRequested := r.Decimal("fiduRequested")
	usdcAllocated := r.Decimal("usdcAllocated")
	fiduLiquidated := r.Decimal("fiduLiquidated")
	if err := r.Err(); err != nil {
		return err
	}

	b.Save(&core.WithdrawalEpoch{
		ID:             r.String("epochId"),
		Epoch:          epochID,
		EndsAt:         endsAt,
		FiduRequested:  fiduRequested,
		FiduLiquidated: fiduLiquidated,
		UsdcAllocated:  usdcAllocated,
	})

	sp, err := w.refreshSeniorPool(ctx, b)
	if err != nil {
		return err
	}

	sp.LatestEpochID = epochID

	protocol, err := b.Protocol()
	if err != nil {
		return err
	}

	add(&protocol.TotalUsdcAllocated, usdcAllocated)
	add(&protocol.TotalFiduLiquidated, fiduLiquidated)
	b.Save(protocol)

	if !fiduRequested.IsPositive() {
		return nil
	}

	requests, err := activeRequests(b, e)
	if err != nil {
		return err
	}

	for _, req := range requests {
		usdc := finance.ProRata(usdcAllocated, req.FiduRequested, fiduRequested)
		fidu := finance.ProRata(fiduLiquidated, req.FiduRequested, fiduRequested)

		add(&req.UsdcWithdrawable, usdc)
		req.FiduRequested = finance.SweepDust(req.FiduRequested.Sub(fidu))
		b.Save(req)

		b.Save(&core.WithdrawalDisbursement{
			ID:             core.DisbursementID(epochID, req.ID),
			User:           req.User,
			TokenID:        req.TokenID,
			Epoch:          epochID,
			AllocatedAt:    b.Timestamp,
			UsdcAllocated:  usdc,
			FiduLiquidated: fidu,
		})
	}

	return nil
}

// handleEpochExtended record a postponement for every active request
func (w *Indexer) handleEpochExtended(ctx context.Context, b *Batch, e *core.Event) error {
	r := e.Reader()
	epochID := r.Int64("epochId")
	newEndsAt := r.Int64("newEndsAt")
	oldEndsAt := r.Int64("oldEndsAt")
	if err := r.Err(); err != nil {
		return err
	}

	requests, err := activeRequests(b, e)
	if err != nil {
		return err
	}

	for _, req := range requests {
		b.Save(&core.DisbursementPostponement{
			ID:         core.PostponementID(epochID, oldEndsAt, req.ID),
			User:       req.User,
			TokenID:    req.TokenID,
			Epoch:      epochID,
			OldEndsAt:  oldEndsAt,
			NewEndsAt:  newEndsAt,
			ExtendedAt: b.Timestamp,
		})
	}

	return nil
}
