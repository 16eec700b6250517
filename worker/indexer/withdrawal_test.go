package indexer

import (
	"context"
	"testing"

	"lendex/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requested(block uint64, logIndex uint, tokenID, operator, fidu string) *core.Event {
	return event(block, logIndex, core.ContractSeniorPool, seniorPoolAddress, "WithdrawalRequested", map[string]string{
		"epochId":       "1",
		"tokenId":       tokenID,
		"operator":      operator,
		"fiduRequested": fidu,
	})
}

func epochEnded(block uint64, epoch, fiduRequested, usdcAllocated, fiduLiquidated string) *core.Event {
	return event(block, 0, core.ContractSeniorPool, seniorPoolAddress, "EpochEnded", map[string]string{
		"epochId":        epoch,
		"endsAt":         "1700100000",
		"fiduRequested":  fiduRequested,
		"usdcAllocated":  usdcAllocated,
		"fiduLiquidated": fiduLiquidated,
	})
}

func TestEpochEndedTwoRequests(t *testing.T) {
	ctx := context.Background()
	w, store, _ := newTestIndexer(t)

	require.Nil(t, w.Process(ctx, []*core.Event{
		requested(10, 0, "1", alice, "1000"),
		requested(10, 1, "2", bob, "3000"),
		epochEnded(11, "1", "4000", "400000000", "4000"),
	}))

	for _, c := range []struct {
		id   string
		user string
		usdc string
		fidu string
	}{
		{"1", alice, "100000000", "1000"},
		{"2", bob, "300000000", "3000"},
	} {
		req := &core.WithdrawalRequest{ID: c.id}
		load(t, store, req)
		assert.Equal(t, "0", req.FiduRequested.String())
		assert.Equal(t, c.usdc, req.UsdcWithdrawable.String())
		assert.Equal(t, c.user, req.User)

		d := &core.WithdrawalDisbursement{ID: core.DisbursementID(1, c.id)}
		load(t, store, d)
		assert.Equal(t, c.usdc, d.UsdcAllocated.String())
		assert.Equal(t, c.fidu, d.FiduLiquidated.String())
		assert.Equal(t, c.user, d.User)
	}

	roster := &core.WithdrawalRoster{ID: core.WithdrawalRosterID}
	load(t, store, roster)
	assert.Equal(t, core.StringList{"1", "2"}, roster.Requests)

	protocol := &core.Protocol{ID: core.ProtocolID}
	load(t, store, protocol)
	assert.Equal(t, "400000000", protocol.TotalUsdcAllocated.String())
	assert.Equal(t, "4000", protocol.TotalFiduLiquidated.String())

	sp := &core.SeniorPool{ID: seniorPoolAddress}
	load(t, store, sp)
	assert.Equal(t, int64(1), sp.LatestEpochID)

	assert.Len(t, store.Keys(core.KindTransaction), 2)
	assert.Equal(t, 2, store.Commits())
}

func TestEpochDustSweep(t *testing.T) {
	ctx := context.Background()
	w, store, _ := newTestIndexer(t)

	require.Nil(t, w.Process(ctx, []*core.Event{
		requested(10, 0, "1", alice, "1000000500000000000"),
		epochEnded(11, "1", "1000000500000000000", "1000000", "1000000000000000000"),
		requested(12, 0, "2", bob, "2000000000000000000"),
		epochEnded(13, "2", "2000000000000000000", "1000000", "1000000000000000000"),
	}))

	swept := &core.WithdrawalRequest{ID: "1"}
	load(t, store, swept)
	assert.True(t, swept.FiduRequested.IsZero(), "remainder at or below 1e12 is swept")

	kept := &core.WithdrawalRequest{ID: "2"}
	load(t, store, kept)
	assert.Equal(t, "1000000000000000000", kept.FiduRequested.String())

	// request 1 was empty when epoch 2 ended
	ok, err := store.Load(ctx, &core.WithdrawalDisbursement{ID: core.DisbursementID(2, "1")})
	require.Nil(t, err)
	assert.False(t, ok)
}

func TestEpochConservation(t *testing.T) {
	ctx := context.Background()
	w, store, _ := newTestIndexer(t)

	require.Nil(t, w.Process(ctx, []*core.Event{
		requested(10, 0, "1", alice, "1"),
		requested(10, 1, "2", alice, "1"),
		requested(10, 2, "3", bob, "1"),
		epochEnded(11, "1", "3", "100", "2"),
	}))

	usdc, fidu := decimal.Zero, decimal.Zero
	for _, id := range store.Keys(core.KindWithdrawalDisbursement) {
		d := &core.WithdrawalDisbursement{ID: id}
		load(t, store, d)
		usdc = usdc.Add(d.UsdcAllocated)
		fidu = fidu.Add(d.FiduLiquidated)
	}

	assert.Len(t, store.Keys(core.KindWithdrawalDisbursement), 3)
	assert.Equal(t, "99", usdc.String())
	assert.True(t, usdc.LessThanOrEqual(decimal.NewFromInt(100)))
	assert.True(t, fidu.LessThanOrEqual(decimal.NewFromInt(2)))
}

func TestEpochWithoutRequests(t *testing.T) {
	ctx := context.Background()
	w, store, _ := newTestIndexer(t)

	require.Nil(t, w.Process(ctx, []*core.Event{
		requested(10, 0, "1", alice, "1000"),
		epochEnded(11, "1", "0", "0", "0"),
	}))

	epoch := &core.WithdrawalEpoch{ID: "1"}
	load(t, store, epoch)
	assert.Empty(t, store.Keys(core.KindWithdrawalDisbursement))

	req := &core.WithdrawalRequest{ID: "1"}
	load(t, store, req)
	assert.Equal(t, "1000", req.FiduRequested.String())
}

func TestWithdrawalAddAndCancel(t *testing.T) {
	ctx := context.Background()
	w, store, _ := newTestIndexer(t)

	require.Nil(t, w.Process(ctx, []*core.Event{
		requested(10, 0, "1", alice, "1000"),
		requested(10, 1, "2", bob, "1000"),
		event(11, 0, core.ContractSeniorPool, seniorPoolAddress, "WithdrawalAddedTo", map[string]string{
			"epochId": "1", "tokenId": "1", "operator": alice, "fiduRequested": "500",
		}),
		event(11, 1, core.ContractSeniorPool, seniorPoolAddress, "WithdrawalCanceled", map[string]string{
			"epochId": "1", "tokenId": "2", "operator": bob, "fiduCanceled": "990", "reserveFidu": "10",
		}),
		event(12, 0, core.ContractSeniorPool, seniorPoolAddress, "EpochExtended", map[string]string{
			"epochId": "1", "newEndsAt": "1700200000", "oldEndsAt": "1700100000",
		}),
		epochEnded(13, "1", "1500", "150", "1500"),
	}))

	req := &core.WithdrawalRequest{ID: "1"}
	load(t, store, req)
	assert.Equal(t, "150", req.UsdcWithdrawable.String())
	assert.NotZero(t, req.IncreasedAt)

	canceled := &core.WithdrawalRequest{ID: "2"}
	load(t, store, canceled)
	assert.True(t, canceled.FiduRequested.IsZero())
	assert.NotZero(t, canceled.CanceledAt)

	// canceled requests stay on the roster but are skipped
	roster := &core.WithdrawalRoster{ID: core.WithdrawalRosterID}
	load(t, store, roster)
	assert.Equal(t, core.StringList{"1", "2"}, roster.Requests)
	assert.Equal(t, []string{core.DisbursementID(1, "1")}, store.Keys(core.KindWithdrawalDisbursement))
	assert.Equal(t, []string{core.PostponementID(1, 1700100000, "1")}, store.Keys(core.KindDisbursementPostponement))

	tx := &core.Transaction{ID: event(11, 1, "", "", "", nil).TransactionID()}
	load(t, store, tx)
	assert.Equal(t, core.TransactionCancelWithdrawalRequest, tx.Category)
	assert.Equal(t, "990", tx.ReceivedAmount.String())
}

func TestWithdrawalUnknownRequest(t *testing.T) {
	w, store, _ := newTestIndexer(t)

	err := w.Process(context.Background(), []*core.Event{
		event(10, 0, core.ContractSeniorPool, seniorPoolAddress, "WithdrawalAddedTo", map[string]string{
			"epochId": "1", "tokenId": "9", "operator": alice, "fiduRequested": "500",
		}),
	})

	assert.ErrorIs(t, err, core.ErrMalformedEvent)
	assert.Equal(t, 0, store.Commits())
}
