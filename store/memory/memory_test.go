package memory

import (
	"context"
	"errors"
	"testing"

	"lendex/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	line := &core.CreditLine{ID: "0xline", Balance: decimal.NewFromInt(10)}
	roster := &core.WithdrawalRoster{ID: core.WithdrawalRosterID, Requests: core.StringList{"1", "2"}}
	require.Nil(t, s.Commit(ctx, &core.Changeset{
		Saves:  []core.Entity{line, roster},
		Cursor: &core.Cursor{Consumer: "indexer", BlockNumber: 10, LogIndex: 2},
	}))

	t.Run("load", func(t *testing.T) {
		loaded := &core.CreditLine{ID: "0xline"}
		ok, err := s.Load(ctx, loaded)
		require.Nil(t, err)
		assert.True(t, ok)
		assert.Equal(t, "10", loaded.Balance.String())

		r := &core.WithdrawalRoster{ID: core.WithdrawalRosterID}
		_, err = s.Load(ctx, r)
		require.Nil(t, err)
		assert.Equal(t, core.StringList{"1", "2"}, r.Requests)
	})

	t.Run("missing", func(t *testing.T) {
		ok, err := s.Load(ctx, &core.CreditLine{ID: "0xother"})
		require.Nil(t, err)
		assert.False(t, ok)
	})

	t.Run("cursor", func(t *testing.T) {
		c, err := s.Cursor(ctx, "indexer")
		require.Nil(t, err)
		assert.Equal(t, uint64(10), c.BlockNumber)
		assert.Equal(t, uint(2), c.LogIndex)

		c, err = s.Cursor(ctx, "other")
		require.Nil(t, err)
		assert.Equal(t, "", c.Consumer)
	})

	t.Run("saved copies are isolated", func(t *testing.T) {
		line.Balance = decimal.NewFromInt(99)
		loaded := &core.CreditLine{ID: "0xline"}
		_, _ = s.Load(ctx, loaded)
		assert.Equal(t, "10", loaded.Balance.String())
	})

	t.Run("failed commit writes nothing", func(t *testing.T) {
		s.FailNextCommit(errors.New("boom"))
		err := s.Commit(ctx, &core.Changeset{Saves: []core.Entity{&core.User{ID: "0xuser"}}})
		assert.NotNil(t, err)
		assert.Empty(t, s.Keys(core.KindUser))
	})

	t.Run("delete", func(t *testing.T) {
		require.Nil(t, s.Commit(ctx, &core.Changeset{Deletes: []core.Entity{&core.CreditLine{ID: "0xline"}}}))
		assert.Empty(t, s.Keys(core.KindCreditLine))
	})
}
