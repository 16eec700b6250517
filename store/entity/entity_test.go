package entity

import (
	"context"
	"testing"

	"lendex/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) core.EntityStore {
	t.Helper()

	database := db.MustOpen(db.SqliteInMemory())
	// every connection of :memory: is a new database
	database.Update().DB().SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close() })

	require.Nil(t, db.Migrate(database))
	return New(database)
}

func TestEntityStore(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	line := &core.CreditLine{
		ID:       "0xline",
		Balance:  decimal.NewFromInt(5000),
		Limit:    decimal.NewFromInt(6000),
		MaxLimit: decimal.NewFromInt(7000),
		Version:  core.ContractVersionV2_2,
	}
	require.Nil(t, s.Commit(ctx, &core.Changeset{
		Saves:  []core.Entity{line, &core.User{ID: "0xuser", CreatedTime: 10}},
		Cursor: &core.Cursor{Consumer: "indexer", BlockNumber: 10, LogIndex: 2},
	}))

	t.Run("load", func(t *testing.T) {
		loaded := &core.CreditLine{ID: "0xline"}
		ok, err := s.Load(ctx, loaded)
		require.Nil(t, err)
		assert.True(t, ok)
		assert.Equal(t, "5000", loaded.Balance.String())
		assert.Equal(t, "6000", loaded.Limit.String())
		assert.Equal(t, "7000", loaded.MaxLimit.String())
		assert.Equal(t, core.ContractVersionV2_2, loaded.Version)
	})

	t.Run("missing", func(t *testing.T) {
		ok, err := s.Load(ctx, &core.CreditLine{ID: "0xother"})
		require.Nil(t, err)
		assert.False(t, ok)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := s.Load(ctx, &core.CreditLine{})
		assert.NotNil(t, err)
	})

	t.Run("update and delete move the cursor", func(t *testing.T) {
		line.Balance = decimal.NewFromInt(1000)
		require.Nil(t, s.Commit(ctx, &core.Changeset{
			Saves:   []core.Entity{line},
			Deletes: []core.Entity{&core.User{ID: "0xuser"}},
			Cursor:  &core.Cursor{Consumer: "indexer", BlockNumber: 11},
		}))

		loaded := &core.CreditLine{ID: "0xline"}
		_, err := s.Load(ctx, loaded)
		require.Nil(t, err)
		assert.Equal(t, "1000", loaded.Balance.String())

		ok, err := s.Load(ctx, &core.User{ID: "0xuser"})
		require.Nil(t, err)
		assert.False(t, ok)

		c, err := s.Cursor(ctx, "indexer")
		require.Nil(t, err)
		assert.Equal(t, uint64(11), c.BlockNumber)
		assert.Equal(t, uint(0), c.LogIndex)
	})

	t.Run("failed commit writes nothing", func(t *testing.T) {
		err := s.Commit(ctx, &core.Changeset{
			Saves:  []core.Entity{&core.User{ID: "0xnew"}, &core.User{}},
			Cursor: &core.Cursor{Consumer: "indexer", BlockNumber: 12},
		})
		require.NotNil(t, err)

		ok, err := s.Load(ctx, &core.User{ID: "0xnew"})
		require.Nil(t, err)
		assert.False(t, ok)

		c, err := s.Cursor(ctx, "indexer")
		require.Nil(t, err)
		assert.Equal(t, uint64(11), c.BlockNumber)
	})

	t.Run("unknown consumer", func(t *testing.T) {
		c, err := s.Cursor(ctx, "replay")
		require.Nil(t, err)
		assert.Equal(t, uint64(0), c.BlockNumber)
	})
}
