package user

import (
	"context"
	"testing"
	"time"

	"lendex/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	finds int
}

func (s *countingStore) Find(ctx context.Context, id string) (*core.User, error) {
	s.finds++
	if id == "0xmissing" {
		return nil, core.ErrNotFound
	}

	return &core.User{ID: id, CreatedTime: 1}, nil
}

func (s *countingStore) FindBorrower(ctx context.Context, id string) (*core.Borrower, error) {
	s.finds++
	return &core.Borrower{ID: id, Owner: "0xowner"}, nil
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{}
	s := Cache(inner, time.Minute)

	for i := 0; i < 3; i++ {
		user, err := s.Find(ctx, "0xuser")
		require.Nil(t, err)
		assert.Equal(t, "0xuser", user.ID)
	}
	assert.Equal(t, 1, inner.finds)

	borrower, err := s.FindBorrower(ctx, "0xuser")
	require.Nil(t, err)
	assert.Equal(t, "0xowner", borrower.Owner)
	assert.Equal(t, 2, inner.finds)

	_, err = s.Find(ctx, "0xmissing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.Find(ctx, "0xmissing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 4, inner.finds)
}
