package metadata

import (
	"context"
	"errors"
	"testing"
	"time"

	"lendex/core"

	"github.com/stretchr/testify/assert"
)

type countingMetadata struct {
	calls int
	err   error
}

func (m *countingMetadata) Find(ctx context.Context, id string) (*core.DealMetadata, error) {
	return nil, core.ErrNotFound
}

func (m *countingMetadata) List(ctx context.Context) ([]*core.DealMetadata, error) {
	m.calls++
	return []*core.DealMetadata{{ID: "0xabc"}}, m.err
}

func TestWarm(t *testing.T) {
	m := &countingMetadata{}
	w := New("", m)
	assert.Nil(t, w.warm(context.Background()))

	m.err = errors.New("cms down")
	assert.NotNil(t, w.warm(context.Background()))
	assert.Equal(t, 2, m.calls)
}

func TestRunWarmsOnStart(t *testing.T) {
	m := &countingMetadata{}
	w := New("@every 1h", m)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, w.Run(ctx), context.DeadlineExceeded)
	assert.Equal(t, 1, m.calls)
}
