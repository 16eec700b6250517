package syncer

import (
	"context"
	"errors"
	"testing"

	"lendex/core"
	"lendex/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCheckpoint struct {
	block uint64
}

func (c *memoryCheckpoint) Load(ctx context.Context) (uint64, error) { return c.block, nil }

func (c *memoryCheckpoint) Save(ctx context.Context, block uint64) error {
	c.block = block
	return nil
}

type fakeSource struct {
	head    uint64
	pulled  [][2]uint64
	tracked []string
	fail    error
}

func (s *fakeSource) Track(addresses ...string) {
	s.tracked = append(s.tracked, addresses...)
}

func (s *fakeSource) HeadBlock(ctx context.Context) (uint64, error) {
	return s.head, s.fail
}

func (s *fakeSource) PullEvents(ctx context.Context, from, to uint64) ([]*core.Event, error) {
	if s.fail != nil {
		return nil, s.fail
	}

	s.pulled = append(s.pulled, [2]uint64{from, to})
	return []*core.Event{
		core.NewEvent(from, 0, 1700000000, "0x01", "0xa1", core.ContractSeniorPool, "DepositMade", nil),
	}, nil
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	source := &fakeSource{head: 130}
	checkpoint := &memoryCheckpoint{}
	events := memory.NewEventLog()

	w := New(Config{StartBlock: 100, Confirmations: 10, BatchSize: 15}, source, events, checkpoint)

	to, err := w.Sync(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(114), to)

	to, err = w.Sync(ctx)
	require.Nil(t, err)
	assert.Equal(t, uint64(120), to, "stops at head minus confirmations")

	_, err = w.Sync(ctx)
	assert.NotNil(t, err)

	assert.Equal(t, [][2]uint64{{100, 114}, {115, 120}}, source.pulled)
	assert.Equal(t, uint64(120), checkpoint.block)

	stored, err := events.ListRange(ctx, 0, 200)
	require.Nil(t, err)
	assert.Len(t, stored, 2)
}

func TestSyncFailureKeepsCheckpoint(t *testing.T) {
	source := &fakeSource{head: 50, fail: errors.New("rpc down")}
	checkpoint := &memoryCheckpoint{block: 20}

	w := New(Config{}, source, memory.NewEventLog(), checkpoint)
	_, err := w.Sync(context.Background())
	assert.NotNil(t, err)
	assert.Equal(t, uint64(20), checkpoint.block)
}

func TestSyncTracksCreatedLoans(t *testing.T) {
	ctx := context.Background()
	events := memory.NewEventLog()
	require.Nil(t, events.Save(ctx, []*core.Event{
		core.NewEvent(5, 0, 1700000000, "0x01", "0xfac", core.ContractFactory, "PoolCreated", map[string]string{
			"pool": "0x00000000000000000000000000000000000000B1", "borrower": "0xf1",
		}),
		core.NewEvent(6, 0, 1700000012, "0x02", "0xfac", core.ContractFactory, "CallableLoanCreated", map[string]string{
			"loan": "0x00000000000000000000000000000000000000d1", "borrower": "0xf1",
		}),
		core.NewEvent(7, 0, 1700000024, "0x03", "0xfac", core.ContractFactory, "BorrowerCreated", map[string]string{
			"borrower": "0xf1", "owner": "0xe1",
		}),
	}))

	source := &fakeSource{head: 100}
	w := New(Config{}, source, events, &memoryCheckpoint{block: 7})

	_, err := w.Sync(ctx)
	require.Nil(t, err)
	_, err = w.Sync(ctx)
	assert.NotNil(t, err)

	assert.Equal(t, []string{
		"0x00000000000000000000000000000000000000b1",
		"0x00000000000000000000000000000000000000d1",
	}, source.tracked, "tracked once, in creation order")
}
