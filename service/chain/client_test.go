package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"lendex/core"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type revertError struct{}

func (revertError) Error() string          { return "execution reverted" }
func (revertError) ErrorData() interface{} { return "0x" }

type fakeBackend struct {
	calls   int
	call    func(call ethereum.CallMsg, block *big.Int) ([]byte, error)
	logs    []types.Log
	queries []ethereum.FilterQuery
	head    uint64
	headers map[uint64]uint64
}

func (b *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, block *big.Int) ([]byte, error) {
	b.calls++
	return b.call(call, block)
}

func containsHash(hashes []common.Hash, h common.Hash) bool {
	for _, x := range hashes {
		if x == h {
			return true
		}
	}

	return false
}

func (b *fakeBackend) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	b.queries = append(b.queries, q)

	var logs []types.Log
	for _, l := range b.logs {
		matched := false
		for _, addr := range q.Addresses {
			if addr == l.Address {
				matched = true
				break
			}
		}

		if !matched || len(l.Topics) == 0 || !containsHash(q.Topics[0], l.Topics[0]) {
			continue
		}

		logs = append(logs, l)
	}

	return logs, nil
}

func (b *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: number, Time: b.headers[number.Uint64()]}, nil
}

func (b *fakeBackend) BlockNumber(ctx context.Context) (uint64, error) {
	return b.head, nil
}

const (
	seniorPool = "0x8481a6ebaf5c7dabc3f7e09e44a89531fd31f822"
	pool       = "0xd43a4f3041069c6178b99d55295b00d0db955bb5"
	user       = "0x0000000000000000000000000000000000000abc"
)

func newTestClient(t *testing.T, backend Backend) *Client {
	c, err := New(backend, Config{
		CallTimeout:   time.Second,
		MaxRetries:    3,
		RetryInterval: time.Millisecond,
		Contracts: core.Contracts{
			SeniorPool: seniorPool,
			Config:     "0x0000000000000000000000000000000000000c0f",
			Factory:    "0x0000000000000000000000000000000000000fac",
		},
	})
	require.Nil(t, err)
	return c
}

func TestCall(t *testing.T) {
	ctx := context.Background()
	methods, err := MethodsABI()
	require.Nil(t, err)

	t.Run("decodes outputs", func(t *testing.T) {
		backend := &fakeBackend{call: func(call ethereum.CallMsg, block *big.Int) ([]byte, error) {
			assert.Equal(t, int64(100), block.Int64())
			return methods.Methods["balance"].Outputs.Pack(big.NewInt(5000))
		}}

		out, err := newTestClient(t, backend).Call(ctx, pool, "balance", big.NewInt(100))
		require.Nil(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "5000", out[0].(*big.Int).String())
	})

	t.Run("revert is not retried", func(t *testing.T) {
		backend := &fakeBackend{call: func(call ethereum.CallMsg, block *big.Int) ([]byte, error) {
			return nil, revertError{}
		}}

		_, err := newTestClient(t, backend).Call(ctx, pool, "maxLimit", nil)
		assert.True(t, errors.Is(err, core.ErrCallReverted))
		assert.Equal(t, 1, backend.calls)
	})

	t.Run("empty output is a revert", func(t *testing.T) {
		backend := &fakeBackend{call: func(call ethereum.CallMsg, block *big.Int) ([]byte, error) {
			return nil, nil
		}}

		_, err := newTestClient(t, backend).Call(ctx, pool, "isLate", nil)
		assert.True(t, errors.Is(err, core.ErrCallReverted))
	})

	t.Run("transient failures are retried", func(t *testing.T) {
		backend := &fakeBackend{}
		backend.call = func(call ethereum.CallMsg, block *big.Int) ([]byte, error) {
			if backend.calls < 3 {
				return nil, errors.New("connection reset")
			}

			return methods.Methods["limit"].Outputs.Pack(big.NewInt(7))
		}

		out, err := newTestClient(t, backend).Call(ctx, pool, "limit", nil)
		require.Nil(t, err)
		assert.Equal(t, "7", out[0].(*big.Int).String())
		assert.Equal(t, 3, backend.calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		backend := &fakeBackend{call: func(call ethereum.CallMsg, block *big.Int) ([]byte, error) {
			return nil, errors.New("connection reset")
		}}

		_, err := newTestClient(t, backend).Call(ctx, pool, "limit", nil)
		require.NotNil(t, err)
		assert.False(t, errors.Is(err, core.ErrCallReverted))
		assert.Equal(t, 4, backend.calls)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := newTestClient(t, &fakeBackend{}).Call(ctx, pool, "nope", nil)
		assert.NotNil(t, err)
	})
}

func TestPullEvents(t *testing.T) {
	sigs, err := EventSignatures()
	require.Nil(t, err)

	find := func(kind core.ContractKind, name string) common.Hash {
		for id, e := range sigs[kind] {
			if e.Name == name {
				return id
			}
		}

		t.Fatalf("event %s not found", name)
		return common.Hash{}
	}

	seniorDeposit := find(core.ContractSeniorPool, "DepositMade")
	seniorEvent := sigs[core.ContractSeniorPool][seniorDeposit]
	seniorData, err := seniorEvent.Inputs.NonIndexed().Pack(big.NewInt(1000000), big.NewInt(990000000000000000))
	require.Nil(t, err)

	drawdown := find(core.ContractLoan, "DrawdownMade")
	drawdownData, err := sigs[core.ContractLoan][drawdown].Inputs.NonIndexed().Pack(big.NewInt(42))
	require.Nil(t, err)

	backend := &fakeBackend{
		headers: map[uint64]uint64{10: 1700000000, 11: 1700000012},
		logs: []types.Log{
			{
				Address:     common.HexToAddress(pool),
				Topics:      []common.Hash{drawdown, common.BytesToHash(common.HexToAddress(user).Bytes())},
				Data:        drawdownData,
				BlockNumber: 11,
				Index:       0,
				TxHash:      common.HexToHash("0x02"),
			},
			{
				Address:     common.HexToAddress(seniorPool),
				Topics:      []common.Hash{seniorDeposit, common.BytesToHash(common.HexToAddress(user).Bytes())},
				Data:        seniorData,
				BlockNumber: 10,
				Index:       3,
				TxHash:      common.HexToHash("0x01"),
			},
			{
				Address:     common.HexToAddress(pool),
				Topics:      []common.Hash{common.HexToHash("0xdead")},
				BlockNumber: 10,
				Index:       4,
			},
			{
				Address:     common.HexToAddress(pool),
				Topics:      []common.Hash{drawdown, common.BytesToHash(common.HexToAddress(user).Bytes())},
				Data:        drawdownData,
				BlockNumber: 10,
				Index:       5,
				Removed:     true,
			},
		},
	}

	client := newTestClient(t, backend)
	client.Track(pool)
	events, err := client.PullEvents(context.Background(), 10, 11)
	require.Nil(t, err)
	require.Len(t, events, 2)

	deposit := events[0]
	assert.Equal(t, "DepositMade", deposit.Name)
	assert.Equal(t, core.ContractSeniorPool, deposit.Contract)
	assert.Equal(t, seniorPool, deposit.Address)
	assert.Equal(t, int64(1700000000), deposit.BlockTimestamp)
	assert.Equal(t, user, deposit.Values()["capitalProvider"])
	assert.Equal(t, "1000000", deposit.Values()["amount"])
	assert.Equal(t, "990000000000000000", deposit.Values()["shares"])

	dd := events[1]
	assert.Equal(t, "DrawdownMade", dd.Name)
	assert.Equal(t, core.ContractLoan, dd.Contract)
	assert.Equal(t, uint64(11), dd.BlockNumber)
	assert.Equal(t, "42", dd.Values()["amount"])
}

func TestPullEventsFiltersByAddress(t *testing.T) {
	sigs, err := EventSignatures()
	require.Nil(t, err)

	var created, drawdown, paused common.Hash
	for id, e := range sigs[core.ContractFactory] {
		if e.Name == "PoolCreated" {
			created = id
		}
	}
	for id, e := range sigs[core.ContractLoan] {
		switch e.Name {
		case "DrawdownMade":
			drawdown = id
		case "Paused":
			paused = id
		}
	}
	require.NotEqual(t, common.Hash{}, created)
	require.NotEqual(t, common.Hash{}, paused)

	drawdownData, err := sigs[core.ContractLoan][drawdown].Inputs.NonIndexed().Pack(big.NewInt(42))
	require.Nil(t, err)
	pausedData, err := sigs[core.ContractLoan][paused].Inputs.NonIndexed().Pack(common.HexToAddress(user))
	require.Nil(t, err)

	factory := common.HexToAddress("0x0000000000000000000000000000000000000fac")
	stranger := common.HexToAddress("0x0000000000000000000000000000000000005555")
	borrowerTopic := common.BytesToHash(common.HexToAddress(user).Bytes())

	backend := &fakeBackend{
		headers: map[uint64]uint64{10: 1700000000, 11: 1700000012},
		logs: []types.Log{
			{
				Address:     factory,
				Topics:      []common.Hash{created, common.BytesToHash(common.HexToAddress(pool).Bytes()), borrowerTopic},
				BlockNumber: 10,
				Index:       0,
			},
			{
				Address:     common.HexToAddress(pool),
				Topics:      []common.Hash{drawdown, borrowerTopic},
				Data:        drawdownData,
				BlockNumber: 11,
				Index:       1,
			},
			{
				Address:     stranger,
				Topics:      []common.Hash{paused},
				Data:        pausedData,
				BlockNumber: 11,
				Index:       2,
			},
		},
	}

	client := newTestClient(t, backend)
	events, err := client.PullEvents(context.Background(), 10, 11)
	require.Nil(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "PoolCreated", events[0].Name)
	assert.Equal(t, pool, events[0].Values()["pool"])
	assert.Equal(t, "DrawdownMade", events[1].Name)
	assert.Equal(t, pool, events[1].Address)

	require.Len(t, backend.queries, 2)
	assert.NotContains(t, backend.queries[0].Addresses, common.HexToAddress(pool))
	assert.Contains(t, backend.queries[0].Addresses, factory)
	assert.Equal(t, []common.Address{common.HexToAddress(pool)}, backend.queries[1].Addresses)

	t.Run("many loans are queried in chunks", func(t *testing.T) {
		backend := &fakeBackend{}
		client := newTestClient(t, backend)
		for i := 1; i <= 2*addressChunk+1; i++ {
			client.Track(common.BigToAddress(big.NewInt(int64(0x10000 + i))).Hex())
		}

		_, err := client.PullEvents(context.Background(), 10, 11)
		require.Nil(t, err)
		require.Len(t, backend.queries, 4)
		assert.Len(t, backend.queries[1].Addresses, addressChunk)
		assert.Len(t, backend.queries[3].Addresses, 1)
	})
}
