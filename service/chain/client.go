package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"lendex/core"
	"lendex/pkg/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/fox-one/pkg/logger"
)

// Backend the subset of ethclient.Client used by the chain client
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Config chain client config
type Config struct {
	CallTimeout   time.Duration
	MaxRetries    uint64
	RetryInterval time.Duration
	Contracts     core.Contracts
}

// addressChunk max addresses of one eth_getLogs query
const addressChunk = 200

// Client json-rpc chain reader and log source
type Client struct {
	backend      Backend
	methods      abi.ABI
	events       map[core.ContractKind]map[common.Hash]*abi.Event
	statics      map[common.Address]core.ContractKind
	staticAddrs  []common.Address
	staticTopics []common.Hash
	loanTopics   []common.Hash
	timeout      time.Duration
	retries      uint64
	interval     time.Duration

	mux   sync.RWMutex
	loans map[common.Address]bool
}

// Dial connect to the json-rpc endpoint
func Dial(ctx context.Context, endpoint string) (*ethclient.Client, error) {
	return ethclient.DialContext(ctx, endpoint)
}

// New new chain client
func New(backend Backend, cfg Config) (*Client, error) {
	methods, err := MethodsABI()
	if err != nil {
		return nil, err
	}

	events, err := EventSignatures()
	if err != nil {
		return nil, err
	}

	c := &Client{
		backend:  backend,
		methods:  methods,
		events:   events,
		statics:  map[common.Address]core.ContractKind{},
		loans:    map[common.Address]bool{},
		timeout:  cfg.CallTimeout,
		retries:  cfg.MaxRetries,
		interval: cfg.RetryInterval,
	}

	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}

	for addr, kind := range map[string]core.ContractKind{
		cfg.Contracts.SeniorPool:     core.ContractSeniorPool,
		cfg.Contracts.StakingRewards: core.ContractStakingRewards,
		cfg.Contracts.Config:         core.ContractConfig,
		cfg.Contracts.Factory:        core.ContractFactory,
	} {
		if addr != "" {
			c.statics[common.HexToAddress(addr)] = kind
		}
	}

	kinds := map[core.ContractKind]bool{}
	for addr, kind := range c.statics {
		c.staticAddrs = append(c.staticAddrs, addr)
		kinds[kind] = true
	}
	sortAddresses(c.staticAddrs)

	seen := map[common.Hash]bool{}
	for kind := range kinds {
		for id := range events[kind] {
			if !seen[id] {
				seen[id] = true
				c.staticTopics = append(c.staticTopics, id)
			}
		}
	}
	sortHashes(c.staticTopics)

	for id := range events[core.ContractLoan] {
		c.loanTopics = append(c.loanTopics, id)
	}
	sortHashes(c.loanTopics)

	return c, nil
}

func sortAddresses(addrs []common.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Hex() < addrs[j].Hex()
	})
}

func sortHashes(hashes []common.Hash) {
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Hex() < hashes[j].Hex()
	})
}

// Track add loan contracts whose logs are pulled from now on
func (c *Client) Track(addresses ...string) {
	c.mux.Lock()
	defer c.mux.Unlock()

	for _, addr := range addresses {
		if addr != "" {
			c.loans[common.HexToAddress(addr)] = true
		}
	}
}

func (c *Client) trackedLoans() []common.Address {
	c.mux.RLock()
	defer c.mux.RUnlock()

	addrs := make([]common.Address, 0, len(c.loans))
	for addr := range c.loans {
		addrs = append(addrs, addr)
	}

	sortAddresses(addrs)
	return addrs
}

func (c *Client) retry(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	if c.interval > 0 {
		policy.InitialInterval = c.interval
	}

	attempt := 0
	return backoff.Retry(func() error {
		if attempt > 0 {
			metrics.ObserveRetry(name)
			logger.FromContext(ctx).WithField("call", name).Debugf("retry #%d", attempt)
		}
		attempt++

		actx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		err := fn(actx)
		if errors.Is(err, core.ErrCallReverted) {
			return backoff.Permanent(err)
		}

		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, c.retries), ctx))
}

// Call implements core.ChainReader
func (c *Client) Call(ctx context.Context, contract, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	m, ok := c.methods.Methods[method]
	if !ok {
		return nil, fmt.Errorf("chain: unknown method %q", method)
	}

	input, err := c.methods.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("chain: pack %s: %w", method, err)
	}

	to := common.HexToAddress(contract)
	var out []interface{}
	err = c.retry(ctx, method, func(ctx context.Context) error {
		data, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, block)
		if err != nil {
			if isRevert(err) {
				return fmt.Errorf("%w: %s.%s: %v", core.ErrCallReverted, contract, method, err)
			}

			return err
		}

		if len(data) == 0 {
			return fmt.Errorf("%w: %s.%s: empty output", core.ErrCallReverted, contract, method)
		}

		out, err = m.Outputs.Unpack(data)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("chain: unpack %s: %w", method, err))
		}

		return nil
	})

	return out, err
}

func isRevert(err error) bool {
	var de rpc.DataError
	if errors.As(err, &de) && de.ErrorData() != nil {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution reverted") || strings.Contains(msg, "invalid opcode")
}

// HeadBlock implements core.LogSource
func (c *Client) HeadBlock(ctx context.Context) (uint64, error) {
	var head uint64
	err := c.retry(ctx, "eth_blockNumber", func(ctx context.Context) error {
		n, err := c.backend.BlockNumber(ctx)
		head = n
		return err
	})

	return head, err
}

// HeaderTime timestamp of the block
func (c *Client) HeaderTime(ctx context.Context, block uint64) (int64, error) {
	var ts int64
	err := c.retry(ctx, "eth_getBlockByNumber", func(ctx context.Context) error {
		header, err := c.backend.HeaderByNumber(ctx, new(big.Int).SetUint64(block))
		if err != nil {
			return err
		}

		if header == nil {
			return fmt.Errorf("chain: block %d not found", block)
		}

		ts = int64(header.Time)
		return nil
	})

	return ts, err
}

// FilterLogs raw logs of addresses carrying one of topics in [from, to]
func (c *Client) FilterLogs(ctx context.Context, from, to uint64, addresses []common.Address, topics []common.Hash) ([]types.Log, error) {
	var logs []types.Log
	for start := 0; start < len(addresses); start += addressChunk {
		end := start + addressChunk
		if end > len(addresses) {
			end = len(addresses)
		}

		query := ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(to),
			Addresses: addresses[start:end],
			Topics:    [][]common.Hash{topics},
		}

		var chunk []types.Log
		err := c.retry(ctx, "eth_getLogs", func(ctx context.Context) error {
			l, err := c.backend.FilterLogs(ctx, query)
			chunk = l
			return err
		})
		if err != nil {
			return nil, err
		}

		logs = append(logs, chunk...)
	}

	return logs, nil
}

// PullEvents implements core.LogSource. Static contracts are pulled first so
// loans created by the factory in the range are tracked before their own logs
func (c *Client) PullEvents(ctx context.Context, from, to uint64) ([]*core.Event, error) {
	logs, err := c.FilterLogs(ctx, from, to, c.staticAddrs, c.staticTopics)
	if err != nil {
		return nil, err
	}

	times := map[uint64]int64{}
	events, err := c.decode(ctx, logs, times)
	if err != nil {
		return nil, err
	}

	for _, e := range events {
		if e.Contract == core.ContractFactory {
			c.Track(createdLoan(e))
		}
	}

	if loans := c.trackedLoans(); len(loans) > 0 {
		logs, err := c.FilterLogs(ctx, from, to, loans, c.loanTopics)
		if err != nil {
			return nil, err
		}

		loanEvents, err := c.decode(ctx, logs, times)
		if err != nil {
			return nil, err
		}

		events = append(events, loanEvents...)
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber < events[j].BlockNumber
		}

		return events[i].LogIndex < events[j].LogIndex
	})

	return events, nil
}

// createdLoan address of the loan a factory event created, empty otherwise
func createdLoan(e *core.Event) string {
	switch e.Name {
	case "PoolCreated":
		return e.Values()["pool"]
	case "CallableLoanCreated":
		return e.Values()["loan"]
	default:
		return ""
	}
}

func (c *Client) decode(ctx context.Context, logs []types.Log, times map[uint64]int64) ([]*core.Event, error) {
	var err error
	events := make([]*core.Event, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}

		kind, event := c.match(l)
		if event == nil {
			continue
		}

		ts, ok := times[l.BlockNumber]
		if !ok {
			if ts, err = c.HeaderTime(ctx, l.BlockNumber); err != nil {
				return nil, err
			}

			times[l.BlockNumber] = ts
		}

		params, err := decodeLog(event, l)
		if err != nil {
			return nil, fmt.Errorf("decode %s at %d:%d: %w", event.Name, l.BlockNumber, l.Index, err)
		}

		events = append(events, core.NewEvent(l.BlockNumber, l.Index, ts, l.TxHash.Hex(), l.Address.Hex(), kind, event.Name, params))
	}

	return events, nil
}

func (c *Client) match(l types.Log) (core.ContractKind, *abi.Event) {
	if len(l.Topics) == 0 {
		return "", nil
	}

	kind, ok := c.statics[l.Address]
	if !ok {
		kind = core.ContractLoan
	}

	return kind, c.events[kind][l.Topics[0]]
}

func decodeLog(event *abi.Event, l types.Log) (map[string]string, error) {
	values := map[string]interface{}{}

	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}

	if len(indexed) > 0 {
		if len(l.Topics)-1 != len(indexed) {
			return nil, fmt.Errorf("%w: want %d topics, got %d", core.ErrMalformedEvent, len(indexed)+1, len(l.Topics))
		}

		if err := abi.ParseTopicsIntoMap(values, indexed, l.Topics[1:]); err != nil {
			return nil, err
		}
	}

	if nonIndexed := event.Inputs.NonIndexed(); len(nonIndexed) > 0 {
		if err := nonIndexed.UnpackIntoMap(values, l.Data); err != nil {
			return nil, err
		}
	}

	params := make(map[string]string, len(values))
	for k, v := range values {
		params[k] = formatValue(v)
	}

	return params, nil
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case common.Address:
		return strings.ToLower(x.Hex())
	case *big.Int:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case common.Hash:
		return x.Hex()
	default:
		return fmt.Sprint(x)
	}
}
