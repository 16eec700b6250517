package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// ContractKind the kind of contract that emitted an event
type ContractKind string

const (
	ContractSeniorPool     ContractKind = "senior_pool"
	ContractStakingRewards ContractKind = "staking_rewards"
	ContractConfig         ContractKind = "config"
	ContractFactory        ContractKind = "factory"
	// ContractLoan a tranched pool or a callable loan, resolved while indexing
	ContractLoan         ContractKind = "loan"
	ContractTranchedPool ContractKind = "tranched_pool"
	ContractCallableLoan ContractKind = "callable_loan"
)

// Event decoded contract event log
type Event struct {
	ID             int64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	BlockNumber    uint64         `sql:"unique_index:idx_events_position" json:"block_number"`
	LogIndex       uint           `sql:"unique_index:idx_events_position" json:"log_index"`
	BlockTimestamp int64          `json:"block_timestamp"`
	TxHash         string         `sql:"size:66" json:"tx_hash"`
	Address        string         `sql:"size:42;index:idx_events_address" json:"address"`
	Contract       ContractKind   `sql:"size:24" json:"contract"`
	Name           string         `sql:"size:64" json:"name"`
	Params         types.JSONText `sql:"type:TEXT" json:"params"`
	CreatedAt      time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`

	values map[string]string
}

// NewEvent build an event from decoded values
func NewEvent(block uint64, logIndex uint, timestamp int64, txHash, address string, kind ContractKind, name string, params map[string]string) *Event {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte("{}")
	}

	return &Event{
		BlockNumber:    block,
		LogIndex:       logIndex,
		BlockTimestamp: timestamp,
		TxHash:         strings.ToLower(txHash),
		Address:        strings.ToLower(address),
		Contract:       kind,
		Name:           name,
		Params:         data,
		values:         params,
	}
}

// Position "block:logIndex" of the event
func (e *Event) Position() string {
	return fmt.Sprintf("%d:%d", e.BlockNumber, e.LogIndex)
}

// TransactionID id of the user facing transaction record derived from this event
func (e *Event) TransactionID() string {
	return fmt.Sprintf("%s-%d", e.TxHash, e.LogIndex)
}

// Values decoded params
func (e *Event) Values() map[string]string {
	if e.values == nil {
		e.values = map[string]string{}
		if len(e.Params) > 0 {
			_ = json.Unmarshal(e.Params, &e.values)
		}
	}

	return e.values
}

// Reader param reader of this event
func (e *Event) Reader() *ParamReader {
	return &ParamReader{event: e}
}

// ParamReader reads typed params, the first failure is kept in Err
type ParamReader struct {
	event *Event
	err   error
}

func (r *ParamReader) raw(name string) (string, bool) {
	if r.err != nil {
		return "", false
	}

	v, ok := r.event.Values()[name]
	if !ok || v == "" {
		r.err = fmt.Errorf("%w: %s at %s missing param %q", ErrMalformedEvent, r.event.Name, r.event.Position(), name)
		return "", false
	}

	return v, true
}

// Decimal integer amount param
func (r *ParamReader) Decimal(name string) decimal.Decimal {
	v, ok := r.raw(name)
	if !ok {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		r.err = fmt.Errorf("%w: %s param %q: %v", ErrMalformedEvent, r.event.Name, name, err)
		return decimal.Zero
	}

	return d
}

// Int64 small integer param
func (r *ParamReader) Int64(name string) int64 {
	v, ok := r.raw(name)
	if !ok {
		return 0
	}

	n, err := cast.ToInt64E(v)
	if err != nil {
		r.err = fmt.Errorf("%w: %s param %q: %v", ErrMalformedEvent, r.event.Name, name, err)
		return 0
	}

	return n
}

// String id param, ints are kept in their decimal form
func (r *ParamReader) String(name string) string {
	v, _ := r.raw(name)
	return v
}

// Address lower case hex address param
func (r *ParamReader) Address(name string) string {
	v, _ := r.raw(name)
	return strings.ToLower(v)
}

// Err the first failure
func (r *ParamReader) Err() error {
	return r.err
}

// Cursor last processed event position of a consumer
type Cursor struct {
	Consumer    string    `sql:"size:64;PRIMARY_KEY" json:"consumer"`
	BlockNumber uint64    `json:"block_number"`
	LogIndex    uint      `json:"log_index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Covers reports whether the event was already processed
func (c *Cursor) Covers(e *Event) bool {
	if c == nil || c.Consumer == "" {
		return false
	}

	if e.BlockNumber != c.BlockNumber {
		return e.BlockNumber < c.BlockNumber
	}

	return e.LogIndex <= c.LogIndex
}

// EventStore raw event log store
type EventStore interface {
	// Save upsert events by (block_number, log_index)
	Save(ctx context.Context, events []*Event) error
	// ListAfter events strictly after the position, ordered by (block, logIndex)
	ListAfter(ctx context.Context, block uint64, logIndex uint, limit int) ([]*Event, error)
	// ListBlock all events of a block ordered by logIndex
	ListBlock(ctx context.Context, block uint64) ([]*Event, error)
	// ListRange events in [from, to] ordered by (block, logIndex)
	ListRange(ctx context.Context, from, to uint64) ([]*Event, error)
	// ListByName events of the contract kind with one of names, ordered by (block, logIndex)
	ListByName(ctx context.Context, kind ContractKind, names ...string) ([]*Event, error)
}

// LogSource supplies decoded logs from the chain
type LogSource interface {
	HeadBlock(ctx context.Context) (uint64, error)
	PullEvents(ctx context.Context, from, to uint64) ([]*Event, error)
	// Track add loan contracts whose logs are pulled
	Track(addresses ...string)
}
