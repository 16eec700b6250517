package indexer

import (
	"context"
	"time"

	"lendex/core"

	"github.com/shopspring/decimal"
)

// Batch unit of work of one block. Entities are loaded once, mutated in
// memory and written together with the cursor by a single commit
type Batch struct {
	Block     uint64
	Timestamp int64

	ctx      context.Context
	store    core.EntityStore
	defaults *Config

	loaded  map[string]core.Entity
	exists  map[string]bool
	saves   map[string]core.Entity
	deletes map[string]core.Entity
	touched map[string]bool
	order   []string
}

func newBatch(ctx context.Context, store core.EntityStore, cfg *Config, block uint64, timestamp int64) *Batch {
	return &Batch{
		Block:     block,
		Timestamp: timestamp,
		ctx:       ctx,
		store:     store,
		defaults:  cfg,
		loaded:    map[string]core.Entity{},
		exists:    map[string]bool{},
		saves:     map[string]core.Entity{},
		deletes:   map[string]core.Entity{},
		touched:   map[string]bool{},
	}
}

// load returns the cached instance of e's key, or fills e from the store
func (b *Batch) load(e core.Entity) (core.Entity, bool, error) {
	key := core.EntityKey(e)
	if cached, ok := b.loaded[key]; ok {
		return cached, b.exists[key], nil
	}

	ok, err := b.store.Load(b.ctx, e)
	if err != nil {
		return nil, false, err
	}

	b.loaded[key] = e
	b.exists[key] = ok
	return e, ok, nil
}

func (b *Batch) touch(key string) {
	if b.touched[key] {
		return
	}

	b.touched[key] = true
	b.order = append(b.order, key)
}

// Save mark e to be written, cancels a pending delete of the same key
func (b *Batch) Save(e core.Entity) {
	key := core.EntityKey(e)
	b.loaded[key] = e
	b.exists[key] = true
	b.saves[key] = e
	delete(b.deletes, key)
	b.touch(key)
}

// Delete mark e to be removed
func (b *Batch) Delete(e core.Entity) {
	key := core.EntityKey(e)
	b.loaded[key] = e
	b.exists[key] = false
	b.deletes[key] = e
	delete(b.saves, key)
	b.touch(key)
}

// Changeset dirty entities in the order they were first touched
func (b *Batch) Changeset() *core.Changeset {
	changes := &core.Changeset{}
	for _, key := range b.order {
		if e, ok := b.saves[key]; ok {
			changes.Saves = append(changes.Saves, e)
		} else if e, ok := b.deletes[key]; ok {
			changes.Deletes = append(changes.Deletes, e)
		}
	}

	return changes
}

func (b *Batch) Protocol() (*core.Protocol, error) {
	v, ok, err := b.load(&core.Protocol{ID: core.ProtocolID})
	if err != nil {
		return nil, err
	}

	p := v.(*core.Protocol)
	if !ok {
		p.DefaultLeverageRatio = b.defaults.Protocol.DefaultLeverageRatio
		p.LatenessGraceDays = b.defaults.Protocol.DefaultLatenessGraceDays
	}

	return p, nil
}

func (b *Batch) SeniorPool() (*core.SeniorPool, error) {
	v, _, err := b.load(&core.SeniorPool{ID: b.defaults.Contracts.SeniorPool})
	if err != nil {
		return nil, err
	}

	return v.(*core.SeniorPool), nil
}

func (b *Batch) Roster() (*core.WithdrawalRoster, error) {
	v, _, err := b.load(&core.WithdrawalRoster{ID: core.WithdrawalRosterID})
	if err != nil {
		return nil, err
	}

	return v.(*core.WithdrawalRoster), nil
}

func (b *Batch) CreditLine(id string) (*core.CreditLine, bool, error) {
	v, ok, err := b.load(&core.CreditLine{ID: id})
	if err != nil {
		return nil, false, err
	}

	return v.(*core.CreditLine), ok, nil
}

func (b *Batch) TranchedPool(id string) (*core.TranchedPool, bool, error) {
	v, ok, err := b.load(&core.TranchedPool{ID: id})
	if err != nil {
		return nil, false, err
	}

	return v.(*core.TranchedPool), ok, nil
}

func (b *Batch) Tranche(pool string, trancheID int64) (*core.Tranche, error) {
	v, _, err := b.load(&core.Tranche{ID: core.TrancheEntityID(pool, trancheID)})
	if err != nil {
		return nil, err
	}

	return v.(*core.Tranche), nil
}

func (b *Batch) CallableLoan(id string) (*core.CallableLoan, bool, error) {
	v, ok, err := b.load(&core.CallableLoan{ID: id})
	if err != nil {
		return nil, false, err
	}

	return v.(*core.CallableLoan), ok, nil
}

func (b *Batch) WithdrawalRequest(id string) (*core.WithdrawalRequest, bool, error) {
	v, ok, err := b.load(&core.WithdrawalRequest{ID: id})
	if err != nil {
		return nil, false, err
	}

	return v.(*core.WithdrawalRequest), ok, nil
}

// EnsureUser create the user on first reference
func (b *Batch) EnsureUser(id string) error {
	if id == "" {
		return nil
	}

	_, ok, err := b.load(&core.User{ID: id})
	if err != nil || ok {
		return err
	}

	b.Save(&core.User{ID: id, CreatedTime: b.Timestamp})
	return nil
}

// EnsureBorrower create the borrower on first reference
func (b *Batch) EnsureBorrower(id, owner string) error {
	v, ok, err := b.load(&core.Borrower{ID: id})
	if err != nil {
		return err
	}

	borrower := v.(*core.Borrower)
	if ok && (owner == "" || borrower.Owner == owner) {
		return nil
	}

	if !ok {
		borrower.CreatedTime = b.Timestamp
	}

	if owner != "" {
		borrower.Owner = owner
	}

	b.Save(borrower)
	return nil
}

// AddTransaction transactions are write once, an existing id is kept as is
func (b *Batch) AddTransaction(tx *core.Transaction) error {
	_, ok, err := b.load(&core.Transaction{ID: tx.ID})
	if err != nil || ok {
		return err
	}

	b.Save(tx)
	return nil
}

func (b *Batch) cursor(last *core.Event) *core.Cursor {
	return &core.Cursor{
		Consumer:    b.defaults.Consumer,
		BlockNumber: last.BlockNumber,
		LogIndex:    last.LogIndex,
		UpdatedAt:   time.Now(),
	}
}

func add(v *decimal.Decimal, d decimal.Decimal) {
	*v = v.Add(d)
}
