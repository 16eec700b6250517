package event

import (
	"context"

	"lendex/core"

	"github.com/fox-one/pkg/store/db"
)

type eventStore struct {
	db *db.DB
}

// New new event store
func New(db *db.DB) core.EventStore {
	return &eventStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Event{})
		if err := tx.AutoMigrate(core.Event{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *eventStore) Save(ctx context.Context, events []*core.Event) error {
	return s.db.Tx(func(tx *db.DB) error {
		for _, e := range events {
			if err := tx.Update().
				Where("block_number = ? AND log_index = ?", e.BlockNumber, e.LogIndex).
				FirstOrCreate(e).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *eventStore) ListAfter(ctx context.Context, block uint64, logIndex uint, limit int) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().
		Where("block_number > ? OR (block_number = ? AND log_index > ?)", block, block, logIndex).
		Order("block_number, log_index").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListBlock(ctx context.Context, block uint64) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().
		Where("block_number = ?", block).
		Order("log_index").
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListByName(ctx context.Context, kind core.ContractKind, names ...string) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().
		Where("contract = ? AND name IN (?)", kind, names).
		Order("block_number, log_index").
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *eventStore) ListRange(ctx context.Context, from, to uint64) ([]*core.Event, error) {
	var events []*core.Event
	if err := s.db.View().
		Where("block_number >= ? AND block_number <= ?", from, to).
		Order("block_number, log_index").
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}
