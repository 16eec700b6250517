package entity

import (
	"context"
	"errors"
	"time"

	"lendex/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

// Models every entity table, in migration order
func Models() []interface{} {
	return []interface{}{
		core.CreditLine{},
		core.TranchedPool{},
		core.Tranche{},
		core.CallableLoan{},
		core.ScheduledRepayment{},
		core.SeniorPool{},
		core.WithdrawalRequest{},
		core.WithdrawalRoster{},
		core.WithdrawalEpoch{},
		core.WithdrawalDisbursement{},
		core.DisbursementPostponement{},
		core.Protocol{},
		core.Transaction{},
		core.User{},
		core.Borrower{},
		core.Cursor{},
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		for _, model := range Models() {
			if err := db.Update().AutoMigrate(model).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

type entityStore struct {
	db *db.DB
}

// New new gorm backed entity store
func New(db *db.DB) core.EntityStore {
	return &entityStore{db: db}
}

func (s *entityStore) Load(ctx context.Context, e core.Entity) (bool, error) {
	if e.EntityID() == "" {
		return false, errors.New("entity: empty id")
	}

	err := s.db.View().Where("id = ?", e.EntityID()).First(e).Error
	if store.IsErrNotFound(err) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (s *entityStore) Commit(ctx context.Context, changes *core.Changeset) error {
	return s.db.Tx(func(tx *db.DB) error {
		for _, e := range changes.Deletes {
			if e.EntityID() == "" {
				return errors.New("entity: delete with empty id")
			}

			if err := tx.Update().Where("id = ?", e.EntityID()).Delete(e).Error; err != nil {
				return err
			}
		}

		for _, e := range changes.Saves {
			if e.EntityID() == "" {
				return errors.New("entity: save with empty id")
			}

			if err := tx.Update().Save(e).Error; err != nil {
				return err
			}
		}

		if c := changes.Cursor; c != nil {
			c.UpdatedAt = time.Now()
			if err := tx.Update().Save(c).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *entityStore) Cursor(ctx context.Context, consumer string) (*core.Cursor, error) {
	var cursor core.Cursor
	err := s.db.View().Where("consumer = ?", consumer).First(&cursor).Error
	if store.IsErrNotFound(err) {
		return &core.Cursor{}, nil
	}

	if err != nil {
		return nil, err
	}

	return &cursor, nil
}
