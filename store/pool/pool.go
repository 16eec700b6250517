package pool

import (
	"context"

	"lendex/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type poolStore struct {
	db *db.DB
}

// New new tranched pool read store
func New(db *db.DB) core.TranchedPoolStore {
	return &poolStore{db: db}
}

func (s *poolStore) Find(ctx context.Context, id string) (*core.TranchedPool, error) {
	var pool core.TranchedPool
	if err := s.db.View().Where("id = ?", id).First(&pool).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrNotFound
		}

		return nil, err
	}

	return &pool, nil
}

func (s *poolStore) List(ctx context.Context, query core.ListPoolsQuery) ([]*core.TranchedPool, error) {
	tx := s.db.View()
	if query.Borrower != "" {
		tx = tx.Where("borrower = ?", query.Borrower)
	}

	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	var pools []*core.TranchedPool
	if err := tx.Offset(query.Offset).Order("created_time DESC").Find(&pools).Error; err != nil {
		return nil, err
	}

	return pools, nil
}

func (s *poolStore) ListTranches(ctx context.Context, pool string) ([]*core.Tranche, error) {
	var tranches []*core.Tranche
	if err := s.db.View().Where("pool = ?", pool).Order("tranche_id").Find(&tranches).Error; err != nil {
		return nil, err
	}

	return tranches, nil
}

func (s *poolStore) ListSchedule(ctx context.Context, loan string) ([]*core.ScheduledRepayment, error) {
	var schedule []*core.ScheduledRepayment
	if err := s.db.View().Where("loan = ?", loan).Order("payment_period").Find(&schedule).Error; err != nil {
		return nil, err
	}

	return schedule, nil
}
