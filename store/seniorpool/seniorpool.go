package seniorpool

import (
	"context"

	"lendex/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type seniorPoolStore struct {
	db      *db.DB
	address string
}

// New new senior pool read store, address is the configured senior pool
func New(db *db.DB, address string) core.SeniorPoolStore {
	return &seniorPoolStore{db: db, address: core.NormalizeAddress(address)}
}

func (s *seniorPoolStore) Find(ctx context.Context) (*core.SeniorPool, error) {
	var pool core.SeniorPool
	if err := s.db.View().Where("id = ?", s.address).First(&pool).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrNotFound
		}

		return nil, err
	}

	return &pool, nil
}
