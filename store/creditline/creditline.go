package creditline

import (
	"context"

	"lendex/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type creditLineStore struct {
	db *db.DB
}

// New new credit line read store
func New(db *db.DB) core.CreditLineStore {
	return &creditLineStore{db: db}
}

func (s *creditLineStore) Find(ctx context.Context, id string) (*core.CreditLine, error) {
	var line core.CreditLine
	if err := s.db.View().Where("id = ?", id).First(&line).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrNotFound
		}

		return nil, err
	}

	return &line, nil
}
