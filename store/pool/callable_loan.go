package pool

import (
	"context"

	"lendex/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type callableLoanStore struct {
	db *db.DB
}

// NewCallableLoans new callable loan read store
func NewCallableLoans(db *db.DB) core.CallableLoanStore {
	return &callableLoanStore{db: db}
}

func (s *callableLoanStore) Find(ctx context.Context, id string) (*core.CallableLoan, error) {
	var loan core.CallableLoan
	if err := s.db.View().Where("id = ?", id).First(&loan).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrNotFound
		}

		return nil, err
	}

	return &loan, nil
}
