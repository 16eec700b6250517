package user

import (
	"context"

	"lendex/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type userStore struct {
	db *db.DB
}

// New new user read store
func New(db *db.DB) core.UserStore {
	return &userStore{
		db: db,
	}
}

func (s *userStore) Find(ctx context.Context, id string) (*core.User, error) {
	var user core.User
	err := s.db.View().Where("id = ?", id).First(&user).Error
	if store.IsErrNotFound(err) {
		return nil, core.ErrNotFound
	}

	return &user, err
}

func (s *userStore) FindBorrower(ctx context.Context, id string) (*core.Borrower, error) {
	var borrower core.Borrower
	err := s.db.View().Where("id = ?", id).First(&borrower).Error
	if store.IsErrNotFound(err) {
		return nil, core.ErrNotFound
	}

	return &borrower, err
}
