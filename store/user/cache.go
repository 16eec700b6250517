package user

import (
	"context"
	"fmt"
	"time"

	"lendex/core"

	"github.com/bluele/gcache"
	"golang.org/x/sync/singleflight"
)

// Cache users and borrowers never change once created
func Cache(store core.UserStore, exp time.Duration) core.UserStore {
	return &cacheUserStore{
		UserStore: store,
		cache:     gcache.New(2048).LRU().Expiration(exp).Build(),
		sf:        &singleflight.Group{},
	}
}

type cacheUserStore struct {
	core.UserStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheUserStore) Find(ctx context.Context, id string) (*core.User, error) {
	key := s.userKey(id)
	if v, err := s.cache.Get(key); err == nil {
		if user, ok := v.(*core.User); ok {
			return user, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		user, err := s.UserStore.Find(ctx, id)
		if err != nil {
			return nil, err
		}

		_ = s.cache.Set(key, user)
		return user, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*core.User), nil
}

func (s *cacheUserStore) FindBorrower(ctx context.Context, id string) (*core.Borrower, error) {
	key := s.borrowerKey(id)
	if v, err := s.cache.Get(key); err == nil {
		if borrower, ok := v.(*core.Borrower); ok {
			return borrower, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		borrower, err := s.UserStore.FindBorrower(ctx, id)
		if err != nil {
			return nil, err
		}

		_ = s.cache.Set(key, borrower)
		return borrower, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*core.Borrower), nil
}

func (s *cacheUserStore) userKey(id string) string {
	return fmt.Sprintf("user:id:%s", id)
}

func (s *cacheUserStore) borrowerKey(id string) string {
	return fmt.Sprintf("borrower:id:%s", id)
}
