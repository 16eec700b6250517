package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"lendex/core"
)

// Store in-memory entity store, used for dry-run replays and tests
type Store struct {
	mux      sync.RWMutex
	records  map[string][]byte
	cursors  map[string]core.Cursor
	commits  int
	failNext error
}

// New new in-memory entity store
func New() *Store {
	return &Store{
		records: map[string][]byte{},
		cursors: map[string]core.Cursor{},
	}
}

func (s *Store) Load(ctx context.Context, e core.Entity) (bool, error) {
	if e.EntityID() == "" {
		return false, errors.New("memory: empty id")
	}

	s.mux.RLock()
	data, ok := s.records[core.EntityKey(e)]
	s.mux.RUnlock()

	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(data, e)
}

// Put save entities outside of a commit, for seeding state
func (s *Store) Put(entities ...core.Entity) error {
	return s.Commit(context.Background(), &core.Changeset{Saves: entities})
}

func (s *Store) Commit(ctx context.Context, changes *core.Changeset) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}

	saves := make(map[string][]byte, len(changes.Saves))
	for _, e := range changes.Saves {
		if e.EntityID() == "" {
			return errors.New("memory: save with empty id")
		}

		data, err := json.Marshal(e)
		if err != nil {
			return err
		}

		saves[core.EntityKey(e)] = data
	}

	for _, e := range changes.Deletes {
		delete(s.records, core.EntityKey(e))
	}

	for key, data := range saves {
		s.records[key] = data
	}

	if c := changes.Cursor; c != nil {
		s.cursors[c.Consumer] = *c
	}

	s.commits++
	return nil
}

func (s *Store) Cursor(ctx context.Context, consumer string) (*core.Cursor, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	c := s.cursors[consumer]
	return &c, nil
}

// FailNextCommit make the next commit fail with err
func (s *Store) FailNextCommit(err error) {
	s.mux.Lock()
	s.failNext = err
	s.mux.Unlock()
}

// Commits number of successful commits
func (s *Store) Commits() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.commits
}

// Keys sorted keys of every stored entity of the kind
func (s *Store) Keys(kind core.Kind) []string {
	s.mux.RLock()
	defer s.mux.RUnlock()

	prefix := string(kind) + ":"
	var keys []string
	for key := range s.records {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key[len(prefix):])
		}
	}

	sort.Strings(keys)
	return keys
}

// Snapshot raw copy of every record, for comparing states
func (s *Store) Snapshot() map[string]string {
	s.mux.RLock()
	defer s.mux.RUnlock()

	snapshot := make(map[string]string, len(s.records))
	for key, data := range s.records {
		snapshot[key] = string(data)
	}

	return snapshot
}
