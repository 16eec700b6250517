package protocol

import (
	"context"

	"lendex/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type protocolStore struct {
	db *db.DB
}

// New new protocol read store
func New(db *db.DB) core.ProtocolStore {
	return &protocolStore{db: db}
}

func (s *protocolStore) Find(ctx context.Context) (*core.Protocol, error) {
	var protocol core.Protocol
	if err := s.db.View().Where("id = ?", core.ProtocolID).First(&protocol).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrNotFound
		}

		return nil, err
	}

	return &protocol, nil
}
