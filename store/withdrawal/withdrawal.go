package withdrawal

import (
	"context"

	"lendex/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type withdrawalStore struct {
	db *db.DB
}

// New new withdrawal read store
func New(db *db.DB) core.WithdrawalStore {
	return &withdrawalStore{db: db}
}

func (s *withdrawalStore) FindRequest(ctx context.Context, id string) (*core.WithdrawalRequest, error) {
	var request core.WithdrawalRequest
	if err := s.db.View().Where("id = ?", id).First(&request).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrNotFound
		}

		return nil, err
	}

	return &request, nil
}

func (s *withdrawalStore) ListRequests(ctx context.Context, user string) ([]*core.WithdrawalRequest, error) {
	tx := s.db.View()
	if user != "" {
		tx = tx.Where("user_address = ?", user)
	}

	var requests []*core.WithdrawalRequest
	if err := tx.Order("requested_at").Find(&requests).Error; err != nil {
		return nil, err
	}

	return requests, nil
}

func (s *withdrawalStore) ListEpochs(ctx context.Context, offset, limit int) ([]*core.WithdrawalEpoch, error) {
	tx := s.db.View().Order("epoch DESC").Offset(offset)
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var epochs []*core.WithdrawalEpoch
	if err := tx.Find(&epochs).Error; err != nil {
		return nil, err
	}

	return epochs, nil
}

func (s *withdrawalStore) ListDisbursements(ctx context.Context, request string) ([]*core.WithdrawalDisbursement, error) {
	var disbursements []*core.WithdrawalDisbursement
	if err := s.db.View().Where("token_id = ?", request).Order("epoch").Find(&disbursements).Error; err != nil {
		return nil, err
	}

	return disbursements, nil
}
