package transaction

import (
	"context"

	"lendex/core"

	"github.com/fox-one/pkg/store/db"
)

type transactionStore struct {
	db *db.DB
}

// New new transaction read store
func New(db *db.DB) core.TransactionStore {
	return &transactionStore{db: db}
}

func (s *transactionStore) List(ctx context.Context, query core.ListTransactionsQuery) ([]*core.Transaction, error) {
	tx := s.db.View()
	if query.User != "" {
		tx = tx.Where("user_address = ?", query.User)
	}

	if query.Loan != "" {
		tx = tx.Where("loan = ?", query.Loan)
	}

	if query.Category != "" {
		tx = tx.Where("category = ?", query.Category)
	}

	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	var transactions []*core.Transaction
	if err := tx.Offset(query.Offset).Order("timestamp DESC, id").Find(&transactions).Error; err != nil {
		return nil, err
	}

	return transactions, nil
}
