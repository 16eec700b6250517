package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// TransactionCategory user facing transaction category
type TransactionCategory string

const (
	TransactionSeniorPoolDeposit         TransactionCategory = "SENIOR_POOL_DEPOSIT"
	TransactionSeniorPoolDepositAndStake TransactionCategory = "SENIOR_POOL_DEPOSIT_AND_STAKE"
	TransactionSeniorPoolWithdrawal      TransactionCategory = "SENIOR_POOL_WITHDRAWAL"
	TransactionWithdrawalRequest         TransactionCategory = "SENIOR_POOL_WITHDRAWAL_REQUEST"
	TransactionAddToWithdrawalRequest    TransactionCategory = "SENIOR_POOL_ADD_TO_WITHDRAWAL_REQUEST"
	TransactionCancelWithdrawalRequest   TransactionCategory = "SENIOR_POOL_CANCEL_WITHDRAWAL_REQUEST"
	TransactionTranchedPoolDeposit       TransactionCategory = "TRANCHED_POOL_DEPOSIT"
	TransactionTranchedPoolWithdrawal    TransactionCategory = "TRANCHED_POOL_WITHDRAWAL"
	TransactionTranchedPoolDrawdown      TransactionCategory = "TRANCHED_POOL_DRAWDOWN"
	TransactionTranchedPoolRepayment     TransactionCategory = "TRANCHED_POOL_REPAYMENT"
	TransactionCallableLoanDeposit       TransactionCategory = "CALLABLE_LOAN_DEPOSIT"
	TransactionCallableLoanWithdrawal    TransactionCategory = "CALLABLE_LOAN_WITHDRAWAL"
	TransactionCallableLoanDrawdown      TransactionCategory = "CALLABLE_LOAN_DRAWDOWN"
	TransactionCallableLoanRepayment     TransactionCategory = "CALLABLE_LOAN_REPAYMENT"
)

// SupportedToken token moved by a transaction
type SupportedToken string

const (
	TokenUSDC SupportedToken = "USDC"
	TokenFIDU SupportedToken = "FIDU"
)

// Transaction user facing record derived from one event, written once
type Transaction struct {
	ID             string              `sql:"size:96;PRIMARY_KEY" json:"id"`
	Category       TransactionCategory `sql:"size:48" json:"category"`
	User           string              `sql:"column:user_address;size:42;index:idx_transactions_user" json:"user"`
	Loan           string              `sql:"size:42;index:idx_transactions_loan" json:"loan,omitempty"`
	SentAmount     decimal.Decimal     `sql:"type:decimal(65,0)" json:"sent_amount"`
	SentToken      SupportedToken      `sql:"size:8" json:"sent_token,omitempty"`
	ReceivedAmount decimal.Decimal     `sql:"type:decimal(65,0)" json:"received_amount"`
	ReceivedToken  SupportedToken      `sql:"size:8" json:"received_token,omitempty"`
	FiduPrice      decimal.Decimal     `sql:"type:decimal(65,0)" json:"fidu_price,omitempty"`
	Timestamp      int64               `sql:"index:idx_transactions_timestamp" json:"timestamp"`
	BlockNumber    uint64              `json:"block_number"`
}

// EntityKind implements Entity
func (t *Transaction) EntityKind() Kind { return KindTransaction }

// EntityID implements Entity
func (t *Transaction) EntityID() string { return t.ID }

// NewTransaction transaction derived from the event
func NewTransaction(e *Event, category TransactionCategory, user string) *Transaction {
	return &Transaction{
		ID:             e.TransactionID(),
		Category:       category,
		User:           user,
		SentAmount:     decimal.Zero,
		ReceivedAmount: decimal.Zero,
		FiduPrice:      decimal.Zero,
		Timestamp:      e.BlockTimestamp,
		BlockNumber:    e.BlockNumber,
	}
}

// ListTransactionsQuery transaction listing query
type ListTransactionsQuery struct {
	User     string
	Loan     string
	Category TransactionCategory
	Offset   int
	Limit    int
}

// TransactionStore transaction read store
type TransactionStore interface {
	List(ctx context.Context, query ListTransactionsQuery) ([]*Transaction, error)
}
