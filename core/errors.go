package core

import (
	"errors"
	"strconv"
)

var (
	// ErrCallReverted the contract call reverted, usually because the deployed
	// version of the contract does not expose the method
	ErrCallReverted = errors.New("contract call reverted")
	// ErrMalformedEvent the event payload misses a required value
	ErrMalformedEvent = errors.New("malformed event")
	// ErrNotFound entity not found
	ErrNotFound = errors.New("not found")
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrInvalidArgument invalid query argument
	ErrInvalidArgument ErrorCode = 100001

	// ErrPoolNotFound no pool
	ErrPoolNotFound ErrorCode = 100100
	// ErrCreditLineNotFound no credit line
	ErrCreditLineNotFound ErrorCode = 100101
	// ErrCallableLoanNotFound no callable loan
	ErrCallableLoanNotFound ErrorCode = 100102
	// ErrSeniorPoolNotFound senior pool not indexed yet
	ErrSeniorPoolNotFound ErrorCode = 100103
	// ErrWithdrawalRequestNotFound no withdrawal request
	ErrWithdrawalRequestNotFound ErrorCode = 100104
	// ErrUserNotFound no user
	ErrUserNotFound ErrorCode = 100105
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
