package core

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind entity kind
type Kind string

const (
	KindCreditLine               Kind = "credit_line"
	KindTranchedPool             Kind = "tranched_pool"
	KindTranche                  Kind = "tranche"
	KindCallableLoan             Kind = "callable_loan"
	KindScheduledRepayment       Kind = "scheduled_repayment"
	KindSeniorPool               Kind = "senior_pool"
	KindWithdrawalRequest        Kind = "withdrawal_request"
	KindWithdrawalRoster         Kind = "withdrawal_roster"
	KindWithdrawalEpoch          Kind = "withdrawal_epoch"
	KindWithdrawalDisbursement   Kind = "withdrawal_disbursement"
	KindDisbursementPostponement Kind = "disbursement_postponement"
	KindProtocol                 Kind = "protocol"
	KindTransaction              Kind = "transaction"
	KindUser                     Kind = "user"
	KindBorrower                 Kind = "borrower"
)

// Entity is a materialized view record keyed by (kind, id)
type Entity interface {
	EntityKind() Kind
	EntityID() string
}

// EntityKey returns the store key of an entity
func EntityKey(e Entity) string {
	return fmt.Sprintf("%s:%s", e.EntityKind(), e.EntityID())
}

// NormalizeAddress lower case hex form used as entity id
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ContractVersion capability tag of a deployed credit line
type ContractVersion string

const (
	ContractVersionBeforeV2_2 ContractVersion = "BEFORE_V2_2"
	ContractVersionV2_2       ContractVersion = "V2_2"
)

// StringList ordered list of ids stored as a JSON column
type StringList []string

// Contains report whether v is in the list
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}

	return false
}

// AddUnique append v unless already present, reports whether it was added
func (l *StringList) AddUnique(v string) bool {
	if l.Contains(v) {
		return false
	}

	*l = append(*l, v)
	return true
}

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}

	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("string list: unsupported scan type")
	}

	if len(data) == 0 {
		*l = nil
		return nil
	}

	return json.Unmarshal(data, l)
}
