package core

import (
	"context"
)

// User an address that interacted with the protocol
type User struct {
	ID          string `sql:"size:42;PRIMARY_KEY" json:"id"`
	CreatedTime int64  `json:"created_time"`
}

// EntityKind implements Entity
func (u *User) EntityKind() Kind { return KindUser }

// EntityID implements Entity
func (u *User) EntityID() string { return u.ID }

// Borrower borrower contract created by the factory
type Borrower struct {
	ID          string `sql:"size:42;PRIMARY_KEY" json:"id"`
	Owner       string `sql:"size:42;index:idx_borrowers_owner" json:"owner"`
	CreatedTime int64  `json:"created_time"`
}

// EntityKind implements Entity
func (b *Borrower) EntityKind() Kind { return KindBorrower }

// EntityID implements Entity
func (b *Borrower) EntityID() string { return b.ID }

// UserStore user read store
type UserStore interface {
	Find(ctx context.Context, id string) (*User, error)
	FindBorrower(ctx context.Context, id string) (*Borrower, error)
}
