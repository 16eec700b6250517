package core

import (
	"context"
)

// Changeset entities written by one block, committed atomically with the cursor
type Changeset struct {
	Saves   []Entity
	Deletes []Entity
	Cursor  *Cursor
}

// Empty reports whether nothing but the cursor would be written
func (c *Changeset) Empty() bool {
	return len(c.Saves) == 0 && len(c.Deletes) == 0
}

// EntityStore write side of the materialized view
type EntityStore interface {
	// Load fill e, keyed by its kind and id, reports whether it exists
	Load(ctx context.Context, e Entity) (bool, error)
	// Commit write saves, deletes and the cursor in one transaction
	Commit(ctx context.Context, changes *Changeset) error
	// Cursor last committed position of the consumer, zero value if none
	Cursor(ctx context.Context, consumer string) (*Cursor, error)
}
