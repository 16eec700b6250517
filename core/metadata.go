package core

import (
	"context"
)

// DealMetadata off-chain deal description kept in the CMS
type DealMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// MetadataService CMS lookups, ErrNotFound when the deal is unknown
type MetadataService interface {
	Find(ctx context.Context, id string) (*DealMetadata, error)
	List(ctx context.Context) ([]*DealMetadata, error)
}
