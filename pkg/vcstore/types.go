package vcstore

import (
	"context"
)

const (
	// id of the single item holding the visitor count
	CounterId = "counter"
)

// Counter and visitor items live in the same table, told apart by Id
type Item struct {
	Id        string `json:"id"`
	Count     int64  `json:"count,omitempty"`     // counter only
	LastVisit string `json:"lastVisit,omitempty"` // visitors only, in LastVisitFormat
}

type Store interface {
	// returns nil item if not found
	GetItem(ctx context.Context, id string) (*Item, error)
	// replaces the whole item
	PutItem(ctx context.Context, item Item) error
	// server-side read-modify-write of item's count. missing item or count counts as 0.
	IncrementCount(ctx context.Context, id string, delta int64) (int64, error)
}
