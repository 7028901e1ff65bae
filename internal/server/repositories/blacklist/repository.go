package blacklist

import (
	"context"
	"time"
)

// Repository is the revocation ledger store. Create must detect a duplicate
// token atomically and report it as common.ErrorConflict.
type Repository interface {
	Create(ctx context.Context, token string, createdAt time.Time) error
	Exists(ctx context.Context, token string) (bool, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}
