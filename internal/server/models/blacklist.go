package models

import "time"

// BlacklistEntry records a revoked token. Token is unique across the ledger.
type BlacklistEntry struct {
	Token     string
	CreatedAt time.Time
}
