package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// BlacklistService is the revocation ledger.
type BlacklistService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         timex.Clock
}

func NewBlacklistService(db *sql.DB, m repomanager.RepositoryManager, clock timex.Clock) *BlacklistService {
	if clock == nil {
		clock = time.Now
	}
	return &BlacklistService{db: db, repomanager: m, now: clock}
}

// Revoke records token. Revoking the same token twice yields common.ErrorConflict.
func (s *BlacklistService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", common.ErrorValidation)
	}
	if err := s.repomanager.Blacklist(s.db).Create(ctx, token, s.now().UTC()); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

func (s *BlacklistService) IsRevoked(ctx context.Context, token string) (bool, error) {
	return s.repomanager.Blacklist(s.db).Exists(ctx, token)
}

// PurgeOlderThan removes entries recorded more than age ago and returns how
// many were removed.
func (s *BlacklistService) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	if age <= 0 {
		return 0, fmt.Errorf("%w: purge age must be positive", common.ErrorValidation)
	}
	n, err := s.repomanager.Blacklist(s.db).DeleteOlderThan(ctx, s.now().UTC().Add(-age))
	if err != nil {
		return 0, fmt.Errorf("error purging blacklist: %w", err)
	}
	return n, nil
}

func (s *BlacklistService) Count(ctx context.Context) (int64, error) {
	return s.repomanager.Blacklist(s.db).Count(ctx)
}
