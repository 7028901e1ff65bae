package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/timex"
	"github.com/golang-jwt/jwt/v5"
)

// RevocationChecker reports whether a token sits in the revocation ledger.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Validator checks signature, then expiry, then revocation, in that order.
type Validator struct {
	secret  []byte
	revoked RevocationChecker
	now     timex.Clock
	parser  *jwt.Parser
}

func NewValidator(secret []byte, revoked RevocationChecker, clock timex.Clock) (*Validator, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if revoked == nil {
		return nil, fmt.Errorf("revocation checker is nil")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Validator{
		secret:  append([]byte(nil), secret...),
		revoked: revoked,
		now:     clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Validate returns the token claims, or an error wrapping common.ErrInvalidToken
// (malformed, expired, revoked). Ledger faults are returned as is.
func (v *Validator) Validate(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, common.ErrTokenMalformed
	}

	claims := &Claims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, common.ErrTokenMalformed
	}

	if claims.ExpiresAt == nil || claims.UserID == "" {
		return nil, common.ErrTokenMalformed
	}
	if v.now().After(claims.ExpiresAt.Time) {
		return nil, common.ErrTokenExpired
	}

	revoked, err := v.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("revocation lookup: %w", err)
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}

	return claims, nil
}
