// Package auth mints and checks the signed session tokens handed out on login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/timex"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenLifetime is fixed; it is not configurable.
const TokenLifetime = 24 * time.Hour

var ErrEmptySecret = errors.New("signing secret is empty")

// Claims carries the registered claims plus the user identity.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	now    timex.Clock
}

// NewIssuer copies secret; a nil clock means time.Now.
func NewIssuer(secret []byte, clock timex.Clock) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if clock == nil {
		clock = time.Now
	}
	return &Issuer{secret: append([]byte(nil), secret...), now: clock}, nil
}

// Issue returns an HS256 token for user that expires TokenLifetime from now.
func (i *Issuer) Issue(user *models.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("issue token: user id is empty")
	}

	now := i.now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
