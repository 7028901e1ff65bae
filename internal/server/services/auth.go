package services

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// AuthService composes the credential store, the token issuer/validator and
// the revocation ledger into the register/login/logout flow.
type AuthService struct {
	users     *UserService
	blacklist *BlacklistService
	issuer    *auth.Issuer
	validator *auth.Validator
}

func NewAuthService(users *UserService, blacklist *BlacklistService, issuer *auth.Issuer, validator *auth.Validator) *AuthService {
	return &AuthService{users: users, blacklist: blacklist, issuer: issuer, validator: validator}
}

func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	return s.users.CreateUser(ctx, firstName, lastName, email, password)
}

// Login returns a fresh token for a valid email/password pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.VerifyCredentials(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout revokes token. The caller is expected to have authenticated it first.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.blacklist.Revoke(ctx, token)
}

// Authenticate is what protected endpoints call on an incoming token.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	return s.validator.Validate(ctx, token)
}
