// Package services contains server-side business logic: the credential store,
// the revocation ledger and the AuthService that ties them to token handling.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/timex"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// newUser is validated before a user record is built.
type newUser struct {
	FirstName string `validate:"required" label:"first name"`
	LastName  string `validate:"required" label:"last name"`
	Email     string `validate:"required" label:"email"`
	Password  string `validate:"required" label:"password"`
}

// UserService is the credential store: it creates accounts and checks
// email/password pairs.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cost        int
	validate    *validator.Validate
	now         timex.Clock
	dummyHash   string
}

// NewUserService constructs a UserService. cost is the bcrypt work factor.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cost int, clock timex.Clock) *UserService {
	if clock == nil {
		clock = time.Now
	}
	return &UserService{
		db:          db,
		repomanager: m,
		cost:        cost,
		validate:    newValidate(),
		now:         clock,
		dummyHash:   cryptox.DummyHash(cost),
	}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers a regular, unverified account.
func (s *UserService) CreateUser(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	return s.create(ctx, newUser{firstName, lastName, email, password}, false)
}

// CreateSuperuser registers an active, verified staff superuser.
func (s *UserService) CreateSuperuser(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	return s.create(ctx, newUser{firstName, lastName, email, password}, true)
}

func (s *UserService) create(ctx context.Context, in newUser, super bool) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)

	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	hash, err := cryptox.HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Username:     in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		IsVerified:   super,
		IsStaff:      super,
		IsSuperuser:  super,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// VerifyCredentials returns the user owning email if password matches.
// Unknown email, wrong password and inactive accounts are indistinguishable.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.BurnCompare(s.dummyHash, password)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: looking up user: %w", common.ErrorInternal, err)
	}

	if err := cryptox.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: checking password: %w", common.ErrorInternal, err)
	}

	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}
