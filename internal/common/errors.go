// Package common defines shared constants and sentinel errors used across
// gophauth layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorValidation   = errors.New("validation error")
	ErrorConflict     = errors.New("already exists")
	ErrorUnauthorized = errors.New("invalid email and password combination")

	// ErrInvalidToken is the parent of every token verdict. Boundaries match
	// on it and answer "unauthenticated" without saying why.
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrTokenRevoked   = fmt.Errorf("%w: revoked", ErrInvalidToken)
)
