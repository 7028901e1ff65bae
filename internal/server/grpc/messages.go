package grpc

import (
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/validation"
)

// Requests share their rules with the HTTP boundary.
type (
	RegisterRequest = validation.Registration
	LoginRequest    = validation.Credentials
)

type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	IsVerified bool   `json:"is_verified"`
}

type RegisterResponse struct {
	User User `json:"user"`
}

type LoginResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type Empty struct{}

type WhoAmIResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PingResponse struct {
	Status string `json:"status"`
}
