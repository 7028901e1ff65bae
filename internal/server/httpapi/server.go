// Package httpapi exposes the AuthService as a JSON REST API on fiber.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Authenticator is the slice of services.AuthService this transport needs.
type Authenticator interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

type Server struct {
	address         string
	auth            Authenticator
	logger          logging.Logger
	validate        *validator.Validate
	shutdownTimeout time.Duration
	app             *fiber.App
}

func NewServer(address string, l logging.Logger, as Authenticator, shutdownTimeout time.Duration) *Server {
	s := &Server{
		address:         address,
		auth:            as,
		logger:          l.With("module", "http_server"),
		validate:        validation.New(),
		shutdownTimeout: shutdownTimeout,
	}
	s.app = s.newApp()
	return s
}

func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "gophauth",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return fail(c, fe.Code, "HTTP_ERROR", fe.Message)
			}
			s.logger.Error(c.UserContext(), "unhandled error", "error", err)
			return internalError(c)
		},
	})

	app.Use(s.requestLogger())
	app.Get("/health", s.health)

	v1 := app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", s.register)
	authGroup.Post("/login", s.login)
	authGroup.Post("/logout", s.requireAuth(), s.logout)

	v1.Get("/users/me", s.requireAuth(), s.me)

	return app
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens until ctx is cancelled, then shuts down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(s.shutdownTimeout); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
	return s.app.Listen(s.address)
}
