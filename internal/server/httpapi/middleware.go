package httpapi

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

const (
	localClaims = "claims"
	localToken  = "token"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The result is a copy; fiber header values alias a buffer that is reused
// once the request ends.
func bearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return utils.CopyString(strings.TrimSpace(token))
}

// requireAuth rejects requests without a valid, unrevoked token.
func (s *Server) requireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return unauthorized(c, "missing authorization token")
		}

		claims, err := s.auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) {
				return unauthorized(c, "invalid token")
			}
			s.logger.Error(c.UserContext(), "token check failed", "error", err)
			return internalError(c)
		}

		c.Locals(localClaims, claims)
		c.Locals(localToken, token)
		return c.Next()
	}
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.logger.Debug(c.UserContext(), "http request",
			"method", c.Method(), "path", c.Path(), "status", c.Response().StatusCode(), "duration", time.Since(start))
		return err
	}
}

func claimsFrom(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(localClaims).(*auth.Claims)
	return claims, ok
}

func tokenFrom(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(localToken).(string)
	return token, ok && token != ""
}
