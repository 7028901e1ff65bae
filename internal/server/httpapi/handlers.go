package httpapi

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/validation"
	"github.com/gofiber/fiber/v2"
)

type (
	RegisterRequest = validation.Registration
	LoginRequest    = validation.Credentials
)

type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

type LoginUser struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type MeResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, "VALIDATION_ERROR", validation.Message(err))
	}

	u, err := s.auth.Register(c.UserContext(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			return fail(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, common.ErrorConflict):
			return fail(c, fiber.StatusConflict, "CONFLICT", "user with this email already exists")
		}
		s.logger.Error(c.UserContext(), "register failed", "error", err)
		return internalError(c)
	}

	s.logger.Info(c.UserContext(), "Registered", "user_id", u.ID)
	return success(c, fiber.StatusCreated, Payload{
		User: UserResponse{
			ID:         u.ID,
			Email:      u.Email,
			FirstName:  u.FirstName,
			LastName:   u.LastName,
			IsVerified: u.IsVerified,
			CreatedAt:  u.CreatedAt,
		},
		Message: "user created successfully",
		Status:  "success",
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, "VALIDATION_ERROR", validation.Message(err))
	}

	token, u, err := s.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return unauthorized(c, common.ErrorUnauthorized.Error())
		}
		s.logger.Error(c.UserContext(), "login failed", "error", err)
		return internalError(c)
	}

	return success(c, fiber.StatusOK, Payload{
		User:    LoginUser{Email: u.Email, Token: token},
		Message: "login successful",
		Status:  "success",
	})
}

func (s *Server) logout(c *fiber.Ctx) error {
	token, ok := tokenFrom(c)
	if !ok {
		return unauthorized(c, "missing authorization token")
	}

	if err := s.auth.Logout(c.UserContext(), token); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return unauthorized(c, "invalid token")
		}
		s.logger.Error(c.UserContext(), "logout failed", "error", err)
		return internalError(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) me(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthorized(c, "missing authorization token")
	}

	resp := MeResponse{UserID: claims.UserID, Email: claims.Email}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return success(c, fiber.StatusOK, resp)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
