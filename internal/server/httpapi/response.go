package httpapi

import (
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every JSON reply uses.
type Response struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Payload is the data block of register and login replies.
type Payload struct {
	User    any    `json:"user"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Response{Success: true, Data: data})
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Response{
		Success: false,
		Error:   &ErrorDetail{Code: code, Message: message},
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusBadRequest, "BAD_REQUEST", message)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message)
}

func internalError(c *fiber.Ctx) error {
	return fail(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", common.ErrorInternal.Error())
}
