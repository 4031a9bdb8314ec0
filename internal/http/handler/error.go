package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// errorPayload is the failure envelope shared by every endpoint.
type errorPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeError writes the failure envelope. message reaches the client as given.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorPayload{
		Success: false,
		Message: message,
	})
}

// ErrorHandler returns a Fiber global error handler that renders routing and
// framework errors (unknown route, wrong method, oversized body) as the failure envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		return writeError(c, status, err.Error())
	}
}
