package utils

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse sends the standard error body: {"error": message}
func ErrorResponse(c *fiber.Ctx, message string, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// UnauthorizedResponse sends the 401 body required by the route guard contract
func UnauthorizedResponse(c *fiber.Ctx) error {
	return ErrorResponse(c, "Unauthorized", fiber.StatusUnauthorized)
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound)
}

// SuccessResponse sends {"success": true} for mutations with no payload
func SuccessResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Error string `json:"error"`
}

// SuccessResponseStruct defines the schema for bare mutation success responses
type SuccessResponseStruct struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
