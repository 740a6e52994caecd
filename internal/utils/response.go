package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/recorre/indie-comments-cloud/internal/types"
)

// ErrorResponse sends the standard gateway error envelope.
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// OpSuccess sends a panel/widget operation result. Extra fields are merged
// into the uniform {success: true, ...} shape.
func OpSuccess(c *fiber.Ctx, extra fiber.Map) error {
	body := fiber.Map{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// OpError converts a taxonomy error into the uniform
// {success: false, error: <message>} shape the panel and widget consume.
// Unclassified errors render as a generic 500.
func OpError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Something went wrong. Try again."
	if e, ok := err.(*types.Error); ok {
		status = e.HTTPStatus()
		message = e.Message
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ErrorResponseStruct defines the schema for gateway error responses
type ErrorResponseStruct struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
}

// OpResponseStruct defines the schema for panel/widget operation responses
type OpResponseStruct struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
