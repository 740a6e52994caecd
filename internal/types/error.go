package types

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error into the taxonomy shared by the gateway, the
// panel operations, and the widget engine.
type Kind string

const (
	KindRateLimit  Kind = "rate_limit"
	KindAuth       Kind = "auth"
	KindAPI        Kind = "api"
	KindNetwork    Kind = "network"
	KindConfig     Kind = "config"
	KindInvalidKey Kind = "invalid_key"
	KindValidation Kind = "validation"
)

// Error is the error currency of the service. Status is the HTTP status to
// surface; zero means derive it from the Kind.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Body    string // raw upstream body, api errors only
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// HTTPStatus returns the status code an HTTP surface should respond with.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindRateLimit:
		return fiber.StatusTooManyRequests
	case KindAuth:
		return fiber.StatusUnauthorized
	case KindValidation:
		return fiber.StatusBadRequest
	case KindInvalidKey:
		return fiber.StatusNotFound
	default:
		// api, network and config failures all surface as a generic 500
		return fiber.StatusInternalServerError
	}
}

// RateLimitError reports an upstream 429. The message instructs the human
// to wait; nothing in this system retries automatically.
func RateLimitError() *Error {
	return &Error{Kind: KindRateLimit, Message: "Too many requests. Wait 1 minute and try again."}
}

// AuthError reports rejected credentials (upstream 401/403 or a failed
// password/token verification).
func AuthError(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// APIError wraps any other non-2xx upstream response, carrying the raw body.
func APIError(status int, body string) *Error {
	return &Error{
		Kind:    KindAPI,
		Message: fmt.Sprintf("upstream error (%d)", status),
		Body:    body,
	}
}

// NetworkError wraps a transport or response-parsing failure.
func NetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: fmt.Sprintf("connection error: %v", err)}
}

// ConfigError reports a missing server-side setting, typically the upstream
// credential.
func ConfigError(message string) *Error {
	return &Error{Kind: KindConfig, Message: message}
}

// InvalidKeyError reports a widget api_key with no matching site after a
// fresh upstream fetch.
func InvalidKeyError() *Error {
	return &Error{Kind: KindInvalidKey, Message: "Invalid API key."}
}

// ValidationError reports a locally rejected input. Validation errors never
// reach the network layer.
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf extracts the Kind from err, or "" when err is not a taxonomy error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
