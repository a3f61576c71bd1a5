package response

import (
	"github.com/gofiber/fiber/v2"
)

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Error   *ErrorInfo `json:"error"`
	Meta    Meta       `json:"meta"`
}

type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type Meta struct {
	TraceID string `json:"traceId,omitempty"`
}

type ErrorCode string

const (
	ErrCodeInvalidPayload ErrorCode = "INVALID_PAYLOAD"
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeMethod         ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodeRateLimited    ErrorCode = "RATE_LIMITED"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// CodeForStatus maps an HTTP status to the envelope error code.
func CodeForStatus(status int) ErrorCode {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return ErrCodeInvalidPayload
	case fiber.StatusNotFound:
		return ErrCodeNotFound
	case fiber.StatusMethodNotAllowed:
		return ErrCodeMethod
	case fiber.StatusConflict:
		return ErrCodeConflict
	case fiber.StatusTooManyRequests:
		return ErrCodeRateLimited
	default:
		return ErrCodeInternal
	}
}

func OK(c *fiber.Ctx, data any) error {
	return send(c, fiber.StatusOK, data, nil)
}

func RateLimited(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusTooManyRequests, ErrCodeRateLimited, message)
}

// Error writes an error envelope with an explicit status and code.
func Error(c *fiber.Ctx, status int, code ErrorCode, message string) error {
	return send(c, status, nil, &ErrorInfo{
		Code:    code,
		Message: message,
	})
}

func send(c *fiber.Ctx, status int, data any, errInfo *ErrorInfo) error {
	envelope := Envelope{
		Success: errInfo == nil,
		Data:    data,
		Error:   errInfo,
		Meta: Meta{
			TraceID: traceID(c),
		},
	}

	return c.Status(status).JSON(envelope)
}

// traceID reads the id stored by the trace middleware; importing that
// package here would create a cycle.
func traceID(c *fiber.Ctx) string {
	if id, ok := c.Locals("traceId").(string); ok {
		return id
	}
	return ""
}
