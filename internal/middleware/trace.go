package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	TraceIDHeader = "X-Trace-ID"
	TraceIDKey    = "traceId"

	maxTraceIDLength = 64
)

// TraceID propagates a caller supplied X-Trace-ID when it is well formed and
// otherwise assigns a fresh uuid.
func TraceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(TraceIDHeader)

		if !validTraceID(traceID) {
			traceID = uuid.New().String()
		}

		c.Locals(TraceIDKey, traceID)
		c.Set(TraceIDHeader, traceID)

		return c.Next()
	}
}

func GetTraceID(c *fiber.Ctx) string {
	if traceID := c.Locals(TraceIDKey); traceID != nil {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// RequestLogger returns log annotated with the request's trace id, if any.
func RequestLogger(c *fiber.Ctx, log *slog.Logger) *slog.Logger {
	if traceID := GetTraceID(c); traceID != "" {
		return log.With(TraceIDKey, traceID)
	}
	return log
}

func validTraceID(id string) bool {
	if id == "" || len(id) > maxTraceIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}
