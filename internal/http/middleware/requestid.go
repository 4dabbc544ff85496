package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is where the id is stored in Fiber's context locals.
	RequestIDLocalKey = "request_id"

	maxRequestIDLen = 128
)

// RequestID accepts a client supplied X-Request-ID when it is a short printable token and
// otherwise issues a fresh UUID. The id is stored in locals, echoed on the response and
// tagged on the active span so logs and traces can be joined.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)
		trace.SpanFromContext(c.UserContext()).SetAttributes(attribute.String("http.request_id", id))

		return c.Next()
	}
}

// validRequestID reports whether id is 1..128 bytes of [A-Za-z0-9._:-].
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch b := id[i]; {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '-', b == '_', b == '.', b == ':':
		default:
			return false
		}
	}
	return true
}
