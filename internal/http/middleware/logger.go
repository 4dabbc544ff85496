package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a middleware that writes one structured access log entry per request.
// Fields: request_id (set by RequestID), method, path, status, latency in milliseconds.
// 5xx entries are warnings; the error itself is logged once by the app error handler.
func Logger(log *zap.Logger) fiber.Handler {
	log = log.Named("http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		// Let the app error handler write the final status before it is read.
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := c.Response().StatusCode()

		level := zapcore.InfoLevel
		if status >= fiber.StatusInternalServerError {
			level = zapcore.WarnLevel
		}
		log.Log(level, "request",
			zap.String("request_id", rid),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		)

		return nil
	}
}
