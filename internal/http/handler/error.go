package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"catalogapi/internal/http/middleware"
	"catalogapi/internal/service"
	"catalogapi/internal/storage"
	"catalogapi/internal/upload"
	"catalogapi/internal/validation"
)

// errBadJSON is returned when a JSON request body cannot be decoded.
var errBadJSON = errors.New("Bad JSON syntax")

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Code:      code,
		Error:     message,
	})
}

type classified struct {
	status  int
	code    string
	message string
}

var sentinels = []struct {
	err  error
	code string
}{
	{validation.ErrInvalidID, "INVALID_ID"},
	{validation.ErrIDsRequired, "IDS_REQUIRED"},
	{validation.ErrIDsNotArray, "IDS_NOT_ARRAY"},
	{validation.ErrIDsEmpty, "IDS_EMPTY"},
	{validation.ErrIDsInvalid, "IDS_INVALID"},
	{service.ErrImageRequired, "IMAGE_REQUIRED"},
	{service.ErrImagesRequired, "IMAGE_REQUIRED"},
	{upload.ErrUnexpectedFile, "UNEXPECTED_FILE"},
	{upload.ErrFileTooLarge, "FILE_TOO_LARGE"},
	{upload.ErrFileLimit, "FILE_LIMIT"},
	{service.ErrFilesLimit, "FILES_LIMIT"},
	{errBadJSON, "BAD_JSON"},
}

// classify maps an error returned by a handler onto the response it should produce.
func classify(err error) classified {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return classified{fiber.StatusBadRequest, "VALIDATION_ERROR", fe.Message}
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return classified{fiber.StatusBadRequest, s.code, s.err.Error()}
		}
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		// The wrapped message names the resource, e.g. "product not found".
		return classified{fiber.StatusNotFound, "NOT_FOUND", err.Error()}
	case errors.Is(err, storage.ErrUnavailable):
		return classified{fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "storage unavailable"}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusBadRequest:
			return classified{fiberErr.Code, "BAD_REQUEST", "bad request"}
		case fiber.StatusNotFound:
			return classified{fiberErr.Code, "NOT_FOUND", "resource not found"}
		case fiber.StatusMethodNotAllowed:
			return classified{fiberErr.Code, "METHOD_NOT_ALLOWED", "method not allowed"}
		case fiber.StatusRequestEntityTooLarge:
			return classified{fiber.StatusBadRequest, "FILE_TOO_LARGE", upload.ErrFileTooLarge.Error()}
		case fiber.StatusServiceUnavailable:
			return classified{fiberErr.Code, "SERVICE_UNAVAILABLE", "dependency unavailable"}
		}
	}

	return classified{fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Handlers return domain errors unchanged and this is the only place they become HTTP.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		res := classify(err)
		if res.status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("request_id", requestIDFromCtx(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", res.status),
				zap.Error(err),
			)
		}
		return writeError(c, res.status, res.code, res.message)
	}
}
