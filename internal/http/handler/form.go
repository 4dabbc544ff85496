package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/upload"
)

// formFiles runs multipart intake for field. Requests that are not multipart carry no files.
// A declared length no valid upload could reach is rejected before the body is parsed.
func formFiles(c *fiber.Ctx, field string, l upload.Limits) ([]upload.File, error) {
	ct := strings.ToLower(string(c.Request().Header.ContentType()))
	if !strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		return nil, nil
	}
	if n, limit := c.Request().Header.ContentLength(), l.MaxBodySize(); limit > 0 && int64(n) > limit {
		return nil, upload.ErrFileTooLarge
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "malformed multipart body")
	}
	return upload.Intake(form, field, l)
}

// decodeJSON decodes the raw body with the app's JSON decoder. An empty body leaves v untouched.
func decodeJSON(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, v); err != nil {
		return errBadJSON
	}
	return nil
}
