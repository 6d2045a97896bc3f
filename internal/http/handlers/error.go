package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"chmlcart/internal/domain"
	applog "chmlcart/internal/log"
)

// ErrorHandler maps the domain error taxonomy onto the JSON envelope.
// Infrastructure failures are logged with their cause but never leak it.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		if de.Status() >= fiber.StatusInternalServerError {
			applog.Error(c, "server.error", err, nil)
		}
		return c.Status(de.Status()).JSON(fiber.Map{"success": false, "message": de.Message})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
	}

	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Internal Server Error"})
}
