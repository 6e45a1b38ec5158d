package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
)

// Status renders the error page with a status code and message.
func Status(c *fiber.Ctx, status int, message string) error {
	nav := navigation.NewContext(message, "", "")

	return c.Status(status).Render(TemplateError, fiber.Map{
		"Navigation": nav,
		"Status":     status,
		"Message":    message,
	}, BaseLayout)
}

// NotFound renders a 404 page.
func NotFound(c *fiber.Ctx, message string) error {
	return Status(c, fiber.StatusNotFound, message)
}

// Forbidden renders a 403 page.
func Forbidden(c *fiber.Ctx) error {
	return Status(c, fiber.StatusForbidden, "You do not have permission to view this page.")
}
