package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

// PublicPrefixes are reachable without a login. Handlers below them check access themselves.
var PublicPrefixes = []string{
	"/static",
	"/logout",
	"/metrics",
	"/tree/",
	"/module/faq/show",
	"/module/stories/show_list",
}

// Middleware is a Fiber middleware that checks for user authentication.
func Middleware(c *fiber.Ctx) error {
	var (
		isLoginPage = IsLoginPage(c)
		sessData    = new(session.Data)
	)

	sessDataValid := sessData.Read(c.Cookies(session.CookieName)) == nil && sessData.User.ID > 0
	if sessDataValid {
		// Add the session and the current user to locals for handlers and templates
		c.Locals(session.LocalsKey, sessData)
		c.Locals("CurrentUser", sessData.User)
		c.Locals("CSRFToken", sessData.CSRFToken)
	}

	switch {
	case sessDataValid && isLoginPage:
		return c.Redirect(handler.HomePath)
	case sessDataValid, isLoginPage, IsPublic(c):
		return c.Next()
	default:
		return c.Redirect(handler.LoginPath)
	}
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Path()), handler.LoginPath)
}

// IsPublic checks if the current request may be served to visitors.
func IsPublic(c *fiber.Ctx) bool {
	p := strings.ToLower(c.Path())

	for _, prefix := range PublicPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}

	return false
}
