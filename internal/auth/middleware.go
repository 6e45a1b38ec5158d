package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

// currentSession returns the session put in the locals by the auth middleware,
// or reads it from the cookie when that middleware did not run.
func currentSession(c *fiber.Ctx) *session.Data {
	if d := session.FromCtx(c); d != nil {
		return d
	}

	d := new(session.Data)
	if err := d.Read(c.Cookies(session.CookieName)); err != nil || d.User.ID == 0 {
		return nil
	}

	return d
}

// RequireLogin rejects visitors.
func RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentSession(c) == nil {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return RequireAnyPermission(authService, permission)
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(authService *Service, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := currentSession(c)
		if sess == nil {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		hasPermission, err := authService.HasAnyPermission(sess.User.ID, permissions)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sess.User.ID).Strs("permissions", permissions).
				Msg("Failed to check permissions")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", sess.User.ID).Strs("permissions", permissions).
				Msg("User lacks required permissions")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// HasPermissionInContext checks if the current user in the Fiber context has a permission.
func HasPermissionInContext(c *fiber.Ctx, authService *Service, permission string) bool {
	sess := currentSession(c)
	if sess == nil {
		return false
	}

	has, err := authService.HasPermission(sess.User.ID, permission)

	return err == nil && has
}

// AddPermissionsToLocals adds the user's permissions and a hasPermission helper for templates.
func AddPermissionsToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := currentSession(c)
		if sess == nil {
			return c.Next()
		}

		permissions, err := authService.GetUserPermissions(sess.User.ID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sess.User.ID).
				Msg("Failed to get user permissions")

			return c.Next()
		}

		granted := make(map[string]bool, len(permissions))
		for _, p := range permissions {
			granted[p] = true
		}

		c.Locals("permissions", permissions)
		c.Locals("hasPermission", func(perm string) bool {
			return granted[perm]
		})

		return c.Next()
	}
}
