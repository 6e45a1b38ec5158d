// Package auth provides the authentication middleware of the web application.
//
// The middleware reads the session cookie and, for a valid session, puts the
// session data, the current user and the CSRF token into fiber.Locals.
// Visitors are redirected to the login page unless the path is public.
//
// Usage:
//
//	app.Use(authmiddleware.Middleware)
package auth
