// Package auth provides authentication and authorization for the site.
//
// Site wide rights come from role based access control: a user has one role,
// a role holds permissions such as "admin.site" or "admin.modules".
//
// Family tree rights come from TreeAccess rows. A user is a visitor, member,
// editor, moderator or manager of each tree. Site administrators manage every tree.
//
// # Privacy levels
//
// Module components and records are shown according to a privacy level:
//   - PrivPrivate (2): shown to visitors
//   - PrivUser (1): shown to members
//   - PrivNone (0): shown to managers
//   - PrivHide (-1): shown to nobody
//
// A user sees an item when AccessLevel(user, tree) <= the item's level.
//
// # Middleware
//
//   - RequirePermission, RequireAnyPermission: site wide permission checks
//   - RequireLogin: any authenticated user
//   - AddPermissionsToLocals: hasPermission helper for templates
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	app.Get("/admin/modules",
//	    auth.RequirePermission(authService, auth.PermAdminModules),
//	    handler,
//	)
package auth
