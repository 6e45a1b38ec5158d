package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the path of a group's own route.
	RouterRootPath = "/"

	// LoginPath is the path of the login page.
	LoginPath = "/login"

	// HomePath is where "/" and a successful login lead.
	HomePath = "/admin/control-panel"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// TemplateError renders a status page with a message.
	TemplateError = "error"
)
