// Package record shows a GEDCOM record with the tabs modules add to individuals.
package record

import (
	"bytes"
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/record"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/gedcom"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	// Path is the route of a record page.
	Path = "tree/:" + handler.TreeParam + "/record/:xref"

	// TemplateName is the name of the record template.
	TemplateName = "record"
)

// Data represents the data passed to the record template.
type Data struct {
	Tree   *models.Tree
	Record *record.Record
	// Name is set for individuals.
	Name  string
	Facts []gedcom.Fact
	Tabs  []Panel
}

// Panel is a tab with its rendered content.
type Panel struct {
	module.Tab
	HTML template.HTML
}

// Service is the record page handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	registry    *module.Registry
}

var (
	// Handler is the record page handler.
	Handler = Service{}
)

// Init initializes the record page handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, registry *module.Registry) {
	if app == nil || cfg == nil || db == nil || authService == nil || registry == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.registry = registry

	app.Get("/"+Path, s.Get)
}

// Get shows a record.
func (s *Service) Get(c *fiber.Ctx) error {
	t, err := handler.Tree(c, s.db)
	if errors.Is(err, tree.ErrTreeNotFound) {
		return handler.NotFound(c, "Family tree not found")
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to load tree")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	xref := c.Params("xref")
	if !gedcom.IsXref(xref) {
		return handler.NotFound(c, "Record not found")
	}

	rec, err := record.Find(s.db, t.ID, xref)
	if errors.Is(err, record.ErrRecordNotFound) {
		return handler.NotFound(c, "Record not found")
	}

	if err != nil {
		log.Error().Err(err).Str("xref", xref).Msg("failed to load record")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	userID := session.UserID(c)
	data := Data{Tree: t, Record: rec, Facts: gedcom.Facts(rec.Gedcom)}
	title := rec.Xref

	if rec.Type == "INDI" {
		data.Name = gedcom.Name(rec.Gedcom)
		data.Tabs = panels(c, s.registry.Tabs(c, s.db, s.authService, t, rec.Xref, userID))

		if data.Name != "" {
			title = data.Name
		}
	}

	nav := s.registry.Navigation(c, s.db, s.authService, navigation.NewContext(title, "tree", "record"), t, userID)

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

// panels renders the tabs with their own templates. A tab that fails to render is left out.
func panels(c *fiber.Ctx, tabs []module.Tab) []Panel {
	views := c.App().Config().Views
	out := make([]Panel, 0, len(tabs))

	for _, tab := range tabs {
		p := Panel{Tab: tab}

		if views != nil {
			var buf bytes.Buffer

			bind := fiber.Map{}
			for k, v := range tab.Data {
				bind[k] = v
			}

			c.Context().VisitUserValues(func(k []byte, v any) {
				if _, ok := bind[string(k)]; !ok {
					bind[string(k)] = v
				}
			})

			if err := views.Render(&buf, tab.Template, bind); err != nil {
				log.Error().Err(err).Str("module", tab.Module).Msg("failed to render tab")
				continue
			}

			p.HTML = template.HTML(buf.String()) //nolint:gosec // rendered by html/template
		}

		out = append(out, p)
	}

	return out
}
