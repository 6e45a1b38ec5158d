// Package modules provides the module administration pages: status, deletion and per tree access.
package modules

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	dbmodule "github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/flash"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/controlpanel"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	// Path is the path of the module list.
	Path = "admin/modules"

	// PathDelete removes the data of a deleted module.
	PathDelete = Path + "/delete"

	// TemplateName is the name of the module list template.
	TemplateName = "admin/modules"

	// TemplateComponent is the name of the per component access template.
	TemplateComponent = "admin/components"

	msgEnabled     = "The module “%s” has been enabled."
	msgDisabled    = "The module “%s” has been disabled."
	msgDeleted     = "The preferences for the module “%s” have been deleted."
	msgUpdated     = "The preferences have been updated."
	msgFormExpired = "This form has expired. Try again."
)

// Row is an installed module with its status.
type Row struct {
	Name        string
	Title       string
	Description string
	Enabled     bool
	Components  []module.Component
	ConfigURL   string
}

// Data represents the data passed to the module list template.
type Data struct {
	Modules        []Row
	DeletedModules []string
	CoreModules    []string
}

// ComponentRow is a module with its access level per tree.
type ComponentRow struct {
	Name    string
	Title   string
	Enabled bool
	Levels  map[uint]int
}

// ComponentData represents the data passed to the component template.
type ComponentData struct {
	Page          string
	Component     module.Component
	Trees         []models.Tree
	Modules       []ComponentRow
	PrivacyLevels []auth.PrivacyLevel
}

// Service is the module administration handler service.
type Service struct {
	handler.Service
	cfg      *config.Config
	db       *gorm.DB
	registry *module.Registry
}

var (
	// Handler is the module administration handler.
	Handler = Service{}
)

// Init initializes the module administration handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, registry *module.Registry) {
	if app == nil || cfg == nil || db == nil || registry == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.registry = registry

	perm := auth.RequireAnyPermission(authService, auth.PermAdminModules, auth.PermAdminSite)

	app.Get("/"+Path, perm, s.Get)
	app.Post("/"+Path, perm, s.Post)
	app.Post("/"+PathDelete, perm, s.PostDelete)

	for page := range module.Components {
		app.Get("/admin/"+page, perm, s.GetComponent)
		app.Post("/admin/"+page, perm, s.PostComponent)
	}
}

// Get lists installed and deleted modules.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Modules", "admin", "modules").
		AddBreadcrumb("Control panel", "/"+controlpanel.Path, false).
		AddBreadcrumb("Modules", "/"+Path, true)

	stored, err := dbmodule.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load modules")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	deleted, err := s.registry.Deleted(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list deleted modules")
	}

	data := Data{DeletedModules: deleted, CoreModules: s.registry.Names()}

	for _, m := range s.registry.All() {
		row := Row{
			Name:        m.Name(),
			Title:       m.Title(),
			Description: m.Description(),
			Enabled:     stored[m.Name()].Status == models.ModuleEnabled,
			Components:  module.ComponentsOf(m),
		}

		if cm, ok := m.(module.Configurable); ok {
			row.ConfigURL = cm.ConfigURL()
		}

		data.Modules = append(data.Modules, row)
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

// Post stores the status of every installed module whose status changed.
func (s *Service) Post(c *fiber.Ctx) error {
	if !session.CheckCSRF(c) {
		flash.Add(c, flash.TypeDanger, msgFormExpired)

		return c.Redirect("/" + Path)
	}

	stored, err := dbmodule.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load modules")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	for _, m := range s.registry.All() {
		row, ok := stored[m.Name()]
		if !ok {
			continue
		}

		enabled := truthy(c.FormValue("status-" + m.Name()))
		if enabled == (row.Status == models.ModuleEnabled) {
			continue
		}

		status, msg := models.ModuleDisabled, msgDisabled
		if enabled {
			status, msg = models.ModuleEnabled, msgEnabled
		}

		if err = dbmodule.SetStatus(s.db, m.Name(), status); err != nil {
			log.Error().Err(err).Str("module", m.Name()).Msg("failed to update module status")
			continue
		}

		log.Info().Str("module", m.Name()).Str("status", string(status)).Msg("module status changed")
		flash.Add(c, flash.TypeSuccess, fmt.Sprintf(msg, m.Title()))
	}

	return c.Redirect("/" + Path)
}

// PostDelete removes everything stored for a module that is no longer installed.
func (s *Service) PostDelete(c *fiber.Ctx) error {
	if !session.CheckCSRF(c) {
		flash.Add(c, flash.TypeDanger, msgFormExpired)

		return c.Redirect("/" + Path)
	}

	name := c.FormValue("module_name")

	if err := dbmodule.Delete(s.db, name); err != nil {
		log.Error().Err(err).Str("module", name).Msg("failed to delete module")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	log.Info().Str("module", name).Msg("module deleted")
	flash.Add(c, flash.TypeSuccess, fmt.Sprintf(msgDeleted, name))

	return c.Redirect("/" + Path)
}

// page returns the component of the requested admin page.
func page(c *fiber.Ctx) (string, module.Component) {
	name := c.Path()[len("/admin/"):]

	return name, module.Components[name]
}

// GetComponent shows the access level of each module implementing the component, per tree.
func (s *Service) GetComponent(c *fiber.Ctx) error {
	name, comp := page(c)

	nav := navigation.NewContext("Modules", "admin", name).
		AddBreadcrumb("Control panel", "/"+controlpanel.Path, false).
		AddBreadcrumb("Modules", "/"+Path, false).
		AddBreadcrumb(name, "/admin/"+name, true)

	trees, err := tree.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list trees")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	levels, err := dbmodule.AccessLevels(s.db, string(comp))
	if err != nil {
		log.Error().Err(err).Str("component", string(comp)).Msg("failed to load access levels")
	}

	data := ComponentData{
		Page:          name,
		Component:     comp,
		Trees:         trees,
		PrivacyLevels: auth.PrivacyLevels,
	}

	for _, m := range s.registry.WithComponent(comp) {
		row := ComponentRow{
			Name:    m.Name(),
			Title:   m.Title(),
			Enabled: s.registry.Enabled(s.db, m.Name()),
			Levels:  make(map[uint]int, len(trees)),
		}

		for _, t := range trees {
			level, ok := levels[m.Name()][t.ID]
			if !ok {
				level = m.DefaultAccessLevel()
			}

			row.Levels[t.ID] = level
		}

		data.Modules = append(data.Modules, row)
	}

	return c.Render(TemplateComponent, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

// PostComponent stores access-<module>-<tree id> for every module of the component and every tree.
func (s *Service) PostComponent(c *fiber.Ctx) error {
	name, comp := page(c)
	back := "/admin/" + name

	if !session.CheckCSRF(c) {
		flash.Add(c, flash.TypeDanger, msgFormExpired)

		return c.Redirect(back)
	}

	trees, err := tree.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list trees")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	var errs []error

	for _, m := range s.registry.WithComponent(comp) {
		for _, t := range trees {
			field := "access-" + m.Name() + "-" + strconv.FormatUint(uint64(t.ID), 10)

			level, err := strconv.Atoi(c.FormValue(field))
			if err != nil || !auth.IsPrivacyLevel(level) {
				level = m.DefaultAccessLevel()
			}

			errs = append(errs, dbmodule.SetAccessLevel(s.db, m.Name(), t.ID, string(comp), level))
		}
	}

	if err = errors.Join(errs...); err != nil {
		log.Error().Err(err).Str("component", string(comp)).Msg("failed to store access levels")
		flash.Add(c, flash.TypeDanger, "The preferences could not be updated.")

		return c.Redirect(back)
	}

	flash.Add(c, flash.TypeSuccess, msgUpdated)

	return c.Redirect(back)
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return v == "on"
	}

	return b
}
