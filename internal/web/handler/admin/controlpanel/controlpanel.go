// Package controlpanel provides the administrator's overview page.
package controlpanel

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/datafolder"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/user"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/upgrade"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	// Path is the path to the control panel.
	Path = "admin/control-panel"

	// TemplateName is the control panel of site administrators.
	TemplateName = "admin/controlpanel"

	// TemplateManager is the control panel of tree managers.
	TemplateManager = "admin/controlpanel-manager"

	// InstallRoot is the folder OldFiles are relative to.
	InstallRoot = "."
)

// TreeRow is a tree with its record totals.
type TreeRow struct {
	Tree   models.Tree
	Counts tree.Counts
}

// Data represents the control panel data.
type Data struct {
	Warnings         []string
	CurrentVersion   string
	LatestVersion    string
	UpgradeAvailable bool
	Users            user.Counts
	Trees            []TreeRow
	FilesToDelete    []string
	Modules          []module.Module
	Enabled          map[string]bool
	DeletedModules   []string
	Configurable     []module.Configurable
}

// Service is the control panel handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	registry    *module.Registry
	upgrade     *upgrade.Checker
	installRoot string
}

// Handler is the control panel handler.
var Handler = Service{}

// Init initializes the control panel handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, registry *module.Registry) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.registry = registry
	s.upgrade = upgrade.New(db, cfg.Upgrade)
	s.installRoot = InstallRoot

	// managers get a restricted view, the handler decides
	app.Get("/"+Path, auth.RequireLogin(), s.Get)
}

// Get renders the full control panel for administrators and the tree list for managers.
func (s *Service) Get(c *fiber.Ctx) error {
	userID := session.UserID(c)

	nav := navigation.NewContext("Control panel", "admin", "control-panel").
		AddBreadcrumb("Control panel", "/"+Path, true)

	if !s.authService.IsAdmin(userID) {
		return s.manager(c, nav, userID)
	}

	users, err := user.CountAll(s.db, auth.PermAdminSite)
	if err != nil {
		log.Error().Err(err).Msg("failed to count users")
	}

	trees, err := tree.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list trees")
	}

	deleted, err := s.registry.Deleted(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list deleted modules")
	}

	enabled := make(map[string]bool, len(s.registry.All()))
	for _, m := range s.registry.All() {
		enabled[m.Name()] = s.registry.Enabled(s.db, m.Name())
	}

	latest := s.upgrade.Latest(c.UserContext())

	data := Data{
		Warnings:         s.warnings(),
		CurrentVersion:   config.Version,
		LatestVersion:    latest,
		UpgradeAvailable: upgrade.Newer(latest, config.Version),
		Users:            users,
		Trees:            s.counts(trees),
		FilesToDelete:    datafolder.SweepOldFiles(s.installRoot, s.cfg.Data.OldFiles),
		Modules:          s.registry.All(),
		Enabled:          enabled,
		DeletedModules:   deleted,
		Configurable:     s.registry.Configurable(),
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

func (s *Service) manager(c *fiber.Ctx, nav *navigation.Context, userID uint64) error {
	trees, err := s.authService.ManagedTrees(userID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to list managed trees")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	if len(trees) == 0 {
		return handler.Forbidden(c)
	}

	return c.Render(TemplateManager, fiber.Map{
		"Navigation": nav,
		"Data":       Data{Trees: s.counts(trees)},
	}, handler.BaseLayout)
}

func (s *Service) counts(trees []models.Tree) []TreeRow {
	out := make([]TreeRow, 0, len(trees))

	for _, t := range trees {
		counts, err := tree.CountRecords(s.db, t.ID)
		if err != nil {
			log.Error().Err(err).Str("tree", t.Name).Msg("failed to count records")
		}

		out = append(out, TreeRow{Tree: t, Counts: counts})
	}

	return out
}

func (s *Service) warnings() []string {
	var out []string

	if s.cfg.DevMode {
		out = append(out, "Development mode is enabled. Templates are read from disk and cookies are not secure.")
	}

	if info, err := os.Stat(s.cfg.Data.Path); err != nil || !info.IsDir() {
		out = append(out, "The data folder "+s.cfg.Data.Path+" does not exist.")
	}

	return out
}
