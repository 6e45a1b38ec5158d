// Package cleandata lists the data folder and deletes what the administrator selects.
package cleandata

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/datafolder"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/flash"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/controlpanel"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	// Path is the path of the clean data folder page.
	Path = "admin/clean-data"

	// TemplateName is the name of the clean data template.
	TemplateName = "admin/cleandata"

	// FormField holds the selected entry names.
	FormField = "to_delete[]"

	msgFolderDeleted    = "The folder %s has been deleted."
	msgFileDeleted      = "The file %s has been deleted."
	msgFolderNotDeleted = "The folder %s could not be deleted."
	msgFileNotDeleted   = "The file %s could not be deleted."
	msgFormExpired      = "This form has expired. Try again."
)

// Data represents the data passed to the template.
type Data struct {
	Path      string
	Entries   []datafolder.Entry
	Protected []string
}

// Service is the clean data folder handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

var (
	// Handler is the clean data folder handler.
	Handler = Service{}
)

// Init initializes the clean data folder handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	perm := auth.RequireAnyPermission(authService, auth.PermAdminDataFolder, auth.PermAdminSite)

	app.Get("/"+Path, perm, s.Get)
	app.Post("/"+Path, perm, s.Post)
}

func (s *Service) folder() (*datafolder.Folder, error) {
	dirs, err := tree.MediaDirectories(s.db)
	if err != nil {
		return nil, err
	}

	return datafolder.New(s.cfg.Data.Path, dirs), nil
}

// Get lists the entries of the data folder.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Clean up data folder", "admin", "clean-data").
		AddBreadcrumb("Control panel", "/"+controlpanel.Path, false).
		AddBreadcrumb("Clean up data folder", "/"+Path, true)

	folder, err := s.folder()
	if err != nil {
		log.Error().Err(err).Msg("failed to read media directories")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	entries, err := folder.List()
	if err != nil {
		log.Error().Err(err).Str("path", folder.Path()).Msg("failed to list data folder")
		flash.Now(c, flash.TypeDanger, "The data folder could not be read.")
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data": Data{
			Path:      folder.Path(),
			Entries:   entries,
			Protected: folder.Protected(),
		},
	}, handler.BaseLayout)
}

// Post deletes the selected entries and returns to the control panel.
func (s *Service) Post(c *fiber.Ctx) error {
	if !session.CheckCSRF(c) {
		flash.Add(c, flash.TypeDanger, msgFormExpired)

		return c.Redirect("/" + Path)
	}

	folder, err := s.folder()
	if err != nil {
		log.Error().Err(err).Msg("failed to read media directories")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	for _, arg := range c.Request().PostArgs().PeekMulti(FormField) {
		name := string(arg)
		if name == "" {
			continue
		}

		isDir, err := folder.Delete(name)
		if err != nil {
			log.Warn().Err(err).Str("name", name).Msg("failed to delete data folder entry")

			if isDir {
				flash.Add(c, flash.TypeDanger, fmt.Sprintf(msgFolderNotDeleted, name))
			} else {
				flash.Add(c, flash.TypeDanger, fmt.Sprintf(msgFileNotDeleted, name))
			}

			continue
		}

		log.Info().Str("name", name).Bool("folder", isDir).Msg("deleted data folder entry")

		if isDir {
			flash.Add(c, flash.TypeSuccess, fmt.Sprintf(msgFolderDeleted, name))
		} else {
			flash.Add(c, flash.TypeSuccess, fmt.Sprintf(msgFileDeleted, name))
		}
	}

	return c.Redirect("/" + controlpanel.Path)
}
