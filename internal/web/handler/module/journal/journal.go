// Package journal is the "Journal" module: a private list of notes on the user's page.
package journal

import (
	"errors"
	"html/template"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/news"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/sanitize"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/flash"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	// Name is the module name.
	Name = "user_journal"

	// Path is the path of the journal.
	Path = "my-page/journal"
	// PathEdit adds or edits an entry.
	PathEdit = Path + "/edit"
	// PathDelete removes an entry.
	PathDelete = Path + "/delete"

	// TemplateList is the name of the journal template.
	TemplateList = "module/journal/list"
	// TemplateEdit is the name of the entry form template.
	TemplateEdit = "module/journal/edit"

	// DateFormat formats the time an entry was last changed.
	DateFormat = "2 January 2006 15:04"

	msgEmpty       = "You have not created any journal items."
	msgSaved       = "The journal entry has been saved."
	msgDeleted     = "The journal entry has been deleted."
	msgInvalid     = "Enter a subject of at most 255 characters."
	msgFormExpired = "This form has expired. Try again."
)

// Entry is a journal entry ready for display.
type Entry struct {
	ID      uint64
	Subject string
	Body    template.HTML
	Date    string
	Ago     string
}

// ListData represents the data passed to the journal template.
type ListData struct {
	Entries []Entry
	// Empty is the message shown instead of entries.
	Empty    string
	CanWrite bool
}

// EditData represents the data passed to the form template.
type EditData struct {
	NewsID  uint64
	Subject string
	Body    string
}

// Service is the journal module and its handler.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	registry    *module.Registry
	validator   *validator.Validate
}

var (
	// Handler is the journal module.
	Handler = Service{}

	_ module.BlockProvider = (*Service)(nil)
)

// Name implements module.Module.
func (s *Service) Name() string { return Name }

// Title implements module.Module.
func (s *Service) Title() string { return "Journal" }

// Description implements module.Module.
func (s *Service) Description() string {
	return "A private area to record notes or keep a journal."
}

// DefaultAccessLevel implements module.Module.
func (s *Service) DefaultAccessLevel() int { return auth.PrivPrivate }

// IsUserBlock is true: the journal lives on the user's page.
func (s *Service) IsUserBlock() bool { return true }

// IsTreeBlock implements module.BlockProvider.
func (s *Service) IsTreeBlock() bool { return false }

// Init initializes the journal handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, registry *module.Registry) {
	if app == nil || cfg == nil || db == nil || authService == nil || registry == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.registry = registry
	s.validator = handler.NewValidator()

	write := auth.RequirePermission(authService, auth.PermJournalWrite)

	app.Get("/"+Path, auth.RequireLogin(), s.enabled, s.Get)
	app.Get("/"+PathEdit, write, s.enabled, s.GetEdit)
	app.Post("/"+PathEdit, write, s.enabled, s.PostEdit)
	app.Post("/"+PathDelete, write, s.enabled, s.PostDelete)
}

// enabled hides the journal while the module is disabled.
func (s *Service) enabled(c *fiber.Ctx) error {
	if !s.registry.Enabled(s.db, Name) {
		return handler.NotFound(c, "Page not found")
	}

	return c.Next()
}

func (s *Service) nav(title string, active bool) *navigation.Context {
	return navigation.NewContext(title, "my-page", "journal").
		AddBreadcrumb("My page", "/"+Path, false).
		AddBreadcrumb(s.Title(), "/"+Path, active)
}

// Get lists the entries of the current user, newest first.
func (s *Service) Get(c *fiber.Ctx) error {
	userID := session.UserID(c)

	rows, err := news.Journal(s.db, userID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to load journal")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	has, err := s.authService.HasPermission(userID, auth.PermJournalWrite)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to check journal permission")
	}

	data := ListData{CanWrite: has}
	if len(rows) == 0 {
		data.Empty = msgEmpty
	}

	now := time.Now()
	for _, n := range rows {
		data.Entries = append(data.Entries, Entry{
			ID:      n.ID,
			Subject: n.Subject,
			Body:    sanitize.Text(n.Body),
			Date:    n.Updated.Format(DateFormat),
			Ago:     humanize.RelTime(n.Updated, now, "ago", "from now"),
		})
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation": s.nav(s.Title(), true),
		"Data":       data,
	}, handler.BaseLayout)
}

// GetEdit shows the form for a new entry, or for an entry of the current user.
func (s *Service) GetEdit(c *fiber.Ctx) error {
	data := EditData{}
	title := "Add a journal entry"

	if id := c.QueryInt("news_id"); id > 0 {
		n, err := news.Get(s.db, session.UserID(c), uint64(id))
		if errors.Is(err, news.ErrNewsNotFound) {
			return handler.NotFound(c, "Journal entry not found")
		}

		if err != nil {
			log.Error().Err(err).Int("news_id", id).Msg("failed to load journal entry")

			return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
		}

		title = "Edit the journal entry"
		data = EditData{NewsID: n.ID, Subject: n.Subject, Body: n.Body}
	}

	return s.renderEdit(c, title, data)
}

func (s *Service) renderEdit(c *fiber.Ctx, title string, data EditData) error {
	return c.Render(TemplateEdit, fiber.Map{
		"Navigation": s.nav(title, false).AddBreadcrumb(title, "", true),
		"Data":       data,
	}, handler.BaseLayout)
}

// PostEdit stores an entry.
func (s *Service) PostEdit(c *fiber.Ctx) error {
	var in struct {
		NewsID  string `form:"news_id"`
		Subject string `form:"subject" validate:"required,max=255"`
		Body    string `form:"body"`
	}

	if err := c.BodyParser(&in); err != nil {
		return handler.Status(c, fiber.StatusBadRequest, "Invalid form data")
	}

	id, _ := strconv.ParseUint(in.NewsID, 10, 64)
	data := EditData{NewsID: id, Subject: in.Subject, Body: in.Body}

	title := "Add a journal entry"
	if id > 0 {
		title = "Edit the journal entry"
	}

	if !session.CheckCSRF(c) {
		flash.Now(c, flash.TypeDanger, msgFormExpired)

		return s.renderEdit(c, title, data)
	}

	if err := s.validator.Struct(in); err != nil {
		flash.Now(c, flash.TypeDanger, msgInvalid)
		c.Status(fiber.StatusBadRequest)

		return s.renderEdit(c, title, data)
	}

	userID := session.UserID(c)
	n := models.News{ID: id, Subject: in.Subject, Body: in.Body}

	err := news.Save(s.db, userID, &n)
	if errors.Is(err, news.ErrNewsNotFound) {
		return handler.NotFound(c, "Journal entry not found")
	}

	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to save journal entry")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	log.Info().Uint64("user_id", userID).Uint64("news_id", n.ID).Msg("journal entry saved")
	flash.Add(c, flash.TypeSuccess, msgSaved)

	return c.Redirect("/" + Path)
}

// PostDelete removes an entry of the current user.
func (s *Service) PostDelete(c *fiber.Ctx) error {
	if !session.CheckCSRF(c) {
		flash.Add(c, flash.TypeDanger, msgFormExpired)

		return c.Redirect("/" + Path)
	}

	userID := session.UserID(c)
	id, _ := strconv.ParseUint(c.FormValue("news_id"), 10, 64)

	err := news.Delete(s.db, userID, id)
	if errors.Is(err, news.ErrNewsNotFound) {
		return handler.NotFound(c, "Journal entry not found")
	}

	if err != nil {
		log.Error().Err(err).Uint64("news_id", id).Msg("failed to delete journal entry")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	log.Info().Uint64("user_id", userID).Uint64("news_id", id).Msg("journal entry deleted")
	flash.Add(c, flash.TypeSuccess, msgDeleted)

	return c.Redirect("/" + Path)
}
