// Package fixmedia moves media objects linked at level 1 of an individual onto one of its facts.
package fixmedia

import (
	"errors"
	"html"
	"slices"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/record"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/gedcom"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/controlpanel"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	// Path is the path of the fix level 0 media page.
	Path = "admin/fix-level-0-media"

	// PathData is the data table source.
	PathData = Path + "/data"

	// TemplateName is the name of the fix level 0 media template.
	TemplateName = "admin/fixmedia"
)

// IgnoredFacts cannot hold media objects.
var IgnoredFacts = []string{"FAMC", "FAMS", "NAME", "SEX", "CHAN", "NOTE", "OBJE", "SOUR", "RESN"}

// Table is the JSON answer to a data table request.
type Table struct {
	Draw            int     `json:"draw"`
	RecordsTotal    int     `json:"recordsTotal"`
	RecordsFiltered int     `json:"recordsFiltered"`
	Data            [][]any `json:"data"`
}

// Service is the fix level 0 media handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

var (
	// Handler is the fix level 0 media handler.
	Handler = Service{}
)

// Init initializes the fix level 0 media handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	perm := auth.RequireAnyPermission(authService, auth.PermAdminMedia, auth.PermAdminSite)

	app.Get("/"+Path, perm, s.Get)
	app.Get("/"+PathData, perm, s.GetData)
	app.Post("/"+Path, perm, s.Post)
}

// Get renders the page, the rows are loaded by the data table.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Media objects", "admin", "fix-level-0-media").
		AddBreadcrumb("Control panel", "/"+controlpanel.Path, false).
		AddBreadcrumb("Link media objects to facts and events", "/"+Path, true)

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
	}, handler.BaseLayout)
}

// GetData answers the data table. Every row offers the facts the media object can move to.
func (s *Service) GetData(c *fiber.Ctx) error {
	all, err := record.LevelZeroMedia(s.db, "")
	if err != nil {
		log.Error().Err(err).Msg("failed to list level 0 media")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	rows := all

	if search := c.Query("search[value]", c.Query("search")); search != "" {
		if rows, err = record.LevelZeroMedia(s.db, search); err != nil {
			log.Error().Err(err).Msg("failed to list level 0 media")

			return c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	table := Table{
		Draw:            c.QueryInt("draw"),
		RecordsTotal:    len(all),
		RecordsFiltered: len(rows),
		Data:            make([][]any, 0, len(rows)),
	}

	start := min(max(c.QueryInt("start"), 0), len(rows))
	end := len(rows)

	if length := c.QueryInt("length"); length > 0 {
		end = min(start+length, len(rows))
	}

	for _, r := range rows[start:end] {
		table.Data = append(table.Data, []any{
			html.EscapeString(r.TreeName),
			mediaCell(r),
			individualCell(r),
			factsCell(r),
		})
	}

	return c.JSON(table)
}

func mediaCell(r record.MediaLink) string {
	label := r.Title
	if label == "" {
		label = r.Filename
	}

	return `<a href="` + html.EscapeString(handler.RecordURL(r.TreeName, r.MediaXref)) + `">` + html.EscapeString(label) + `</a>`
}

func individualCell(r record.MediaLink) string {
	label := gedcom.Name(r.IndiGedcom)
	if label == "" {
		label = r.IndiXref
	}

	return `<a href="` + html.EscapeString(handler.RecordURL(r.TreeName, r.IndiXref)) + `">` + html.EscapeString(label) + `</a>`
}

// factsCell renders one button per fact. The page script posts the data attributes back.
func factsCell(r record.MediaLink) string {
	var b strings.Builder

	for _, f := range gedcom.Facts(r.IndiGedcom) {
		if f.Tag == "" || slices.Contains(IgnoredFacts, f.Tag) {
			continue
		}

		label := f.Tag
		if f.Value != "" {
			label += " " + f.Value
		}

		b.WriteString(`<button type="button" class="btn btn-sm btn-outline-primary fix-media"` +
			` data-fact-id="` + f.ID + `"` +
			` data-indi-xref="` + html.EscapeString(r.IndiXref) + `"` +
			` data-obje-xref="` + html.EscapeString(r.MediaXref) + `"` +
			` data-tree-id="` + strconv.FormatUint(uint64(r.TreeID), 10) + `">` +
			html.EscapeString(label) + `</button> `)
	}

	return b.String()
}

// Post moves a media object onto a fact. It answers 200 with an empty body.
func (s *Service) Post(c *fiber.Ctx) error {
	if !session.CheckCSRF(c) {
		return c.SendStatus(fiber.StatusForbidden)
	}

	treeID, err := strconv.ParseUint(c.FormValue("tree_id"), 10, 32)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	var (
		indiXref  = c.FormValue("indi_xref")
		mediaXref = c.FormValue("obje_xref")
		factID    = c.FormValue("fact_id")
		userID    = session.UserID(c)
	)

	if !gedcom.IsXref(indiXref) || !gedcom.IsXref(mediaXref) {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	err = record.MoveMediaToFact(s.db, uint(treeID), indiXref, factID, mediaXref, &userID)

	switch {
	case errors.Is(err, record.ErrRecordNotFound), errors.Is(err, record.ErrFactNotFound):
		return c.SendStatus(fiber.StatusNotFound)
	case err != nil:
		log.Error().Err(err).Str("xref", indiXref).Msg("failed to move media object")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	log.Info().Str("individual", indiXref).Str("media", mediaXref).Msg("media object moved to fact")

	c.Status(fiber.StatusOK)

	return nil
}
