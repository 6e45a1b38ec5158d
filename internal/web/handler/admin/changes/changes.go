// Package changes provides the change log pages: the filter form, its data table and a CSV download.
package changes

import (
	"fmt"
	"html"
	"slices"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/changes"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/record"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/user"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/diff"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/controlpanel"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	// Path is the path of the change log.
	Path = "admin/changes-log"

	// PathData is the data table source.
	PathData = Path + "/data"

	// PathDownload is the CSV download.
	PathDownload = Path + "/download"

	// TemplateName is the name of the change log template.
	TemplateName = "admin/changes"

	// PageSizeSetting is the user preference remembering the table length.
	PageSizeSetting = "admin_site_change_page_size"

	// DefaultPageSize is used until the user picks a table length.
	DefaultPageSize = 10

	// CSVFilename is the name of the downloaded file.
	CSVFilename = "changes.csv"
)

// Statuses are the values of the status filter. The empty one means any.
var Statuses = []string{
	"",
	string(models.ChangeAccepted),
	string(models.ChangeRejected),
	string(models.ChangePending),
}

// Data represents the data passed to the template.
type Data struct {
	Trees    []models.Tree
	Users    []models.User
	Statuses []string
	Filter   changes.Filter
	PageSize int
}

// Table is the JSON answer to a data table request.
type Table struct {
	Draw            int     `json:"draw"`
	RecordsTotal    int64   `json:"recordsTotal"`
	RecordsFiltered int64   `json:"recordsFiltered"`
	Data            [][]any `json:"data"`
}

// Service is the change log handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

var (
	// Handler is the change log handler.
	Handler = Service{}
)

// Init initializes the change log handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	// tree managers are allowed too, the handlers narrow the log to their trees
	app.Get("/"+Path, auth.RequireLogin(), s.Get)
	app.Get("/"+PathData, auth.RequireLogin(), s.GetData)
	app.Get("/"+PathDownload, auth.RequireLogin(), s.GetDownload)
}

// scope returns the trees the user manages, and the tree filter: nil for administrators.
func (s *Service) scope(userID uint64) ([]models.Tree, []uint, error) {
	trees, err := s.authService.ManagedTrees(userID)
	if err != nil {
		return nil, nil, err
	}

	if s.authService.IsAdmin(userID) {
		return trees, nil, nil
	}

	ids := make([]uint, 0, len(trees))
	for _, t := range trees {
		ids = append(ids, t.ID)
	}

	return trees, ids, nil
}

// filterFromQuery reads the filter fields shared by the page, the table and the download.
func filterFromQuery(c *fiber.Ctx) changes.Filter {
	f := changes.Filter{
		Search:    c.Query("search"),
		From:      c.Query("from"),
		To:        c.Query("to"),
		Status:    c.Query("type"),
		OldGedcom: c.Query("oldged"),
		NewGedcom: c.Query("newged"),
		Xref:      c.Query("xref"),
		User:      c.Query("user"),
		Tree:      c.Query("ged"),
	}

	if !slices.Contains(Statuses, f.Status) {
		f.Status = ""
	}

	return f
}

// pageFromQuery reads the data table window: start, length and order[i][column|dir].
func pageFromQuery(c *fiber.Ctx) changes.Page {
	p := changes.Page{
		Start:  max(c.QueryInt("start"), 0),
		Length: max(c.QueryInt("length"), 0),
	}

	for i := 0; ; i++ {
		col := c.Query(fmt.Sprintf("order[%d][column]", i))
		if col == "" {
			break
		}

		n, err := strconv.Atoi(col)
		if err != nil {
			continue
		}

		p.Order = append(p.Order, changes.Order{
			Column: n,
			Desc:   c.Query(fmt.Sprintf("order[%d][dir]", i)) == "desc",
		})
	}

	return p
}

// Get renders the filter form.
func (s *Service) Get(c *fiber.Ctx) error {
	userID := session.UserID(c)

	trees, _, err := s.scope(userID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to list managed trees")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	if len(trees) == 0 {
		return handler.Forbidden(c)
	}

	nav := navigation.NewContext("Changes log", "admin", "changes-log").
		AddBreadcrumb("Control panel", "/"+controlpanel.Path, false).
		AddBreadcrumb("Changes log", "/"+Path, true)

	f := filterFromQuery(c)

	earliest, latest, err := changes.DateRange(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to read change log dates")
	}

	if f.From == "" {
		f.From = earliest
	}

	if f.To == "" {
		f.To = latest
	}

	if !slices.ContainsFunc(trees, func(t models.Tree) bool { return t.Name == f.Tree }) {
		f.Tree = trees[0].Name
	}

	users, err := user.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data": Data{
			Trees:    trees,
			Users:    users,
			Statuses: Statuses,
			Filter:   f,
			PageSize: user.IntSetting(s.db, userID, PageSizeSetting, DefaultPageSize),
		},
	}, handler.BaseLayout)
}

// GetData answers the data table with one page of the filtered log.
func (s *Service) GetData(c *fiber.Ctx) error {
	userID := session.UserID(c)

	trees, ids, err := s.scope(userID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to list managed trees")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if len(trees) == 0 {
		return c.SendStatus(fiber.StatusForbidden)
	}

	f := filterFromQuery(c)
	f.TreeIDs = ids

	p := pageFromQuery(c)
	if p.Length > 0 {
		if err = user.SetSetting(s.db, userID, PageSizeSetting, strconv.Itoa(p.Length)); err != nil {
			log.Warn().Err(err).Msg("failed to store change log page size")
		}
	}

	rows, err := changes.List(s.db, f, p)
	if err != nil {
		log.Error().Err(err).Msg("failed to list changes")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	total, err := changes.Total(s.db, ids)
	if err != nil {
		log.Error().Err(err).Msg("failed to count changes")
	}

	filteredCount, err := changes.Count(s.db, f)
	if err != nil {
		log.Error().Err(err).Msg("failed to count changes")
	}

	table := Table{
		Draw:            c.QueryInt("draw"),
		RecordsTotal:    total,
		RecordsFiltered: filteredCount,
		Data:            make([][]any, 0, len(rows)),
	}

	linker := s.linker()

	for _, r := range rows {
		link := linker(r.TreeID, r.GedcomName)

		xref := html.EscapeString(r.Xref)
		if url := link(r.Xref); url != "" {
			xref = `<a href="` + html.EscapeString(url) + `">` + xref + `</a>`
		}

		lines := diff.Lines(r.OldGedcom, r.NewGedcom)

		table.Data = append(table.Data, []any{
			r.ChangeID,
			r.ChangeTime.Format(changes.TimeLayout),
			html.EscapeString(r.Status),
			xref,
			`<div class="gedcom-data" dir="ltr">` + diff.HTML(lines, link) + `</div>`,
			html.EscapeString(r.UserName),
			html.EscapeString(r.GedcomName),
		})
	}

	return c.JSON(table)
}

// linker returns record links per tree. Lookups are cached for the request.
func (s *Service) linker() func(treeID uint, treeName string) diff.Linker {
	seen := make(map[string]bool)

	return func(treeID uint, treeName string) diff.Linker {
		return func(xref string) string {
			key := strconv.FormatUint(uint64(treeID), 10) + ":" + xref

			exists, ok := seen[key]
			if !ok {
				exists = record.Exists(s.db, treeID, xref)
				seen[key] = exists
			}

			if !exists {
				return ""
			}

			return handler.RecordURL(treeName, xref)
		}
	}
}

// GetDownload sends the filtered log as CSV.
func (s *Service) GetDownload(c *fiber.Ctx) error {
	userID := session.UserID(c)

	trees, ids, err := s.scope(userID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to list managed trees")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if len(trees) == 0 {
		return c.SendStatus(fiber.StatusForbidden)
	}

	f := filterFromQuery(c)
	f.TreeIDs = ids

	rows, err := changes.List(s.db, f, changes.Page{})
	if err != nil {
		log.Error().Err(err).Msg("failed to list changes")

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+CSVFilename+`"`)
	c.Set(fiber.HeaderContentType, "text/csv; charset=UTF-8")

	return c.SendString(changes.CSV(rows))
}
