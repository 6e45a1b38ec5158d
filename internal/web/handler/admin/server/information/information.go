// Package information shows facts about the Go runtime and the database server.
package information

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/controlpanel"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
)

const (
	// Path is the path of the server information page.
	Path = "admin/server-information"

	// TemplateName is the name of the server information template.
	TemplateName = "admin/server/information"

	// DefaultPageSize is the default number of variables per page.
	DefaultPageSize = 25

	maxPageSize = 100
)

// Service is the server information handler service.
type Service struct {
	handler.Service
	cfg     *config.Config
	db      *gorm.DB
	started time.Time
}

// Runtime describes the running process.
type Runtime struct {
	GoVersion  string
	OS         string
	Arch       string
	CPUs       int
	Goroutines int
	HeapAlloc  string
	HeapSys    string
	Uptime     string
}

// Variable is a database server setting.
type Variable struct {
	Name  string
	Value string
}

// Data represents the data passed to the template.
type Data struct {
	Runtime     Runtime
	Dialect     string
	Variables   []Variable
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int
	HasPrevPage bool
	HasNextPage bool
	PrevPage    int
	NextPage    int
	SearchQuery string
}

var (
	// Handler is the server information handler.
	Handler = Service{}
)

// Init initializes the server information handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.started = time.Now()

	// register routes with permission checks
	app.Get("/"+Path,
		auth.RequireAnyPermission(authService, auth.PermAdminServer, auth.PermAdminSite),
		s.Get,
	)
}

// Get handles the server information page rendering with pagination.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Server information", "admin", "server-information").
		AddBreadcrumb("Control panel", "/"+controlpanel.Path, false).
		AddBreadcrumb("Server information", "/"+Path, true)

	page, pageSize := getPaginationParams(c)
	searchQuery := c.Query("search", "")

	dialect := s.db.Dialector.Name()

	vars, err := Variables(s.db)
	if err != nil {
		log.Error().Err(err).Str("dialect", dialect).Msg("failed to read database variables")
	}

	filtered := make([]Variable, 0, len(vars))

	for _, v := range vars {
		if includeVariable(v, searchQuery) {
			filtered = append(filtered, v)
		}
	}

	totalItems := len(filtered)
	totalPages, page := computeTotalPagesAndAdjust(totalItems, pageSize, page)
	startIdx, endIdx := pageSliceBounds(totalItems, pageSize, page)

	data := Data{
		Runtime:     s.runtime(),
		Dialect:     dialect,
		Variables:   filtered[startIdx:endIdx],
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
		PrevPage:    page - 1,
		NextPage:    page + 1,
		SearchQuery: searchQuery,
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

func (s *Service) runtime() Runtime {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Runtime{
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		CPUs:       runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  humanize.IBytes(mem.HeapAlloc),
		HeapSys:    humanize.IBytes(mem.HeapSys),
		Uptime:     humanize.RelTime(s.started, time.Now(), "", ""),
	}
}

// Variables returns the settings of the database server ordered by name.
// Commas in values are followed by a space so long lists wrap.
func Variables(db *gorm.DB) ([]Variable, error) {
	var query string

	switch db.Dialector.Name() {
	case "mysql":
		query = "SHOW VARIABLES"
	case "postgres":
		query = "SHOW ALL"
	case "sqlite":
		query = "PRAGMA compile_options"
	default:
		return nil, nil
	}

	rows, err := db.Raw(query).Rows()
	if err != nil {
		return nil, err
	}

	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Variable

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err = rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		out = append(out, toVariable(values))
	}

	slices.SortFunc(out, func(a, b Variable) int { return strings.Compare(a.Name, b.Name) })

	return out, rows.Err()
}

// toVariable maps a row to a variable. Single column rows are "NAME=VALUE" options.
func toVariable(values []any) Variable {
	text := func(v any) string {
		switch t := v.(type) {
		case []byte:
			return string(t)
		case string:
			return t
		case nil:
			return ""
		default:
			return fmt.Sprint(t)
		}
	}

	var v Variable

	if len(values) == 1 {
		v.Name, v.Value, _ = strings.Cut(text(values[0]), "=")
	} else if len(values) > 1 {
		v.Name, v.Value = text(values[0]), text(values[1])
	}

	v.Value = strings.ReplaceAll(v.Value, ",", ", ")

	return v
}

// getPaginationParams parses and normalizes page and pageSize query parameters.
func getPaginationParams(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = DefaultPageSize
	}

	return page, pageSize
}

// includeVariable returns true if the name or value contains the search text, ignoring case.
func includeVariable(v Variable, searchQuery string) bool {
	if searchQuery == "" {
		return true
	}

	q := strings.ToLower(searchQuery)

	return strings.Contains(strings.ToLower(v.Name), q) || strings.Contains(strings.ToLower(v.Value), q)
}

// computeTotalPagesAndAdjust computes total pages and adjusts the page into range.
func computeTotalPagesAndAdjust(totalItems, pageSize, page int) (int, int) {
	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	return totalPages, page
}

// pageSliceBounds calculates start and end indices for slicing a page.
func pageSliceBounds(totalItems, pageSize, page int) (int, int) {
	startIdx := max((page-1)*pageSize, 0)
	endIdx := min(startIdx+pageSize, totalItems)

	return min(startIdx, endIdx), endIdx
}
