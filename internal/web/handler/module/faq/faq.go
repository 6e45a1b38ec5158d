// Package faq is the "Frequently asked questions" module: a per tree list of questions and answers
// with an admin page to write and order them.
package faq

import (
	"errors"
	"html/template"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/block"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/locale"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/sanitize"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/flash"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler/admin/controlpanel"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
)

const (
	// Name is the module name, used in URLs and the modules table.
	Name = "faq"

	// Path is the route of every module action.
	Path = "module/" + Name + "/:action"

	// TemplateConfig is the name of the admin list template.
	TemplateConfig = "module/faq/config"
	// TemplateEdit is the name of the add and edit form template.
	TemplateEdit = "module/faq/edit"
	// TemplateShow is the name of the public page template.
	TemplateShow = "module/faq/show"

	// Block settings.
	SettingHeader    = "header"
	SettingBody      = "faqbody"
	SettingLanguages = "languages"

	// DefaultMenuOrder places the menu after the lists and before the reports.
	DefaultMenuOrder = 40

	actionConfig   = "admin_config"
	actionDelete   = "admin_delete"
	actionEdit     = "admin_edit"
	actionSave     = "admin_edit_save"
	actionMoveUp   = "admin_moveup"
	actionMoveDown = "admin_movedown"
	actionShow     = "show"

	msgFormExpired = "This form has expired. Try again."
)

// Entry is a question with its rendered answer.
type Entry struct {
	ID    uint64
	Order int
	// AllTrees is set for entries shown on every tree.
	AllTrees  bool
	Header    string
	Body      template.HTML
	Languages string
}

// ConfigData represents the data passed to the admin list template.
type ConfigData struct {
	Tree     *models.Tree
	Trees    []models.Tree
	Entries  []Entry
	MinOrder int
	MaxOrder int
}

// EditData represents the data passed to the edit template.
type EditData struct {
	Tree    *models.Tree
	BlockID uint64
	Header  string
	Body    string
	Order   int
	// TreeID is 0 for all trees.
	TreeID    uint
	Trees     []models.Tree
	Languages []locale.Choice
}

// ShowData represents the data passed to the public page template.
type ShowData struct {
	Tree      *models.Tree
	Entries   []Entry
	CanEdit   bool
	ConfigURL string
}

// Service is the FAQ module and its handler.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	registry    *module.Registry
	languages   *locale.Matcher
}

var (
	// Handler is the FAQ module.
	Handler = Service{}

	_ module.MenuProvider = (*Service)(nil)
	_ module.Configurable = (*Service)(nil)
)

// Name implements module.Module.
func (s *Service) Name() string { return Name }

// Title implements module.Module.
func (s *Service) Title() string { return "FAQ" }

// Description implements module.Module.
func (s *Service) Description() string {
	return "A list of frequently asked questions and answers."
}

// DefaultAccessLevel implements module.Module.
func (s *Service) DefaultAccessLevel() int { return auth.PrivPrivate }

// DefaultMenuOrder implements module.MenuProvider.
func (s *Service) DefaultMenuOrder() int { return DefaultMenuOrder }

// ConfigURL implements module.Configurable.
func (s *Service) ConfigURL() string {
	return handler.ModuleURL(Name, actionConfig, "")
}

// Menu links to the FAQ page when the tree has a question in the current language.
func (s *Service) Menu(c *fiber.Ctx, t *models.Tree) (*module.Menu, error) {
	items, err := s.visible(c, t)
	if err != nil || len(items) == 0 {
		return nil, err
	}

	return &module.Menu{Label: s.Title(), URL: handler.ModuleURL(Name, actionShow, t.Name)}, nil
}

// Init initializes the FAQ handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, registry *module.Registry) {
	if app == nil || cfg == nil || db == nil || authService == nil || registry == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	languages, err := locale.New(cfg.Site.Languages, cfg.Site.DefaultLanguage)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid site languages")
		return
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.registry = registry
	s.languages = languages

	app.Get("/"+Path, s.enabled, s.Dispatch)
	app.Post("/"+Path, s.enabled, s.Dispatch)
}

// enabled answers 404 for every action while the module is disabled.
func (s *Service) enabled(c *fiber.Ctx) error {
	if !s.registry.Enabled(s.db, Name) {
		return handler.NotFound(c, "Page not found")
	}

	return c.Next()
}

// Dispatch runs a module action.
func (s *Service) Dispatch(c *fiber.Ctx) error {
	switch c.Params("action") {
	case actionConfig:
		return s.config(c)
	case actionEdit:
		return s.edit(c)
	case actionSave:
		return s.mutate(c, s.save)
	case actionDelete:
		return s.mutate(c, s.delete)
	case actionMoveUp:
		return s.mutate(c, s.move(block.MoveUp))
	case actionMoveDown:
		return s.mutate(c, s.move(block.MoveDown))
	case actionShow:
		return s.show(c)
	default:
		return handler.NotFound(c, "Page not found")
	}
}

func (s *Service) isAdmin(c *fiber.Ctx) bool {
	return s.authService.IsAdmin(session.UserID(c))
}

// currentTree answers 404 itself; a nil tree means the response was written.
func (s *Service) currentTree(c *fiber.Ctx) (*models.Tree, error) {
	t, err := handler.CurrentTree(c, s.db)
	if errors.Is(err, tree.ErrTreeNotFound) {
		return nil, handler.NotFound(c, "Family tree not found")
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to load tree")

		return nil, handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	return t, nil
}

func (s *Service) configURL(t *models.Tree) string {
	name := ""
	if t != nil {
		name = t.Name
	}

	return handler.ModuleURL(Name, actionConfig, name)
}

func (s *Service) adminNav(title string) *navigation.Context {
	return navigation.NewContext(title, "admin", "modules").
		AddBreadcrumb("Control panel", "/"+controlpanel.Path, false).
		AddBreadcrumb("Modules", "/admin/modules", false)
}

func toEntry(item block.Item) Entry {
	return Entry{
		ID:        item.ID,
		Order:     item.BlockOrder,
		AllTrees:  item.TreeID == nil,
		Header:    item.Setting(SettingHeader),
		Body:      sanitize.Body(item.Setting(SettingBody)),
		Languages: item.Setting(SettingLanguages),
	}
}

// visible returns the questions of a tree in the language of the request.
func (s *Service) visible(c *fiber.Ctx, t *models.Tree) ([]block.Item, error) {
	items, err := block.List(s.db, block.Query{Module: Name, TreeID: t.ID, AllTrees: true})
	if err != nil {
		return nil, err
	}

	current := locale.FromCtx(c)
	out := items[:0]

	for _, item := range items {
		if locale.InLanguages(item.Setting(SettingLanguages), current) {
			out = append(out, item)
		}
	}

	return out, nil
}

func (s *Service) config(c *fiber.Ctx) error {
	if !s.isAdmin(c) {
		return handler.Forbidden(c)
	}

	t, err := s.currentTree(c)
	if t == nil {
		return err
	}

	items, err := block.List(s.db, block.Query{Module: Name, TreeID: t.ID, AllTrees: true})
	if err != nil {
		log.Error().Err(err).Uint("tree_id", t.ID).Msg("failed to list FAQs")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	lowest, highest, err := block.OrderRange(s.db, Name, t.ID)
	if err != nil {
		log.Error().Err(err).Uint("tree_id", t.ID).Msg("failed to read FAQ order")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	trees, err := tree.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list trees")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	data := ConfigData{Tree: t, Trees: trees, MinOrder: lowest, MaxOrder: highest}
	for _, item := range items {
		data.Entries = append(data.Entries, toEntry(item))
	}

	nav := s.adminNav("Frequently asked questions").
		AddBreadcrumb("Frequently asked questions", s.configURL(t), true)

	return c.Render(TemplateConfig, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

func (s *Service) edit(c *fiber.Ctx) error {
	if !s.isAdmin(c) {
		return handler.Forbidden(c)
	}

	t, err := s.currentTree(c)
	if t == nil {
		return err
	}

	data := EditData{Tree: t, TreeID: t.ID}
	title := "Add an FAQ"
	languages := ""

	if id := c.QueryInt("block_id"); id > 0 {
		item, err := block.Get(s.db, Name, uint64(id))
		if errors.Is(err, block.ErrBlockNotFound) {
			return handler.NotFound(c, "FAQ not found")
		}

		if err != nil {
			log.Error().Err(err).Int("block_id", id).Msg("failed to load FAQ")

			return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
		}

		title = "Edit the FAQ"
		data.BlockID = item.ID
		data.Header = item.Setting(SettingHeader)
		data.Body = item.Setting(SettingBody)
		data.Order = item.BlockOrder
		data.TreeID = 0

		if item.TreeID != nil {
			data.TreeID = *item.TreeID
		}

		languages = item.Setting(SettingLanguages)
	} else if data.Order, err = block.NextOrder(s.db, Name); err != nil {
		log.Error().Err(err).Msg("failed to read FAQ order")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	if data.Trees, err = tree.List(s.db); err != nil {
		log.Error().Err(err).Msg("failed to list trees")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	data.Languages = s.languages.Choices(languages)

	nav := s.adminNav(title).
		AddBreadcrumb("Frequently asked questions", s.configURL(t), false).
		AddBreadcrumb(title, "", true)

	return c.Render(TemplateEdit, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

// mutate runs an admin action and returns to the admin list. Other users are sent there right away.
func (s *Service) mutate(c *fiber.Ctx, action func(c *fiber.Ctx) error) error {
	t, err := s.currentTree(c)
	if t == nil {
		return err
	}

	if !s.isAdmin(c) {
		return c.Redirect(s.configURL(t))
	}

	if !session.CheckCSRF(c) {
		flash.Add(c, flash.TypeDanger, msgFormExpired)

		return c.Redirect(s.configURL(t))
	}

	if err = action(c); errors.Is(err, block.ErrBlockNotFound) {
		return handler.NotFound(c, "FAQ not found")
	}

	if err != nil {
		log.Error().Err(err).Str("action", c.Params("action")).Msg("failed to update FAQ")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	return c.Redirect(s.configURL(t))
}

func blockID(c *fiber.Ctx) uint64 {
	id, _ := strconv.ParseUint(c.FormValue("block_id"), 10, 64)

	return id
}

func (s *Service) save(c *fiber.Ctx) error {
	b := models.Block{ID: blockID(c), ModuleName: Name}

	// An unparsable order sorts first, like an empty one.
	b.BlockOrder, _ = strconv.Atoi(strings.TrimSpace(c.FormValue("block_order")))

	if id, _ := strconv.ParseUint(c.FormValue("gedcom_id"), 10, 32); id > 0 {
		treeID := uint(id)
		b.TreeID = &treeID
	}

	settings := map[string]string{
		SettingHeader:    c.FormValue(SettingHeader),
		SettingBody:      c.FormValue(SettingBody),
		SettingLanguages: s.languages.Join(handler.FormValues(c, "lang[]")),
	}

	if err := block.Save(s.db, &b, settings); err != nil {
		return err
	}

	log.Info().Uint64("block_id", b.ID).Msg("FAQ saved")

	return nil
}

func (s *Service) delete(c *fiber.Ctx) error {
	id := blockID(c)
	if err := block.Delete(s.db, Name, id); err != nil {
		return err
	}

	log.Info().Uint64("block_id", id).Msg("FAQ deleted")

	return nil
}

func (s *Service) move(swap func(db *gorm.DB, module string, id uint64) error) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return swap(s.db, Name, blockID(c))
	}
}

func (s *Service) show(c *fiber.Ctx) error {
	t, err := s.currentTree(c)
	if t == nil {
		return err
	}

	items, err := s.visible(c, t)
	if err != nil {
		log.Error().Err(err).Uint("tree_id", t.ID).Msg("failed to list FAQs")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	userID := session.UserID(c)
	data := ShowData{
		Tree:      t,
		CanEdit:   s.authService.IsManager(userID, t.ID),
		ConfigURL: s.configURL(t),
	}

	for _, item := range items {
		data.Entries = append(data.Entries, toEntry(item))
	}

	nav := s.registry.Navigation(c, s.db, s.authService,
		navigation.NewContext("Frequently asked questions", "tree", Name), t, userID)

	return c.Render(TemplateShow, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}
