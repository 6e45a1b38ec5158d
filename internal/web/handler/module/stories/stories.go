// Package stories is the "Stories" module: narrative texts attached to individuals,
// shown on a tab of the individual and in a list per tree.
package stories

import (
	"cmp"
	"errors"
	"html/template"
	"slices"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/block"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/record"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/gedcom"
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
	Name = "stories"

	// Path is the route of every module action.
	Path = "module/" + Name + "/:action"

	// TemplateConfig is the name of the admin list template.
	TemplateConfig = "module/stories/config"
	// TemplateEdit is the name of the add and edit form template.
	TemplateEdit = "module/stories/edit"
	// TemplateList is the name of the public list template.
	TemplateList = "module/stories/list"
	// TemplateTab is the name of the individual tab template.
	TemplateTab = "module/stories/tab"

	// Block settings.
	SettingTitle     = "title"
	SettingBody      = "story_body"
	SettingLanguages = "languages"

	// DefaultTabOrder places the tab after the facts and the family tabs.
	DefaultTabOrder = 55
	// DefaultMenuOrder places the menu before the FAQ.
	DefaultMenuOrder = 30

	// TabAnchor selects the tab on a record page.
	TabAnchor = "#tab-" + Name

	actionConfig = "admin_config"
	actionDelete = "admin_delete"
	actionEdit   = "admin_edit"
	actionList   = "show_list"

	msgFormExpired = "This form has expired. Try again."
)

// Story is a story with its individual.
type Story struct {
	ID        uint64
	Title     string
	Body      template.HTML
	Xref      string
	Languages string
	// Name is "" when the individual does not exist.
	Name string
	// URL links to the stories tab of the individual.
	URL     string
	EditURL string
}

// ConfigData represents the data passed to the admin list template.
type ConfigData struct {
	Tree    *models.Tree
	Trees   []models.Tree
	Stories []Story
}

// EditData represents the data passed to the edit template.
type EditData struct {
	Tree      *models.Tree
	BlockID   uint64
	Title     string
	Body      string
	Xref      string
	Name      string
	Languages []locale.Choice
}

// ListData represents the data passed to the public list template.
type ListData struct {
	Tree    *models.Tree
	Stories []Story
}

// TabData is passed to the tab template.
type TabData struct {
	Stories []Story
	CanEdit bool
	// AddURL is set for managers of individuals without stories.
	AddURL string
}

// Service is the stories module and its handler.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	registry    *module.Registry
	languages   *locale.Matcher
	validator   *validator.Validate
}

var (
	// Handler is the stories module.
	Handler = Service{}

	_ module.MenuProvider = (*Service)(nil)
	_ module.TabProvider  = (*Service)(nil)
	_ module.Configurable = (*Service)(nil)
)

// Name implements module.Module.
func (s *Service) Name() string { return Name }

// Title implements module.Module.
func (s *Service) Title() string { return "Stories" }

// Description implements module.Module.
func (s *Service) Description() string {
	return "Add narrative stories to individuals in the family tree."
}

// DefaultAccessLevel hides stories until an administrator shows them.
func (s *Service) DefaultAccessLevel() int { return auth.PrivHide }

// DefaultMenuOrder implements module.MenuProvider.
func (s *Service) DefaultMenuOrder() int { return DefaultMenuOrder }

// DefaultTabOrder implements module.TabProvider.
func (s *Service) DefaultTabOrder() int { return DefaultTabOrder }

// ConfigURL implements module.Configurable.
func (s *Service) ConfigURL() string {
	return handler.ModuleURL(Name, actionConfig, "")
}

// Menu links to the list of stories.
func (s *Service) Menu(_ *fiber.Ctx, t *models.Tree) (*module.Menu, error) {
	return &module.Menu{Label: s.Title(), URL: handler.ModuleURL(Name, actionList, t.Name)}, nil
}

// Tab shows the stories of an individual. Visitors without stories to read get no tab.
func (s *Service) Tab(c *fiber.Ctx, t *models.Tree, xref string) (*module.Tab, error) {
	items, err := block.List(s.db, block.Query{Module: Name, TreeID: t.ID, Xref: xref})
	if err != nil {
		return nil, err
	}

	userID := session.UserID(c)
	current := locale.FromCtx(c)
	data := TabData{CanEdit: s.authService.IsEditor(userID, t.ID)}

	for _, item := range items {
		if locale.InLanguages(item.Setting(SettingLanguages), current) {
			data.Stories = append(data.Stories, toStory(t, item))
		}
	}

	if len(data.Stories) == 0 {
		if !s.authService.IsManager(userID, t.ID) {
			return nil, nil
		}

		data.AddURL = handler.ModuleURL(Name, actionEdit, t.Name, "xref", xref)
	}

	return &module.Tab{
		Title:     s.Title(),
		Template:  TemplateTab,
		Data:      fiber.Map{"Data": data},
		GrayedOut: len(items) == 0,
	}, nil
}

// Init initializes the stories handler.
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
	s.validator = handler.NewValidator()

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
	case actionEdit:
		if c.Method() == fiber.MethodPost && c.FormValue("save") == "1" {
			return s.save(c)
		}

		return s.edit(c)
	case actionDelete:
		return s.delete(c)
	case actionConfig:
		return s.config(c)
	case actionList:
		return s.list(c)
	default:
		return handler.NotFound(c, "Page not found")
	}
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

func toStory(t *models.Tree, item block.Item) Story {
	return Story{
		ID:        item.ID,
		Title:     item.Setting(SettingTitle),
		Body:      sanitize.Body(item.Setting(SettingBody)),
		Xref:      item.Xref,
		Languages: item.Setting(SettingLanguages),
		EditURL:   handler.ModuleURL(Name, actionEdit, t.Name, "block_id", strconv.FormatUint(item.ID, 10)),
	}
}

// stories returns the stories of a tree ordered by xref, with the names of their individuals.
func (s *Service) stories(t *models.Tree) ([]Story, error) {
	items, err := block.List(s.db, block.Query{Module: Name, TreeID: t.ID})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(items, func(a, b block.Item) int { return cmp.Compare(a.Xref, b.Xref) })

	xrefs := make([]string, 0, len(items))
	for _, item := range items {
		xrefs = append(xrefs, item.Xref)
	}

	individuals, err := record.Individuals(s.db, t.ID, xrefs)
	if err != nil {
		return nil, err
	}

	out := make([]Story, 0, len(items))

	for _, item := range items {
		story := toStory(t, item)
		if indi, ok := individuals[item.Xref]; ok {
			story.Name = gedcom.Name(indi.Gedcom)
			if story.Name == "" {
				story.Name = item.Xref
			}

			story.URL = handler.RecordURL(t.Name, item.Xref) + TabAnchor
		}

		out = append(out, story)
	}

	return out, nil
}

func (s *Service) configURL(t *models.Tree) string {
	return handler.ModuleURL(Name, actionConfig, t.Name)
}

// done leads administrators back to the admin list and other editors to the individual.
func (s *Service) done(c *fiber.Ctx, t *models.Tree, xref string) error {
	if s.authService.IsAdmin(session.UserID(c)) || xref == "" {
		return c.Redirect(s.configURL(t))
	}

	return c.Redirect(handler.RecordURL(t.Name, xref) + TabAnchor)
}

func (s *Service) adminNav(title string) *navigation.Context {
	return navigation.NewContext(title, "admin", "modules").
		AddBreadcrumb("Control panel", "/"+controlpanel.Path, false).
		AddBreadcrumb("Modules", "/admin/modules", false)
}

// load returns a story of the tree. Stories of other trees are not found.
func (s *Service) load(t *models.Tree, id uint64) (*block.Item, error) {
	item, err := block.Get(s.db, Name, id)
	if err != nil {
		return nil, err
	}

	if item.TreeID == nil || *item.TreeID != t.ID {
		return nil, block.ErrBlockNotFound
	}

	return item, nil
}

func (s *Service) edit(c *fiber.Ctx) error {
	t, err := s.currentTree(c)
	if t == nil {
		return err
	}

	if !s.authService.IsEditor(session.UserID(c), t.ID) {
		return c.Redirect(handler.RootPath)
	}

	title := "Add a story"
	data := EditData{Tree: t, Xref: c.Query("xref")}
	languages := ""

	if !gedcom.IsXref(data.Xref) {
		data.Xref = ""
	}

	if id := c.QueryInt("block_id"); id > 0 {
		item, err := s.load(t, uint64(id))
		if errors.Is(err, block.ErrBlockNotFound) {
			return handler.NotFound(c, "Story not found")
		}

		if err != nil {
			log.Error().Err(err).Int("block_id", id).Msg("failed to load story")

			return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
		}

		title = "Edit the story"
		data.BlockID = item.ID
		data.Title = item.Setting(SettingTitle)
		data.Body = item.Setting(SettingBody)
		data.Xref = item.Xref
		languages = item.Setting(SettingLanguages)
	}

	if data.Xref != "" {
		if indi, err := record.Find(s.db, t.ID, data.Xref); err == nil {
			data.Name = gedcom.Name(indi.Gedcom)
		}
	}

	data.Languages = s.languages.Choices(languages)

	nav := s.adminNav(title).
		AddBreadcrumb(s.Title(), s.configURL(t), false).
		AddBreadcrumb(title, "", true)

	return c.Render(TemplateEdit, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

func (s *Service) save(c *fiber.Ctx) error {
	t, err := s.currentTree(c)
	if t == nil {
		return err
	}

	if !s.authService.IsEditor(session.UserID(c), t.ID) {
		return c.Redirect(handler.RootPath)
	}

	if !session.CheckCSRF(c) {
		flash.Add(c, flash.TypeDanger, msgFormExpired)

		return c.Redirect(handler.ModuleURL(Name, actionEdit, t.Name, "block_id", c.FormValue("block_id")))
	}

	xref := c.FormValue("xref")
	if s.validator.Var(xref, "required,xref") != nil {
		xref = ""
	}

	treeID := t.ID
	b := models.Block{ModuleName: Name, TreeID: &treeID, Xref: xref}

	if id, _ := strconv.ParseUint(c.FormValue("block_id"), 10, 64); id > 0 {
		if _, err = s.load(t, id); errors.Is(err, block.ErrBlockNotFound) {
			return handler.NotFound(c, "Story not found")
		}

		if err != nil {
			log.Error().Err(err).Uint64("block_id", id).Msg("failed to load story")

			return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
		}

		b.ID = id
	}

	settings := map[string]string{
		SettingTitle:     c.FormValue(SettingTitle),
		SettingBody:      c.FormValue(SettingBody),
		SettingLanguages: s.languages.Join(handler.FormValues(c, "lang[]")),
	}

	if err = block.Save(s.db, &b, settings); err != nil {
		log.Error().Err(err).Msg("failed to save story")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	log.Info().Uint64("block_id", b.ID).Str("xref", xref).Msg("story saved")

	return s.done(c, t, xref)
}

func (s *Service) delete(c *fiber.Ctx) error {
	t, err := s.currentTree(c)
	if t == nil {
		return err
	}

	if !s.authService.IsEditor(session.UserID(c), t.ID) {
		return c.Redirect(handler.RootPath)
	}

	if !session.CheckCSRF(c) {
		flash.Add(c, flash.TypeDanger, msgFormExpired)

		return c.Redirect(s.configURL(t))
	}

	id, _ := strconv.ParseUint(c.FormValue("block_id"), 10, 64)

	item, err := s.load(t, id)
	if errors.Is(err, block.ErrBlockNotFound) {
		return handler.NotFound(c, "Story not found")
	}

	if err == nil {
		err = block.Delete(s.db, Name, id)
	}

	if err != nil {
		log.Error().Err(err).Uint64("block_id", id).Msg("failed to delete story")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	log.Info().Uint64("block_id", id).Msg("story deleted")

	return s.done(c, t, item.Xref)
}

func (s *Service) config(c *fiber.Ctx) error {
	if !s.authService.IsAdmin(session.UserID(c)) {
		return handler.Forbidden(c)
	}

	t, err := s.currentTree(c)
	if t == nil {
		return err
	}

	data := ConfigData{Tree: t}

	if data.Trees, err = tree.List(s.db); err == nil {
		data.Stories, err = s.stories(t)
	}

	if err != nil {
		log.Error().Err(err).Uint("tree_id", t.ID).Msg("failed to list stories")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	nav := s.adminNav(s.Title()).AddBreadcrumb(s.Title(), s.configURL(t), true)

	return c.Render(TemplateConfig, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

func (s *Service) list(c *fiber.Ctx) error {
	t, err := s.currentTree(c)
	if t == nil {
		return err
	}

	all, err := s.stories(t)
	if err != nil {
		log.Error().Err(err).Uint("tree_id", t.ID).Msg("failed to list stories")

		return handler.Status(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	current := locale.FromCtx(c)
	data := ListData{Tree: t}

	for _, story := range all {
		if locale.InLanguages(story.Languages, current) {
			data.Stories = append(data.Stories, story)
		}
	}

	nav := s.registry.Navigation(c, s.db, s.authService,
		navigation.NewContext(s.Title(), "tree", Name), t, session.UserID(c))

	return c.Render(TemplateList, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}
