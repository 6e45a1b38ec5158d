package module

import (
	"cmp"
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	dbmodule "github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
)

// Registry holds the installed modules.
type Registry struct {
	modules []Module
	byName  map[string]Module
}

// NewRegistry returns a registry of the given modules ordered by title.
func NewRegistry(mods ...Module) *Registry {
	r := &Registry{byName: make(map[string]Module, len(mods))}

	for _, m := range mods {
		if _, dup := r.byName[m.Name()]; dup {
			continue
		}

		r.byName[m.Name()] = m
		r.modules = append(r.modules, m)
	}

	slices.SortFunc(r.modules, func(a, b Module) int {
		return cmp.Compare(a.Title(), b.Title())
	})

	return r
}

// All returns the installed modules ordered by title.
func (r *Registry) All() []Module {
	return r.modules
}

// Get returns an installed module.
func (r *Registry) Get(name string) (Module, bool) {
	m, ok := r.byName[name]

	return m, ok
}

// Names returns the names of the installed modules.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m.Name())
	}

	slices.Sort(out)

	return out
}

// WithComponent returns the installed modules implementing a component.
func (r *Registry) WithComponent(c Component) []Module {
	var out []Module

	for _, m := range r.modules {
		if Has(m, c) {
			out = append(out, m)
		}
	}

	return out
}

// Configurable returns the installed modules with an admin page.
func (r *Registry) Configurable() []Configurable {
	var out []Configurable

	for _, m := range r.modules {
		if cm, ok := m.(Configurable); ok {
			out = append(out, cm)
		}
	}

	return out
}

// Sync inserts a row for every installed module that has none, enabled and with default orders.
func (r *Registry) Sync(db *gorm.DB) error {
	rows := make([]models.Module, 0, len(r.modules))

	for _, m := range r.modules {
		row := models.Module{Name: m.Name(), Status: models.ModuleEnabled}

		if mp, ok := m.(MenuProvider); ok {
			order := mp.DefaultMenuOrder()
			row.MenuOrder = &order
		}

		if tp, ok := m.(TabProvider); ok {
			order := tp.DefaultTabOrder()
			row.TabOrder = &order
		}

		rows = append(rows, row)
	}

	return dbmodule.Insert(db, rows)
}

// Deleted returns the names of module rows without installed code.
func (r *Registry) Deleted(db *gorm.DB) ([]string, error) {
	rows, err := dbmodule.List(db)
	if err != nil {
		return nil, err
	}

	var out []string

	for name := range rows {
		if _, ok := r.byName[name]; !ok {
			out = append(out, name)
		}
	}

	slices.Sort(out)

	return out, nil
}

// Enabled reports whether a module is installed and enabled.
func (r *Registry) Enabled(db *gorm.DB, name string) bool {
	if _, ok := r.byName[name]; !ok {
		return false
	}

	row, err := dbmodule.Get(db, name)

	return err == nil && row.Status == models.ModuleEnabled
}

// Visible reports whether a component of an enabled module is shown to the user on the tree.
func (r *Registry) Visible(db *gorm.DB, authService *auth.Service, m Module, c Component, treeID uint, userID uint64) bool {
	if !r.Enabled(db, m.Name()) {
		return false
	}

	level := dbmodule.AccessLevel(db, m.Name(), treeID, string(c), m.DefaultAccessLevel())

	return authService.CanSee(userID, treeID, level)
}

// Menus returns the visible menu entries of a tree in menu order.
func (r *Registry) Menus(c *fiber.Ctx, db *gorm.DB, authService *auth.Service, tree *models.Tree, userID uint64) []Menu {
	rows, err := dbmodule.List(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load modules")
		return nil
	}

	var out []Menu

	for _, m := range r.WithComponent(ComponentMenu) {
		if !r.Visible(db, authService, m, ComponentMenu, tree.ID, userID) {
			continue
		}

		mp := m.(MenuProvider)

		menu, err := mp.Menu(c, tree)
		if err != nil {
			log.Error().Err(err).Str("module", m.Name()).Msg("failed to build menu")
			continue
		}

		if menu == nil {
			continue
		}

		menu.Module = m.Name()
		menu.Order = orderOf(rows[m.Name()].MenuOrder, mp.DefaultMenuOrder())
		out = append(out, *menu)
	}

	slices.SortStableFunc(out, func(a, b Menu) int { return cmp.Compare(a.Order, b.Order) })

	return out
}

// Tabs returns the visible tabs of an individual in tab order.
func (r *Registry) Tabs(c *fiber.Ctx, db *gorm.DB, authService *auth.Service, tree *models.Tree, xref string, userID uint64) []Tab {
	rows, err := dbmodule.List(db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load modules")
		return nil
	}

	var out []Tab

	for _, m := range r.WithComponent(ComponentTab) {
		if !r.Visible(db, authService, m, ComponentTab, tree.ID, userID) {
			continue
		}

		tp := m.(TabProvider)

		tab, err := tp.Tab(c, tree, xref)
		if err != nil {
			log.Error().Err(err).Str("module", m.Name()).Msg("failed to build tab")
			continue
		}

		if tab == nil {
			continue
		}

		tab.Module = m.Name()
		tab.Order = orderOf(rows[m.Name()].TabOrder, tp.DefaultTabOrder())
		out = append(out, *tab)
	}

	slices.SortStableFunc(out, func(a, b Tab) int { return cmp.Compare(a.Order, b.Order) })

	return out
}

// Navigation shows the visible menus of a tree on a page.
func (r *Registry) Navigation(c *fiber.Ctx, db *gorm.DB, authService *auth.Service, nav *navigation.Context, tree *models.Tree, userID uint64) *navigation.Context {
	menus := r.Menus(c, db, authService, tree, userID)
	items := make([]navigation.MenuItem, 0, len(menus))

	for _, m := range menus {
		items = append(items, navigation.MenuItem{Label: m.Label, URL: m.URL})
	}

	return nav.WithTree(tree.Title, c.OriginalURL(), items)
}

func orderOf(stored *int, def int) int {
	if stored != nil {
		return *stored
	}

	return def
}
