// Package module defines the optional site modules and the registry of installed ones.
package module

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

// Component is a place where a module shows up. Access levels are stored per component.
type Component string

const (
	ComponentMenu    Component = "menu"
	ComponentTab     Component = "tab"
	ComponentBlock   Component = "block"
	ComponentSidebar Component = "sidebar"
	ComponentChart   Component = "chart"
	ComponentReport  Component = "report"
)

// Components maps the admin page names to components.
var Components = map[string]Component{
	"blocks":   ComponentBlock,
	"charts":   ComponentChart,
	"menus":    ComponentMenu,
	"reports":  ComponentReport,
	"sidebars": ComponentSidebar,
	"tabs":     ComponentTab,
}

// Module is an installed module.
type Module interface {
	Name() string
	Title() string
	Description() string
	// DefaultAccessLevel applies to trees without a stored level.
	DefaultAccessLevel() int
}

// Configurable modules have an admin page.
type Configurable interface {
	Module
	ConfigURL() string
}

// Menu is an entry of the tree menu bar.
type Menu struct {
	Module string
	Label  string
	URL    string
	Order  int
}

// MenuProvider modules add an entry to the tree menu bar.
type MenuProvider interface {
	Module
	DefaultMenuOrder() int
	// Menu returns nil when the module has nothing to show on the tree.
	Menu(c *fiber.Ctx, tree *models.Tree) (*Menu, error)
}

// Tab is a tab of an individual's page. Template is rendered with Data.
type Tab struct {
	Module    string
	Title     string
	Template  string
	Data      fiber.Map
	GrayedOut bool
	Order     int
}

// TabProvider modules add a tab to individual pages.
type TabProvider interface {
	Module
	DefaultTabOrder() int
	Tab(c *fiber.Ctx, tree *models.Tree, xref string) (*Tab, error)
}

// BlockProvider modules add a block to the home pages.
type BlockProvider interface {
	Module
	IsUserBlock() bool
	IsTreeBlock() bool
}

// ComponentsOf returns the components a module implements.
func ComponentsOf(m Module) []Component {
	var out []Component

	if _, ok := m.(MenuProvider); ok {
		out = append(out, ComponentMenu)
	}

	if _, ok := m.(TabProvider); ok {
		out = append(out, ComponentTab)
	}

	if _, ok := m.(BlockProvider); ok {
		out = append(out, ComponentBlock)
	}

	return out
}

// Has reports whether a module implements a component.
func Has(m Module, c Component) bool {
	for _, have := range ComponentsOf(m) {
		if have == c {
			return true
		}
	}

	return false
}
