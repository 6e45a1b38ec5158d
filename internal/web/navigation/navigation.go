// Package navigation holds the page title, breadcrumbs and tree menu bar of a rendered page.
package navigation

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// MenuItem is an entry of the tree menu bar.
type MenuItem struct {
	Label  string
	URL    string
	Active bool
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
	// Tree is the title of the tree the page belongs to, "" on site pages.
	Tree  string
	Menus []MenuItem
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// WithTree shows the menu bar of a tree. The entry whose URL is the current page is marked active.
func (c *Context) WithTree(title, currentURL string, menus []MenuItem) *Context {
	c.Tree = title
	c.Menus = make([]MenuItem, 0, len(menus))

	for _, m := range menus {
		m.Active = m.URL == currentURL
		c.Menus = append(c.Menus, m)
	}

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}

// HasTree reports whether the page shows a tree menu bar.
func (c *Context) HasTree() bool {
	return c.Tree != ""
}
