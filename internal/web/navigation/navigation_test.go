package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("Test Page", "section1", "page1")

	assert.Equal(t, "Test Page", ctx.PageTitle)
	assert.Equal(t, "section1", ctx.ActiveSection)
	assert.Equal(t, "page1", ctx.ActivePage)
	assert.NotNil(t, ctx.Breadcrumbs)
	assert.Empty(t, ctx.Breadcrumbs)
}

func TestContext_AddBreadcrumb(t *testing.T) {
	ctx := NewContext("Test Page", "section1", "page1")

	// Add first breadcrumb
	ctx.AddBreadcrumb("Home", "/", false)
	assert.Len(t, ctx.Breadcrumbs, 1)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "/", ctx.Breadcrumbs[0].URL)
	assert.False(t, ctx.Breadcrumbs[0].Active)

	// Add second breadcrumb
	ctx.AddBreadcrumb("Settings", "/settings", false)
	assert.Len(t, ctx.Breadcrumbs, 2)
	assert.Equal(t, "Settings", ctx.Breadcrumbs[1].Title)

	// Add active breadcrumb
	ctx.AddBreadcrumb("Current Page", "/settings/page", true)
	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.True(t, ctx.Breadcrumbs[2].Active)
}

func TestContext_AddBreadcrumb_Chaining(t *testing.T) {
	ctx := NewContext("Test Page", "section1", "page1").
		AddBreadcrumb("Home", "/", false).
		AddBreadcrumb("Settings", "/settings", false).
		AddBreadcrumb("Current", "/settings/current", true)

	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "Settings", ctx.Breadcrumbs[1].Title)
	assert.Equal(t, "Current", ctx.Breadcrumbs[2].Title)
	assert.True(t, ctx.Breadcrumbs[2].Active)
}

func TestContext_IsActive(t *testing.T) {
	ctx := NewContext("Modules", "admin", "modules")

	assert.True(t, ctx.IsActive("admin", "modules"))
	assert.False(t, ctx.IsActive("tree", "modules"))
	assert.False(t, ctx.IsActive("admin", "changes"))
	assert.False(t, ctx.IsActive("tree", "faq"))
}

func TestContext_IsSectionActive(t *testing.T) {
	ctx := NewContext("Modules", "admin", "modules")

	assert.True(t, ctx.IsSectionActive("admin"))
	assert.False(t, ctx.IsSectionActive("tree"))
}

func TestContext_WithTree(t *testing.T) {
	ctx := NewContext("FAQ", "tree", "faq")
	assert.False(t, ctx.HasTree())

	menus := []MenuItem{
		{Label: "Stories", URL: "/module/stories/show_list?ged=demo"},
		{Label: "FAQ", URL: "/module/faq/show?ged=demo", Active: true},
	}

	ctx.WithTree("Demo tree", "/module/stories/show_list?ged=demo", menus)

	assert.True(t, ctx.HasTree())
	assert.Equal(t, "Demo tree", ctx.Tree)
	assert.Len(t, ctx.Menus, 2)
	assert.True(t, ctx.Menus[0].Active)
	assert.False(t, ctx.Menus[1].Active)
	assert.True(t, menus[1].Active, "input slice is left untouched")
}
