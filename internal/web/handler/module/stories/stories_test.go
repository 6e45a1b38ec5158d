package stories

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/block"
	dbmodule "github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/record"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dbtest"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/locale"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/flash"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	authmw "github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/middleware/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/navigation"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/webtest"
)

func TestStories(t *testing.T) {
	db := dbtest.Open(t)
	family := dbtest.Tree(t, db, "family")
	dbtest.Tree(t, db, "other")

	indi, err := record.Create(db, family.ID, "0 @new@ INDI\n1 NAME Ann /Lee/", nil)
	require.NoError(t, err)

	lonely, err := record.Create(db, family.ID, "0 @new@ INDI\n1 NAME Bob /Lee/", nil)
	require.NoError(t, err)

	s := &Service{}
	registry := module.NewRegistry(s)
	require.NoError(t, registry.Sync(db))

	cfg := webtest.Config(t.TempDir())
	matcher, err := locale.New(cfg.Site.Languages, cfg.Site.DefaultLanguage)
	require.NoError(t, err)

	app, views := webtest.NewApp()
	app.Use(authmw.Middleware, flash.Middleware(), matcher.Middleware())
	s.Init(app, cfg, db, auth.NewService(db), registry)

	var tab *module.Tab

	app.Get("/tree/:tree/tab/:xref", func(c *fiber.Ctx) error {
		var err error

		tab, err = s.Tab(c, &family, c.Params("xref"))

		return err
	})

	admin := dbtest.User(t, db, "admin")
	webtest.Grant(t, db, admin, auth.PermAdminSite)
	adminID, adminSess := webtest.Login(t, admin)

	editor := dbtest.User(t, db, "editor")
	dbtest.Access(t, db, editor, family, models.TreeAccessEditor)
	editorID, editorSess := webtest.Login(t, editor)

	member := dbtest.User(t, db, "member")
	dbtest.Access(t, db, member, family, models.TreeAccessMember)
	memberID, _ := webtest.Login(t, member)

	stories := func() []block.Item {
		items, err := block.List(db, block.Query{Module: Name})
		require.NoError(t, err)

		return items
	}

	t.Run("editor adds a story", func(t *testing.T) {
		resp := webtest.Do(t, app, webtest.Request{
			Method:  fiber.MethodPost,
			Target:  "/module/stories/admin_edit?ged=family",
			Session: editorID,
			Form: url.Values{
				"_csrf":      {editorSess.CSRFToken},
				"save":       {"1"},
				"block_id":   {""},
				"title":      {"The war years"},
				"story_body": {"He served.\nTwice."},
				"xref":       {indi},
			},
		})
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, handler.RecordURL("family", indi)+TabAnchor, resp.Header.Get(fiber.HeaderLocation))

		items := stories()
		require.Len(t, items, 1)
		require.NotNil(t, items[0].TreeID)
		assert.Equal(t, family.ID, *items[0].TreeID)
		assert.Equal(t, indi, items[0].Xref)
		assert.Equal(t, 0, items[0].BlockOrder)
		assert.Equal(t, "The war years", items[0].Setting(SettingTitle))
	})

	t.Run("admin adds a story for a missing individual", func(t *testing.T) {
		resp := webtest.Do(t, app, webtest.Request{
			Method:  fiber.MethodPost,
			Target:  "/module/stories/admin_edit?ged=family",
			Session: adminID,
			Form: url.Values{
				"_csrf":      {adminSess.CSRFToken},
				"save":       {"1"},
				"title":      {"Lost"},
				"story_body": {"<p>Gone</p>"},
				"xref":       {"X999"},
				"lang[]":     {"de"},
			},
		})
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/module/stories/admin_config?ged=family", resp.Header.Get(fiber.HeaderLocation))
		assert.Len(t, stories(), 2)
	})

	items := stories()
	require.Len(t, items, 2)
	story := items[0]

	t.Run("members are sent home", func(t *testing.T) {
		resp := webtest.Do(t, app, webtest.Request{Target: "/module/stories/admin_edit?ged=family", Session: memberID})
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("edit form", func(t *testing.T) {
		webtest.Do(t, app, webtest.Request{
			Target:  "/module/stories/admin_edit?ged=family&block_id=" + strconv.FormatUint(story.ID, 10),
			Session: editorID,
		})
		assert.Equal(t, TemplateEdit, views.Name)

		data := views.Get("Data").(EditData)
		assert.Equal(t, story.ID, data.BlockID)
		assert.Equal(t, "The war years", data.Title)
		assert.Equal(t, "Ann Lee", data.Name)
		assert.Len(t, data.Languages, 3)

		webtest.Do(t, app, webtest.Request{Target: "/module/stories/admin_edit?ged=family&xref=" + lonely, Session: editorID})

		data = views.Get("Data").(EditData)
		assert.Zero(t, data.BlockID)
		assert.Equal(t, lonely, data.Xref)
		assert.Equal(t, "Bob Lee", data.Name)

		resp := webtest.Do(t, app, webtest.Request{
			Target:  "/module/stories/admin_edit?ged=other&block_id=" + strconv.FormatUint(story.ID, 10),
			Session: adminID,
		})
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("config", func(t *testing.T) {
		webtest.Do(t, app, webtest.Request{Target: "/module/stories/admin_config?ged=family", Session: adminID})
		assert.Equal(t, TemplateConfig, views.Name)

		data := views.Get("Data").(ConfigData)
		assert.Len(t, data.Trees, 2)
		require.Len(t, data.Stories, 2)
		assert.Equal(t, indi, data.Stories[0].Xref)
		assert.Equal(t, "Ann Lee", data.Stories[0].Name)
		assert.Equal(t, handler.RecordURL("family", indi)+TabAnchor, data.Stories[0].URL)
		assert.Equal(t, "X999", data.Stories[1].Xref)
		assert.Empty(t, data.Stories[1].Name)
		assert.Empty(t, data.Stories[1].URL)

		resp := webtest.Do(t, app, webtest.Request{Target: "/module/stories/admin_config?ged=family", Session: editorID})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		resp := webtest.Do(t, app, webtest.Request{Target: "/module/stories/show_list?ged=family"})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, TemplateList, views.Name)

		data := views.Get("Data").(ListData)
		require.Len(t, data.Stories, 1)
		assert.Equal(t, indi, data.Stories[0].Xref)
		assert.Empty(t, views.Get("Navigation").(*navigation.Context).Menus, "hidden by default")

		require.NoError(t, dbmodule.SetAccessLevel(db, Name, family.ID, string(module.ComponentMenu), auth.PrivPrivate))

		webtest.Do(t, app, webtest.Request{
			Target: "/module/stories/show_list?ged=family",
			Header: map[string]string{fiber.HeaderAcceptLanguage: "de"},
		})

		assert.Len(t, views.Get("Data").(ListData).Stories, 2)

		menus := views.Get("Navigation").(*navigation.Context).Menus
		require.Len(t, menus, 1)
		assert.Equal(t, "Stories", menus[0].Label)
		assert.True(t, menus[0].Active)

		webtest.Do(t, app, webtest.Request{Target: "/module/stories/show_list?ged=other"})
		assert.Empty(t, views.Get("Data").(ListData).Stories)
	})

	t.Run("disabled module answers 404", func(t *testing.T) {
		require.NoError(t, dbmodule.SetStatus(db, Name, models.ModuleDisabled))

		resp := webtest.Do(t, app, webtest.Request{Target: "/module/stories/show_list?ged=family"})
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		resp = webtest.Do(t, app, webtest.Request{Target: "/module/stories/admin_config?ged=family", Session: adminID})
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		require.NoError(t, dbmodule.SetStatus(db, Name, models.ModuleEnabled))

		resp = webtest.Do(t, app, webtest.Request{Target: "/module/stories/show_list?ged=family"})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("tab", func(t *testing.T) {
		webtest.Do(t, app, webtest.Request{Target: "/tree/family/tab/" + indi})
		require.NotNil(t, tab)
		assert.False(t, tab.GrayedOut)

		data := tab.Data["Data"].(TabData)
		assert.False(t, data.CanEdit)
		require.Len(t, data.Stories, 1)
		assert.Equal(t, "He served.<br>\nTwice.", string(data.Stories[0].Body))

		webtest.Do(t, app, webtest.Request{Target: "/tree/family/tab/" + indi, Session: editorID})
		assert.True(t, tab.Data["Data"].(TabData).CanEdit)

		webtest.Do(t, app, webtest.Request{Target: "/tree/family/tab/" + lonely})
		assert.Nil(t, tab)

		webtest.Do(t, app, webtest.Request{Target: "/tree/family/tab/" + lonely, Session: adminID})
		require.NotNil(t, tab)
		assert.True(t, tab.GrayedOut)
		assert.Equal(t, "/module/stories/admin_edit?ged=family&xref="+lonely, tab.Data["Data"].(TabData).AddURL)
	})

	t.Run("delete", func(t *testing.T) {
		form := url.Values{"block_id": {strconv.FormatUint(story.ID, 10)}}

		webtest.Do(t, app, webtest.Request{
			Method:  fiber.MethodPost,
			Target:  "/module/stories/admin_delete?ged=family",
			Session: editorID,
			Form:    form,
		})
		assert.Len(t, stories(), 2)

		webtest.Do(t, app, webtest.Request{Target: "/module/stories/admin_edit?ged=family", Session: editorID})
		assert.Equal(t, []flash.Message{{Type: flash.TypeDanger, Text: msgFormExpired}}, views.Flash())

		form.Set("_csrf", editorSess.CSRFToken)

		resp := webtest.Do(t, app, webtest.Request{
			Method:  fiber.MethodPost,
			Target:  "/module/stories/admin_delete?ged=other",
			Session: editorID,
			Form:    form,
		})
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation), "not an editor of the other tree")

		resp = webtest.Do(t, app, webtest.Request{
			Method:  fiber.MethodPost,
			Target:  "/module/stories/admin_delete?ged=family",
			Session: editorID,
			Form:    form,
		})
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, handler.RecordURL("family", indi)+TabAnchor, resp.Header.Get(fiber.HeaderLocation))
		assert.Len(t, stories(), 1)
	})

	t.Run("unknown action", func(t *testing.T) {
		resp := webtest.Do(t, app, webtest.Request{Target: "/module/stories/nothing", Session: adminID})
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

}
