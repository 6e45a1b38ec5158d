package controlpanel

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dbtest"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/handler"
	authmw "github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/middleware/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/webtest"
)

func TestControlPanel(t *testing.T) {
	db := dbtest.Open(t)
	cfg := webtest.Config(t.TempDir() + "/missing")

	family := dbtest.Tree(t, db, "family")
	dbtest.Tree(t, db, "other")

	admin := dbtest.User(t, db, "admin")
	webtest.Grant(t, db, admin, auth.PermAdminSite)

	manager := dbtest.User(t, db, "manager")
	dbtest.Access(t, db, manager, family, models.TreeAccessManager)

	visitor := dbtest.User(t, db, "visitor")

	app, views := webtest.NewApp()
	app.Use(authmw.Middleware)

	s := &Service{}
	s.Init(app, cfg, db, auth.NewService(db), module.NewRegistry())

	t.Run("administrator", func(t *testing.T) {
		id, _ := webtest.Login(t, admin)

		resp := webtest.Do(t, app, webtest.Request{Target: "/" + Path, Session: id})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, TemplateName, views.Name)

		data, ok := views.Get("Data").(Data)
		require.True(t, ok)

		assert.Equal(t, config.Version, data.CurrentVersion)
		assert.False(t, data.UpgradeAvailable)
		assert.Len(t, data.Trees, 2)
		assert.EqualValues(t, 3, data.Users.All)
		assert.EqualValues(t, 1, data.Users.Administrators)
		assert.Len(t, data.Warnings, 2, "dev mode and missing data folder")
	})

	t.Run("manager sees managed trees only", func(t *testing.T) {
		id, _ := webtest.Login(t, manager)

		resp := webtest.Do(t, app, webtest.Request{Target: "/" + Path, Session: id})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, TemplateManager, views.Name)

		data, ok := views.Get("Data").(Data)
		require.True(t, ok)
		require.Len(t, data.Trees, 1)
		assert.Equal(t, "family", data.Trees[0].Tree.Name)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		id, _ := webtest.Login(t, visitor)

		resp := webtest.Do(t, app, webtest.Request{Target: "/" + Path, Session: id})
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Equal(t, handler.TemplateError, views.Name)
	})

	t.Run("visitors are sent to the login page", func(t *testing.T) {
		resp := webtest.Do(t, app, webtest.Request{Target: "/" + Path})
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, handler.LoginPath, resp.Header.Get(fiber.HeaderLocation))
	})
}
