package session_test

import (
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/session"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/webtest"
)

func TestReadWrite(t *testing.T) {
	webtest.NewApp()

	id, data := webtest.Login(t, models.User{ID: 3, Username: "carol"})
	assert.Len(t, data.CSRFToken, 32)

	got := new(session.Data)
	require.NoError(t, got.Read(id))
	assert.Equal(t, "carol", got.User.Username)
	assert.Equal(t, data.CSRFToken, got.CSRFToken)

	require.NoError(t, session.Delete(id))
	require.ErrorIs(t, got.Read(id), session.ErrSessionNotFound)
	require.ErrorIs(t, got.Read(""), session.ErrSessionNotFound)
}

func TestInitWithoutStorage(t *testing.T) {
	session.Init(nil)
	require.NotNil(t, session.Store.Storage)

	d := session.New(models.User{ID: 1})
	require.NoError(t, d.Write("abc", 0))
	require.NoError(t, new(session.Data).Read("abc"))
}

func TestCheckCSRF(t *testing.T) {
	app, _ := webtest.NewApp()

	id, data := webtest.Login(t, models.User{ID: 1})

	app.Post("/", func(c *fiber.Ctx) error {
		d := new(session.Data)
		if err := d.Read(c.Cookies(session.CookieName)); err == nil {
			c.Locals(session.LocalsKey, d)
		}

		if !session.CheckCSRF(c) {
			return c.SendStatus(fiber.StatusForbidden)
		}

		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		name    string
		session string
		token   string
		status  int
	}{
		{"matching token", id, data.CSRFToken, fiber.StatusNoContent},
		{"wrong token", id, "x", fiber.StatusForbidden},
		{"missing token", id, "", fiber.StatusForbidden},
		{"visitor", "", "", fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := webtest.Do(t, app, webtest.Request{
				Method:  fiber.MethodPost,
				Target:  "/",
				Session: tt.session,
				Form:    url.Values{session.CSRFField: {tt.token}},
			})
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
