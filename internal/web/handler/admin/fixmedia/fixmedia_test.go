package fixmedia

import (
	"encoding/json"
	"net/url"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/record"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dbtest"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/gedcom"
	authmw "github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/middleware/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web/webtest"
)

func TestFactsCell(t *testing.T) {
	cell := factsCell(record.MediaLink{
		TreeID:     4,
		MediaXref:  "M1",
		IndiXref:   "I1",
		IndiGedcom: "0 @I1@ INDI\n1 NAME Ann /Lee/\n1 SEX F\n1 BIRT\n2 DATE 1900\n1 OCCU <baker>\n1 OBJE @M1@",
	})

	assert.Contains(t, cell, ">BIRT</button>")
	assert.Contains(t, cell, ">OCCU &lt;baker&gt;</button>")
	assert.Contains(t, cell, `data-tree-id="4"`)
	assert.NotContains(t, cell, "NAME")
	assert.NotContains(t, cell, ">SEX")
	assert.NotContains(t, cell, ">OBJE")
}

func TestFixMedia(t *testing.T) {
	db := dbtest.Open(t)
	demo := dbtest.Tree(t, db, "demo")

	admin := dbtest.User(t, db, "admin")
	webtest.Grant(t, db, admin, auth.PermAdminMedia)

	m1, err := record.Create(db, demo.ID, "0 @new@ OBJE\n1 FILE a.jpg\n2 TITL Wedding", nil)
	require.NoError(t, err)

	indi, err := record.Create(db, demo.ID, "0 @new@ INDI\n1 NAME Ann /Lee/\n1 MARR\n2 DATE 1920\n1 OBJE @"+m1+"@", nil)
	require.NoError(t, err)

	app, _ := webtest.NewApp()
	app.Use(authmw.Middleware)

	s := &Service{}
	s.Init(app, webtest.Config(t.TempDir()), db, auth.NewService(db))

	id, sess := webtest.Login(t, admin)

	resp := webtest.Do(t, app, webtest.Request{Target: "/" + PathData + "?draw=1&start=0&length=10", Session: id})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var table Table
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&table))
	assert.Equal(t, 1, table.Draw)
	assert.Equal(t, 1, table.RecordsTotal)
	require.Len(t, table.Data, 1)
	assert.Equal(t, "demo", table.Data[0][0])
	assert.Equal(t, `<a href="/tree/demo/record/M1">Wedding</a>`, table.Data[0][1])
	assert.Equal(t, `<a href="/tree/demo/record/`+indi+`">Ann Lee</a>`, table.Data[0][2])

	resp = webtest.Do(t, app, webtest.Request{Target: "/" + PathData + "?search=nothing", Session: id})
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&table))
	assert.Equal(t, 1, table.RecordsTotal)
	assert.Equal(t, 0, table.RecordsFiltered)

	marr := gedcom.FactsByTag("0 @X@ INDI\n1 MARR\n2 DATE 1920", "MARR")[0]

	form := url.Values{
		"_csrf":     {sess.CSRFToken},
		"fact_id":   {marr.ID},
		"indi_xref": {indi},
		"obje_xref": {m1},
		"tree_id":   {strconv.FormatUint(uint64(demo.ID), 10)},
	}

	resp = webtest.Do(t, app, webtest.Request{Method: fiber.MethodPost, Target: "/" + Path, Session: id, Form: form})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, webtest.Body(t, resp))

	rec, err := record.Find(db, demo.ID, indi)
	require.NoError(t, err)
	assert.Equal(t, "0 @"+indi+"@ INDI\n1 NAME Ann /Lee/\n1 MARR\n2 DATE 1920\n2 OBJE @M1@", rec.Gedcom)

	form.Set("_csrf", "bad")
	resp = webtest.Do(t, app, webtest.Request{Method: fiber.MethodPost, Target: "/" + Path, Session: id, Form: form})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	form.Set("_csrf", sess.CSRFToken)
	form.Set("fact_id", "unknown")
	resp = webtest.Do(t, app, webtest.Request{Method: fiber.MethodPost, Target: "/" + Path, Session: id, Form: form})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
