package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dbtest"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

func faq(t *testing.T, db *gorm.DB, treeID *uint, header string) models.Block {
	t.Helper()

	order, err := NextOrder(db, "faq")
	require.NoError(t, err)

	b := models.Block{ModuleName: "faq", TreeID: treeID, BlockOrder: order}
	require.NoError(t, Save(db, &b, map[string]string{"header": header, "faqbody": header + " body"}))

	return b
}

func headers(items []Item) []string {
	out := make([]string, 0, len(items))
	for i := range items {
		out = append(out, items[i].Setting("header"))
	}

	return out
}

func TestSaveAndList(t *testing.T) {
	db := dbtest.Open(t)
	demo := dbtest.Tree(t, db, "demo")
	other := dbtest.Tree(t, db, "other")

	faq(t, db, &demo.ID, "first")
	faq(t, db, nil, "everywhere")
	faq(t, db, &other.ID, "elsewhere")

	items, err := List(db, Query{Module: "faq", TreeID: demo.ID, AllTrees: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "everywhere"}, headers(items))
	assert.Equal(t, "first body", items[0].Setting("faqbody"))

	items, err = List(db, Query{Module: "faq", TreeID: demo.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, headers(items))

	items, err = List(db, Query{Module: "faq"})
	require.NoError(t, err)
	assert.Len(t, items, 3)

	n, err := Count(db, Query{Module: "stories"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaveUpdate(t *testing.T) {
	db := dbtest.Open(t)
	demo := dbtest.Tree(t, db, "demo")

	b := faq(t, db, &demo.ID, "old")
	b.TreeID = nil
	b.BlockOrder = 7
	require.NoError(t, Save(db, &b, map[string]string{"header": "new", "languages": "de,fr"}))

	item, err := Get(db, "faq", b.ID)
	require.NoError(t, err)
	assert.Nil(t, item.TreeID)
	assert.Equal(t, 7, item.BlockOrder)
	assert.Equal(t, "new", item.Setting("header"))
	assert.Equal(t, "old body", item.Setting("faqbody"))
	assert.Equal(t, "de,fr", item.Setting("languages"))

	b.ModuleName = "stories"
	require.ErrorIs(t, Save(db, &b, nil), ErrBlockNotFound)

	_, err = Get(db, "stories", b.ID)
	require.ErrorIs(t, err, ErrBlockNotFound)
}

func TestDelete(t *testing.T) {
	db := dbtest.Open(t)

	a := faq(t, db, nil, "a")
	faq(t, db, nil, "b")

	require.NoError(t, Delete(db, "faq", a.ID))
	require.ErrorIs(t, Delete(db, "faq", a.ID), ErrBlockNotFound)

	var n int64
	require.NoError(t, db.Model(&models.BlockSetting{}).Where("block_id = ?", a.ID).Count(&n).Error)
	assert.Zero(t, n)

	items, err := List(db, Query{Module: "faq"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, headers(items))
}

func TestOrdering(t *testing.T) {
	db := dbtest.Open(t)
	demo := dbtest.Tree(t, db, "demo")

	next, err := NextOrder(db, "faq")
	require.NoError(t, err)
	assert.Zero(t, next)

	a := faq(t, db, &demo.ID, "a")
	b := faq(t, db, &demo.ID, "b")
	c := faq(t, db, &demo.ID, "c")
	assert.Equal(t, []int{0, 1, 2}, []int{a.BlockOrder, b.BlockOrder, c.BlockOrder})

	lowest, highest, err := OrderRange(db, "faq", demo.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, lowest)
	assert.Equal(t, 2, highest)

	require.NoError(t, MoveUp(db, "faq", c.ID))
	list := func() []string {
		items, err := List(db, Query{Module: "faq", TreeID: demo.ID})
		require.NoError(t, err)

		return headers(items)
	}
	assert.Equal(t, []string{"a", "c", "b"}, list())

	require.NoError(t, MoveDown(db, "faq", a.ID))
	assert.Equal(t, []string{"c", "a", "b"}, list())

	// moving the first block up and the last block down changes nothing
	require.NoError(t, MoveUp(db, "faq", c.ID))
	require.NoError(t, MoveDown(db, "faq", b.ID))
	assert.Equal(t, []string{"c", "a", "b"}, list())

	require.ErrorIs(t, MoveUp(db, "faq", 999), ErrBlockNotFound)
}

func TestStoriesByXref(t *testing.T) {
	db := dbtest.Open(t)
	demo := dbtest.Tree(t, db, "demo")

	for _, xref := range []string{"I1", "I2", "I1"} {
		b := models.Block{ModuleName: "stories", TreeID: &demo.ID, Xref: xref}
		require.NoError(t, Save(db, &b, map[string]string{"title": "about " + xref}))
	}

	items, err := List(db, Query{Module: "stories", TreeID: demo.ID, Xref: "I1"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "about I1", items[0].Setting("title"))
}

func TestNilDB(t *testing.T) {
	_, err := List(nil, Query{})
	require.ErrorIs(t, err, ErrDBNil)
	require.ErrorIs(t, Save(nil, &models.Block{}, nil), ErrDBNil)
	require.ErrorIs(t, MoveUp(nil, "faq", 1), ErrDBNil)
}
