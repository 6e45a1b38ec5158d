package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dbtest"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

func TestInsertAndStatus(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, Insert(db, []models.Module{{Name: "faq", Status: models.ModuleEnabled}}))
	require.NoError(t, SetStatus(db, "faq", models.ModuleDisabled))

	// a second insert must not reset the status
	require.NoError(t, Insert(db, []models.Module{
		{Name: "faq", Status: models.ModuleEnabled},
		{Name: "stories", Status: models.ModuleEnabled},
	}))

	all, err := List(db)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, models.ModuleDisabled, all["faq"].Status)

	require.ErrorIs(t, SetStatus(db, "missing", models.ModuleEnabled), ErrModuleNotFound)

	_, err = Get(db, "missing")
	require.ErrorIs(t, err, ErrModuleNotFound)
}

func TestDelete(t *testing.T) {
	db := dbtest.Open(t)
	demo := dbtest.Tree(t, db, "demo")

	require.NoError(t, Insert(db, []models.Module{{Name: "faq", Status: models.ModuleEnabled}, {Name: "stories", Status: models.ModuleEnabled}}))

	faqBlock := models.Block{ModuleName: "faq", TreeID: &demo.ID}
	storyBlock := models.Block{ModuleName: "stories", TreeID: &demo.ID, Xref: "I1"}
	require.NoError(t, db.Create(&faqBlock).Error)
	require.NoError(t, db.Create(&storyBlock).Error)
	require.NoError(t, db.Create(&[]models.BlockSetting{
		{BlockID: faqBlock.ID, Name: "header", Value: "Q"},
		{BlockID: storyBlock.ID, Name: "title", Value: "T"},
	}).Error)
	require.NoError(t, SetSetting(db, "faq", "x", "1"))
	require.NoError(t, SetAccessLevel(db, "faq", demo.ID, "menu", 1))

	require.NoError(t, Delete(db, "faq"))

	var n int64
	require.NoError(t, db.Model(&models.Block{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	require.NoError(t, db.Model(&models.BlockSetting{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	require.NoError(t, db.Model(&models.ModuleSetting{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.ModulePrivacy{}).Count(&n).Error)
	assert.Zero(t, n)

	_, err := Get(db, "faq")
	require.ErrorIs(t, err, ErrModuleNotFound)
}

func TestAccessLevels(t *testing.T) {
	db := dbtest.Open(t)
	demo := dbtest.Tree(t, db, "demo")

	assert.Equal(t, -1, AccessLevel(db, "stories", demo.ID, "tab", -1))

	require.NoError(t, SetAccessLevel(db, "stories", demo.ID, "tab", 2))
	require.NoError(t, SetAccessLevel(db, "stories", demo.ID, "tab", 1))
	require.NoError(t, SetAccessLevel(db, "stories", demo.ID, "menu", 0))

	assert.Equal(t, 1, AccessLevel(db, "stories", demo.ID, "tab", -1))

	levels, err := AccessLevels(db, "tab")
	require.NoError(t, err)
	assert.Equal(t, map[string]map[uint]int{"stories": {demo.ID: 1}}, levels)

	assert.Equal(t, "def", Setting(db, "stories", "x", "def"))
}
