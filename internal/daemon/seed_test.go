package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	dbmodule "github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/module"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/user"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dbtest"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/web"
)

func TestSeed(t *testing.T) {
	db := dbtest.Open(t)
	registry := web.Modules()

	require.NoError(t, seed(db, registry))
	// a second run changes nothing
	require.NoError(t, seed(db, registry))

	var perms int64
	require.NoError(t, db.Model(&models.Permission{}).Count(&perms).Error)
	assert.Equal(t, int64(len(auth.Permissions)), perms)

	admin, err := user.ByUsername(db, defaultAdminUser)
	require.NoError(t, err)
	assert.True(t, admin.VerifyPassword(defaultAdminPassword))

	authService := auth.NewService(db)
	assert.True(t, authService.IsAdmin(admin.ID))

	var member models.Role
	require.NoError(t, db.Where("name = ?", RoleMember).Take(&member).Error)

	var grants int64
	require.NoError(t, db.Model(&models.RolePermission{}).Where("role_id = ?", member.ID).Count(&grants).Error)
	assert.Equal(t, int64(1), grants)

	trees, err := tree.List(db)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	assert.Equal(t, defaultTreeName, trees[0].Name)
	assert.Equal(t, tree.DefaultMediaDirectory, tree.MediaDirectory(db, trees[0].ID))

	rows, err := dbmodule.List(db)
	require.NoError(t, err)

	for _, name := range registry.Names() {
		assert.Contains(t, rows, name)
		assert.True(t, registry.Enabled(db, name), name)
	}
}

func TestDialectorAndSessionStorage(t *testing.T) {
	cfg := &config.Config{DB: config.DB{GormEngine: config.EngineSQLite, Name: ":memory:"}}

	assert.Equal(t, "sqlite", Dialector(cfg).Name())
	assert.Nil(t, SessionStorage(cfg))

	cfg.DB.GormEngine = config.EngineMySQL
	assert.Equal(t, "mysql", Dialector(cfg).Name())

	cfg.DB.GormEngine = config.EnginePostgres
	assert.Equal(t, "postgres", Dialector(cfg).Name())
}
