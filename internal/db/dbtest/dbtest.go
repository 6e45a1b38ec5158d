// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

// Open returns an in-memory SQLite database with every model migrated.
// The pool is limited to one connection, each connection would see its own empty database otherwise.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	return db
}

// Tree creates a tree with the given name and MEDIA_DIRECTORY media/.
func Tree(t *testing.T, db *gorm.DB, name string) models.Tree {
	t.Helper()

	tree := models.Tree{Name: name, Title: name}
	require.NoError(t, db.Create(&tree).Error)
	require.NoError(t, db.Create(&models.TreeSetting{TreeID: tree.ID, Name: "MEDIA_DIRECTORY", Value: "media/"}).Error)

	return tree
}

// User creates an active user with a role named after the username.
func User(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	role := models.Role{Name: "role-" + username}
	require.NoError(t, db.Create(&role).Error)

	user := models.User{
		Active:   true,
		Verified: true,
		Username: username,
		RealName: username,
		Email:    username + "@example.com",
		RoleID:   role.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	return user
}

// Access grants a user a level on a tree.
func Access(t *testing.T, db *gorm.DB, user models.User, tree models.Tree, level models.TreeAccessLevel) {
	t.Helper()

	require.NoError(t, db.Create(&models.TreeAccess{UserID: user.ID, TreeID: tree.ID, Level: level}).Error)
}
