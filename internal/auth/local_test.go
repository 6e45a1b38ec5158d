package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dbtest"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

func TestLocalProvider(t *testing.T) {
	db := dbtest.Open(t)
	role := models.Role{Name: "member"}
	require.NoError(t, db.Create(&role).Error)

	lp := auth.NewLocalProvider(db)

	user, err := lp.CreateUser("alice", "alice@example.com", "secret", "Alice Doe", role.ID)
	require.NoError(t, err)
	assert.True(t, user.Active)

	_, err = lp.CreateUser("alice", "other@example.com", "x", "", role.ID)
	require.ErrorIs(t, err, auth.ErrUserNameOrEmailExists)

	got, err := lp.Authenticate("alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = lp.Authenticate("alice", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidPassword)

	_, err = lp.Authenticate("bob", "secret")
	require.ErrorIs(t, err, auth.ErrUserNotFound)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("active", false).Error)

	_, err = lp.Authenticate("alice", "secret")
	require.ErrorIs(t, err, auth.ErrUserAccountDisabled)
}
