package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dbtest"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

func TestJournal(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")

	first := models.News{Subject: "first", Body: "one"}
	require.NoError(t, Save(db, alice.ID, &first))

	second := models.News{Subject: "second", Body: "two"}
	require.NoError(t, Save(db, alice.ID, &second))
	require.NoError(t, db.Model(&second).Update("updated", time.Now().Add(time.Hour)).Error)

	require.NoError(t, Save(db, bob.ID, &models.News{Subject: "bob", Body: "b"}))

	entries, err := Journal(db, alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Subject)
	assert.Equal(t, "first", entries[1].Subject)
}

func TestOwnerOnly(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")

	entry := models.News{Subject: "mine", Body: "text"}
	require.NoError(t, Save(db, alice.ID, &entry))

	_, err := Get(db, bob.ID, entry.ID)
	require.ErrorIs(t, err, ErrNewsNotFound)

	hijack := models.News{ID: entry.ID, Subject: "yours"}
	require.ErrorIs(t, Save(db, bob.ID, &hijack), ErrNewsNotFound)
	require.ErrorIs(t, Delete(db, bob.ID, entry.ID), ErrNewsNotFound)

	entry.Subject = "edited"
	require.NoError(t, Save(db, alice.ID, &entry))

	got, err := Get(db, alice.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Subject)

	require.NoError(t, Delete(db, alice.ID, entry.ID))

	_, err = Get(db, alice.ID, entry.ID)
	require.ErrorIs(t, err, ErrNewsNotFound)
}
