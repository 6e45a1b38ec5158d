package setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/dbtest"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

func TestGet(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, db.Create(&models.Setting{Name: "site_name", Value: []byte("My Site")}).Error)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		expectedError error
		expectedValue []byte
	}{
		{name: "nil database", settingName: "test", expectedError: ErrDBNil},
		{name: "empty name", dbParam: db, expectedError: ErrSettingNameEmpty},
		{name: "setting not found", dbParam: db, settingName: "nonexistent", expectedError: ErrSettingNotFound},
		{name: "successful get", dbParam: db, settingName: "site_name", expectedValue: []byte("My Site")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Get(tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, s)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedValue, s.Value)
		})
	}
}

func TestSet(t *testing.T) {
	db := dbtest.Open(t)

	require.ErrorIs(t, Set(nil, "x", nil), ErrDBNil)
	require.ErrorIs(t, Set(db, "", nil), ErrSettingNameEmpty)

	require.NoError(t, Set(db, "theme", []byte("clouds")))
	require.NoError(t, Set(db, "theme", []byte("colors")))

	s, err := Get(db, "theme")
	require.NoError(t, err)
	assert.Equal(t, []byte("colors"), s.Value)

	all, err := GetAll(db)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDelete(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, Set(db, "theme", []byte("clouds")))
	require.NoError(t, Delete(db, "theme"))
	require.NoError(t, Delete(db, "theme"))

	_, err := Get(db, "theme")
	require.ErrorIs(t, err, ErrSettingNotFound)
	require.ErrorIs(t, Delete(db, ""), ErrSettingNameEmpty)
}

func TestJSON(t *testing.T) {
	db := dbtest.Open(t)

	type blob struct {
		Version string
		Count   int
	}

	require.NoError(t, SaveJSON(db, "blob", blob{Version: "2.1.0", Count: 3}))

	var got blob
	require.NoError(t, LoadJSON(db, "blob", &got))
	assert.Equal(t, blob{Version: "2.1.0", Count: 3}, got)

	require.ErrorIs(t, LoadJSON(db, "missing", &got), ErrSettingNotFound)

	require.NoError(t, Set(db, "broken", []byte("{")))
	require.Error(t, LoadJSON(db, "broken", &got))
}
