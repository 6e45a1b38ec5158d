package datafolder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFolder(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.php"), []byte("<?php"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.ged"), make([]byte, 2048), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "media", "photos"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cache"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cache", "x"), []byte("abc"), 0o600))

	return dir
}

func TestNew_Protected(t *testing.T) {
	f := New(t.TempDir(), []string{"media/", "/photos/2020/", "../outside/", ""})

	assert.Equal(t, []string{".gitignore", ".htaccess", "config.ini.php", "index.php", "media", "photos"}, f.Protected())
	assert.False(t, f.IsProtected(".."))
}

func TestList(t *testing.T) {
	f := New(setupFolder(t), []string{"media/"})

	entries, err := f.List()
	require.NoError(t, err)
	require.Len(t, entries, 4)

	byName := map[string]Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}

	assert.True(t, byName["media"].Protected)
	assert.True(t, byName["media"].Dir)
	assert.True(t, byName["index.php"].Protected)
	assert.False(t, byName["old.ged"].Protected)
	assert.Equal(t, "2.0 KiB", byName["old.ged"].SizeHuman)
	assert.Equal(t, int64(3), byName["cache"].Size)
}

func TestDelete(t *testing.T) {
	dir := setupFolder(t)
	f := New(dir, []string{"media/"})

	isDir, err := f.Delete("cache")
	require.NoError(t, err)
	assert.True(t, isDir)
	assert.NoDirExists(t, filepath.Join(dir, "cache"))

	isDir, err = f.Delete("old.ged")
	require.NoError(t, err)
	assert.False(t, isDir)

	isDir, err = f.Delete("media")
	require.ErrorIs(t, err, ErrProtected)
	assert.True(t, isDir)

	_, err = f.Delete("../etc")
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = f.Delete("missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSweepOldFiles(t *testing.T) {
	dir := setupFolder(t)

	remaining := SweepOldFiles(dir, []string{"cache/x", "not-there", "old.ged"})
	assert.Empty(t, remaining)
	assert.NoFileExists(t, filepath.Join(dir, "old.ged"))
}
