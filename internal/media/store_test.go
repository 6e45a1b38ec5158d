package media

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestStore(t *testing.T) {
	store := NewStore(t.TempDir(), "media/")

	created, err := store.EnsureDir("")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.EnsureDir("")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = store.EnsureDir("photos/")
	require.NoError(t, err)
	_, err = store.EnsureDir(ThumbsFolder + "photos/")
	require.NoError(t, err)

	require.NoError(t, store.Save("photos/a.png", bytes.NewReader(pngHeader)))

	err = store.Save("photos/a.png", bytes.NewReader(pngHeader))
	require.Error(t, err)
	assert.Equal(t, "The file photos/a.png already exists. Use another filename.", err.Error())

	require.NoError(t, store.SaveThumbnail("photos/a.png", bytes.NewReader(pngHeader)))
	_, err = os.Stat(filepath.Join(store.Root(), "thumbs", "photos", "a.png"))
	require.NoError(t, err)

	require.NoError(t, store.Save("photos/b.png", bytes.NewReader(pngHeader)))
	require.NoError(t, store.Remove("photos/b.png"))
	assert.NoFileExists(t, store.Path("photos/b.png"))
	require.NoError(t, store.Remove("photos/b.png"))

	folders, err := store.Folders()
	require.NoError(t, err)
	assert.Equal(t, []string{"photos/"}, folders)
	assert.True(t, store.DirExists("photos/"))
	assert.False(t, store.DirExists("videos/"))
}

func TestStore_FoldersMissingRoot(t *testing.T) {
	folders, err := NewStore(t.TempDir(), "missing/").Folders()
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "image/png", DetectMIME(bytes.NewReader(pngHeader), "application/octet-stream"))
	assert.Equal(t, "image/x-foo", DetectMIME(bytes.NewReader([]byte{0x00, 0x01, 0x02}), "image/x-foo"))
	assert.True(t, IsImage("image/gif"))
	assert.False(t, IsImage("text/plain"))
	assert.True(t, IsThumbnailType("image/jpeg"))
	assert.False(t, IsThumbnailType("image/tiff"))
}
