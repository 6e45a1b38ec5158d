package media

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// ThumbsFolder is the folder below the media folder that mirrors it with thumbnails.
	ThumbsFolder = "thumbs/"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Store is the media folder of one tree, e.g. <data>/media/.
type Store struct {
	root string
}

// NewStore returns the store for mediaDirectory below dataDir.
func NewStore(dataDir, mediaDirectory string) *Store {
	return &Store{root: filepath.Join(dataDir, mediaDirectory)}
}

// Root is the path of the media folder.
func (s *Store) Root() string {
	return s.root + string(filepath.Separator)
}

// Path is the server path of a file or folder relative to the media folder.
func (s *Store) Path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// EnsureDir creates a folder relative to the media folder ("" is the media folder itself).
// It reports whether the folder had to be created.
func (s *Store) EnsureDir(rel string) (bool, error) {
	p := s.Path(rel)

	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return false, nil
	}

	if err := os.MkdirAll(p, dirPerm); err != nil {
		return false, FolderError{Path: p, Err: err}
	}

	return true, nil
}

// DirExists reports whether a folder exists relative to the media folder.
func (s *Store) DirExists(rel string) bool {
	info, err := os.Stat(s.Path(rel))

	return err == nil && info.IsDir()
}

// Save writes src to rel, refusing to overwrite an existing file.
func (s *Store) Save(rel string, src io.Reader) error {
	f, err := os.OpenFile(s.Path(rel), os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, fs.ErrExist) {
		return FileExistsError{Name: rel}
	}

	if err != nil {
		return errors.Join(ErrUpload, err)
	}

	if _, err = io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())

		return errors.Join(ErrUpload, err)
	}

	if err = f.Close(); err != nil {
		return errors.Join(ErrUpload, err)
	}

	return nil
}

// SaveThumbnail writes a thumbnail below thumbs/, replacing an older one.
func (s *Store) SaveThumbnail(rel string, src io.Reader) error {
	f, err := os.OpenFile(s.Path(ThumbsFolder+rel), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return errors.Join(ErrUpload, err)
	}

	if _, err = io.Copy(f, src); err != nil {
		_ = f.Close()

		return errors.Join(ErrUpload, err)
	}

	return f.Close()
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Store) Remove(rel string) error {
	if err := os.Remove(s.Path(rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// Folders lists the subfolders of the media folder, each ending with a slash.
// The thumbnail folder is not included.
func (s *Store) Folders() ([]string, error) {
	var out []string

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() || p == s.root {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel) + "/"
		if strings.HasPrefix(rel, ThumbsFolder) {
			return filepath.SkipDir
		}

		out = append(out, rel)

		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	sort.Strings(out)

	return out, err
}
