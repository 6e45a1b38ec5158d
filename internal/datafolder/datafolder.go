// Package datafolder lists and cleans the site's data folder.
package datafolder

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	// ErrProtected is returned when deleting an entry the site depends on.
	ErrProtected = errors.New("entry is protected")

	// ErrInvalidName is returned for names that are empty or leave the data folder.
	ErrInvalidName = errors.New("invalid entry name")
)

// alwaysProtected are entries of the data folder that are never offered for deletion.
var alwaysProtected = []string{".htaccess", ".gitignore", "index.php", "config.ini.php"}

// Entry is one file or folder directly below the data folder.
type Entry struct {
	Name      string
	Dir       bool
	Size      int64
	SizeHuman string
	Protected bool
}

// Folder is a data folder with its protected entries.
type Folder struct {
	path      string
	protected map[string]struct{}
}

// New returns the data folder at path. mediaDirectories are the MEDIA_DIRECTORY
// settings of all trees; the first segment of each is protected.
func New(path string, mediaDirectories []string) *Folder {
	f := &Folder{path: path, protected: make(map[string]struct{})}

	for _, name := range alwaysProtected {
		f.protected[name] = struct{}{}
	}

	for _, dir := range mediaDirectories {
		first, _, _ := strings.Cut(strings.TrimLeft(dir, "/"), "/")
		if first != "" && first != ".." {
			f.protected[first] = struct{}{}
		}
	}

	return f
}

// Path of the data folder.
func (f *Folder) Path() string {
	return f.path
}

// IsProtected reports whether an entry must be kept.
func (f *Folder) IsProtected(name string) bool {
	_, ok := f.protected[name]

	return ok
}

// Protected returns the protected entry names, sorted.
func (f *Folder) Protected() []string {
	out := make([]string, 0, len(f.protected))
	for name := range f.protected {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// List returns the entries of the data folder sorted by name.
func (f *Folder) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(f.path)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))

	for _, de := range dirEntries {
		e := Entry{Name: de.Name(), Dir: de.IsDir(), Protected: f.IsProtected(de.Name())}

		if e.Dir {
			e.Size = dirSize(filepath.Join(f.path, e.Name))
		} else if info, err := de.Info(); err == nil {
			e.Size = info.Size()
		}

		e.SizeHuman = humanize.IBytes(uint64(e.Size)) //nolint:gosec // sizes are never negative
		entries = append(entries, e)
	}

	return entries, nil
}

// Delete removes an entry, recursively for folders. It reports whether the entry was a folder.
func (f *Folder) Delete(name string) (bool, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return false, ErrInvalidName
	}

	p := filepath.Join(f.path, name)

	info, err := os.Lstat(p)
	if err != nil {
		return false, err
	}

	if f.IsProtected(name) {
		return info.IsDir(), ErrProtected
	}

	if info.IsDir() {
		return true, os.RemoveAll(p)
	}

	return false, os.Remove(p)
}

// SweepOldFiles tries to delete files and folders left over from older releases.
// Paths are relative to root. It returns those that still exist afterwards.
func SweepOldFiles(root string, paths []string) []string {
	var remaining []string

	for _, rel := range paths {
		p := filepath.Join(root, filepath.FromSlash(rel))

		if _, err := os.Lstat(p); err != nil {
			continue
		}

		_ = os.RemoveAll(p)

		if _, err := os.Lstat(p); err == nil {
			remaining = append(remaining, rel)
		}
	}

	return remaining
}

func dirSize(path string) int64 {
	var size int64

	_ = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}

		if info, err := d.Info(); err == nil && !d.IsDir() {
			size += info.Size()
		}

		return nil
	})

	return size
}
