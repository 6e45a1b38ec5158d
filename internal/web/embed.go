package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var assets embed.FS

// TemplateDir is the template root used in dev mode, relative to the repository.
const TemplateDir = "./internal/web/templates"

// sub returns the embedded directory dir as a file system root.
func sub(dir string) fs.FS {
	f, err := fs.Sub(assets, dir)
	if err != nil {
		panic(err) // dir is a constant embedded above
	}

	return f
}

// Templates returns the embedded .gohtml views.
func Templates() fs.FS { return sub("templates") }

// Static returns the embedded css and js files.
func Static() fs.FS { return sub("static") }
