package handler

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

const (
	// TreeParam is the route parameter naming the current tree.
	TreeParam = "tree"

	// GedParam is the query or form field naming the current tree of module pages.
	GedParam = "ged"
)

// Tree loads the tree named by the :tree route parameter.
func Tree(c *fiber.Ctx, db *gorm.DB) (*models.Tree, error) {
	name, err := url.PathUnescape(c.Params(TreeParam))
	if err != nil {
		return nil, tree.ErrTreeNotFound
	}

	return tree.ByName(db, name)
}

// CurrentTree loads the tree named by the ged parameter. Module pages without one, or with an
// unknown name, fall back to the first tree.
func CurrentTree(c *fiber.Ctx, db *gorm.DB) (*models.Tree, error) {
	name := c.Query(GedParam)
	if name == "" {
		name = c.FormValue(GedParam)
	}

	if name != "" {
		t, err := tree.ByName(db, name)
		if err == nil || !errors.Is(err, tree.ErrTreeNotFound) {
			return t, err
		}
	}

	trees, err := tree.List(db)
	if err != nil {
		return nil, err
	}

	if len(trees) == 0 {
		return nil, tree.ErrTreeNotFound
	}

	return &trees[0], nil
}

// FormValues returns every value of a repeated form field, e.g. "tag[]",
// from urlencoded and multipart bodies.
func FormValues(c *fiber.Ctx, key string) []string {
	if form, err := c.MultipartForm(); err == nil {
		return form.Value[key]
	}

	raw := c.Request().PostArgs().PeekMulti(key)
	out := make([]string, 0, len(raw))

	for _, v := range raw {
		out = append(out, string(v))
	}

	return out
}
