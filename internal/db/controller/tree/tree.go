// Package tree reads family trees, their settings and per user access.
package tree

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

// Tree settings used by this application.
const (
	SettingMediaDirectory = "MEDIA_DIRECTORY"
	SettingNextXref       = "NEXT_XREF"
	SettingTitle          = "title"

	// DefaultMediaDirectory is used when a tree has no MEDIA_DIRECTORY.
	DefaultMediaDirectory = "media/"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrTreeNotFound is returned for unknown tree names or ids.
	ErrTreeNotFound = errors.New("tree not found")
)

// Counts are the record totals shown on the control panel.
type Counts struct {
	Changes      int64 // pending
	Individuals  int64
	Families     int64
	Sources      int64
	Media        int64
	Repositories int64
	Notes        int64
}

// List returns all trees in display order.
func List(db *gorm.DB) ([]models.Tree, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var trees []models.Tree

	return trees, db.Order("sort_order, title, id").Find(&trees).Error
}

// ByName finds a tree by its short name.
func ByName(db *gorm.DB, name string) (*models.Tree, error) {
	return first(db, "name = ?", name)
}

// ByID finds a tree by id.
func ByID(db *gorm.DB, id uint) (*models.Tree, error) {
	return first(db, "id = ?", id)
}

func first(db *gorm.DB, query string, arg any) (*models.Tree, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var t models.Tree

	err := db.Where(query, arg).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTreeNotFound
	}

	if err != nil {
		return nil, err
	}

	return &t, nil
}

// Setting returns a tree setting, or def when unset.
func Setting(db *gorm.DB, treeID uint, name, def string) string {
	if db == nil {
		return def
	}

	var s models.TreeSetting
	if err := db.Where("tree_id = ? AND name = ?", treeID, name).First(&s).Error; err != nil {
		return def
	}

	return s.Value
}

// SetSetting creates or replaces a tree setting.
func SetSetting(db *gorm.DB, treeID uint, name, value string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.TreeSetting{TreeID: treeID, Name: name, Value: value}).Error
}

// MediaDirectory returns the tree's media folder relative to the data folder.
func MediaDirectory(db *gorm.DB, treeID uint) string {
	return Setting(db, treeID, SettingMediaDirectory, DefaultMediaDirectory)
}

// MediaDirectories returns the MEDIA_DIRECTORY of every tree.
func MediaDirectories(db *gorm.DB) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var dirs []string

	return dirs, db.Model(&models.TreeSetting{}).
		Where("name = ?", SettingMediaDirectory).
		Distinct().
		Pluck("value", &dirs).Error
}

// Access returns the level of a user on a tree.
func Access(db *gorm.DB, userID uint64, treeID uint) models.TreeAccessLevel {
	if db == nil {
		return models.TreeAccessNone
	}

	var a models.TreeAccess
	if err := db.Where("user_id = ? AND tree_id = ?", userID, treeID).First(&a).Error; err != nil {
		return models.TreeAccessNone
	}

	return a.Level
}

// SetAccess creates or replaces the level of a user on a tree.
func SetAccess(db *gorm.DB, userID uint64, treeID uint, level models.TreeAccessLevel) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.TreeAccess{UserID: userID, TreeID: treeID, Level: level}).Error
}

// WithAccess returns the trees on which the user has at least the given level.
func WithAccess(db *gorm.DB, userID uint64, atLeast models.TreeAccessLevel) ([]models.Tree, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var levels []models.TreeAccessLevel

	for _, l := range []models.TreeAccessLevel{
		models.TreeAccessMember, models.TreeAccessEditor, models.TreeAccessModerator, models.TreeAccessManager,
	} {
		if l.Rank() >= atLeast.Rank() {
			levels = append(levels, l)
		}
	}

	var trees []models.Tree

	return trees, db.
		Joins("JOIN tree_access ON tree_access.tree_id = trees.id").
		Where("tree_access.user_id = ? AND tree_access.level IN ?", userID, levels).
		Order("trees.sort_order, trees.title, trees.id").
		Find(&trees).Error
}

// CountRecords returns the record totals of a tree.
func CountRecords(db *gorm.DB, treeID uint) (Counts, error) {
	var c Counts

	if db == nil {
		return c, ErrDBNil
	}

	byTree := func(model any, dst *int64, where ...any) error {
		q := db.Model(model).Where("tree_id = ?", treeID)
		if len(where) > 0 {
			q = q.Where(where[0], where[1:]...)
		}

		return q.Count(dst).Error
	}

	return c, errors.Join(
		byTree(&models.Change{}, &c.Changes, "status = ?", models.ChangePending),
		byTree(&models.Individual{}, &c.Individuals),
		byTree(&models.Family{}, &c.Families),
		byTree(&models.Source{}, &c.Sources),
		byTree(&models.Media{}, &c.Media),
		byTree(&models.Other{}, &c.Repositories, "type = ?", "REPO"),
		byTree(&models.Other{}, &c.Notes, "type = ?", "NOTE"),
	)
}
