// Package block stores module blocks, such as FAQ entries and stories, with their settings.
package block

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrBlockNotFound is returned for unknown blocks or blocks of another module.
	ErrBlockNotFound = errors.New("block not found")
)

// Item is a block with its settings.
type Item struct {
	models.Block
	Settings map[string]string
}

// Setting returns a setting of the block, "" when unset.
func (i *Item) Setting(name string) string {
	return i.Settings[name]
}

// Query selects blocks of one module.
type Query struct {
	Module string
	// TreeID restricts to one tree. 0 means every tree.
	TreeID uint
	// AllTrees also returns blocks without a tree when TreeID is set.
	AllTrees bool
	// Xref restricts to blocks attached to one record.
	Xref string
	// UserID restricts to blocks of one user.
	UserID *uint64
}

func (q *Query) apply(db *gorm.DB) *gorm.DB {
	tx := db.Model(&models.Block{}).Where("module_name = ?", q.Module)

	switch {
	case q.TreeID != 0 && q.AllTrees:
		tx = tx.Where("(tree_id = ? OR tree_id IS NULL)", q.TreeID)
	case q.TreeID != 0:
		tx = tx.Where("tree_id = ?", q.TreeID)
	}

	if q.Xref != "" {
		tx = tx.Where("xref = ?", q.Xref)
	}

	if q.UserID != nil {
		tx = tx.Where("user_id = ?", *q.UserID)
	}

	return tx
}

// List returns the blocks matching q ordered by block_order, with their settings.
func List(db *gorm.DB, q Query) ([]Item, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var blocks []models.Block
	if err := q.apply(db).Order("block_order, id").Find(&blocks).Error; err != nil {
		return nil, err
	}

	return withSettings(db, blocks)
}

// Count returns the number of blocks matching q.
func Count(db *gorm.DB, q Query) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64

	return n, q.apply(db).Count(&n).Error
}

func withSettings(db *gorm.DB, blocks []models.Block) ([]Item, error) {
	items := make([]Item, len(blocks))
	index := make(map[uint64]int, len(blocks))
	ids := make([]uint64, len(blocks))

	for i, b := range blocks {
		items[i] = Item{Block: b, Settings: map[string]string{}}
		index[b.ID] = i
		ids[i] = b.ID
	}

	if len(ids) == 0 {
		return items, nil
	}

	var settings []models.BlockSetting
	if err := db.Where("block_id IN ?", ids).Find(&settings).Error; err != nil {
		return nil, err
	}

	for _, s := range settings {
		items[index[s.BlockID]].Settings[s.Name] = s.Value
	}

	return items, nil
}

// Get returns a block of a module with its settings.
func Get(db *gorm.DB, module string, id uint64) (*Item, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var b models.Block

	err := db.Where("id = ? AND module_name = ?", id, module).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlockNotFound
	}

	if err != nil {
		return nil, err
	}

	items, err := withSettings(db, []models.Block{b})
	if err != nil {
		return nil, err
	}

	return &items[0], nil
}

// Save creates the block when its ID is 0, updates it otherwise, and stores the settings.
func Save(db *gorm.DB, b *models.Block, settings map[string]string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if b.ID == 0 {
			if err := tx.Create(b).Error; err != nil {
				return err
			}
		} else {
			res := tx.Model(&models.Block{}).
				Where("id = ? AND module_name = ?", b.ID, b.ModuleName).
				Select("tree_id", "user_id", "xref", "block_order").
				Updates(b)
			if res.Error != nil {
				return res.Error
			}

			if res.RowsAffected == 0 && !exists(tx, b.ModuleName, b.ID) {
				return ErrBlockNotFound
			}
		}

		if len(settings) == 0 {
			return nil
		}

		rows := make([]models.BlockSetting, 0, len(settings))
		for name, value := range settings {
			rows = append(rows, models.BlockSetting{BlockID: b.ID, Name: name, Value: value})
		}

		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error
	})
}

func exists(db *gorm.DB, module string, id uint64) bool {
	var n int64

	db.Model(&models.Block{}).Where("id = ? AND module_name = ?", id, module).Count(&n)

	return n > 0
}

// Delete removes a block of a module and its settings.
func Delete(db *gorm.DB, module string, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if !exists(tx, module, id) {
			return ErrBlockNotFound
		}

		if err := tx.Where("block_id = ?", id).Delete(&models.BlockSetting{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.Block{}).Error
	})
}

// NextOrder returns one more than the highest block_order of the module, 0 for the first block.
func NextOrder(db *gorm.DB, module string) (int, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n sql.NullInt64
	if err := db.Model(&models.Block{}).
		Where("module_name = ?", module).
		Select("MAX(block_order)").
		Scan(&n).Error; err != nil {
		return 0, err
	}

	if !n.Valid {
		return 0, nil
	}

	return int(n.Int64) + 1, nil
}

// OrderRange returns the lowest and highest block_order of a module on a tree, including blocks for all trees.
func OrderRange(db *gorm.DB, module string, treeID uint) (lowest, highest int, err error) {
	if db == nil {
		return 0, 0, ErrDBNil
	}

	var r struct {
		Lowest  sql.NullInt64
		Highest sql.NullInt64
	}

	err = db.Model(&models.Block{}).
		Where("module_name = ? AND (tree_id = ? OR tree_id IS NULL)", module, treeID).
		Select("MIN(block_order) AS lowest, MAX(block_order) AS highest").
		Scan(&r).Error

	return int(r.Lowest.Int64), int(r.Highest.Int64), err
}

// MoveUp swaps the block_order of a block with the next lower one of the module.
func MoveUp(db *gorm.DB, module string, id uint64) error {
	return swap(db, module, id, "<", "MAX")
}

// MoveDown swaps the block_order of a block with the next higher one of the module.
func MoveDown(db *gorm.DB, module string, id uint64) error {
	return swap(db, module, id, ">", "MIN")
}

func swap(db *gorm.DB, module string, id uint64, cmp, agg string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var b models.Block

		err := tx.Where("id = ? AND module_name = ?", id, module).First(&b).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlockNotFound
		}

		if err != nil {
			return err
		}

		var target sql.NullInt64
		if err = tx.Model(&models.Block{}).
			Where("module_name = ? AND block_order "+cmp+" ?", module, b.BlockOrder).
			Select(agg + "(block_order)").
			Scan(&target).Error; err != nil {
			return err
		}

		if !target.Valid {
			return nil
		}

		var other models.Block
		if err = tx.Where("module_name = ? AND block_order = ?", module, target.Int64).
			First(&other).Error; err != nil {
			return err
		}

		if err = tx.Model(&models.Block{}).Where("id = ?", b.ID).
			Update("block_order", other.BlockOrder).Error; err != nil {
			return err
		}

		return tx.Model(&models.Block{}).Where("id = ?", other.ID).
			Update("block_order", b.BlockOrder).Error
	})
}
