// Package module stores module status, settings and per tree component access.
package module

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrModuleNotFound is returned for module names without a row.
	ErrModuleNotFound = errors.New("module not found")
)

const moduleNameQuery = "module_name = ?"

// List returns all module rows keyed by name.
func List(db *gorm.DB) (map[string]models.Module, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []models.Module
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]models.Module, len(rows))
	for _, m := range rows {
		out[m.Name] = m
	}

	return out, nil
}

// Get returns a module row.
func Get(db *gorm.DB, name string) (*models.Module, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var m models.Module

	err := db.Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrModuleNotFound
	}

	if err != nil {
		return nil, err
	}

	return &m, nil
}

// Insert adds module rows that do not exist yet. Existing rows are left alone.
func Insert(db *gorm.DB, rows []models.Module) error {
	if db == nil {
		return ErrDBNil
	}

	if len(rows) == 0 {
		return nil
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// SetStatus enables or disables a module.
func SetStatus(db *gorm.DB, name string, status models.ModuleStatus) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Model(&models.Module{}).Where("name = ?", name).Update("status", status)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrModuleNotFound
	}

	return nil
}

// Delete removes a module with its blocks, settings and access rows.
func Delete(db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		blocks := tx.Model(&models.Block{}).Select("id").Where(moduleNameQuery, name)

		return errors.Join(
			tx.Where("block_id IN (?)", blocks).Delete(&models.BlockSetting{}).Error,
			tx.Where(moduleNameQuery, name).Delete(&models.Block{}).Error,
			tx.Where(moduleNameQuery, name).Delete(&models.ModuleSetting{}).Error,
			tx.Where(moduleNameQuery, name).Delete(&models.ModulePrivacy{}).Error,
			tx.Where("name = ?", name).Delete(&models.Module{}).Error,
		)
	})
}

// Setting returns a module preference, or def when unset.
func Setting(db *gorm.DB, moduleName, name, def string) string {
	if db == nil {
		return def
	}

	var s models.ModuleSetting
	if err := db.Where("module_name = ? AND name = ?", moduleName, name).First(&s).Error; err != nil {
		return def
	}

	return s.Value
}

// SetSetting creates or replaces a module preference.
func SetSetting(db *gorm.DB, moduleName, name, value string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.ModuleSetting{ModuleName: moduleName, Name: name, Value: value}).Error
}

// AccessLevels returns the stored access levels of a component per tree for every module,
// keyed by module name and tree id.
func AccessLevels(db *gorm.DB, component string) (map[string]map[uint]int, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rows []models.ModulePrivacy
	if err := db.Where("component = ?", component).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := map[string]map[uint]int{}

	for _, r := range rows {
		if out[r.ModuleName] == nil {
			out[r.ModuleName] = map[uint]int{}
		}

		out[r.ModuleName][r.TreeID] = r.AccessLevel
	}

	return out, nil
}

// AccessLevel returns the access level of a module component on a tree, or def when unset.
func AccessLevel(db *gorm.DB, moduleName string, treeID uint, component string, def int) int {
	if db == nil {
		return def
	}

	var p models.ModulePrivacy

	err := db.Where("module_name = ? AND tree_id = ? AND component = ?", moduleName, treeID, component).
		First(&p).Error
	if err != nil {
		return def
	}

	return p.AccessLevel
}

// SetAccessLevel creates or replaces the access level of a module component on a tree.
func SetAccessLevel(db *gorm.DB, moduleName string, treeID uint, component string, level int) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&models.ModulePrivacy{
		ModuleName:  moduleName,
		TreeID:      treeID,
		Component:   component,
		AccessLevel: level,
	}).Error
}
