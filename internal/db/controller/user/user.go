// Package user reads site accounts and their preferences.
package user

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrUserNotFound is returned for unknown users.
	ErrUserNotFound = errors.New("user not found")
)

// Counts are the user totals shown on the control panel.
type Counts struct {
	All            int64
	Administrators int64
	Managers       int64
	Moderators     int64
	Unapproved     int64
	Unverified     int64
}

// ByID finds a user by id.
func ByID(db *gorm.DB, id uint64) (*models.User, error) {
	return first(db, "id = ?", id)
}

// ByUsername finds a user by username.
func ByUsername(db *gorm.DB, username string) (*models.User, error) {
	return first(db, "username = ?", username)
}

func first(db *gorm.DB, query string, arg any) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User

	err := db.Preload("Role").Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return &u, nil
}

// List returns all users ordered by username.
func List(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User

	return users, db.Order("username").Find(&users).Error
}

// CountAll returns the user totals. Administrators are users whose role grants adminPermission.
func CountAll(db *gorm.DB, adminPermission string) (Counts, error) {
	var c Counts

	if db == nil {
		return c, ErrDBNil
	}

	users := func() *gorm.DB { return db.Model(&models.User{}) }

	byLevel := func(level models.TreeAccessLevel, dst *int64) error {
		return db.Model(&models.TreeAccess{}).
			Where("level = ?", level).
			Distinct("user_id").
			Count(dst).Error
	}

	return c, errors.Join(
		users().Count(&c.All).Error,
		users().
			Joins("JOIN role_permissions ON role_permissions.role_id = users.role_id").
			Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
			Where("permissions.name = ?", adminPermission).
			Distinct("users.id").
			Count(&c.Administrators).Error,
		byLevel(models.TreeAccessManager, &c.Managers),
		byLevel(models.TreeAccessModerator, &c.Moderators),
		users().Where("active = ?", false).Count(&c.Unapproved).Error,
		users().Where("verified = ?", false).Count(&c.Unverified).Error,
	)
}

// Setting returns a user preference, or def when unset.
func Setting(db *gorm.DB, userID uint64, name, def string) string {
	if db == nil {
		return def
	}

	var s models.UserSetting
	if err := db.Where("user_id = ? AND name = ?", userID, name).First(&s).Error; err != nil {
		return def
	}

	return s.Value
}

// IntSetting returns a numeric user preference, or def when unset or not a number.
func IntSetting(db *gorm.DB, userID uint64, name string, def int) int {
	n, err := strconv.Atoi(Setting(db, userID, name, ""))
	if err != nil {
		return def
	}

	return n
}

// SetSetting creates or replaces a user preference.
func SetSetting(db *gorm.DB, userID uint64, name, value string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.UserSetting{UserID: userID, Name: name, Value: value}).Error
}
