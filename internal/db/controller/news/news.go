// Package news stores journal entries of users.
package news

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrNewsNotFound is returned for unknown entries and for entries of other users.
	ErrNewsNotFound = errors.New("journal entry not found")
)

// Journal returns the entries of a user, newest first.
func Journal(db *gorm.DB, userID uint64) ([]models.News, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []models.News

	return out, db.Where("user_id = ?", userID).Order("updated DESC, id DESC").Find(&out).Error
}

// Get returns an entry owned by the user.
func Get(db *gorm.DB, userID, id uint64) (*models.News, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var n models.News

	err := db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNewsNotFound
	}

	if err != nil {
		return nil, err
	}

	return &n, nil
}

// Save creates an entry for the user when n.ID is 0, otherwise it updates the user's entry.
func Save(db *gorm.DB, userID uint64, n *models.News) error {
	if db == nil {
		return ErrDBNil
	}

	n.UserID = &userID
	n.TreeID = nil
	n.Updated = time.Now()

	if n.ID == 0 {
		return db.Create(n).Error
	}

	if _, err := Get(db, userID, n.ID); err != nil {
		return err
	}

	return db.Model(&models.News{}).
		Where("id = ? AND user_id = ?", n.ID, userID).
		Updates(map[string]any{"subject": n.Subject, "body": n.Body, "updated": n.Updated}).Error
}

// Delete removes an entry owned by the user.
func Delete(db *gorm.DB, userID, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.News{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNewsNotFound
	}

	return nil
}
