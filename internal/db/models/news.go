package models

import "time"

// News is a journal entry (UserID set) or a tree news article (TreeID set).
type News struct {
	ID      uint64  `gorm:"primaryKey"`
	UserID  *uint64 `gorm:"index"`
	TreeID  *uint   `gorm:"index"`
	Subject string  `gorm:"size:255;not null"`
	Body    string  `gorm:"type:text;not null"`
	Updated time.Time
}

// TableName specifies the database table name for the News model.
func (News) TableName() string {
	return "news"
}
