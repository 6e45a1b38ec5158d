package models

import "time"

// ChangeStatus is the review state of a change.
type ChangeStatus string

const (
	// ChangeAccepted marks a change that was applied to the record.
	ChangeAccepted ChangeStatus = "accepted"
	// ChangeRejected marks a change that a moderator refused.
	ChangeRejected ChangeStatus = "rejected"
	// ChangePending marks a change waiting for a moderator.
	ChangePending ChangeStatus = "pending"
)

// Change is one edit of a record, storing the full GEDCOM before and after.
type Change struct {
	ID         uint64       `gorm:"primaryKey"`
	ChangeTime time.Time    `gorm:"not null;index"`
	Status     ChangeStatus `gorm:"type:varchar(10);not null;default:'pending'"`
	TreeID     uint         `gorm:"not null;index"`
	Xref       string       `gorm:"size:20;not null;index"`
	OldGedcom  string       `gorm:"type:text"`
	NewGedcom  string       `gorm:"type:text"`
	// UserID is nil once the author account was deleted.
	UserID *uint64
}

// TableName specifies the database table name for the Change model.
func (Change) TableName() string {
	return "changes"
}
