package models

import "time"

// Permission is a single site wide right in resource.action format.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the unique permission identifier (e.g., "admin.modules").
	Name string `gorm:"unique;size:100;not null"`
	// Resource is the resource this permission applies to (e.g., "admin", "journal").
	Resource string `gorm:"size:100;not null"`
	// Action is the action allowed on the resource.
	Action string `gorm:"size:50;not null"`
	// Description is shown on role edit screens.
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
