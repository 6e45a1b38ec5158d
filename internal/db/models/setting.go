// Package models contains the database model definitions.
package models

// Setting is a site wide setting. Value holds an opaque blob, usually JSON.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"unique;size:64"`
	Value []byte
}

// TableName specifies the database table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}
