package models

// Tree is a family tree, imported from one GEDCOM file.
type Tree struct {
	// ID is the unique identifier for the tree.
	ID uint `gorm:"primaryKey"`
	// Name is the short unique name used in URLs (the "ged" parameter).
	Name string `gorm:"unique;size:90;not null"`
	// Title is the human readable title.
	Title string `gorm:"size:255;not null"`
	// SortOrder controls the order of tree lists.
	SortOrder int `gorm:"not null;default:0"`
}

// TableName specifies the database table name for the Tree model.
func (Tree) TableName() string {
	return "trees"
}

// TreeSetting is a per tree preference such as MEDIA_DIRECTORY.
type TreeSetting struct {
	TreeID uint   `gorm:"primaryKey"`
	Name   string `gorm:"primaryKey;size:32"`
	Value  string `gorm:"type:text"`
}

// TableName specifies the database table name for the TreeSetting model.
func (TreeSetting) TableName() string {
	return "tree_settings"
}

// TreeAccessLevel is the role a user has on a single tree.
type TreeAccessLevel string

const (
	// TreeAccessNone means the user is a visitor on the tree.
	TreeAccessNone TreeAccessLevel = "none"
	// TreeAccessMember lets the user see private data.
	TreeAccessMember TreeAccessLevel = "access"
	// TreeAccessEditor lets the user edit records, changes need approval.
	TreeAccessEditor TreeAccessLevel = "edit"
	// TreeAccessModerator lets the user accept pending changes.
	TreeAccessModerator TreeAccessLevel = "accept"
	// TreeAccessManager lets the user administer the tree.
	TreeAccessManager TreeAccessLevel = "admin"
)

// Rank orders the levels, higher includes lower.
func (l TreeAccessLevel) Rank() int {
	switch l {
	case TreeAccessManager:
		return 4 //nolint:mnd
	case TreeAccessModerator:
		return 3 //nolint:mnd
	case TreeAccessEditor:
		return 2 //nolint:mnd
	case TreeAccessMember:
		return 1
	default:
		return 0
	}
}

// TreeAccess stores the role of a user on a tree.
type TreeAccess struct {
	UserID uint64          `gorm:"primaryKey"`
	TreeID uint            `gorm:"primaryKey"`
	Level  TreeAccessLevel `gorm:"type:varchar(10);not null;default:'none'"`
}

// TableName specifies the database table name for the TreeAccess model.
func (TreeAccess) TableName() string {
	return "tree_access"
}

// UserSetting is a per user preference.
type UserSetting struct {
	UserID uint64 `gorm:"primaryKey"`
	Name   string `gorm:"primaryKey;size:32"`
	Value  string `gorm:"type:text"`
}

// TableName specifies the database table name for the UserSetting model.
func (UserSetting) TableName() string {
	return "user_settings"
}
