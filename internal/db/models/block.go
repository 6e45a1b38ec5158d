package models

// Block is a content item owned by a module: a FAQ entry, a story or a home page block.
// TreeID nil means the block applies to every tree.
type Block struct {
	ID         uint64  `gorm:"primaryKey"`
	TreeID     *uint   `gorm:"index"`
	UserID     *uint64 `gorm:"index"`
	Xref       string  `gorm:"size:20"`
	Location   string  `gorm:"size:4"`
	BlockOrder int     `gorm:"not null;default:0"`
	ModuleName string  `gorm:"size:32;not null;index"`
}

// TableName specifies the database table name for the Block model.
func (Block) TableName() string {
	return "blocks"
}

// BlockSetting is a named value of a block.
type BlockSetting struct {
	BlockID uint64 `gorm:"primaryKey"`
	Name    string `gorm:"primaryKey;size:32"`
	Value   string `gorm:"type:text"`
}

// TableName specifies the database table name for the BlockSetting model.
func (BlockSetting) TableName() string {
	return "block_settings"
}
