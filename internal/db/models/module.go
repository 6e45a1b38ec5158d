package models

// ModuleStatus is the status of an installed module.
type ModuleStatus string

const (
	// ModuleEnabled modules take part in menus, tabs and blocks.
	ModuleEnabled ModuleStatus = "enabled"
	// ModuleDisabled modules are hidden everywhere.
	ModuleDisabled ModuleStatus = "disabled"
)

// Module is the stored state of a module. A row without installed code is a deleted module.
type Module struct {
	Name         string       `gorm:"primaryKey;size:32"`
	Status       ModuleStatus `gorm:"type:varchar(8);not null;default:'enabled'"`
	TabOrder     *int
	MenuOrder    *int
	SidebarOrder *int
}

// TableName specifies the database table name for the Module model.
func (Module) TableName() string {
	return "modules"
}

// ModuleSetting is a site wide preference of a module.
type ModuleSetting struct {
	ModuleName string `gorm:"primaryKey;size:32"`
	Name       string `gorm:"primaryKey;size:32"`
	Value      string `gorm:"type:text"`
}

// TableName specifies the database table name for the ModuleSetting model.
func (ModuleSetting) TableName() string {
	return "module_settings"
}

// ModulePrivacy is the access level of one module component on one tree.
type ModulePrivacy struct {
	ModuleName  string `gorm:"primaryKey;size:32"`
	TreeID      uint   `gorm:"primaryKey"`
	Component   string `gorm:"primaryKey;size:8"`
	AccessLevel int    `gorm:"not null"`
}

// TableName specifies the database table name for the ModulePrivacy model.
func (ModulePrivacy) TableName() string {
	return "module_privacy"
}
