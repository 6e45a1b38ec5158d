package models

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&Role{},
		&Permission{},
		&RolePermission{},
		&User{},
		&UserSetting{},
		&Setting{},
		&Tree{},
		&TreeSetting{},
		&TreeAccess{},
		&Individual{},
		&Family{},
		&Source{},
		&Media{},
		&Other{},
		&Link{},
		&Change{},
		&Module{},
		&ModuleSetting{},
		&ModulePrivacy{},
		&Block{},
		&BlockSetting{},
		&News{},
	}
}
