package daemon

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/auth"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/module"
)

// Seeded roles.
const (
	RoleAdministrator = "administrator"
	RoleMember        = "member"
)

const (
	defaultAdminUser     = "admin"
	defaultAdminPassword = "changeme"
	defaultTreeName      = "tree1"
	defaultTreeTitle     = "My family tree"
)

// seed creates the permissions, the system roles, a first administrator and a first tree
// when they are missing, then syncs the module table with the installed modules.
func seed(db *gorm.DB, registry *module.Registry) error {
	return db.Transaction(func(tx *gorm.DB) error {
		perms, err := seedPermissions(tx)
		if err != nil {
			return err
		}

		all := make([]models.Permission, 0, len(perms))
		for _, p := range perms {
			all = append(all, p)
		}

		admin, err := seedRole(tx, RoleAdministrator, "Site administrators", all)
		if err != nil {
			return err
		}

		if _, err = seedRole(tx, RoleMember, "Registered users", []models.Permission{perms[auth.PermJournalWrite]}); err != nil {
			return err
		}

		if err = seedAdmin(tx, admin.ID); err != nil {
			return err
		}

		if err = seedTree(tx); err != nil {
			return err
		}

		return registry.Sync(tx)
	})
}

func seedPermissions(tx *gorm.DB) (map[string]models.Permission, error) {
	out := make(map[string]models.Permission, len(auth.Permissions))

	for name, description := range auth.Permissions {
		resource, action, _ := strings.Cut(name, ".")

		p := models.Permission{Name: name, Resource: resource, Action: action, Description: description}
		if err := tx.Where(models.Permission{Name: name}).FirstOrCreate(&p).Error; err != nil {
			return nil, err
		}

		out[name] = p
	}

	return out, nil
}

// seedRole creates a system role. Permissions are only granted when the role is new,
// so an administrator may change them later.
func seedRole(tx *gorm.DB, name, description string, perms []models.Permission) (*models.Role, error) {
	var role models.Role

	err := tx.Where("name = ?", name).Take(&role).Error
	if err == nil {
		return &role, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role = models.Role{Name: name, Description: description, IsSystem: true}
	if err = tx.Create(&role).Error; err != nil {
		return nil, err
	}

	grants := make([]models.RolePermission, 0, len(perms))
	for _, p := range perms {
		grants = append(grants, models.RolePermission{RoleID: role.ID, PermissionID: p.ID})
	}

	if len(grants) > 0 {
		if err := tx.Create(&grants).Error; err != nil {
			return nil, err
		}
	}

	log.Info().Str("role", name).Int("permissions", len(grants)).Msg("seeded role")

	return &role, nil
}

func seedAdmin(tx *gorm.DB, roleID uint) error {
	var count int64
	if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	// salt and hash password in production
	err := tx.Create(&models.User{
		Username: defaultAdminUser,
		RealName: "Administrator",
		Email:    defaultAdminUser + "@localhost",
		Password: models.HashPassword(defaultAdminPassword),
		Active:   true,
		Verified: true,
		RoleID:   roleID,
	}).Error
	if err == nil {
		log.Warn().Str("username", defaultAdminUser).Msg("created default administrator, change its password")
	}

	return err
}

func seedTree(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.Tree{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	t := models.Tree{Name: defaultTreeName, Title: defaultTreeTitle}
	if err := tx.Create(&t).Error; err != nil {
		return err
	}

	return tx.Create(&models.TreeSetting{
		TreeID: t.ID,
		Name:   tree.SettingMediaDirectory,
		Value:  tree.DefaultMediaDirectory,
	}).Error
}
