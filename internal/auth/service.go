package auth

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/controller/tree"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

// Service provides authentication and authorization functionality.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasPermission checks if the user's role has a specific permission.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	if userID == 0 {
		return false, nil
	}

	var count int64

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND permissions.name = ?", userID, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(userID uint64, permissions []string) (bool, error) {
	for _, perm := range permissions {
		has, err := s.HasPermission(userID, perm)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// GetUserPermissions retrieves all permissions of the user's role.
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	var permissions []string

	err := s.db.Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ?", userID).
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	return permissions, nil
}

// IsAdmin reports whether the user is a site administrator. Errors count as no.
func (s *Service) IsAdmin(userID uint64) bool {
	ok, err := s.HasPermission(userID, PermAdminSite)

	return err == nil && ok
}

// TreeLevel returns the role of the user on a tree. Administrators manage every tree.
func (s *Service) TreeLevel(userID uint64, treeID uint) models.TreeAccessLevel {
	if userID == 0 {
		return models.TreeAccessNone
	}

	if s.IsAdmin(userID) {
		return models.TreeAccessManager
	}

	return tree.Access(s.db, userID, treeID)
}

func (s *Service) atLeast(userID uint64, treeID uint, level models.TreeAccessLevel) bool {
	return s.TreeLevel(userID, treeID).Rank() >= level.Rank()
}

// IsManager reports whether the user manages the tree.
func (s *Service) IsManager(userID uint64, treeID uint) bool {
	return s.atLeast(userID, treeID, models.TreeAccessManager)
}

// IsModerator reports whether the user may accept changes on the tree.
func (s *Service) IsModerator(userID uint64, treeID uint) bool {
	return s.atLeast(userID, treeID, models.TreeAccessModerator)
}

// IsEditor reports whether the user may edit the tree.
func (s *Service) IsEditor(userID uint64, treeID uint) bool {
	return s.atLeast(userID, treeID, models.TreeAccessEditor)
}

// IsMember reports whether the user may see private data of the tree.
func (s *Service) IsMember(userID uint64, treeID uint) bool {
	return s.atLeast(userID, treeID, models.TreeAccessMember)
}

// AccessLevel returns the privacy level of the user on a tree, compared against module and record levels.
func (s *Service) AccessLevel(userID uint64, treeID uint) int {
	switch {
	case s.IsManager(userID, treeID):
		return PrivNone
	case s.IsMember(userID, treeID):
		return PrivUser
	default:
		return PrivPrivate
	}
}

// CanSee reports whether an item with the given privacy level is visible to the user.
func (s *Service) CanSee(userID uint64, treeID uint, level int) bool {
	return s.AccessLevel(userID, treeID) <= level
}

// ManagedTrees returns the trees the user manages: all trees for administrators.
func (s *Service) ManagedTrees(userID uint64) ([]models.Tree, error) {
	if s.IsAdmin(userID) {
		return tree.List(s.db)
	}

	return tree.WithAccess(s.db, userID, models.TreeAccessManager)
}

// AssignRoleToUser assigns a role to a user.
func (s *Service) AssignRoleToUser(userID uint64, roleID uint) error {
	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID).Error
}
