package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate checks a username and password. Users waiting for approval are refused.
func (p *LocalProvider) Authenticate(username, password string) (*models.User, error) {
	var user models.User

	err := p.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	return &user, nil
}

// CreateUser creates an active local user.
func (p *LocalProvider) CreateUser(username, email, password, realName string, roleID uint) (*models.User, error) {
	var existing models.User

	err := p.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, ErrUserNameOrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Active:   true,
		Verified: true,
		Username: username,
		RealName: realName,
		Email:    email,
		Password: models.HashPassword(password),
		RoleID:   roleID,
	}

	if err = p.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}
