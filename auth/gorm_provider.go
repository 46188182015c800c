package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/wisetv/wisetv/models"
	"github.com/wisetv/wisetv/utils"
)

// GormProvider authenticates against the admin_users table with bcrypt.
type GormProvider struct {
	db *gorm.DB
}

// NewGormProvider wraps an initialized gorm handle.
func NewGormProvider(db *gorm.DB) *GormProvider {
	return &GormProvider{db: db}
}

// Authenticate looks up the admin by email and verifies the password.
// Unknown email and wrong password are indistinguishable to the caller.
func (p *GormProvider) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var admin models.AdminUser
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return &Identity{ID: admin.ID, Email: admin.Email, Name: admin.Name}, nil
}

// Bootstrap creates the initial admin account when the table is empty and
// credentials are configured. Safe to call on every boot.
func Bootstrap(db *gorm.DB, email, password, name string) error {
	if email == "" || password == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return db.Create(&models.AdminUser{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: hash,
		Provider:     "password",
	}).Error
}
