package models

import (
	"time"

	"gorm.io/gorm"
)

// AdminUser is a back-office operator account. Passwords are bcrypt hashes;
// TokenVersion invalidates outstanding JWTs on password change.
type AdminUser struct {
	gorm.Model

	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `json:"name"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	TokenVersion int        `gorm:"default:0" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}
