package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Email        string             `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	Name         string             `gorm:"column:name;not null"`
	Phone        *string            `gorm:"column:phone"`
	Address      *string            `gorm:"column:address"`
	Provider     enums.AuthProvider `gorm:"column:provider;type:text;not null;default:'LOCAL'"`
	Role         enums.UserRole     `gorm:"column:role;type:text;not null;default:'BUYER'"`
	IsActive     bool               `gorm:"column:is_active;not null"`
	LastLoginAt  *time.Time         `gorm:"column:last_login_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
