package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// Seller is a storefront owned by exactly one user.
type Seller struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex:sellers_user_id_key"`
	Name      string             `gorm:"column:name;not null;uniqueIndex:sellers_name_key"`
	Introduce *string            `gorm:"column:introduce"`
	Phone     *string            `gorm:"column:phone"`
	BannerURL *string            `gorm:"column:banner_url"`
	Status    enums.SellerStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	DecidedAt *time.Time         `gorm:"column:decided_at"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
