package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the single persisted cart of a registered user.
type Cart struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:carts_user_id_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is unique on (user, item, option).
type CartItem struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CartID       uuid.UUID  `gorm:"column:cart_id;type:uuid;not null;index:cart_items_cart_id_idx"`
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:cart_items_user_item_option_key"`
	ItemID       uuid.UUID  `gorm:"column:item_id;type:uuid;not null;uniqueIndex:cart_items_user_item_option_key"`
	ItemOptionID *uuid.UUID `gorm:"column:item_option_id;type:uuid;uniqueIndex:cart_items_user_item_option_key"`
	Count        int        `gorm:"column:count;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
