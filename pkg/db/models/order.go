package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// Order is created PAID at checkout. BuyerID is nil for guest orders, which are
// looked up later with the argon2 PasswordHash.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID         *uuid.UUID        `gorm:"column:buyer_id;type:uuid;index:orders_buyer_id_idx"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'PAID'"`
	PasswordHash    *string           `gorm:"column:password_hash"`
	IsUser          bool              `gorm:"column:is_user;not null"`
	TotalPrice      int64             `gorm:"column:total_price;not null;default:0"`
	RecipientName   *string           `gorm:"column:recipient_name"`
	RecipientPhone  *string           `gorm:"column:recipient_phone"`
	ShippingAddress *string           `gorm:"column:shipping_address"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt       gorm.DeletedAt    `gorm:"column:deleted_at;index"`
}

// OrderItem is one immutable (item, option, count) line of an order.
type OrderItem struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	ItemID       uuid.UUID  `gorm:"column:item_id;type:uuid;not null;index:order_items_item_id_idx"`
	ItemOptionID *uuid.UUID `gorm:"column:item_option_id;type:uuid"`
	SellerID     uuid.UUID  `gorm:"column:seller_id;type:uuid;not null;index:order_items_seller_id_idx"`
	Count        int        `gorm:"column:count;not null"`
	UnitPrice    int64      `gorm:"column:unit_price;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// LineTotal is UnitPrice times Count.
func (l OrderItem) LineTotal() int64 {
	return l.UnitPrice * int64(l.Count)
}
