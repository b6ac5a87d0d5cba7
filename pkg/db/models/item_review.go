package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemReview is a buyer's rating of an item, 0.0 to 5.0 in steps of 0.1.
type ItemReview struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID   uuid.UUID       `gorm:"column:buyer_id;type:uuid;not null;index:item_reviews_buyer_id_idx"`
	SellerID  uuid.UUID       `gorm:"column:seller_id;type:uuid;not null"`
	ItemID    uuid.UUID       `gorm:"column:item_id;type:uuid;not null;index:item_reviews_item_id_idx"`
	Content   string          `gorm:"column:content;not null"`
	Rating    decimal.Decimal `gorm:"column:rating;type:numeric(2,1);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
