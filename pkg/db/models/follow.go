package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow links a buyer to a seller they follow.
type Follow struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID   uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:follows_buyer_seller_key"`
	SellerID  uuid.UUID `gorm:"column:seller_id;type:uuid;not null;uniqueIndex:follows_buyer_seller_key;index:follows_seller_id_idx"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
