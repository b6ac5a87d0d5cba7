package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// Item is a sellable product. StockNumber is the single source of truth for
// availability and never drops below zero.
type Item struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	SellerID    uuid.UUID        `gorm:"column:seller_id;type:uuid;not null;index:items_seller_id_idx"`
	Name        string           `gorm:"column:name;not null"`
	Description string           `gorm:"column:description;not null;default:''"`
	Price       int64            `gorm:"column:price;not null"`
	StockNumber int              `gorm:"column:stock_number;not null;default:0"`
	Status      enums.ItemStatus `gorm:"column:status;type:text;not null;default:'FOR_SALE'"`
	IsSale      bool             `gorm:"column:is_sale;not null;default:false"`
	SalePercent decimal.Decimal  `gorm:"column:sale_percent;type:numeric(5,2);not null;default:0"`
	Options     []ItemOption     `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt   gorm.DeletedAt   `gorm:"column:deleted_at;index"`
}

// EffectivePrice applies the sale discount, rounding the discounted price down
// to whole minor units.
func (i Item) EffectivePrice() int64 {
	if !i.IsSale || !i.SalePercent.IsPositive() {
		return i.Price
	}
	hundred := decimal.NewFromInt(100)
	pct := decimal.Min(i.SalePercent, hundred)
	discounted := decimal.NewFromInt(i.Price).Mul(hundred.Sub(pct)).Div(hundred)
	return discounted.Floor().IntPart()
}

// ItemOption is an optional variant of an item. Price is added to the item price.
type ItemOption struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"column:item_id;type:uuid;not null;index:item_options_item_id_idx"`
	Name      string    `gorm:"column:name;not null"`
	Price     int64     `gorm:"column:price;not null;default:0"`
	Required  bool      `gorm:"column:required;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
