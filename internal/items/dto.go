package items

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// SortOrder selects the search ordering.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

// ParseSortOrder maps a query value to a SortOrder; blank means newest.
func ParseSortOrder(value string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortNewest:
		return SortNewest, true
	case SortPriceAsc:
		return SortPriceAsc, true
	case SortPriceDesc:
		return SortPriceDesc, true
	default:
		return "", false
	}
}

// OptionDTO is the public view of an item option.
type OptionDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Price    int64     `json:"price"`
	Required bool      `json:"required"`
}

// ItemDTO is the public view of an item.
type ItemDTO struct {
	ID             uuid.UUID        `json:"id"`
	SellerID       uuid.UUID        `json:"seller_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          int64            `json:"price"`
	EffectivePrice int64            `json:"effective_price"`
	StockNumber    int              `json:"stock_number"`
	Status         enums.ItemStatus `json:"status"`
	IsSale         bool             `json:"is_sale"`
	SalePercent    decimal.Decimal  `json:"sale_percent"`
	Options        []OptionDTO      `json:"options"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// SellerSummaryDTO is embedded in item detail responses.
type SellerSummaryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ItemDetailDTO adds the owning seller to an item.
type ItemDetailDTO struct {
	ItemDTO
	Seller *SellerSummaryDTO `json:"seller,omitempty"`
}

// SearchResult is one page of search hits.
type SearchResult struct {
	Items      []ItemDTO `json:"items"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int64     `json:"total"`
	TotalPages int       `json:"total_pages"`
}

// FromModel maps an item row with its options.
func FromModel(m models.Item) ItemDTO {
	options := make([]OptionDTO, 0, len(m.Options))
	for _, opt := range m.Options {
		options = append(options, OptionDTO{
			ID:       opt.ID,
			Name:     opt.Name,
			Price:    opt.Price,
			Required: opt.Required,
		})
	}
	return ItemDTO{
		ID:             m.ID,
		SellerID:       m.SellerID,
		Name:           m.Name,
		Description:    m.Description,
		Price:          m.Price,
		EffectivePrice: m.EffectivePrice(),
		StockNumber:    m.StockNumber,
		Status:         m.Status,
		IsSale:         m.IsSale,
		SalePercent:    m.SalePercent,
		Options:        options,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
