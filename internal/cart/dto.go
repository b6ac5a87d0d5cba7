package cart

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// CartLineDTO is one cart line priced against the current catalog.
type CartLineDTO struct {
	ItemID       uuid.UUID        `json:"item_id"`
	ItemOptionID *uuid.UUID       `json:"item_option_id,omitempty"`
	ItemName     string           `json:"item_name"`
	OptionName   *string          `json:"option_name,omitempty"`
	UnitPrice    int64            `json:"unit_price"`
	Count        int              `json:"count"`
	LineTotal    int64            `json:"line_total"`
	Status       enums.ItemStatus `json:"status,omitempty"`
	Available    bool             `json:"available"`
}

// CartDTO is the buyer's cart. Unavailable lines are listed but not totalled.
type CartDTO struct {
	Lines      []CartLineDTO `json:"lines"`
	TotalCount int           `json:"total_count"`
	TotalPrice int64         `json:"total_price"`
}
