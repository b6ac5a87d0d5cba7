package reviews

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
)

type ReviewDTO struct {
	ID        uuid.UUID       `json:"id"`
	BuyerID   uuid.UUID       `json:"buyer_id"`
	SellerID  uuid.UUID       `json:"seller_id"`
	ItemID    uuid.UUID       `json:"item_id"`
	Content   string          `json:"content"`
	Rating    decimal.Decimal `json:"rating"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ReviewPageDTO is one page of an item's reviews plus its average rating.
type ReviewPageDTO struct {
	Reviews       []ReviewDTO     `json:"reviews"`
	AverageRating decimal.Decimal `json:"average_rating"`
	Page          int             `json:"page"`
	Limit         int             `json:"limit"`
	Total         int64           `json:"total"`
	TotalPages    int             `json:"total_pages"`
}

func fromModel(m models.ItemReview) ReviewDTO {
	return ReviewDTO{
		ID:        m.ID,
		BuyerID:   m.BuyerID,
		SellerID:  m.SellerID,
		ItemID:    m.ItemID,
		Content:   m.Content,
		Rating:    m.Rating,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
