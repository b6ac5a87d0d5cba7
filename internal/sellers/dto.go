package sellers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// SellerDTO is the owner/admin view of a seller.
type SellerDTO struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	Name      string             `json:"name"`
	Introduce *string            `json:"introduce,omitempty"`
	Phone     *string            `json:"phone,omitempty"`
	BannerURL *string            `json:"banner_url,omitempty"`
	Status    enums.SellerStatus `json:"status"`
	DecidedAt *time.Time         `json:"decided_at,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// ProfileDTO is the public storefront view.
type ProfileDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Introduce     *string   `json:"introduce,omitempty"`
	BannerURL     *string   `json:"banner_url,omitempty"`
	FollowerCount int64     `json:"follower_count"`
}

// SellerPageDTO is one page of sellers for admin review.
type SellerPageDTO struct {
	Sellers    []SellerDTO `json:"sellers"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}

func fromModel(m models.Seller) SellerDTO {
	return SellerDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Introduce: m.Introduce,
		Phone:     m.Phone,
		BannerURL: m.BannerURL,
		Status:    m.Status,
		DecidedAt: m.DecidedAt,
		CreatedAt: m.CreatedAt,
	}
}
