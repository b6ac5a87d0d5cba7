package follows

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

// Repository persists buyer to seller follow edges.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a follow repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, follow *models.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

// Delete removes the edge and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, buyerID, sellerID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("buyer_id = ? AND seller_id = ?", buyerID, sellerID).
		Delete(&models.Follow{})
	return res.RowsAffected > 0, res.Error
}

type followingRow struct {
	SellerID   uuid.UUID
	Name       string
	Introduce  *string
	BannerURL  *string
	FollowedAt time.Time
}

// ListFollowing pages the sellers a buyer follows, newest follow first.
func (r *Repository) ListFollowing(ctx context.Context, buyerID uuid.UUID, page pagination.Page) ([]followingRow, int64, error) {
	page = page.Normalize()
	base := r.db.WithContext(ctx).Model(&models.Follow{}).Where("buyer_id = ?", buyerID).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []followingRow
	err := r.db.WithContext(ctx).
		Table("follows f").
		Select("s.id AS seller_id, s.name, s.introduce, s.banner_url, f.created_at AS followed_at").
		Joins("JOIN sellers s ON s.id = f.seller_id").
		Where("f.buyer_id = ?", buyerID).
		Order("f.created_at DESC").
		Order("f.id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
