package reviews

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

// Repository persists item reviews.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a review repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, review *models.ItemReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ItemReview, error) {
	var review models.ItemReview
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.ItemReview{}).Where("id = ?", id).Updates(updates).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ItemReview{})
	return res.RowsAffected > 0, res.Error
}

// ListByItem pages an item's reviews newest first.
func (r *Repository) ListByItem(ctx context.Context, itemID uuid.UUID, page pagination.Page) ([]models.ItemReview, int64, error) {
	page = page.Normalize()
	base := r.db.WithContext(ctx).Model(&models.ItemReview{}).Where("item_id = ?", itemID).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ItemReview
	err := base.Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// AverageRating returns the mean rating of an item, zero when unrated.
func (r *Repository) AverageRating(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	var avg decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&models.ItemReview{}).
		Select("AVG(rating)").
		Where("item_id = ?", itemID).
		Scan(&avg).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !avg.Valid {
		return decimal.Zero, nil
	}
	return avg.Decimal.Round(1), nil
}
