package qna

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

// Repository persists support questions.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a QnA repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, post *models.QnaPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.QnaPost, error) {
	var post models.QnaPost
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.QnaPost{})
	return res.RowsAffected > 0, res.Error
}

// Answer stores an admin answer, replacing any earlier one.
func (r *Repository) Answer(ctx context.Context, id, adminID uuid.UUID, answer string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.QnaPost{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"answer":      answer,
			"answered_by": adminID,
			"answered_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

// List pages posts newest first. A nil viewer sees every post; otherwise only
// public posts and the viewer's own.
func (r *Repository) List(ctx context.Context, viewer *uuid.UUID, page pagination.Page) ([]models.QnaPost, int64, error) {
	page = page.Normalize()
	base := r.db.WithContext(ctx).Model(&models.QnaPost{})
	if viewer != nil {
		base = base.Where("is_public = ? OR user_id = ?", true, *viewer)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.QnaPost
	err := base.Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
