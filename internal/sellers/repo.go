package sellers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

// Repository persists seller storefronts.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a seller repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, seller *models.Seller) error {
	return r.db.WithContext(ctx).Create(seller).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&seller).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&seller).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

// ListByStatus pages sellers in a given status, oldest application first.
func (r *Repository) ListByStatus(ctx context.Context, status enums.SellerStatus, page pagination.Page) ([]models.Seller, int64, error) {
	page = page.Normalize()
	query := r.db.WithContext(ctx).Model(&models.Seller{}).Where("status = ?", status).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Seller
	err := query.Order("created_at ASC").Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// TransitionStatus moves a seller from one status to another and reports
// whether the row was still in the expected status.
func (r *Repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to enums.SellerStatus, decidedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Seller{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "decided_at": decidedAt})
	return res.RowsAffected > 0, res.Error
}

// Update applies profile column updates.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Seller{}).Where("id = ?", id).Updates(updates).Error
}

// PromoteOwner upgrades a BUYER owner to SELLER. Admin owners keep their role.
func (r *Repository) PromoteOwner(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND role = ?", userID, enums.UserRoleBuyer).
		Update("role", enums.UserRoleSeller).Error
}

// CountFollowers returns how many buyers follow the seller.
func (r *Repository) CountFollowers(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("seller_id = ?", sellerID).Count(&count).Error
	return count, err
}
