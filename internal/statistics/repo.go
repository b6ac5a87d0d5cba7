package statistics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// Repository reads raw rows for statistics. Aggregation happens in Go so the
// queries run unchanged on Postgres and SQLite.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type labelCount struct {
	Label string
	Count int64
}

type saleRow struct {
	OrderID   uuid.UUID
	CreatedAt time.Time
	Count     int64
	UnitPrice int64
}

func (r *Repository) CountUsersBy(ctx context.Context, column string) ([]labelCount, error) {
	var rows []labelCount
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Order(column).
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error
	return total, err
}

func (r *Repository) SignupTimes(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("created_at BETWEEN ? AND ?", from, to).
		Pluck("created_at", &times).Error
	return times, err
}

func (r *Repository) FollowTimes(ctx context.Context, sellerID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("seller_id = ? AND created_at BETWEEN ? AND ?", sellerID, from, to).
		Pluck("created_at", &times).Error
	return times, err
}

func (r *Repository) CountFollowers(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("seller_id = ?", sellerID).Count(&total).Error
	return total, err
}

// SellerSales returns the seller's order lines on live, non-canceled orders.
func (r *Repository) SellerSales(ctx context.Context, sellerID uuid.UUID, from, to time.Time) ([]saleRow, error) {
	var rows []saleRow
	err := r.db.WithContext(ctx).
		Table("order_items oi").
		Select("o.id AS order_id, o.created_at AS created_at, oi.count AS count, oi.unit_price AS unit_price").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("oi.seller_id = ?", sellerID).
		Where("o.deleted_at IS NULL AND o.status <> ?", enums.OrderStatusCanceled).
		Where("o.created_at BETWEEN ? AND ?", from, to).
		Scan(&rows).Error
	return rows, err
}
