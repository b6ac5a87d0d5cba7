package items

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

// Repository encapsulates item and option persistence, including the stock
// counters that checkout and cancellation mutate.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an item repository bound to the provided gorm DB.
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

// Create inserts the item together with its options.
func (r *Repository) Create(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads a live item with its options.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC").Order("id ASC") }).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDUnscoped loads an item even when soft-deleted.
func (r *Repository) FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDs returns live items keyed by id. Missing ids are simply absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Item, error) {
	out := make(map[uuid.UUID]models.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Item
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// FindOptionsByIDs returns options keyed by id.
func (r *Repository) FindOptionsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ItemOption, error) {
	out := make(map[uuid.UUID]models.ItemOption, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.ItemOption
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// FindOption loads a single option.
func (r *Repository) FindOption(ctx context.Context, id uuid.UUID) (*models.ItemOption, error) {
	var option models.ItemOption
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&option).Error; err != nil {
		return nil, err
	}
	return &option, nil
}

// Update applies column updates to a live item.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(updates).Error
}

// ReplaceOptions swaps the full option set of an item.
func (r *Repository) ReplaceOptions(ctx context.Context, itemID uuid.UUID, options []models.ItemOption) error {
	if err := r.db.WithContext(ctx).Where("item_id = ?", itemID).Delete(&models.ItemOption{}).Error; err != nil {
		return err
	}
	if len(options) == 0 {
		return nil
	}
	for i := range options {
		options[i].ItemID = itemID
	}
	return r.db.WithContext(ctx).Create(&options).Error
}

// SoftDelete marks the item deleted. Existing order lines keep referencing it.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{}).Error
}

// DecrementStock atomically takes n units when the item is live, not
// discontinued and holds at least n. It returns the affected row count; zero
// means the guard failed and nothing changed.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, n int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE items SET stock_number = stock_number - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL AND status <> ? AND stock_number >= ?`,
		n, id, enums.ItemStatusDiscontinued, n,
	)
	return res.RowsAffected, res.Error
}

// RestoreStock returns n units to the item, soft-deleted or not.
func (r *Repository) RestoreStock(ctx context.Context, id uuid.UUID, n int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE items SET stock_number = stock_number + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		n, id,
	)
	return res.RowsAffected, res.Error
}

// MarkSoldOutIfEmpty flips a FOR_SALE item with no stock to SOLD_OUT and
// reports whether it did.
func (r *Repository) MarkSoldOutIfEmpty(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND stock_number = 0 AND status = ?", id, enums.ItemStatusForSale).
		Update("status", enums.ItemStatusSoldOut)
	return res.RowsAffected > 0, res.Error
}

// MarkForSaleIfRestocked flips a SOLD_OUT item with stock back to FOR_SALE.
func (r *Repository) MarkForSaleIfRestocked(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND stock_number > 0 AND status = ?", id, enums.ItemStatusSoldOut).
		Update("status", enums.ItemStatusForSale)
	return res.RowsAffected > 0, res.Error
}

// ReconcileStatuses repairs every live item whose status disagrees with its
// stock and returns how many rows moved each way.
func (r *Repository) ReconcileStatuses(ctx context.Context) (soldOut int64, restocked int64, err error) {
	res := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("stock_number = 0 AND status = ?", enums.ItemStatusForSale).
		Update("status", enums.ItemStatusSoldOut)
	err = multierr.Append(err, res.Error)
	soldOut = res.RowsAffected

	res = r.db.WithContext(ctx).Model(&models.Item{}).
		Where("stock_number > 0 AND status = ?", enums.ItemStatusSoldOut).
		Update("status", enums.ItemStatusForSale)
	err = multierr.Append(err, res.Error)
	return soldOut, res.RowsAffected, err
}

// SearchFilters narrow the public item search.
type SearchFilters struct {
	Keyword  string
	MinPrice *int64
	MaxPrice *int64
	SellerID *uuid.UUID
	Sort     SortOrder
}

// Search returns one page of live, non-discontinued items plus the total count.
func (r *Repository) Search(ctx context.Context, filters SearchFilters, page pagination.Page) ([]models.Item, int64, error) {
	page = page.Normalize()
	query := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("status <> ?", enums.ItemStatusDiscontinued)

	if kw := strings.ToLower(strings.TrimSpace(filters.Keyword)); kw != "" {
		pattern := "%" + escapeLike(kw) + "%"
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.SellerID != nil {
		query = query.Where("seller_id = ?", *filters.SellerID)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	ordered := query
	switch filters.Sort {
	case SortPriceAsc:
		ordered = ordered.Order("price ASC")
	case SortPriceDesc:
		ordered = ordered.Order("price DESC")
	default:
		ordered = ordered.Order("created_at DESC")
	}

	var rows []models.Item
	err := ordered.Order("id ASC").
		Preload("Options").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
