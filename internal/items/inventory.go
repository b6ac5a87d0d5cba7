package items

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
)

// Inventory adjusts item stock inside a caller-owned transaction. Checkout and
// cancellation depend on it so stock rules live next to the item table.
type Inventory struct {
	repo *Repository
}

// NewInventory wraps repo for transactional stock changes.
func NewInventory(repo *Repository) *Inventory {
	return &Inventory{repo: repo}
}

// Load returns the requested live items and options keyed by id.
func (i *Inventory) Load(ctx context.Context, tx *gorm.DB, itemIDs, optionIDs []uuid.UUID) (map[uuid.UUID]models.Item, map[uuid.UUID]models.ItemOption, error) {
	repo := i.repo.WithTx(tx)
	found, err := repo.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load items")
	}
	options, err := repo.FindOptionsByIDs(ctx, optionIDs)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item options")
	}
	return found, options, nil
}

// Take decrements stock by n with a single guarded UPDATE. When the guard
// fails the item is re-read to report why: missing, discontinued or short.
// soldOut is true when this call flipped the item to SOLD_OUT.
func (i *Inventory) Take(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, n int) (soldOut bool, err error) {
	if n <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "count must be positive")
	}
	repo := i.repo.WithTx(tx)
	affected, err := repo.DecrementStock(ctx, itemID, n)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
	}
	if affected == 0 {
		return false, i.classifyShortfall(ctx, repo, itemID, n)
	}
	soldOut, err = repo.MarkSoldOutIfEmpty(ctx, itemID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark item sold out")
	}
	return soldOut, nil
}

// Restore returns n units and flips a restocked SOLD_OUT item back to FOR_SALE.
// Soft-deleted items still get their units back.
func (i *Inventory) Restore(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, n int) error {
	repo := i.repo.WithTx(tx)
	if _, err := repo.RestoreStock(ctx, itemID, n); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restore stock")
	}
	if _, err := repo.MarkForSaleIfRestocked(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark item for sale")
	}
	return nil
}

func (i *Inventory) classifyShortfall(ctx context.Context, repo *Repository, itemID uuid.UUID, n int) error {
	item, err := repo.FindByIDUnscoped(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found").
				WithDetails(map[string]any{"item_id": itemID})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}
	details := map[string]any{"item_id": itemID}
	switch {
	case item.DeletedAt.Valid:
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found").WithDetails(details)
	case item.Status == enums.ItemStatusDiscontinued:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "item is discontinued").WithDetails(details)
	default:
		details["requested"] = n
		details["available"] = item.StockNumber
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").WithDetails(details)
	}
}
