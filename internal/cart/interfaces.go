package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindItem(ctx context.Context, userID, itemID uuid.UUID, optionID *uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	IncrementCount(ctx context.Context, id uuid.UUID, n int) error
	SetCount(ctx context.Context, id uuid.UUID, n int) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	ClearForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Item, error)
	FindOptionsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.ItemOption, error)
}
