package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
)

// LineKey identifies a cart line: an item and its optional option.
type LineKey struct {
	ItemID       uuid.UUID
	ItemOptionID *uuid.UUID
}

// Service exposes the persisted cart of registered buyers.
type Service interface {
	AddItem(ctx context.Context, userID uuid.UUID, key LineKey, count int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, key LineKey) (*CartDTO, error)
	ChangeQuantity(ctx context.Context, userID uuid.UUID, key LineKey, count int) (*CartDTO, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo    CartRepository
	Catalog catalog
}

type service struct {
	repo    CartRepository
	catalog catalog
}

// NewService constructs a cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("item catalog required")
	}
	return &service{repo: params.Repo, catalog: params.Catalog}, nil
}

// AddItem adds count units of the line, incrementing an existing line.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, key LineKey, count int) (*CartDTO, error) {
	if err := validateLine(userID, key); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "count must be positive")
	}
	if err := checkCount(count); err != nil {
		return nil, err
	}
	if err := s.ensurePurchasable(ctx, key); err != nil {
		return nil, err
	}

	cart, err := s.repo.FindOrCreateCart(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}

	existing, err := s.repo.FindItem(ctx, userID, key.ItemID, key.ItemOptionID)
	switch {
	case err == nil:
		if err := checkCount(existing.Count + count); err != nil {
			return nil, err
		}
		if err := s.repo.IncrementCount(ctx, existing.ID, count); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment cart item")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		line := &models.CartItem{
			CartID:       cart.ID,
			UserID:       userID,
			ItemID:       key.ItemID,
			ItemOptionID: key.ItemOptionID,
			Count:        count,
		}
		if err := s.repo.CreateItem(ctx, line); err != nil {
			if !db.IsUniqueViolation(err, "") {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart item")
			}
			// lost the insert race; the winner's row takes the increment
			winner, findErr := s.repo.FindItem(ctx, userID, key.ItemID, key.ItemOptionID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "db: reload cart item")
			}
			if err := checkCount(winner.Count + count); err != nil {
				return nil, err
			}
			if err := s.repo.IncrementCount(ctx, winner.ID, count); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment cart item")
			}
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem deletes the line.
func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, key LineKey) (*CartDTO, error) {
	if err := validateLine(userID, key); err != nil {
		return nil, err
	}
	line, err := s.findLine(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, line.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart item")
	}
	return s.GetCart(ctx, userID)
}

// ChangeQuantity overwrites the count of an existing line.
func (s *service) ChangeQuantity(ctx context.Context, userID uuid.UUID, key LineKey, count int) (*CartDTO, error) {
	if err := validateLine(userID, key); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "count must be positive")
	}
	if err := checkCount(count); err != nil {
		return nil, err
	}
	line, err := s.findLine(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetCount(ctx, line.ID, count); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
	}
	return s.GetCart(ctx, userID)
}

// GetCart prices each line at the current effective price plus option price.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	rows, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list cart items")
	}

	itemIDs := make([]uuid.UUID, 0, len(rows))
	optionIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		itemIDs = append(itemIDs, row.ItemID)
		if row.ItemOptionID != nil {
			optionIDs = append(optionIDs, *row.ItemOptionID)
		}
	}
	itemsByID, err := s.catalog.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart items")
	}
	optionsByID, err := s.catalog.FindOptionsByIDs(ctx, optionIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart options")
	}

	out := &CartDTO{Lines: make([]CartLineDTO, 0, len(rows))}
	for _, row := range rows {
		line := CartLineDTO{ItemID: row.ItemID, ItemOptionID: row.ItemOptionID, Count: row.Count}
		item, ok := itemsByID[row.ItemID]
		if ok {
			line.ItemName = item.Name
			line.Status = item.Status
			line.UnitPrice = item.EffectivePrice()
			line.Available = item.Status == enums.ItemStatusForSale
		}
		if row.ItemOptionID != nil {
			if opt, found := optionsByID[*row.ItemOptionID]; found {
				name := opt.Name
				line.OptionName = &name
				line.UnitPrice += opt.Price
			} else {
				line.Available = false
			}
		}
		if line.Available {
			line.LineTotal = line.UnitPrice * int64(line.Count)
			out.TotalCount += line.Count
			out.TotalPrice += line.LineTotal
		}
		out.Lines = append(out.Lines, line)
	}
	return out, nil
}

func (s *service) findLine(ctx context.Context, userID uuid.UUID, key LineKey) (*models.CartItem, error) {
	line, err := s.repo.FindItem(ctx, userID, key.ItemID, key.ItemOptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
	}
	return line, nil
}

func (s *service) ensurePurchasable(ctx context.Context, key LineKey) error {
	item, err := s.catalog.FindByID(ctx, key.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if item.Status == enums.ItemStatusDiscontinued {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "item is discontinued")
	}
	if key.ItemOptionID == nil {
		return nil
	}
	for _, opt := range item.Options {
		if opt.ID == *key.ItemOptionID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "option does not belong to item")
}

func validateLine(userID uuid.UUID, key LineKey) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if key.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item_id is required")
	}
	if key.ItemOptionID != nil && *key.ItemOptionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item_option_id is invalid")
	}
	return nil
}

func checkCount(count int) error {
	if count > models.MaxLineCount {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("count must not exceed %d", models.MaxLineCount))
	}
	return nil
}
