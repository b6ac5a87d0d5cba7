package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

// Service exposes seller inventory management and the public catalog.
type Service interface {
	CreateItem(ctx context.Context, userID uuid.UUID, input CreateItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
	GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDetailDTO, error)
	SearchItems(ctx context.Context, input SearchInput) (*SearchResult, error)
}

// OptionInput describes one option on create or replace.
type OptionInput struct {
	Name     string
	Price    int64
	Required bool
}

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	Name        string
	Description string
	Price       int64
	StockNumber int
	IsSale      bool
	SalePercent decimal.Decimal
	Options     []OptionInput
}

// UpdateItemInput holds optional mutation values. Options, when set, replace
// the full option set.
type UpdateItemInput struct {
	Name        *string
	Description *string
	Price       *int64
	StockNumber *int
	Status      *enums.ItemStatus
	IsSale      *bool
	SalePercent *decimal.Decimal
	Options     *[]OptionInput
}

// SearchInput carries the public search filters.
type SearchInput struct {
	Keyword  string
	MinPrice *int64
	MaxPrice *int64
	SellerID *uuid.UUID
	Sort     SortOrder
	Page     pagination.Page
}

type sellerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error)
}

type service struct {
	repo       *Repository
	dbClient   *db.Client
	sellerRepo sellerLoader
}

// NewService constructs an item service instance.
func NewService(repo *Repository, dbClient *db.Client, sellerRepo sellerLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if sellerRepo == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	return &service{repo: repo, dbClient: dbClient, sellerRepo: sellerRepo}, nil
}

// CreateItem creates the item and its options for the caller's approved seller.
func (s *service) CreateItem(ctx context.Context, userID uuid.UUID, input CreateItemInput) (*ItemDTO, error) {
	seller, err := s.approvedSeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validatePrice("price", input.Price); err != nil {
		return nil, err
	}
	if err := validateStock(input.StockNumber); err != nil {
		return nil, err
	}
	if err := validateSalePercent(input.SalePercent); err != nil {
		return nil, err
	}
	options, err := buildOptions(input.Options)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		SellerID:    seller.ID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		StockNumber: input.StockNumber,
		Status:      resolveStatus(nil, enums.ItemStatusForSale, input.StockNumber),
		IsSale:      input.IsSale,
		SalePercent: input.SalePercent,
		Options:     options,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}

	created, err := s.repo.FindByID(ctx, item.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload item")
	}
	dto := FromModel(*created)
	return &dto, nil
}

// UpdateItem applies the provided changes to an item the caller's seller owns.
func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	seller, err := s.approvedSeller(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.SalePercent != nil {
		if err := validateSalePercent(*input.SalePercent); err != nil {
			return nil, err
		}
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	var options []models.ItemOption
	if input.Options != nil {
		if options, err = buildOptions(*input.Options); err != nil {
			return nil, err
		}
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.ownedItem(ctx, repo, seller.ID, itemID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
			}
			updates["name"] = name
		}
		if input.Description != nil {
			updates["description"] = strings.TrimSpace(*input.Description)
		}
		if input.Price != nil {
			if err := validatePrice("price", *input.Price); err != nil {
				return err
			}
			updates["price"] = *input.Price
		}
		stock := item.StockNumber
		if input.StockNumber != nil {
			if err := validateStock(*input.StockNumber); err != nil {
				return err
			}
			stock = *input.StockNumber
			updates["stock_number"] = stock
		}
		if input.IsSale != nil {
			updates["is_sale"] = *input.IsSale
		}
		if input.SalePercent != nil {
			updates["sale_percent"] = *input.SalePercent
		}
		if status := resolveStatus(input.Status, item.Status, stock); status != item.Status {
			updates["status"] = status
		}

		if err := repo.Update(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item")
		}
		if input.Options != nil {
			if err := repo.ReplaceOptions(ctx, item.ID, options); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace item options")
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}

	updated, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload item")
	}
	dto := FromModel(*updated)
	return &dto, nil
}

// DeleteItem soft-deletes an item the caller's seller owns.
func (s *service) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	seller, err := s.approvedSeller(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.ownedItem(ctx, s.repo, seller.ID, itemID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete item")
	}
	return nil
}

// GetItem returns a live item with its options and seller.
func (s *service) GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDetailDTO, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	detail := &ItemDetailDTO{ItemDTO: FromModel(*item)}
	seller, err := s.sellerRepo.FindByID(ctx, item.SellerID)
	switch {
	case err == nil:
		detail.Seller = &SellerSummaryDTO{ID: seller.ID, Name: seller.Name}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return detail, nil
}

// SearchItems runs the public catalog search.
func (s *service) SearchItems(ctx context.Context, input SearchInput) (*SearchResult, error) {
	if input.MinPrice != nil && *input.MinPrice < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price must be non-negative")
	}
	if input.MinPrice != nil && input.MaxPrice != nil && *input.MinPrice > *input.MaxPrice {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price cannot exceed max_price")
	}
	page := input.Page.Normalize()
	rows, total, err := s.repo.Search(ctx, SearchFilters{
		Keyword:  input.Keyword,
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		SellerID: input.SellerID,
		Sort:     input.Sort,
	}, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search items")
	}
	result := &SearchResult{
		Items:      make([]ItemDTO, 0, len(rows)),
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: pagination.TotalPages(total, page.Limit),
	}
	for _, row := range rows {
		result.Items = append(result.Items, FromModel(row))
	}
	return result, nil
}

func (s *service) approvedSeller(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	seller, err := s.sellerRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "seller profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	if seller.Status != enums.SellerStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller is not approved")
	}
	return seller, nil
}

func (s *service) ownedItem(ctx context.Context, repo *Repository, sellerID, itemID uuid.UUID) (*models.Item, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if item.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "item belongs to another seller")
	}
	return item, nil
}

// resolveStatus keeps FOR_SALE and SOLD_OUT consistent with stock.
// DISCONTINUED is sticky until the seller picks another status.
func resolveStatus(requested *enums.ItemStatus, current enums.ItemStatus, stock int) enums.ItemStatus {
	status := current
	if requested != nil {
		status = *requested
	}
	if status == enums.ItemStatusDiscontinued {
		return status
	}
	if stock == 0 {
		return enums.ItemStatusSoldOut
	}
	return enums.ItemStatusForSale
}

func validatePrice(field string, price int64) error {
	if price < 0 || price > models.MaxPrice {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be between 0 and %d", field, models.MaxPrice))
	}
	return nil
}

func validateStock(stock int) error {
	if stock < 0 || stock > models.MaxStock {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("stock_number must be between 0 and %d", models.MaxStock))
	}
	return nil
}

func validateSalePercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale_percent must be between 0 and 100")
	}
	return nil
}

func buildOptions(inputs []OptionInput) ([]models.ItemOption, error) {
	options := make([]models.ItemOption, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("options[%d].name is required", i))
		}
		if err := validatePrice(fmt.Sprintf("options[%d].price", i), in.Price); err != nil {
			return nil, err
		}
		options = append(options, models.ItemOption{Name: name, Price: in.Price, Required: in.Required})
	}
	return options, nil
}
