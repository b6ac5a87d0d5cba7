package reviews

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/auth"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

var maxRating = decimal.NewFromInt(5)

// Service manages item reviews.
type Service interface {
	Create(ctx context.Context, buyerID, itemID uuid.UUID, input CreateInput) (*ReviewDTO, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, page pagination.Page) (*ReviewPageDTO, error)
	Update(ctx context.Context, buyerID, reviewID uuid.UUID, input UpdateInput) (*ReviewDTO, error)
	Delete(ctx context.Context, caller auth.Actor, reviewID uuid.UUID) error
}

type CreateInput struct {
	Content string
	Rating  decimal.Decimal
}

type UpdateInput struct {
	Content *string
	Rating  *decimal.Decimal
}

type itemLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

type service struct {
	repo  *Repository
	items itemLoader
}

// NewService builds a review service.
func NewService(repo *Repository, items itemLoader) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review repo is required")
	}
	if items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item repo is required")
	}
	return &service{repo: repo, items: items}, nil
}

func (s *service) Create(ctx context.Context, buyerID, itemID uuid.UUID, input CreateInput) (*ReviewDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if err := validateRating(input.Rating); err != nil {
		return nil, err
	}
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	review := &models.ItemReview{
		BuyerID:  buyerID,
		SellerID: item.SellerID,
		ItemID:   item.ID,
		Content:  content,
		Rating:   input.Rating,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert review")
	}
	dto := fromModel(*review)
	return &dto, nil
}

func (s *service) ListByItem(ctx context.Context, itemID uuid.UUID, page pagination.Page) (*ReviewPageDTO, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	page = page.Normalize()
	rows, total, err := s.repo.ListByItem(ctx, itemID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list reviews")
	}
	avg, err := s.repo.AverageRating(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: average rating")
	}
	out := &ReviewPageDTO{
		Reviews:       make([]ReviewDTO, 0, len(rows)),
		AverageRating: avg,
		Page:          page.Page,
		Limit:         page.Limit,
		Total:         total,
		TotalPages:    pagination.TotalPages(total, page.Limit),
	}
	for _, row := range rows {
		out.Reviews = append(out.Reviews, fromModel(row))
	}
	return out, nil
}

// Update edits a review. Only its author may change it.
func (s *service) Update(ctx context.Context, buyerID, reviewID uuid.UUID, input UpdateInput) (*ReviewDTO, error) {
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the author may edit this review")
	}

	updates := map[string]any{}
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "content cannot be empty")
		}
		updates["content"] = content
		review.Content = content
	}
	if input.Rating != nil {
		if err := validateRating(*input.Rating); err != nil {
			return nil, err
		}
		updates["rating"] = *input.Rating
		review.Rating = *input.Rating
	}
	if err := s.repo.Update(ctx, review.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update review")
	}
	dto := fromModel(*review)
	return &dto, nil
}

// Delete removes a review. The author or an admin may delete it.
func (s *service) Delete(ctx context.Context, caller auth.Actor, reviewID uuid.UUID) error {
	if caller.IsGuest() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	review, err := s.load(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.BuyerID != caller.UserID && !caller.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author may delete this review")
	}
	if _, err := s.repo.Delete(ctx, review.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete review")
	}
	return nil
}

func (s *service) load(ctx context.Context, reviewID uuid.UUID) (*models.ItemReview, error) {
	if reviewID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review id is required")
	}
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}

// validateRating accepts 0.0 through 5.0 with at most one fractional digit.
func validateRating(rating decimal.Decimal) error {
	if rating.IsNegative() || rating.GreaterThan(maxRating) {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5")
	}
	if !rating.Equal(rating.Truncate(1)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating allows one decimal place")
	}
	return nil
}
