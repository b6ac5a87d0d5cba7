package follows

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/db"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

// FollowingDTO is one followed seller.
type FollowingDTO struct {
	SellerID   uuid.UUID `json:"seller_id"`
	Name       string    `json:"name"`
	Introduce  *string   `json:"introduce,omitempty"`
	BannerURL  *string   `json:"banner_url,omitempty"`
	FollowedAt time.Time `json:"followed_at"`
}

// FollowingPageDTO is one page of followed sellers.
type FollowingPageDTO struct {
	Sellers    []FollowingDTO `json:"sellers"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// Service manages buyers following sellers.
type Service interface {
	Follow(ctx context.Context, buyerID, sellerID uuid.UUID) error
	Unfollow(ctx context.Context, buyerID, sellerID uuid.UUID) error
	ListFollowing(ctx context.Context, buyerID uuid.UUID, page pagination.Page) (*FollowingPageDTO, error)
}

type sellerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
}

type service struct {
	repo    *Repository
	sellers sellerLoader
}

// NewService builds a follow service.
func NewService(repo *Repository, sellers sellerLoader) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "follow repo is required")
	}
	if sellers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller repo is required")
	}
	return &service{repo: repo, sellers: sellers}, nil
}

func (s *service) Follow(ctx context.Context, buyerID, sellerID uuid.UUID) error {
	if buyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if sellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	seller, err := s.sellers.FindByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	if seller.Status != enums.SellerStatusApproved {
		return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
	}
	if seller.UserID == buyerID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot follow your own store")
	}
	if err := s.repo.Create(ctx, &models.Follow{BuyerID: buyerID, SellerID: sellerID}); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "already following seller")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert follow")
	}
	return nil
}

func (s *service) Unfollow(ctx context.Context, buyerID, sellerID uuid.UUID) error {
	if buyerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	ok, err := s.repo.Delete(ctx, buyerID, sellerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete follow")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "not following seller")
	}
	return nil
}

func (s *service) ListFollowing(ctx context.Context, buyerID uuid.UUID, page pagination.Page) (*FollowingPageDTO, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	page = page.Normalize()
	rows, total, err := s.repo.ListFollowing(ctx, buyerID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list following")
	}
	out := &FollowingPageDTO{
		Sellers:    make([]FollowingDTO, 0, len(rows)),
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: pagination.TotalPages(total, page.Limit),
	}
	for _, row := range rows {
		out.Sellers = append(out.Sellers, FollowingDTO(row))
	}
	return out, nil
}
