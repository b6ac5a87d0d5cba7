package sellers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/auth"
	"github.com/angelmondragon/minimart-backend/pkg/db"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/outbox"
	"github.com/angelmondragon/minimart-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

// Service manages seller applications and storefront profiles.
type Service interface {
	Apply(ctx context.Context, userID uuid.UUID, input ApplyInput) (*SellerDTO, error)
	ListByStatus(ctx context.Context, status enums.SellerStatus, page pagination.Page) (*SellerPageDTO, error)
	Approve(ctx context.Context, admin auth.Actor, sellerID uuid.UUID) (*SellerDTO, error)
	Reject(ctx context.Context, admin auth.Actor, sellerID uuid.UUID) (*SellerDTO, error)
	GetProfile(ctx context.Context, sellerID uuid.UUID) (*ProfileDTO, error)
	Me(ctx context.Context, userID uuid.UUID) (*SellerDTO, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateInput) (*SellerDTO, error)
}

// ApplyInput is a new seller application.
type ApplyInput struct {
	Name      string
	Introduce *string
	Phone     *string
}

// UpdateInput holds optional profile changes.
type UpdateInput struct {
	Name      *string
	Introduce *string
	Phone     *string
	BannerURL *string
}

// ServiceParams groups dependencies for the seller service.
type ServiceParams struct {
	Repo     *Repository
	DBClient *db.Client
	Outbox   outbox.Emitter
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	outbox   outbox.Emitter
	now      func() time.Time
}

// NewService builds a seller service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller repo is required")
	}
	if params.DBClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox emitter is required")
	}
	return &service{
		repo:     params.Repo,
		dbClient: params.DBClient,
		outbox:   params.Outbox,
		now:      time.Now,
	}, nil
}

func (s *service) Apply(ctx context.Context, userID uuid.UUID, input ApplyInput) (*SellerDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller application already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}

	seller := &models.Seller{
		UserID:    userID,
		Name:      name,
		Introduce: trimmed(input.Introduce),
		Phone:     trimmed(input.Phone),
		Status:    enums.SellerStatusPending,
	}
	if err := s.repo.Create(ctx, seller); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "seller name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert seller")
	}
	dto := fromModel(*seller)
	return &dto, nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.SellerStatus, page pagination.Page) (*SellerPageDTO, error) {
	if status == "" {
		status = enums.SellerStatusPending
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller status")
	}
	page = page.Normalize()
	rows, total, err := s.repo.ListByStatus(ctx, status, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sellers")
	}
	out := &SellerPageDTO{
		Sellers:    make([]SellerDTO, 0, len(rows)),
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: pagination.TotalPages(total, page.Limit),
	}
	for _, row := range rows {
		out.Sellers = append(out.Sellers, fromModel(row))
	}
	return out, nil
}

// Approve moves a PENDING seller to APPROVED and promotes its owner.
func (s *service) Approve(ctx context.Context, admin auth.Actor, sellerID uuid.UUID) (*SellerDTO, error) {
	return s.decide(ctx, admin, sellerID, enums.SellerStatusApproved)
}

// Reject moves a PENDING seller to REJECTED.
func (s *service) Reject(ctx context.Context, admin auth.Actor, sellerID uuid.UUID) (*SellerDTO, error) {
	return s.decide(ctx, admin, sellerID, enums.SellerStatusRejected)
}

func (s *service) decide(ctx context.Context, admin auth.Actor, sellerID uuid.UUID, to enums.SellerStatus) (*SellerDTO, error) {
	if !admin.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}

	var decided *models.Seller
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		seller, err := repo.FindByID(ctx, sellerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
		}

		now := s.now().UTC()
		ok, err := repo.TransitionStatus(ctx, seller.ID, enums.SellerStatusPending, to, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update seller status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "seller is not pending").
				WithDetails(map[string]any{"status": seller.Status})
		}
		if to == enums.SellerStatusApproved {
			if err := repo.PromoteOwner(ctx, seller.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: promote seller owner")
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventSellerStatusChanged,
			AggregateType: enums.AggregateSeller,
			AggregateID:   seller.ID,
			Actor:         &outbox.ActorRef{UserID: admin.UserIDPtr(), Role: string(admin.Role)},
			Data: payloads.SellerStatusChangedEvent{
				SellerID: seller.ID,
				UserID:   seller.UserID,
				Status:   to,
			},
			OccurredAt: now,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit seller status event")
		}

		seller.Status = to
		seller.DecidedAt = &now
		decided = seller
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decide seller")
	}
	dto := fromModel(*decided)
	return &dto, nil
}

// GetProfile returns the public profile of an approved seller.
func (s *service) GetProfile(ctx context.Context, sellerID uuid.UUID) (*ProfileDTO, error) {
	seller, err := s.load(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if seller.Status != enums.SellerStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
	}
	followers, err := s.repo.CountFollowers(ctx, seller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count followers")
	}
	return &ProfileDTO{
		ID:            seller.ID,
		Name:          seller.Name,
		Introduce:     seller.Introduce,
		BannerURL:     seller.BannerURL,
		FollowerCount: followers,
	}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*SellerDTO, error) {
	seller, err := s.mine(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := fromModel(*seller)
	return &dto, nil
}

func (s *service) UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateInput) (*SellerDTO, error) {
	seller, err := s.mine(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Introduce != nil {
		updates["introduce"] = trimmed(input.Introduce)
	}
	if input.Phone != nil {
		updates["phone"] = trimmed(input.Phone)
	}
	if input.BannerURL != nil {
		updates["banner_url"] = trimmed(input.BannerURL)
	}
	if err := s.repo.Update(ctx, seller.ID, updates); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "seller name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update seller")
	}
	return s.Me(ctx, userID)
}

func (s *service) mine(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	seller, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return seller, nil
}

func (s *service) load(ctx context.Context, sellerID uuid.UUID) (*models.Seller, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	seller, err := s.repo.FindByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return seller, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
