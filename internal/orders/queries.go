package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/auth"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/outbox"
	"github.com/angelmondragon/minimart-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

// GetOrder returns an order to its buyer or an admin.
func (s *service) GetOrder(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*OrderDTO, error) {
	if actor.IsGuest() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	order, err := s.load(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (order.BuyerID == nil || *order.BuyerID != actor.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another buyer")
	}
	dto := toDTO(*order)
	return &dto, nil
}

func (s *service) ListBuyerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPageDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if err := checkCursor(params); err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListByBuyer(ctx, userID, params)
	if err != nil {
		return nil, listError(err)
	}
	return toPage(rows, next), nil
}

// GuestLookup reveals a guest order to whoever knows its password. An unknown
// order and a wrong password are indistinguishable.
func (s *service) GuestLookup(ctx context.Context, orderID uuid.UUID, password string) (*OrderDTO, error) {
	if orderID == uuid.Nil || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and password are required")
	}
	notFound := pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if order.PasswordHash == nil {
		return nil, notFound
	}
	ok, err := s.hasher.Verify(password, *order.PasswordHash)
	if err != nil || !ok {
		return nil, notFound
	}
	dto := toDTO(*order)
	return &dto, nil
}

// ListSellerOrders lists orders containing the caller's seller lines. Each
// order only carries that seller's lines.
func (s *service) ListSellerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPageDTO, error) {
	seller, err := s.sellerFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := checkCursor(params); err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListBySeller(ctx, seller.ID, params)
	if err != nil {
		return nil, listError(err)
	}
	return toPage(rows, next), nil
}

// UpdateStatus advances PAID to SHIPPING or SHIPPING to DELIVERED. Sellers may
// advance orders holding their lines; admins may advance any order.
func (s *service) UpdateStatus(ctx context.Context, actor auth.Actor, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if actor.IsGuest() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !status.IsValid() || status == enums.OrderStatusPaid || status == enums.OrderStatusCanceled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be SHIPPING or DELIVERED")
	}

	var sellerID uuid.UUID
	if !actor.IsAdmin() {
		seller, err := s.sellerFor(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		sellerID = seller.ID
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock order")
		}
		if sellerID != uuid.Nil {
			owns, err := repo.HasSellerLine(ctx, order.ID, sellerID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check seller lines")
			}
			if !owns {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order has no lines from this seller")
			}
		}

		from := order.Status
		if !from.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]any{"from": from, "to": status})
		}
		ok, err := repo.TransitionStatus(ctx, order.ID, from, status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserIDPtr(), Role: string(actor.Role)},
			Data:          payloads.OrderStatusChangedEvent{OrderID: order.ID, From: from, To: status},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	order, err := s.load(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*order)
	return &dto, nil
}

func (s *service) AdminListOrders(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderPageDTO, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if err := checkCursor(params); err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListAll(ctx, status, params)
	if err != nil {
		return nil, listError(err)
	}
	return toPage(rows, next), nil
}

// AdminDeleteOrder soft-deletes an order without touching stock.
func (s *service) AdminDeleteOrder(ctx context.Context, actor auth.Actor, orderID uuid.UUID) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	ok, err := s.repo.SoftDelete(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete order")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (s *service) sellerFor(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	seller, err := s.sellers.FindByUserID(ctx, userID)
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

func listError(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
}

func checkCursor(params pagination.Params) error {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return nil
}
