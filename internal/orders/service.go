package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/internal/cart"
	"github.com/angelmondragon/minimart-backend/pkg/auth"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/logger"
	"github.com/angelmondragon/minimart-backend/pkg/metrics"
	"github.com/angelmondragon/minimart-backend/pkg/outbox"
	"github.com/angelmondragon/minimart-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

// MaxLines caps how many lines a single checkout may carry.
const MaxLines = 100

// Service defines checkout, cancellation and order lifecycle operations.
type Service interface {
	PlaceOrder(ctx context.Context, actor auth.Actor, input PlaceOrderInput) (*PlaceOrderResult, error)
	CancelOrder(ctx context.Context, actor auth.Actor, orderID uuid.UUID, guestPassword string) (*CancelResult, error)
	GetOrder(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*OrderDTO, error)
	ListBuyerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPageDTO, error)
	GuestLookup(ctx context.Context, orderID uuid.UUID, password string) (*OrderDTO, error)
	ListSellerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPageDTO, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	AdminListOrders(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderPageDTO, error)
	AdminDeleteOrder(ctx context.Context, actor auth.Actor, orderID uuid.UUID) error
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Outbox    outboxPublisher
	Inventory Inventory
	Carts     cart.CartRepository
	Sellers   sellerLoader
	Hasher    passwordHasher
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	inventory Inventory
	carts     cart.CartRepository
	sellers   sellerLoader
	hasher    passwordHasher
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("orders repository required")
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case params.Inventory == nil:
		return nil, fmt.Errorf("inventory required")
	case params.Carts == nil:
		return nil, fmt.Errorf("cart repository required")
	case params.Sellers == nil:
		return nil, fmt.Errorf("seller repository required")
	case params.Hasher == nil:
		return nil, fmt.Errorf("password hasher required")
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		outbox:    params.Outbox,
		inventory: params.Inventory,
		carts:     params.Carts,
		sellers:   params.Sellers,
		hasher:    params.Hasher,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

// PlaceOrder runs checkout in one transaction: order row, order lines, cart
// clear, guarded stock decrements and the outbox event. Any failure rolls all
// of it back and surfaces the triggering error.
func (s *service) PlaceOrder(ctx context.Context, actor auth.Actor, input PlaceOrderInput) (*PlaceOrderResult, error) {
	result, err := s.placeOrder(ctx, actor, input)
	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.Rejected(string(code))
		return nil, err
	}
	return result, nil
}

func (s *service) placeOrder(ctx context.Context, actor auth.Actor, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := validateLines(input.Lines); err != nil {
		return nil, err
	}

	var passwordHash *string
	if actor.IsGuest() {
		if strings.TrimSpace(input.Password) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required for guest orders")
		}
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash order password")
		}
		passwordHash = &hash
	}

	itemIDs := make([]uuid.UUID, 0, len(input.Lines))
	optionIDs := make([]uuid.UUID, 0, len(input.Lines))
	units := 0
	for _, line := range input.Lines {
		itemIDs = append(itemIDs, line.ItemID)
		if line.ItemOptionID != nil {
			optionIDs = append(optionIDs, *line.ItemOptionID)
		}
		units += line.Count
	}

	order := &models.Order{
		BuyerID:         actor.UserIDPtr(),
		Status:          enums.OrderStatusPaid,
		PasswordHash:    passwordHash,
		IsUser:          !actor.IsGuest(),
		RecipientName:   trimmed(input.RecipientName),
		RecipientPhone:  trimmed(input.RecipientPhone),
		ShippingAddress: trimmed(input.ShippingAddress),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		itemsByID, optionsByID, err := s.inventory.Load(ctx, tx, itemIDs, optionIDs)
		if err != nil {
			return err
		}
		lines, total, err := priceLines(input.Lines, itemsByID, optionsByID)
		if err != nil {
			return err
		}

		order.TotalPrice = total
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := repo.CreateOrderItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order items")
		}

		if !actor.IsGuest() {
			if _, err := s.carts.WithTx(tx).ClearForUser(ctx, actor.UserID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
			}
		}

		var soldOut []models.Item
		for _, line := range lines {
			flipped, err := s.inventory.Take(ctx, tx, line.ItemID, line.Count)
			if err != nil {
				return err
			}
			if flipped {
				soldOut = append(soldOut, itemsByID[line.ItemID])
			}
		}

		actorRef := &outbox.ActorRef{UserID: actor.UserIDPtr(), Role: string(actor.Role)}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef,
			Data: payloads.OrderPlacedEvent{
				OrderID:    order.ID,
				BuyerID:    order.BuyerID,
				IsUser:     order.IsUser,
				TotalPrice: order.TotalPrice,
				Lines:      eventLines(lines),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order placed")
		}
		for _, item := range soldOut {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventItemSoldOut,
				AggregateType: enums.AggregateItem,
				AggregateID:   item.ID,
				Actor:         actorRef,
				Data:          payloads.ItemSoldOutEvent{ItemID: item.ID, SellerID: item.SellerID},
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit item sold out")
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	s.metrics.Placed(units)
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":    order.ID.String(),
			"total_price": order.TotalPrice,
			"guest":       actor.IsGuest(),
		})
		s.logg.Info(logCtx, "order placed")
	}
	return &PlaceOrderResult{Success: true, Order: OrderRef{ID: order.ID}}, nil
}

// CancelOrder restores stock for every line and removes the order. Only PAID
// orders are cancellable.
func (s *service) CancelOrder(ctx context.Context, actor auth.Actor, orderID uuid.UUID, guestPassword string) (*CancelResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	existing, err := s.load(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCancel(actor, existing, guestPassword); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock order")
		}

		ok, err := repo.TransitionStatus(ctx, order.ID, enums.OrderStatusPaid, enums.OrderStatusCanceled)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: cancel order")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only paid orders can be canceled").
				WithDetails(map[string]any{"status": order.Status})
		}

		for _, line := range order.Items {
			if err := s.inventory.Restore(ctx, tx, line.ItemID, line.Count); err != nil {
				return err
			}
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserIDPtr(), Role: string(actor.Role)},
			Data: payloads.OrderCanceledEvent{
				OrderID:    order.ID,
				BuyerID:    order.BuyerID,
				CanceledAt: s.now().UTC(),
				Lines:      eventLines(order.Items),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order canceled")
		}

		if err := repo.HardDelete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete order")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}

	s.metrics.Canceled()
	return &CancelResult{Success: true}, nil
}

func (s *service) authorizeCancel(actor auth.Actor, order *models.Order, guestPassword string) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.IsGuest() {
		if order.BuyerID != nil && *order.BuyerID == actor.UserID {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another buyer")
	}
	if order.BuyerID != nil || order.PasswordHash == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "sign in to cancel this order")
	}
	if guestPassword == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	ok, err := s.hasher.Verify(guestPassword, *order.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify order password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order password mismatch")
	}
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

func validateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "items must not be empty")
	}
	if len(lines) > MaxLines {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d items per order", MaxLines))
	}
	for i, line := range lines {
		if line.ItemID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].item_id is required", i))
		}
		if line.ItemOptionID != nil && *line.ItemOptionID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].item_option_id is invalid", i))
		}
		if line.Count <= 0 || line.Count > models.MaxLineCount {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].count must be between 1 and %d", i, models.MaxLineCount))
		}
	}
	return nil
}

// priceLines snapshots seller and unit price per line. Unit price is the
// item's effective price plus the option price.
func priceLines(in []LineInput, itemsByID map[uuid.UUID]models.Item, optionsByID map[uuid.UUID]models.ItemOption) ([]models.OrderItem, int64, error) {
	lines := make([]models.OrderItem, 0, len(in))
	var total int64
	for i, line := range in {
		item, ok := itemsByID[line.ItemID]
		if !ok {
			return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "item not found").
				WithDetails(map[string]any{"item_id": line.ItemID})
		}
		unit := item.EffectivePrice()
		if line.ItemOptionID != nil {
			opt, found := optionsByID[*line.ItemOptionID]
			if !found || opt.ItemID != item.ID {
				return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].item_option_id does not belong to the item", i))
			}
			sum, ok := addMoney(unit, opt.Price)
			if !ok {
				return nil, 0, priceOverflow(i)
			}
			unit = sum
		}
		row := models.OrderItem{
			ItemID:       item.ID,
			ItemOptionID: line.ItemOptionID,
			SellerID:     item.SellerID,
			Count:        line.Count,
			UnitPrice:    unit,
		}
		lineTotal, ok := mulMoney(unit, line.Count)
		if !ok {
			return nil, 0, priceOverflow(i)
		}
		if total, ok = addMoney(total, lineTotal); !ok {
			return nil, 0, priceOverflow(i)
		}
		lines = append(lines, row)
	}
	return lines, total, nil
}

func priceOverflow(i int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d] pushes the order total out of range", i))
}

func addMoney(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

func mulMoney(unit int64, count int) (int64, bool) {
	if unit < 0 || count < 0 {
		return 0, false
	}
	if count != 0 && unit > math.MaxInt64/int64(count) {
		return 0, false
	}
	return unit * int64(count), true
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
