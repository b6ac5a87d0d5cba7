package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	"github.com/angelmondragon/minimart-backend/pkg/enums"
	"github.com/angelmondragon/minimart-backend/pkg/outbox/payloads"
)

// LineInput is one requested (item, option, count) line.
type LineInput struct {
	ItemID       uuid.UUID
	ItemOptionID *uuid.UUID
	Count        int
}

// PlaceOrderInput is the checkout request. Password is required for guests
// and ignored for registered buyers.
type PlaceOrderInput struct {
	Lines           []LineInput
	Password        string
	RecipientName   *string
	RecipientPhone  *string
	ShippingAddress *string
}

// OrderRef is the identifier returned after checkout.
type OrderRef struct {
	ID uuid.UUID `json:"id"`
}

// PlaceOrderResult is returned on a committed checkout.
type PlaceOrderResult struct {
	Success bool     `json:"success"`
	Order   OrderRef `json:"order"`
}

// CancelResult is returned on a committed cancellation.
type CancelResult struct {
	Success bool `json:"success"`
}

// OrderItemDTO is one line of an order.
type OrderItemDTO struct {
	ID           uuid.UUID  `json:"id"`
	ItemID       uuid.UUID  `json:"item_id"`
	ItemOptionID *uuid.UUID `json:"item_option_id,omitempty"`
	SellerID     uuid.UUID  `json:"seller_id"`
	Count        int        `json:"count"`
	UnitPrice    int64      `json:"unit_price"`
	LineTotal    int64      `json:"line_total"`
}

// OrderDTO is the read view of an order.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	BuyerID         *uuid.UUID        `json:"buyer_id,omitempty"`
	IsUser          bool              `json:"is_user"`
	Status          enums.OrderStatus `json:"status"`
	TotalPrice      int64             `json:"total_price"`
	RecipientName   *string           `json:"recipient_name,omitempty"`
	RecipientPhone  *string           `json:"recipient_phone,omitempty"`
	ShippingAddress *string           `json:"shipping_address,omitempty"`
	Items           []OrderItemDTO    `json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// OrderPageDTO is one cursor page of orders.
type OrderPageDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func toDTO(m models.Order) OrderDTO {
	lines := make([]OrderItemDTO, 0, len(m.Items))
	for _, l := range m.Items {
		lines = append(lines, OrderItemDTO{
			ID:           l.ID,
			ItemID:       l.ItemID,
			ItemOptionID: l.ItemOptionID,
			SellerID:     l.SellerID,
			Count:        l.Count,
			UnitPrice:    l.UnitPrice,
			LineTotal:    l.LineTotal(),
		})
	}
	return OrderDTO{
		ID:              m.ID,
		BuyerID:         m.BuyerID,
		IsUser:          m.IsUser,
		Status:          m.Status,
		TotalPrice:      m.TotalPrice,
		RecipientName:   m.RecipientName,
		RecipientPhone:  m.RecipientPhone,
		ShippingAddress: m.ShippingAddress,
		Items:           lines,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toPage(rows []models.Order, next string) *OrderPageDTO {
	out := &OrderPageDTO{Orders: make([]OrderDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		out.Orders = append(out.Orders, toDTO(row))
	}
	return out
}

func eventLines(lines []models.OrderItem) []payloads.OrderLine {
	out := make([]payloads.OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, payloads.OrderLine{
			ItemID:       l.ItemID,
			ItemOptionID: l.ItemOptionID,
			SellerID:     l.SellerID,
			Count:        l.Count,
			UnitPrice:    l.UnitPrice,
		})
	}
	return out
}
