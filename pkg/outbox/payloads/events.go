package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
)

// OrderLine is the per-line snapshot carried by order events.
type OrderLine struct {
	ItemID       uuid.UUID  `json:"item_id"`
	ItemOptionID *uuid.UUID `json:"item_option_id,omitempty"`
	SellerID     uuid.UUID  `json:"seller_id"`
	Count        int        `json:"count"`
	UnitPrice    int64      `json:"unit_price"`
}

// OrderPlacedEvent is emitted when checkout commits.
type OrderPlacedEvent struct {
	OrderID    uuid.UUID   `json:"order_id"`
	BuyerID    *uuid.UUID  `json:"buyer_id,omitempty"`
	IsUser     bool        `json:"is_user"`
	TotalPrice int64       `json:"total_price"`
	Lines      []OrderLine `json:"lines"`
}

// OrderCanceledEvent is emitted before a canceled order is removed.
type OrderCanceledEvent struct {
	OrderID    uuid.UUID   `json:"order_id"`
	BuyerID    *uuid.UUID  `json:"buyer_id,omitempty"`
	CanceledAt time.Time   `json:"canceled_at"`
	Lines      []OrderLine `json:"lines"`
}

// OrderStatusChangedEvent tracks seller/admin driven transitions.
type OrderStatusChangedEvent struct {
	OrderID uuid.UUID         `json:"order_id"`
	From    enums.OrderStatus `json:"from"`
	To      enums.OrderStatus `json:"to"`
}

// ItemSoldOutEvent fires when an item's stock reaches zero.
type ItemSoldOutEvent struct {
	ItemID   uuid.UUID `json:"item_id"`
	SellerID uuid.UUID `json:"seller_id"`
}

// SellerStatusChangedEvent records an admin decision on a seller application.
type SellerStatusChangedEvent struct {
	SellerID uuid.UUID          `json:"seller_id"`
	UserID   uuid.UUID          `json:"user_id"`
	Status   enums.SellerStatus `json:"status"`
}

// VerificationIssuedEvent is an audit record of a code being sent. The code
// itself is never part of the payload.
type VerificationIssuedEvent struct {
	UserID    uuid.UUID                 `json:"user_id"`
	Purpose   enums.VerificationPurpose `json:"purpose"`
	ExpiresAt time.Time                 `json:"expires_at"`
}
