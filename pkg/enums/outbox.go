package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregateOrder  OutboxAggregateType = "order"
	AggregateItem   OutboxAggregateType = "item"
	AggregateSeller OutboxAggregateType = "seller"
	AggregateUser   OutboxAggregateType = "user"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateItem,
	AggregateSeller,
	AggregateUser,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType identifies the domain fact recorded in the outbox.
type OutboxEventType string

const (
	EventOrderPlaced         OutboxEventType = "order_placed"
	EventOrderCanceled       OutboxEventType = "order_canceled"
	EventOrderStatusChanged  OutboxEventType = "order_status_changed"
	EventItemSoldOut         OutboxEventType = "item_sold_out"
	EventSellerStatusChanged OutboxEventType = "seller_status_changed"
	EventVerificationIssued  OutboxEventType = "verification_issued"
)

var validEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventOrderCanceled,
	EventOrderStatusChanged,
	EventItemSoldOut,
	EventSellerStatusChanged,
	EventVerificationIssued,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
