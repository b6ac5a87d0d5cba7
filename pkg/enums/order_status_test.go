package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPaid, OrderStatusShipping, true},
		{OrderStatusShipping, OrderStatusDelivered, true},
		{OrderStatusPaid, OrderStatusDelivered, false},
		{OrderStatusPaid, OrderStatusCanceled, false},
		{OrderStatusShipping, OrderStatusPaid, false},
		{OrderStatusDelivered, OrderStatusShipping, false},
		{OrderStatusCanceled, OrderStatusPaid, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("SHIPPING")
	if err != nil || status != OrderStatusShipping {
		t.Fatalf("expected SHIPPING, got %q (%v)", status, err)
	}
	if _, err := ParseOrderStatus("shipping"); err == nil {
		t.Fatal("expected lowercase status to be rejected")
	}
}
