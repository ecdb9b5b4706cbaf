package enums

import "fmt"

// OrderStatus tracks the delivery lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusAssigned  OrderStatus = "assigned"
	OrderStatusPickedUp  OrderStatus = "picked_up"
	OrderStatusEnRoute   OrderStatus = "en_route"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusAssigned,
	OrderStatusPickedUp,
	OrderStatusEnRoute,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Order Placed",
	OrderStatusConfirmed: "Order Confirmed",
	OrderStatusPreparing: "Preparing Your Food",
	OrderStatusReady:     "Ready for Pickup",
	OrderStatusAssigned:  "Driver Assigned",
	OrderStatusPickedUp:  "Order Picked Up",
	OrderStatusEnRoute:   "On the Way",
	OrderStatusDelivered: "Delivered",
	OrderStatusCancelled: "Cancelled",
}

var orderStatusProgress = map[OrderStatus]int{
	OrderStatusPending:   10,
	OrderStatusConfirmed: 25,
	OrderStatusPreparing: 50,
	OrderStatusReady:     70,
	OrderStatusAssigned:  75,
	OrderStatusPickedUp:  85,
	OrderStatusEnRoute:   90,
	OrderStatusDelivered: 100,
	OrderStatusCancelled: 0,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are expected.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanCancel reports whether cancellation is still safe, which is only
// before food preparation begins.
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// DisplayLabel returns the customer-facing label for the status.
func (s OrderStatus) DisplayLabel() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Progress returns the monotonic completion percentage for the status.
func (s OrderStatus) Progress() int {
	return orderStatusProgress[s]
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
