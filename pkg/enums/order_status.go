package enums

import "fmt"

// OrderStatus is the workflow stage of a paint order on the shop floor.
type OrderStatus string

const (
	OrderStatusWaiting  OrderStatus = "Waiting"
	OrderStatusMixing   OrderStatus = "Mixing"
	OrderStatusSpraying OrderStatus = "Spraying"
	OrderStatusReMixing OrderStatus = "Re-Mixing"
	OrderStatusReady    OrderStatus = "Ready"
	OrderStatusComplete OrderStatus = "Complete"
)

// OrderStatusAll is the report filter value that disables status filtering.
const OrderStatusAll = "All"

var validOrderStatuses = []OrderStatus{
	OrderStatusWaiting,
	OrderStatusMixing,
	OrderStatusSpraying,
	OrderStatusReMixing,
	OrderStatusReady,
	OrderStatusComplete,
}

// cancellableOrderStatuses are the stages an order may still be withdrawn from.
var cancellableOrderStatuses = []OrderStatus{
	OrderStatusWaiting,
	OrderStatusMixing,
	OrderStatusSpraying,
	OrderStatusReMixing,
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

// IsCancellable reports whether an order in this stage may be cancelled.
func (s OrderStatus) IsCancellable() bool {
	for _, candidate := range cancellableOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further status changes are accepted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusComplete
}

// StageRank orders statuses the way the floor board lists them.
func (s OrderStatus) StageRank() int {
	for i, candidate := range validOrderStatuses {
		if candidate == s {
			return i
		}
	}
	return len(validOrderStatuses)
}

// OrderStatuses returns the workflow stages in floor order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
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
