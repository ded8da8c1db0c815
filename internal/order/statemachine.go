package order

import (
	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
)

// transitions is the only legal forward graph. Anything not listed here,
// including every move out of delivered or cancelled, is rejected.
var transitions = map[order.OrderStatus][]order.OrderStatus{
	order.StatusPending:        {order.StatusConfirmed, order.StatusCancelled},
	order.StatusConfirmed:      {order.StatusReadyForPickup, order.StatusCancelled},
	order.StatusReadyForPickup: {order.StatusDispatched},
	order.StatusDispatched:     {order.StatusOutForDelivery},
	order.StatusOutForDelivery: {order.StatusDelivered},
	order.StatusDelivered:      nil,
	order.StatusCancelled:      nil,
}

// CanTransition reports whether to is a direct successor of from.
func CanTransition(from, to order.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
