package order

import (
	"context"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/hub"
	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
)

// OrderRepository is the write side of the order record. The conditional
// updates take the status observed by the caller and return false when zero
// rows matched, which is how a lost compare-and-swap race surfaces.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *order.Order) error
	FindOrderByID(ctx context.Context, id string) (*order.Order, error)
	FindOrderByNumber(ctx context.Context, number string) (*order.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]order.Order, error)
	ListOrdersByStatus(ctx context.Context, statuses ...order.OrderStatus) ([]order.Order, error)

	UpdateOrderStatus(ctx context.Context, id string, from, to order.OrderStatus) (bool, error)
	AssignPartner(ctx context.Context, id, partnerID string, acceptedAt time.Time, from order.OrderStatus) (bool, error)
	CancelOrder(ctx context.Context, id string, from order.OrderStatus) (bool, error)
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time, minutes int) (bool, error)
}

type HubRepository interface {
	FindHubByID(ctx context.Context, id string) (*hub.Hub, error)
	ListHubs(ctx context.Context) ([]hub.Hub, error)
}
