package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/events"
	"github.com/antonminaichev/darkstore-dispatch/internal/metrics"
	orderservice "github.com/antonminaichev/darkstore-dispatch/internal/order"
	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
	"github.com/antonminaichev/darkstore-dispatch/internal/types/partner"
)

var (
	// ErrNoAvailablePartner is a degraded outcome, not a failure: the order
	// stays ready_for_pickup and remains visible for self-acceptance.
	ErrNoAvailablePartner = errors.New("no online verified partner available")
	ErrPartnerNotFound    = errors.New("delivery partner not found")
)

type OrderStore interface {
	FindOrderByID(ctx context.Context, id string) (*order.Order, error)
	ListOrdersByStatus(ctx context.Context, statuses ...order.OrderStatus) ([]order.Order, error)
	AssignPartner(ctx context.Context, id, partnerID string, acceptedAt time.Time, from order.OrderStatus) (bool, error)
}

type PartnerStore interface {
	FindPartnerByID(ctx context.Context, id string) (*partner.DeliveryPartner, error)
	ListAvailablePartners(ctx context.Context) ([]partner.DeliveryPartner, error)
}

type Publisher interface {
	Publish(e events.OrderEvent)
}

type Service struct {
	orders   OrderStore
	partners PartnerStore
	strategy SelectionStrategy
	broker   Publisher
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(orders OrderStore, partners PartnerStore, strategy SelectionStrategy, broker Publisher, m *metrics.Metrics) *Service {
	if strategy == nil {
		strategy = FirstRegistered{}
	}
	return &Service{
		orders:   orders,
		partners: partners,
		strategy: strategy,
		broker:   broker,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch attaches a partner to a ready order. At most one partner ever
// wins the order: the assignment is a single conditional write against the
// observed status with the partner column still empty.
func (s *Service) Dispatch(ctx context.Context, orderID string) (*order.Order, error) {
	o, err := s.orders.FindOrderByID(ctx, orderID)
	if err != nil || o == nil {
		return nil, orderservice.ErrOrderNotFound
	}
	if o.PartnerID != nil {
		return nil, orderservice.ErrAlreadyAssigned
	}
	if o.Status != order.StatusReadyForPickup {
		return nil, orderservice.ErrInvalidState
	}

	pool, err := s.partners.ListAvailablePartners(ctx)
	if err != nil {
		return nil, err
	}
	picked := s.strategy.Select(pool)
	if picked == nil {
		return o, ErrNoAvailablePartner
	}

	return s.assign(ctx, o, picked.ID)
}

// AssignManually is the admin override: allowed before the order is ready
// and regardless of the partner being online.
func (s *Service) AssignManually(ctx context.Context, orderID, partnerID string) (*order.Order, error) {
	o, err := s.orders.FindOrderByID(ctx, orderID)
	if err != nil || o == nil {
		return nil, orderservice.ErrOrderNotFound
	}
	if o.PartnerID != nil {
		return nil, orderservice.ErrAlreadyAssigned
	}
	switch o.Status {
	case order.StatusPending, order.StatusConfirmed, order.StatusReadyForPickup:
	default:
		return nil, orderservice.ErrInvalidState
	}
	if p, err := s.partners.FindPartnerByID(ctx, partnerID); err != nil || p == nil {
		return nil, ErrPartnerNotFound
	}

	return s.assign(ctx, o, partnerID)
}

func (s *Service) assign(ctx context.Context, o *order.Order, partnerID string) (*order.Order, error) {
	acceptedAt := s.now()
	ok, err := s.orders.AssignPartner(ctx, o.ID, partnerID, acceptedAt, o.Status)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost the race; a fresh read tells us to whom
		fresh, ferr := s.orders.FindOrderByID(ctx, o.ID)
		if ferr == nil && fresh != nil && fresh.PartnerID != nil {
			return nil, orderservice.ErrAlreadyAssigned
		}
		return nil, orderservice.ErrConcurrentModification
	}

	o.Status = order.StatusDispatched
	o.PartnerID = &partnerID
	o.AcceptedAt = &acceptedAt

	s.metrics.OrdersDispatched.Inc()
	s.broker.Publish(events.OrderEvent{
		Type:      events.EventPartnerAssigned,
		OrderID:   o.ID,
		Number:    o.Number,
		Status:    o.Status,
		PartnerID: o.PartnerID,
	})
	return o, nil
}

// ListReady feeds the auto-dispatch sweep.
func (s *Service) ListReady(ctx context.Context) ([]order.Order, error) {
	return s.orders.ListOrdersByStatus(ctx, order.StatusReadyForPickup)
}
