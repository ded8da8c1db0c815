package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/events"
	"github.com/antonminaichev/darkstore-dispatch/internal/geofence"
	"github.com/antonminaichev/darkstore-dispatch/internal/metrics"
	"github.com/antonminaichev/darkstore-dispatch/internal/sla"
	"github.com/antonminaichev/darkstore-dispatch/internal/types/hub"
	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
	usertype "github.com/antonminaichev/darkstore-dispatch/internal/types/user"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound             = errors.New("order not found")
	ErrHubNotFound               = errors.New("hub not found")
	ErrEmptyOrder                = errors.New("order needs at least one item")
	ErrInvalidItem               = errors.New("item quantity must be at least 1 and unit price non-negative")
	ErrNegativeTotal             = errors.New("promo discount exceeds items total plus delivery fee")
	ErrOutOfServiceArea          = errors.New("delivery address is outside the delivery zone")
	ErrInvalidTransition         = errors.New("illegal order status transition")
	ErrInvalidState              = errors.New("operation not allowed in current order status")
	ErrAlreadyAssigned           = errors.New("order already has a delivery partner")
	ErrForbidden                 = errors.New("order belongs to another customer")
	ErrConcurrentModification    = errors.New("order was modified concurrently, retry with fresh state")
	ErrCancellationWindowExpired = errors.New("cancellation window expired")
)

// AddressResolver turns coordinates into a display address. Implementations
// must degrade to a coordinate string instead of failing: checkout never
// blocks on geocoding.
type AddressResolver interface {
	Reverse(ctx context.Context, lat, lng float64) string
}

type Publisher interface {
	Publish(e events.OrderEvent)
}

type Service struct {
	repo     OrderRepository
	hubs     HubRepository
	resolver AddressResolver
	broker   Publisher
	metrics  *metrics.Metrics

	cancelWindow   time.Duration
	promiseMinutes int
	now            func() time.Time
}

func NewService(repo OrderRepository, hubs HubRepository, resolver AddressResolver, broker Publisher, m *metrics.Metrics, cancelWindow time.Duration, promiseMinutes int) *Service {
	if cancelWindow <= 0 {
		cancelWindow = 2 * time.Minute
	}
	if promiseMinutes <= 0 {
		promiseMinutes = 10
	}
	return &Service{
		repo:           repo,
		hubs:           hubs,
		resolver:       resolver,
		broker:         broker,
		metrics:        m,
		cancelWindow:   cancelWindow,
		promiseMinutes: promiseMinutes,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

type PlaceOrderRequest struct {
	// HubID optionally narrows checkout to one hub; when empty the serving
	// hub is inferred from the delivery coordinates.
	HubID           string            `json:"hub_id,omitempty"`
	Items           []order.OrderItem `json:"items"`
	DeliveryAddress string            `json:"delivery_address"`
	Lat             float64           `json:"lat"`
	Lng             float64           `json:"lng"`
	DeliveryFee     float64           `json:"delivery_fee"`
	PromoDiscount   float64           `json:"promo_discount"`
}

// TrackedOrder is an order plus its live timer, the shape every read
// surface gets.
type TrackedOrder struct {
	*order.Order
	Timer     sla.Snapshot `json:"timer"`
	CanCancel bool         `json:"can_cancel"`
}

// PlaceOrder runs checkout: the geofence is re-checked here even though the
// storefront already validated the pin, so a stale cached location cannot
// slip through.
func (s *Service) PlaceOrder(ctx context.Context, customerID string, req *PlaceOrderRequest) (*order.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, it := range req.Items {
		if it.Quantity < 1 || it.UnitPrice < 0 {
			return nil, ErrInvalidItem
		}
	}
	if req.PromoDiscount < 0 || req.DeliveryFee < 0 {
		return nil, ErrInvalidItem
	}

	h, err := s.resolveHub(ctx, req.HubID, geofence.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		return nil, err
	}

	total := order.ItemsTotal(req.Items) + req.DeliveryFee - req.PromoDiscount
	if total < 0 {
		return nil, ErrNegativeTotal
	}

	address := strings.TrimSpace(req.DeliveryAddress)
	if address == "" {
		if s.resolver != nil {
			address = s.resolver.Reverse(ctx, req.Lat, req.Lng)
		} else {
			address = fmt.Sprintf("%.6f, %.6f", req.Lat, req.Lng)
		}
	}

	o := &order.Order{
		ID:              uuid.NewString(),
		Number:          order.NewNumber(),
		CustomerID:      customerID,
		HubID:           h.ID,
		Status:          order.StatusPending,
		Items:           req.Items,
		DeliveryAddress: address,
		Lat:             req.Lat,
		Lng:             req.Lng,
		DeliveryFee:     req.DeliveryFee,
		PromoDiscount:   req.PromoDiscount,
		TotalAmount:     total,
		PaymentStatus:   order.PaymentPending,
		PromiseMinutes:  s.promiseMinutes,
		CreatedAt:       s.now(),
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.metrics.OrdersPlaced.Inc()
	s.broker.Publish(events.OrderEvent{
		Type:    events.EventOrderCreated,
		OrderID: o.ID,
		Number:  o.Number,
		Status:  o.Status,
	})
	return o, nil
}

// resolveHub finds the hub serving the delivery point. With an explicit hub
// id the point must still fall inside that hub's fence; without one the
// first hub whose fence contains the point wins.
func (s *Service) resolveHub(ctx context.Context, hubID string, p geofence.Point) (*hub.Hub, error) {
	if hubID != "" {
		h, err := s.hubs.FindHubByID(ctx, hubID)
		if err != nil || h == nil {
			return nil, ErrHubNotFound
		}
		if !h.Fence.Contains(p) {
			s.metrics.OrdersRejected.WithLabelValues("out_of_service_area").Inc()
			return nil, ErrOutOfServiceArea
		}
		return h, nil
	}

	hubs, err := s.hubs.ListHubs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range hubs {
		if hubs[i].Fence.Contains(p) {
			return &hubs[i], nil
		}
	}
	s.metrics.OrdersRejected.WithLabelValues("out_of_service_area").Inc()
	return nil, ErrOutOfServiceArea
}

// GetOrder resolves either an internal id or a human order number (the
// "ORD" prefix disambiguates) and attaches the live timer snapshot. Only
// the owning customer or an admin may look an order up.
func (s *Service) GetOrder(ctx context.Context, ref, callerID string, callerRole usertype.Role) (*TrackedOrder, error) {
	o, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := authorize(o, callerID, callerRole); err != nil {
		return nil, err
	}
	return s.track(o), nil
}

func authorize(o *order.Order, callerID string, callerRole usertype.Role) error {
	if callerRole == usertype.RoleAdmin || o.CustomerID == callerID {
		return nil
	}
	return ErrForbidden
}

func (s *Service) find(ctx context.Context, ref string) (*order.Order, error) {
	var (
		o   *order.Order
		err error
	)
	if strings.HasPrefix(ref, "ORD") {
		o, err = s.repo.FindOrderByNumber(ctx, ref)
	} else {
		o, err = s.repo.FindOrderByID(ctx, ref)
	}
	if err != nil || o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) track(o *order.Order) *TrackedOrder {
	now := s.now()
	return &TrackedOrder{
		Order:     o,
		Timer:     sla.Compute(o, now),
		CanCancel: s.CanCancel(o, now),
	}
}

func (s *Service) ListMine(ctx context.Context, customerID string) ([]TrackedOrder, error) {
	orders, err := s.repo.ListOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]TrackedOrder, 0, len(orders))
	for i := range orders {
		out = append(out, *s.track(&orders[i]))
	}
	return out, nil
}

func (s *Service) ListByStatus(ctx context.Context, statuses ...order.OrderStatus) ([]TrackedOrder, error) {
	if len(statuses) == 0 {
		statuses = []order.OrderStatus{
			order.StatusPending, order.StatusConfirmed, order.StatusReadyForPickup,
			order.StatusDispatched, order.StatusOutForDelivery,
		}
	}
	orders, err := s.repo.ListOrdersByStatus(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	out := make([]TrackedOrder, 0, len(orders))
	for i := range orders {
		out = append(out, *s.track(&orders[i]))
	}
	return out, nil
}

func (s *Service) Confirm(ctx context.Context, ref string) (*TrackedOrder, error) {
	return s.transition(ctx, ref, order.StatusConfirmed)
}

func (s *Service) MarkReady(ctx context.Context, ref string) (*TrackedOrder, error) {
	return s.transition(ctx, ref, order.StatusReadyForPickup)
}

func (s *Service) MarkOutForDelivery(ctx context.Context, ref string) (*TrackedOrder, error) {
	return s.transition(ctx, ref, order.StatusOutForDelivery)
}

func (s *Service) transition(ctx context.Context, ref string, to order.OrderStatus) (*TrackedOrder, error) {
	o, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, ErrInvalidTransition
	}
	ok, err := s.repo.UpdateOrderStatus(ctx, o.ID, o.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentModification
	}
	o.Status = to
	s.broker.Publish(events.OrderEvent{
		Type:      events.EventStatusChanged,
		OrderID:   o.ID,
		Number:    o.Number,
		Status:    to,
		PartnerID: o.PartnerID,
	})
	return s.track(o), nil
}

// Deliver completes the order: the timer freezes against deliveredAt, the
// fulfillment duration is persisted and the COD payment settles.
func (s *Service) Deliver(ctx context.Context, ref string) (*TrackedOrder, error) {
	o, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, order.StatusDelivered) {
		return nil, ErrInvalidTransition
	}
	deliveredAt := s.now()
	minutes := sla.DeliveryMinutes(o, deliveredAt)
	ok, err := s.repo.MarkDelivered(ctx, o.ID, deliveredAt, minutes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentModification
	}
	o.Status = order.StatusDelivered
	o.PaymentStatus = order.PaymentCompleted
	o.DeliveredAt = &deliveredAt
	o.DeliveryMinutes = &minutes

	s.metrics.OrdersDelivered.Inc()
	s.metrics.DeliveryMinutes.Observe(float64(minutes))
	s.broker.Publish(events.OrderEvent{
		Type:      events.EventOrderDelivered,
		OrderID:   o.ID,
		Number:    o.Number,
		Status:    o.Status,
		PartnerID: o.PartnerID,
	})
	return s.track(o), nil
}

// CanCancel mirrors what the storefront shows on the cancel button. Cancel
// itself re-evaluates it, the cached UI answer is never trusted.
func (s *Service) CanCancel(o *order.Order, now time.Time) bool {
	if o.Status != order.StatusPending && o.Status != order.StatusConfirmed {
		return false
	}
	return now.Sub(o.CreatedAt) <= s.cancelWindow
}

func (s *Service) Cancel(ctx context.Context, ref, callerID string, callerRole usertype.Role) (*TrackedOrder, error) {
	o, err := s.find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := authorize(o, callerID, callerRole); err != nil {
		return nil, err
	}
	if o.Status != order.StatusPending && o.Status != order.StatusConfirmed {
		return nil, ErrInvalidState
	}
	if s.now().Sub(o.CreatedAt) > s.cancelWindow {
		return nil, ErrCancellationWindowExpired
	}
	ok, err := s.repo.CancelOrder(ctx, o.ID, o.Status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConcurrentModification
	}
	o.Status = order.StatusCancelled
	o.PartnerID = nil

	s.metrics.OrdersCancelled.Inc()
	s.broker.Publish(events.OrderEvent{
		Type:    events.EventOrderCancelled,
		OrderID: o.ID,
		Number:  o.Number,
		Status:  o.Status,
	})
	return s.track(o), nil
}
