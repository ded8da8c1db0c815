package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/events"
	"github.com/antonminaichev/darkstore-dispatch/internal/metrics"
	orderservice "github.com/antonminaichev/darkstore-dispatch/internal/order"
	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
	"github.com/antonminaichev/darkstore-dispatch/internal/types/partner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// memOrders is a tiny in-memory order store with real CAS semantics.
type memOrders struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func newMemOrders(orders ...*order.Order) *memOrders {
	m := &memOrders{orders: make(map[string]*order.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memOrders) FindOrderByID(ctx context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) ListOrdersByStatus(ctx context.Context, statuses ...order.OrderStatus) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.Order
	for _, o := range m.orders {
		for _, st := range statuses {
			if o.Status == st {
				out = append(out, *o)
			}
		}
	}
	return out, nil
}

func (m *memOrders) AssignPartner(ctx context.Context, id, partnerID string, acceptedAt time.Time, from order.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != from || o.PartnerID != nil {
		return false, nil
	}
	o.Status = order.StatusDispatched
	o.PartnerID = &partnerID
	o.AcceptedAt = &acceptedAt
	return true, nil
}

type stubPartners struct {
	partners []partner.DeliveryPartner
}

func (s *stubPartners) FindPartnerByID(ctx context.Context, id string) (*partner.DeliveryPartner, error) {
	for i := range s.partners {
		if s.partners[i].ID == id {
			return &s.partners[i], nil
		}
	}
	return nil, nil
}

func (s *stubPartners) ListAvailablePartners(ctx context.Context) ([]partner.DeliveryPartner, error) {
	var out []partner.DeliveryPartner
	for _, p := range s.partners {
		if p.Available() {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService(orders *memOrders, partners *stubPartners) *Service {
	svc := NewService(orders, partners, FirstRegistered{}, events.NewBroker(),
		metrics.New(prometheus.NewRegistry()))
	svc.now = func() time.Time { return testStart }
	return svc
}

func readyOrder(id string) *order.Order {
	return &order.Order{ID: id, Number: "ORD1", Status: order.StatusReadyForPickup, CreatedAt: testStart}
}

func onlineVerified(id string, registered time.Time) partner.DeliveryPartner {
	return partner.DeliveryPartner{ID: id, Name: id, IsOnline: true, IsKycVerified: true, CreatedAt: registered}
}

func TestDispatchAttachesEarliestPartner(t *testing.T) {
	orders := newMemOrders(readyOrder("o1"))
	partners := &stubPartners{partners: []partner.DeliveryPartner{
		onlineVerified("late", testStart),
		onlineVerified("early", testStart.Add(-time.Hour)),
	}}
	svc := newTestService(orders, partners)

	o, err := svc.Dispatch(context.Background(), "o1")
	assert.NoError(t, err)
	assert.Equal(t, order.StatusDispatched, o.Status)
	assert.NotNil(t, o.PartnerID)
	assert.Equal(t, "early", *o.PartnerID)
	assert.NotNil(t, o.AcceptedAt)
	assert.Equal(t, testStart, *o.AcceptedAt)
}

func TestDispatchSkipsOfflineAndUnverified(t *testing.T) {
	orders := newMemOrders(readyOrder("o1"))
	partners := &stubPartners{partners: []partner.DeliveryPartner{
		{ID: "offline", IsOnline: false, IsKycVerified: true, CreatedAt: testStart},
		{ID: "unverified", IsOnline: true, IsKycVerified: false, CreatedAt: testStart},
	}}
	svc := newTestService(orders, partners)

	o, err := svc.Dispatch(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrNoAvailablePartner)
	assert.Equal(t, order.StatusReadyForPickup, o.Status, "empty pool leaves the order ready")
	assert.Nil(t, o.PartnerID)
}

func TestDispatchBeforeReadyIsInvalidState(t *testing.T) {
	o := readyOrder("o1")
	o.Status = order.StatusPending
	svc := newTestService(newMemOrders(o), &stubPartners{})

	_, err := svc.Dispatch(context.Background(), "o1")
	assert.ErrorIs(t, err, orderservice.ErrInvalidState)
}

func TestDispatchTwiceFailsAlreadyAssigned(t *testing.T) {
	orders := newMemOrders(readyOrder("o1"))
	partners := &stubPartners{partners: []partner.DeliveryPartner{onlineVerified("p1", testStart)}}
	svc := newTestService(orders, partners)

	_, err := svc.Dispatch(context.Background(), "o1")
	assert.NoError(t, err)

	_, err = svc.Dispatch(context.Background(), "o1")
	assert.ErrorIs(t, err, orderservice.ErrAlreadyAssigned)
}

func TestDispatchUnknownOrder(t *testing.T) {
	svc := newTestService(newMemOrders(), &stubPartners{})
	_, err := svc.Dispatch(context.Background(), "missing")
	assert.ErrorIs(t, err, orderservice.ErrOrderNotFound)
}

func TestAssignManuallyBypassesOnlineFilter(t *testing.T) {
	o := readyOrder("o1")
	o.Status = order.StatusConfirmed
	orders := newMemOrders(o)
	partners := &stubPartners{partners: []partner.DeliveryPartner{
		{ID: "offline-guy", IsOnline: false, IsKycVerified: false, CreatedAt: testStart},
	}}
	svc := newTestService(orders, partners)

	got, err := svc.AssignManually(context.Background(), "o1", "offline-guy")
	assert.NoError(t, err)
	assert.Equal(t, order.StatusDispatched, got.Status)
	assert.Equal(t, "offline-guy", *got.PartnerID)
}

func TestAssignManuallyRejectsLateStates(t *testing.T) {
	o := readyOrder("o1")
	o.Status = order.StatusOutForDelivery
	svc := newTestService(newMemOrders(o), &stubPartners{
		partners: []partner.DeliveryPartner{onlineVerified("p1", testStart)},
	})

	_, err := svc.AssignManually(context.Background(), "o1", "p1")
	assert.ErrorIs(t, err, orderservice.ErrInvalidState)
}

func TestAssignManuallyUnknownPartner(t *testing.T) {
	svc := newTestService(newMemOrders(readyOrder("o1")), &stubPartners{})
	_, err := svc.AssignManually(context.Background(), "o1", "ghost")
	assert.ErrorIs(t, err, ErrPartnerNotFound)
}

func TestConcurrentDispatchSingleWinner(t *testing.T) {
	for i := 0; i < 50; i++ {
		orders := newMemOrders(readyOrder("o1"))
		partners := &stubPartners{partners: []partner.DeliveryPartner{onlineVerified("p1", testStart)}}
		svc := newTestService(orders, partners)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				_, errs[j] = svc.Dispatch(context.Background(), "o1")
			}(j)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, orderservice.ErrAlreadyAssigned)
			}
		}
		assert.Equal(t, 1, winners)

		final, _ := orders.FindOrderByID(context.Background(), "o1")
		assert.Equal(t, order.StatusDispatched, final.Status)
		assert.Equal(t, "p1", *final.PartnerID)
	}
}

func TestTwoOrdersMaySelectSamePartner(t *testing.T) {
	orders := newMemOrders(readyOrder("o1"), readyOrder("o2"))
	partners := &stubPartners{partners: []partner.DeliveryPartner{onlineVerified("p1", testStart)}}
	svc := newTestService(orders, partners)

	a, err := svc.Dispatch(context.Background(), "o1")
	assert.NoError(t, err)
	b, err := svc.Dispatch(context.Background(), "o2")
	assert.NoError(t, err)
	assert.Equal(t, *a.PartnerID, *b.PartnerID)
}
