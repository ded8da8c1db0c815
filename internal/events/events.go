// Package events is the in-process change feed for orders. Every committed
// mutation publishes one event; tracking views and the admin dashboard
// subscribe instead of polling.
package events

import (
	"sync"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
)

const (
	EventOrderCreated    = "order.created"
	EventStatusChanged   = "order.status_changed"
	EventPartnerAssigned = "order.partner_assigned"
	EventOrderDelivered  = "order.delivered"
	EventOrderCancelled  = "order.cancelled"
)

type OrderEvent struct {
	Type      string            `json:"type"`
	OrderID   string            `json:"order_id"`
	Number    string            `json:"order_number"`
	Status    order.OrderStatus `json:"status"`
	PartnerID *string           `json:"delivery_partner_id,omitempty"`
	At        time.Time         `json:"at"`
}

// subscriber buffer; a slow reader drops events rather than blocking writers.
const subBuffer = 16

type subscriber struct {
	orderID string // empty means all orders
	ch      chan OrderEvent
}

type Broker struct {
	mu   sync.RWMutex
	subs map[int]*subscriber
	next int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]*subscriber)}
}

// Publish delivers the event to every matching subscriber without blocking.
func (b *Broker) Publish(e OrderEvent) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.orderID != "" && s.orderID != e.OrderID {
			continue
		}
		select {
		case s.ch <- e:
		default:
		}
	}
}

// Subscribe returns a channel of events for one order and a function that
// cancels the subscription and closes the channel.
func (b *Broker) Subscribe(orderID string) (<-chan OrderEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	s := &subscriber{orderID: orderID, ch: make(chan OrderEvent, subBuffer)}
	b.subs[id] = s

	return s.ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
	}
}

// SubscribeAll streams events for every order (admin dashboard feed).
func (b *Broker) SubscribeAll() (<-chan OrderEvent, func()) {
	return b.Subscribe("")
}
