package events

import (
	"testing"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
	"github.com/stretchr/testify/assert"
)

func TestPublishToOrderSubscriber(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("o1")
	defer unsub()

	b.Publish(OrderEvent{Type: EventStatusChanged, OrderID: "o1", Status: order.StatusConfirmed})
	b.Publish(OrderEvent{Type: EventStatusChanged, OrderID: "o2", Status: order.StatusConfirmed})

	e := <-ch
	assert.Equal(t, "o1", e.OrderID)
	assert.False(t, e.At.IsZero(), "publish stamps the event")
	assert.Empty(t, ch, "events for other orders are filtered out")
}

func TestSubscribeAllSeesEverything(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.SubscribeAll()
	defer unsub()

	b.Publish(OrderEvent{Type: EventOrderCreated, OrderID: "o1"})
	b.Publish(OrderEvent{Type: EventOrderCreated, OrderID: "o2"})

	assert.Equal(t, "o1", (<-ch).OrderID)
	assert.Equal(t, "o2", (<-ch).OrderID)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("o1")

	unsub()
	unsub() // second call is a no-op

	_, open := <-ch
	assert.False(t, open)

	// publishing after unsubscribe must not panic
	b.Publish(OrderEvent{OrderID: "o1"})
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroker()
	ch, unsub := b.Subscribe("o1")
	defer unsub()

	for i := 0; i < subBuffer+10; i++ {
		b.Publish(OrderEvent{OrderID: "o1"})
	}
	assert.Len(t, ch, subBuffer)
}
