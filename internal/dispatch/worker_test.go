package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
	"github.com/antonminaichev/darkstore-dispatch/internal/types/partner"
	"github.com/stretchr/testify/assert"
)

func TestSweepWorkerDispatchesQueuedOrders(t *testing.T) {
	orders := newMemOrders(readyOrder("o1"), readyOrder("o2"))
	partners := &stubPartners{partners: []partner.DeliveryPartner{
		onlineVerified("p1", testStart),
	}}
	svc := newTestService(orders, partners)

	jobs := make(chan string, 2)
	jobs <- "o1"
	jobs <- "o2"
	close(jobs)

	done := make(chan struct{})
	go func() {
		sweepWorker(context.Background(), 1, svc, jobs)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not drain the queue")
	}

	for _, id := range []string{"o1", "o2"} {
		o, err := orders.FindOrderByID(context.Background(), id)
		assert.NoError(t, err)
		assert.Equal(t, order.StatusDispatched, o.Status)
		assert.Equal(t, "p1", *o.PartnerID)
	}
}

func TestSweepWorkerStopsOnContextCancel(t *testing.T) {
	svc := newTestService(newMemOrders(), &stubPartners{})
	ctx, cancel := context.WithCancel(context.Background())

	jobs := make(chan string)
	done := make(chan struct{})
	go func() {
		sweepWorker(ctx, 1, svc, jobs)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}

func TestSweepWorkerTolerateMissingPartners(t *testing.T) {
	orders := newMemOrders(readyOrder("o1"))
	svc := newTestService(orders, &stubPartners{})

	jobs := make(chan string, 1)
	jobs <- "o1"
	close(jobs)
	sweepWorker(context.Background(), 1, svc, jobs)

	o, err := orders.FindOrderByID(context.Background(), "o1")
	assert.NoError(t, err)
	assert.Equal(t, order.StatusReadyForPickup, o.Status, "no pool, order stays ready")
}
