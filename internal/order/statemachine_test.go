package order

import (
	"testing"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
	"github.com/stretchr/testify/assert"
)

func TestHappyPathEdges(t *testing.T) {
	path := []order.OrderStatus{
		order.StatusPending,
		order.StatusConfirmed,
		order.StatusReadyForPickup,
		order.StatusDispatched,
		order.StatusOutForDelivery,
		order.StatusDelivered,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransition(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestCancellableStates(t *testing.T) {
	assert.True(t, CanTransition(order.StatusPending, order.StatusCancelled))
	assert.True(t, CanTransition(order.StatusConfirmed, order.StatusCancelled))
	assert.False(t, CanTransition(order.StatusReadyForPickup, order.StatusCancelled))
	assert.False(t, CanTransition(order.StatusDispatched, order.StatusCancelled))
	assert.False(t, CanTransition(order.StatusOutForDelivery, order.StatusCancelled))
}

func TestNoSkipsOrBackEdges(t *testing.T) {
	assert.False(t, CanTransition(order.StatusPending, order.StatusReadyForPickup), "skip")
	assert.False(t, CanTransition(order.StatusPending, order.StatusDelivered), "skip to end")
	assert.False(t, CanTransition(order.StatusConfirmed, order.StatusPending), "back edge")
	assert.False(t, CanTransition(order.StatusDispatched, order.StatusReadyForPickup), "back edge")
	assert.False(t, CanTransition(order.StatusConfirmed, order.StatusConfirmed), "self loop")
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	all := []order.OrderStatus{
		order.StatusPending, order.StatusConfirmed, order.StatusReadyForPickup,
		order.StatusDispatched, order.StatusOutForDelivery,
		order.StatusDelivered, order.StatusCancelled,
	}
	for _, to := range all {
		assert.False(t, CanTransition(order.StatusDelivered, to))
		assert.False(t, CanTransition(order.StatusCancelled, to))
	}
}

func TestProgressMapping(t *testing.T) {
	assert.Equal(t, 10, order.StatusPending.Progress())
	assert.Equal(t, 25, order.StatusConfirmed.Progress())
	assert.Equal(t, 40, order.StatusReadyForPickup.Progress())
	assert.Equal(t, 60, order.StatusDispatched.Progress())
	assert.Equal(t, 80, order.StatusOutForDelivery.Progress())
	assert.Equal(t, 100, order.StatusDelivered.Progress())
	assert.Equal(t, 0, order.StatusCancelled.Progress())
}
