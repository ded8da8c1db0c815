// Package sla computes the delivery-promise countdown for an order. It is a
// pure function of the order's timestamps: nothing here mutates state, so
// tracking views may poll it as often as they like.
package sla

import (
	"fmt"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
)

type Snapshot struct {
	ElapsedSeconds   int64  `json:"elapsed_seconds"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	Elapsed          string `json:"elapsed"`
	Remaining        string `json:"remaining"`
	Overdue          bool   `json:"overdue"`
	Progress         int    `json:"progress"`
	Cancelled        bool   `json:"cancelled,omitempty"`
}

// Compute evaluates the timer at the given instant. The countdown runs from
// acceptedAt once a partner is attached, else from createdAt. A delivered
// order is frozen against deliveredAt; a cancelled order reports a fixed
// zero state.
func Compute(o *order.Order, now time.Time) Snapshot {
	if o.Status == order.StatusCancelled {
		return Snapshot{
			Elapsed:   clock(0),
			Remaining: clock(0),
			Cancelled: true,
		}
	}

	start := o.CreatedAt
	if o.AcceptedAt != nil {
		start = *o.AcceptedAt
	}
	end := now
	if o.DeliveredAt != nil {
		end = *o.DeliveredAt
	}

	elapsed := int64(end.Sub(start).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := int64(o.PromiseMinutes)*60 - elapsed

	return Snapshot{
		ElapsedSeconds:   elapsed,
		RemainingSeconds: remaining,
		Elapsed:          clock(elapsed),
		Remaining:        clock(remaining),
		Overdue:          remaining < 0 && !o.Status.Terminal(),
		Progress:         o.Status.Progress(),
	}
}

// DeliveryMinutes is the final fulfillment duration persisted on delivery.
func DeliveryMinutes(o *order.Order, deliveredAt time.Time) int {
	start := o.CreatedAt
	if o.AcceptedAt != nil {
		start = *o.AcceptedAt
	}
	m := int(deliveredAt.Sub(start).Minutes())
	if m < 0 {
		m = 0
	}
	return m
}

// clock formats seconds as MM:SS, floored at 00:00 so a blown promise never
// renders as a negative countdown.
func clock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
