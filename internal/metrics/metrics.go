package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics carries the dispatch-side counters. Construct once per process
// with the default registerer; tests pass their own registry.
type Metrics struct {
	OrdersPlaced     prometheus.Counter
	OrdersDispatched prometheus.Counter
	OrdersDelivered  prometheus.Counter
	OrdersCancelled  prometheus.Counter
	OrdersRejected   *prometheus.CounterVec
	DeliveryMinutes  prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "darkstore",
			Name:      "orders_placed_total",
			Help:      "Orders accepted at checkout.",
		}),
		OrdersDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "darkstore",
			Name:      "orders_dispatched_total",
			Help:      "Orders with a delivery partner attached.",
		}),
		OrdersDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "darkstore",
			Name:      "orders_delivered_total",
			Help:      "Orders delivered to the customer.",
		}),
		OrdersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "darkstore",
			Name:      "orders_cancelled_total",
			Help:      "Orders cancelled inside the grace window.",
		}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "darkstore",
			Name:      "orders_rejected_total",
			Help:      "Checkout rejections by reason.",
		}, []string{"reason"}),
		DeliveryMinutes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "darkstore",
			Name:      "delivery_duration_minutes",
			Help:      "Minutes from partner acceptance to delivery.",
			Buckets:   []float64{2, 4, 6, 8, 10, 12, 15, 20, 30, 45, 60},
		}),
	}
	reg.MustRegister(
		m.OrdersPlaced, m.OrdersDispatched, m.OrdersDelivered,
		m.OrdersCancelled, m.OrdersRejected, m.DeliveryMinutes,
	)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
