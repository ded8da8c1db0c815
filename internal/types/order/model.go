package order

import (
	"strconv"
	"sync"
	"time"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusDispatched     OrderStatus = "dispatched"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// Progress is a display-only percentage for tracking views. It is derived
// from the status and never drives transitions.
func (s OrderStatus) Progress() int {
	switch s {
	case StatusPending:
		return 10
	case StatusConfirmed:
		return 25
	case StatusReadyForPickup:
		return 40
	case StatusDispatched:
		return 60
	case StatusOutForDelivery:
		return 80
	case StatusDelivered:
		return 100
	}
	return 0
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentFailed    PaymentStatus = "failed"
)

type OrderItem struct {
	ProductID string  `db:"product_id" json:"product_id"`
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
}

type Order struct {
	ID              string        `db:"id" json:"id"`
	Number          string        `db:"number" json:"order_number"`
	CustomerID      string        `db:"customer_id" json:"-"`
	HubID           string        `db:"hub_id" json:"hub_id"`
	Status          OrderStatus   `db:"status" json:"status"`
	Items           []OrderItem   `db:"-" json:"items"`
	DeliveryAddress string        `db:"delivery_address" json:"delivery_address"`
	Lat             float64       `db:"lat" json:"lat"`
	Lng             float64       `db:"lng" json:"lng"`
	DeliveryFee     float64       `db:"delivery_fee" json:"delivery_fee"`
	PromoDiscount   float64       `db:"promo_discount" json:"promo_discount"`
	TotalAmount     float64       `db:"total_amount" json:"total_amount"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"payment_status"`
	PromiseMinutes  int           `db:"promise_minutes" json:"estimated_delivery_minutes"`
	PartnerID       *string       `db:"delivery_partner_id" json:"delivery_partner_id,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	AcceptedAt      *time.Time    `db:"accepted_at" json:"accepted_at,omitempty"`
	DeliveredAt     *time.Time    `db:"delivered_at" json:"delivered_at,omitempty"`
	DeliveryMinutes *int          `db:"delivery_minutes" json:"delivery_time_minutes,omitempty"`
}

// ItemsTotal is the item subtotal before delivery fee and discount.
func ItemsTotal(items []OrderItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.UnitPrice * float64(it.Quantity)
	}
	return sum
}

var (
	numberMu   sync.Mutex
	lastNumber int64
)

// NewNumber mints a human-facing order number: "ORD" followed by a
// millisecond epoch. The counter is bumped past the last issued value so
// numbers stay unique and increasing even within the same millisecond.
func NewNumber() string {
	numberMu.Lock()
	defer numberMu.Unlock()
	ms := time.Now().UnixMilli()
	if ms <= lastNumber {
		ms = lastNumber + 1
	}
	lastNumber = ms
	return "ORD" + strconv.FormatInt(ms, 10)
}
