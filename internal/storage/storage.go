package storage

import (
	"context"

	"github.com/antonminaichev/darkstore-dispatch/internal/dispatch"
	"github.com/antonminaichev/darkstore-dispatch/internal/hub"
	"github.com/antonminaichev/darkstore-dispatch/internal/order"
	"github.com/antonminaichev/darkstore-dispatch/internal/partner"
	"github.com/antonminaichev/darkstore-dispatch/internal/user"
)

// Storage is everything the service layer needs from persistence; the
// Postgres implementation satisfies all of it with one struct.
type Storage interface {
	user.UserRepository
	order.OrderRepository
	order.HubRepository
	hub.HubRepository
	partner.PartnerRepository
	dispatch.OrderStore
	dispatch.PartnerStore

	Ping(ctx context.Context) error
	Close() error
}
