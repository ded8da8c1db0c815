package router

import (
	"github.com/antonminaichev/darkstore-dispatch/internal/dispatch"
	"github.com/antonminaichev/darkstore-dispatch/internal/events"
	"github.com/antonminaichev/darkstore-dispatch/internal/hub"
	"github.com/antonminaichev/darkstore-dispatch/internal/logger"
	"github.com/antonminaichev/darkstore-dispatch/internal/metrics"
	"github.com/antonminaichev/darkstore-dispatch/internal/middleware"
	"github.com/antonminaichev/darkstore-dispatch/internal/order"
	"github.com/antonminaichev/darkstore-dispatch/internal/partner"
	usertype "github.com/antonminaichev/darkstore-dispatch/internal/types/user"
	"github.com/antonminaichev/darkstore-dispatch/internal/user"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	User     *user.Handler
	Order    *order.Handler
	Dispatch *dispatch.Handler
	Partner  *partner.Handler
	Hub      *hub.Handler
	Events   *events.WSHandler
}

func NewRouter(h Handlers, jwtSecret []byte, userRepo user.UserRepository) chi.Router {
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.GzipHandler)

	r.Get("/metrics", metrics.Handler().ServeHTTP)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.User.Register)
		r.Post("/login", h.User.Login)
	})

	// storefront pin check: usable before authentication
	r.Post("/api/serviceability", h.Hub.CheckServiceability)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTMiddleware(jwtSecret, userRepo))

		r.Route("/api/orders", func(r chi.Router) {
			r.Post("/", h.Order.PlaceOrder)
			r.Get("/", h.Order.ListOrders)
			r.Get("/{id}", h.Order.GetOrder)
			r.Get("/{id}/events", h.Events.StreamOrder)
			r.Post("/{id}/cancel", h.Order.Cancel)

			// couriers flip this themselves once they leave the hub
			r.With(middleware.RequireAnyRole(usertype.RolePartner, usertype.RoleAdmin)).
				Post("/{id}/out-for-delivery", h.Order.MarkOutForDelivery)
		})

		r.Route("/api/partners", func(r chi.Router) {
			r.Post("/{id}/online", h.Partner.SetOnline)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(usertype.RoleAdmin))

			r.Route("/api/admin", func(r chi.Router) {
				r.Get("/orders", h.Order.ListActive)
				r.Get("/orders/events", h.Events.StreamAll)
				r.Post("/orders/{id}/confirm", h.Order.Confirm)
				r.Post("/orders/{id}/ready", h.Order.MarkReady)
				r.Post("/orders/{id}/dispatch", h.Dispatch.Dispatch)
				r.Post("/orders/{id}/assign", h.Dispatch.AssignManually)
				r.Post("/orders/{id}/out-for-delivery", h.Order.MarkOutForDelivery)
				r.Post("/orders/{id}/deliver", h.Order.Deliver)

				r.Post("/partners", h.Partner.Register)
				r.Get("/partners", h.Partner.List)
				r.Post("/partners/{id}/verify", h.Partner.Verify)

				r.Post("/hubs", h.Hub.Create)
				r.Get("/hubs", h.Hub.List)
			})
		})
	})

	return r
}
