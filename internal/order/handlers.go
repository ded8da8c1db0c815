package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/antonminaichev/darkstore-dispatch/internal/middleware"
	"github.com/antonminaichev/darkstore-dispatch/internal/types/order"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.UserIDFromContext(r.Context())

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := h.svc.PlaceOrder(r.Context(), customerID, &req)
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(o)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := h.svc.GetOrder(ctx, chi.URLParam(r, "id"),
		middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx))
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.UserIDFromContext(r.Context())
	orders, err := h.svc.ListMine(r.Context(), customerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	if len(orders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// ListActive is the admin console board: every non-terminal order by
// default, or one status via ?status=.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	var statuses []order.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		statuses = append(statuses, order.OrderStatus(raw))
	}
	orders, err := h.svc.ListByStatus(r.Context(), statuses...)
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Confirm)
}

func (h *Handler) MarkReady(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.MarkReady)
}

func (h *Handler) MarkOutForDelivery(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.MarkOutForDelivery)
}

func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Deliver)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := h.svc.Cancel(ctx, chi.URLParam(r, "id"),
		middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx))
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, ref string) (*TrackedOrder, error)) {
	t, err := op(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// WriteError maps the sentinel taxonomy onto HTTP codes. Conflicts carry
// their message so the caller learns exactly why the action failed.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrHubNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrInvalidItem), errors.Is(err, ErrNegativeTotal):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrOutOfServiceArea):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrAlreadyAssigned),
		errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrCancellationWindowExpired):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
