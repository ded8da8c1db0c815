package dispatch

import (
	"encoding/json"
	"errors"
	"net/http"

	orderservice "github.com/antonminaichev/darkstore-dispatch/internal/order"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Dispatch triggers partner selection for a ready order. An empty pool is
// reported as 200 with the unchanged order: the customer never sees it as a
// failure and the sweep will retry.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Dispatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil && !errors.Is(err, ErrNoAvailablePartner) {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(o)
}

type assignReq struct {
	PartnerID string `json:"partner_id"`
}

func (h *Handler) AssignManually(w http.ResponseWriter, r *http.Request) {
	var req assignReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PartnerID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	o, err := h.svc.AssignManually(r.Context(), chi.URLParam(r, "id"), req.PartnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(o)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrPartnerNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	orderservice.WriteError(w, err)
}
