package hub

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/antonminaichev/darkstore-dispatch/internal/geofence"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createReq struct {
	Name  string         `json:"name"`
	Fence geofence.Fence `json:"fence"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	created, err := h.svc.Create(r.Context(), req.Name, req.Fence)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	hubs, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(hubs)
}

type serviceabilityReq struct {
	HubID string  `json:"hub_id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

type serviceabilityResp struct {
	Serviceable bool   `json:"serviceable"`
	Reason      string `json:"reason,omitempty"`
}

func (h *Handler) CheckServiceability(w http.ResponseWriter, r *http.Request) {
	var req serviceabilityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ok, reason, err := h.svc.CheckServiceability(r.Context(), req.HubID, geofence.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(serviceabilityResp{Serviceable: ok, Reason: reason})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrHubNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEmptyName),
		errors.Is(err, geofence.ErrBadPolygon),
		errors.Is(err, geofence.ErrBadRadius):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
