package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/httputil"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/service"
)

// BookingHandler handles HTTP requests for shops, slots and reservations.
type BookingHandler struct {
	service *service.BookingService
	logger  *slog.Logger
}

func NewBookingHandler(svc *service.BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

type ConfigureSlotsRequest struct {
	TimeSlots []string `json:"time_slots"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func actorFrom(r *http.Request) service.Actor {
	c := middleware.ClaimsFromContext(r.Context())
	if c == nil {
		return service.Actor{}
	}
	return service.Actor{UserID: c.UserID, Role: c.Role}
}

// --- Shops ---

// CreateShop handles POST /api/v1/shops
func (h *BookingHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	var req service.CreateShopInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	shop, err := h.service.CreateShop(r.Context(), actorFrom(r), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, shop)
}

// GetShop handles GET /api/v1/shops/{shopId}
func (h *BookingHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "shopId"))
	if !ok {
		return
	}

	shop, err := h.service.GetShop(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, shop)
}

// ConfigureSlots handles PUT /api/v1/shops/{shopId}/slots
func (h *BookingHandler) ConfigureSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "shopId"))
	if !ok {
		return
	}

	var req ConfigureSlotsRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	shop, err := h.service.ConfigureSlots(r.Context(), actorFrom(r), id.String(), req.TimeSlots)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, shop)
}

// ListSlots handles GET /api/v1/shops/{shopId}/slots?date=YYYY-MM-DD
func (h *BookingHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "shopId"))
	if !ok {
		return
	}
	date := r.URL.Query().Get("date")

	slots, err := h.service.ListAvailableSlots(r.Context(), id.String(), date)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{
		"shop_id": id.String(),
		"date":    date,
		"slots":   slots,
	})
}

// ListShopReservations handles GET /api/v1/shops/{shopId}/reservations
func (h *BookingHandler) ListShopReservations(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "shopId"))
	if !ok {
		return
	}

	result, err := h.service.ListShopReservations(r.Context(), actorFrom(r), id.String(),
		r.URL.Query().Get("date"), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// --- Reservations ---

// CommitReservation handles POST /api/v1/reservations
func (h *BookingHandler) CommitReservation(w http.ResponseWriter, r *http.Request) {
	var req service.CommitReservationInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	req.CustomerID = middleware.UserIDFromContext(r.Context())

	res, err := h.service.CommitReservation(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, res)
}

// GetReservation handles GET /api/v1/reservations/{id}
func (h *BookingHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	res, err := h.service.GetReservation(r.Context(), actorFrom(r), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// UpdateStatus handles PATCH /api/v1/reservations/{id}/status
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	res, err := h.service.UpdateReservationStatus(r.Context(), actorFrom(r), id.String(), req.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// ListMyReservations handles GET /api/v1/me/reservations
func (h *BookingHandler) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListCustomerReservations(r.Context(),
		middleware.UserIDFromContext(r.Context()), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}
