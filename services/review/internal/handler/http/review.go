package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/httputil"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/pagination"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/service"
)

// ReviewHandler handles HTTP requests for reviews and shop ratings.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

type BlindRequest struct {
	Blinded bool `json:"blinded"`
}

func actorFrom(r *http.Request) service.Actor {
	c := middleware.ClaimsFromContext(r.Context())
	if c == nil {
		return service.Actor{}
	}
	return service.Actor{UserID: c.UserID, Name: c.DisplayName, Role: c.Role}
}

// ListShopReviews handles GET /api/v1/shops/{shopId}/reviews
func (h *ReviewHandler) ListShopReviews(w http.ResponseWriter, r *http.Request) {
	shopID, ok := httputil.ParseUUID(w, chi.URLParam(r, "shopId"))
	if !ok {
		return
	}

	result, err := h.service.ListShopReviews(r.Context(), shopID.String(), pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

// CreateReview handles POST /api/v1/shops/{shopId}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	shopID, ok := httputil.ParseUUID(w, chi.URLParam(r, "shopId"))
	if !ok {
		return
	}

	var req service.CreateReviewInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	actor := actorFrom(r)
	req.ShopID = shopID.String()
	req.AuthorID = actor.UserID
	req.AuthorName = actor.Name

	review, err := h.service.CreateReview(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, review)
}

// GetShopRating handles GET /api/v1/shops/{shopId}/rating
func (h *ReviewHandler) GetShopRating(w http.ResponseWriter, r *http.Request) {
	shopID, ok := httputil.ParseUUID(w, chi.URLParam(r, "shopId"))
	if !ok {
		return
	}

	rating, err := h.service.GetShopRating(r.Context(), shopID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, rating)
}

// UpdateReview handles PATCH /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.UpdateReviewInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	review, err := h.service.UpdateReview(r.Context(), actorFrom(r), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, review)
}

// ReplyToReview handles POST /api/v1/reviews/{id}/reply
func (h *ReviewHandler) ReplyToReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req service.ReplyInput
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	review, err := h.service.ReplyToReview(r.Context(), actorFrom(r), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), actorFrom(r), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BlindReview handles PUT /api/v1/admin/reviews/{id}/blind
func (h *ReviewHandler) BlindReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req BlindRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	review, err := h.service.BlindReview(r.Context(), actorFrom(r), id.String(), req.Blinded)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, review)
}
