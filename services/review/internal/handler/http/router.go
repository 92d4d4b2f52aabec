package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/health"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/service"
)

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(
	reviewService *service.ReviewService,
	healthHandler *health.Handler,
	tokens middleware.TokenValidator,
	cors middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cors))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing("review"))
	r.Use(middleware.PrometheusMetrics("review"))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewReviewHandler(reviewService, logger)
	authenticated := middleware.Auth(tokens)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/shops/{shopId}", func(r chi.Router) {
			r.Get("/reviews", h.ListShopReviews)
			r.Get("/rating", h.GetShopRating)
			r.With(authenticated).Post("/reviews", h.CreateReview)
		})

		r.Route("/reviews/{id}", func(r chi.Router) {
			r.Use(authenticated)
			r.Patch("/", h.UpdateReview)
			r.Delete("/", h.DeleteReview)
			r.With(middleware.RequireRole(middleware.RoleOwner, middleware.RoleAdmin)).
				Post("/reply", h.ReplyToReview)
		})

		r.With(authenticated, middleware.RequireRole(middleware.RoleAdmin)).
			Put("/admin/reviews/{id}/blind", h.BlindReview)
	})

	return r
}
