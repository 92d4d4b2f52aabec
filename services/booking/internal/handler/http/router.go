package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/health"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/service"
)

// RouterConfig tunes the booking routes.
type RouterConfig struct {
	CORS        middleware.CORSConfig
	CommitRPS   float64
	CommitBurst int
}

// NewRouter creates a chi router with all booking service routes registered.
func NewRouter(
	bookingService *service.BookingService,
	healthHandler *health.Handler,
	tokens middleware.TokenValidator,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing("booking"))
	r.Use(middleware.PrometheusMetrics("booking"))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewBookingHandler(bookingService, logger)
	authenticated := middleware.Auth(tokens)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/shops", func(r chi.Router) {
			r.With(authenticated, middleware.RequireRole(middleware.RoleOwner, middleware.RoleAdmin)).
				Post("/", h.CreateShop)

			r.Route("/{shopId}", func(r chi.Router) {
				r.Get("/", h.GetShop)
				r.Get("/slots", h.ListSlots)

				r.Group(func(r chi.Router) {
					r.Use(authenticated, middleware.RequireRole(middleware.RoleOwner, middleware.RoleAdmin))
					r.Put("/slots", h.ConfigureSlots)
					r.Get("/reservations", h.ListShopReservations)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.With(
				middleware.RequireRole(middleware.RoleCustomer),
				middleware.RateLimit(cfg.CommitRPS, cfg.CommitBurst, logger),
			).Post("/reservations", h.CommitReservation)
			r.Get("/reservations/{id}", h.GetReservation)
			r.Patch("/reservations/{id}/status", h.UpdateStatus)
			r.Get("/me/reservations", h.ListMyReservations)
		})
	})

	return r
}
