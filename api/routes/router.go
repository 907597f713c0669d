package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tablemesh/kds-backend/api/controllers"
	"github.com/tablemesh/kds-backend/api/middleware"
	"github.com/tablemesh/kds-backend/internal/handover"
	"github.com/tablemesh/kds-backend/internal/realtime"
	"github.com/tablemesh/kds-backend/internal/tickets"
	"github.com/tablemesh/kds-backend/pkg/config"
	"github.com/tablemesh/kds-backend/pkg/logger"
)

// NewRouter wires the HTTP surface. Everything below /health and /metrics
// requires a staff token; handover routes additionally demand a role that may
// own orders.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cacheP controllers.Pinger,
	registry *prometheus.Registry,
	ticketsService tickets.Service,
	handoverService handover.Service,
	stream *realtime.StreamHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cacheP, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/kds", func(r chi.Router) {
			r.Get("/orders", controllers.KDSOrders(ticketsService, logg))
			r.Get("/stream", controllers.KDSStream(stream, logg))
		})

		r.Route("/orders/{id}", func(r chi.Router) {
			r.Get("/", controllers.OrderDetail(ticketsService, logg))
			r.Post("/tickets", controllers.CreateTickets(ticketsService, logg))
			r.Post("/status", controllers.SetOrderStatus(ticketsService, logg))
		})

		r.Patch("/order-items/{itemId}/status", controllers.UpdateItemStatus(ticketsService, logg))
		r.Post("/tickets/{ticketId}/ready", controllers.MarkTicketReady(ticketsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireHandoverEligible(logg))
			r.Get("/handover/my-orders", controllers.HandoverMyOrders(handoverService, logg))
			r.Post("/handover/reassign", controllers.HandoverReassign(handoverService, logg))
			r.Get("/staff", controllers.HandoverStaff(handoverService, logg))
		})
	})

	return r
}
