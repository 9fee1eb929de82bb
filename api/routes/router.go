package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/beatbazaar/beatbazaar-backend/api/controllers"
	"github.com/beatbazaar/beatbazaar-backend/api/middleware"
	"github.com/beatbazaar/beatbazaar-backend/internal/notifications"
	"github.com/beatbazaar/beatbazaar-backend/internal/orders"
	"github.com/beatbazaar/beatbazaar-backend/internal/wallets"
	"github.com/beatbazaar/beatbazaar-backend/internal/withdrawals"
	"github.com/beatbazaar/beatbazaar-backend/pkg/config"
	"github.com/beatbazaar/beatbazaar-backend/pkg/db"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
	"github.com/beatbazaar/beatbazaar-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *redis.Client
	Metrics       prometheus.Gatherer
	Orders        orders.Service
	Wallets       wallets.Service
	Withdrawals   withdrawals.Service
	Notifications notifications.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	// Keep the idempotency store a nil interface when redis is absent so the
	// middleware's guard can see it.
	var idempotencyStore redis.IdempotencyStore
	var redisPinger redis.Pinger
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		redisPinger = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisPinger))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletStatement(deps.Wallets, cfg.Payout, logg))
			r.Route("/withdrawals", func(r chi.Router) {
				r.Post("/", controllers.RequestWithdrawal(deps.Withdrawals, deps.Wallets, logg))
				r.Get("/", controllers.WithdrawalList(deps.Withdrawals, logg))
				r.Get("/{withdrawalId}", controllers.WithdrawalDetail(deps.Withdrawals, logg))
			})
		})

		r.Get("/notifications", controllers.ListNotifications(deps.Notifications, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/withdrawals/{withdrawalId}/process", controllers.AdminProcessWithdrawal(deps.Withdrawals, logg))
	})

	return r
}
