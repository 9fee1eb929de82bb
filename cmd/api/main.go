package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/beatbazaar/beatbazaar-backend/api/routes"
	"github.com/beatbazaar/beatbazaar-backend/internal/catalog"
	"github.com/beatbazaar/beatbazaar-backend/internal/notifications"
	"github.com/beatbazaar/beatbazaar-backend/internal/orders"
	"github.com/beatbazaar/beatbazaar-backend/internal/payments"
	"github.com/beatbazaar/beatbazaar-backend/internal/subscriptions"
	"github.com/beatbazaar/beatbazaar-backend/internal/verification"
	"github.com/beatbazaar/beatbazaar-backend/internal/wallets"
	"github.com/beatbazaar/beatbazaar-backend/internal/withdrawals"
	"github.com/beatbazaar/beatbazaar-backend/pkg/config"
	"github.com/beatbazaar/beatbazaar-backend/pkg/db"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	"github.com/beatbazaar/beatbazaar-backend/pkg/khalti"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
	"github.com/beatbazaar/beatbazaar-backend/pkg/metrics"
	"github.com/beatbazaar/beatbazaar-backend/pkg/redis"
	"github.com/beatbazaar/beatbazaar-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	providers := map[enums.PaymentMethod]payments.Provider{}
	if cfg.Khalti.SecretKey != "" {
		khaltiClient, err := khalti.NewClient(ctx, cfg.Khalti, logg)
		if err != nil {
			logg.Error(ctx, "failed to create khalti client", err)
			os.Exit(1)
		}
		khaltiProvider, err := payments.NewKhaltiProvider(khaltiClient)
		if err != nil {
			logg.Error(ctx, "failed to create khalti provider", err)
			os.Exit(1)
		}
		providers[enums.PaymentMethodKhalti] = khaltiProvider
	}
	if cfg.Stripe.APIKey != "" {
		stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			logg.Error(ctx, "failed to create stripe client", err)
			os.Exit(1)
		}
		stripeProvider, err := payments.NewStripeProvider(stripeClient)
		if err != nil {
			logg.Error(ctx, "failed to create stripe provider", err)
			os.Exit(1)
		}
		providers[enums.PaymentMethodCard] = stripeProvider
	}

	verifier, err := payments.NewVerifier(providers, pipelineMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create payment verifier", err)
		os.Exit(1)
	}

	walletsSvc, err := wallets.NewService(wallets.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create wallets service", err)
		os.Exit(1)
	}

	notifier, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		os.Exit(1)
	}

	shares, err := subscriptions.NewShareResolver(subscriptions.NewRepository(dbClient.DB()), cfg.Payout)
	if err != nil {
		logg.Error(ctx, "failed to create share resolver", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(orders.Deps{
		Repo:     orders.NewRepository(dbClient.DB()),
		Catalog:  catalog.NewRepository(dbClient.DB()),
		Wallets:  walletsSvc,
		Shares:   shares,
		Verifier: verifier,
		Runner:   dbClient,
		Notifier: notifier,
		Metrics:  pipelineMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	withdrawalsSvc, err := withdrawals.NewService(withdrawals.Deps{
		Repo:         withdrawals.NewRepository(dbClient.DB()),
		Wallets:      walletsSvc,
		WalletRepo:   wallets.NewRepository(dbClient.DB()),
		Verification: verification.NewRepository(dbClient.DB()),
		Runner:       dbClient,
		Notifier:     notifier,
		Metrics:      pipelineMetrics,
		Logger:       logg,
		Payout:       cfg.Payout,
	})
	if err != nil {
		logg.Error(ctx, "failed to create withdrawals service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Metrics:       registry,
			Orders:        ordersSvc,
			Wallets:       walletsSvc,
			Withdrawals:   withdrawalsSvc,
			Notifications: notifier,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
