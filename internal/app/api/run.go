// Package api boots the commerce HTTP API process.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	ordersmemory "github.com/fcl-labs/fcl-commerce/internal/domains/orders/adapters/memory"
	ordersobs "github.com/fcl-labs/fcl-commerce/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/fcl-labs/fcl-commerce/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/fcl-labs/fcl-commerce/internal/domains/orders/application"
	ordersports "github.com/fcl-labs/fcl-commerce/internal/domains/orders/ports"
	"github.com/fcl-labs/fcl-commerce/internal/domains/orders/redemption"

	ordersdomain "github.com/fcl-labs/fcl-commerce/internal/domains/orders/domain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/blockchain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/notify"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/providers/coinbase"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/providers/nowpayments"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/providers/stripecard"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/secrets"
	paymentsworkflows "github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/workflows"
	paymentsapp "github.com/fcl-labs/fcl-commerce/internal/domains/payments/application"
	paymentsports "github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"

	"github.com/fcl-labs/fcl-commerce/internal/httpapi"
	platformobservability "github.com/fcl-labs/fcl-commerce/internal/platform/observability"
	platformpostgres "github.com/fcl-labs/fcl-commerce/internal/platform/postgres"
)

// Run boots the commerce HTTP API with observability, repositories, payment
// providers, and fulfillment orchestration wired.
func Run(ctx context.Context) error {
	const serviceName = "commerce-api"
	cfg := LoadConfig()

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	orderRepo, cleanupRepo := buildOrderRepository(ctx, cfg, logger)
	defer cleanupRepo()

	orderService := ordersobs.New(
		ordersapp.NewService(orderRepo, ordersapp.WithTotalsValidation(cfg.OrderTotalsValidation)),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	secretStore := secrets.NewEnvStore()
	fulfiller := paymentsapp.NewFulfiller(
		orderRepo,
		notify.NewLogSender(logger),
		buildRegistrar(ctx, cfg, secretStore, logger),
		paymentsapp.WithFulfillerLogger(logger),
	)

	var orchestrator paymentsports.FulfillmentOrchestrator = paymentsworkflows.NewInlineFulfillment(fulfiller)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, running fulfillment inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orchestrator = paymentsworkflows.NewTemporalFulfillment(temporalClient)
		logger.Info("Temporal fulfillment enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	processor := paymentsapp.NewProcessor(
		orderRepo,
		redemption.NewGenerator(),
		orchestrator,
		paymentsapp.WithLogger(logger),
	)

	checkout := paymentsapp.NewCheckoutService(
		orderRepo,
		buildProviders(ctx, cfg, secretStore, logger),
		paymentsapp.WithCheckoutLogger(logger),
	)

	router := httpapi.NewRouter(httpapi.Handlers{
		Orders:   httpapi.NewOrderHandlers(orderService, checkout),
		Webhooks: httpapi.NewWebhookHandlers(processor, secretStore, httpapi.WithWebhookLogger(logger)),
	})
	router.Use(otelgin.Middleware(serviceName))

	addr := ":" + cfg.Port
	logger.Info("commerce API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("commerce API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func buildOrderRepository(ctx context.Context, cfg Config, logger *slog.Logger) (ordersports.Repository, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory order repository")
		return ordersmemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), func() {}
	}
	logger.Info("order repository configured with postgres")
	return orderspostgres.NewRepository(db), func() { _ = sqlDB.Close() }
}

// buildProviders assembles the payment provider clients whose credentials are
// configured. A missing secret skips that provider rather than failing boot.
func buildProviders(ctx context.Context, cfg Config, store paymentsports.SecretStore, logger *slog.Logger) map[ordersdomain.PaymentMethod]paymentsports.Provider {
	providers := make(map[ordersdomain.PaymentMethod]paymentsports.Provider)

	if key, err := store.Get(ctx, secrets.StripeSecretKey); err != nil {
		logger.Warn("stripe provider disabled", slog.String("error", err.Error()))
	} else if adapter, err := stripecard.New(key); err != nil {
		logger.Warn("stripe provider disabled", slog.String("error", err.Error()))
	} else {
		providers[ordersdomain.MethodStripe] = adapter
	}

	if key, err := store.Get(ctx, secrets.CoinbaseAPIKey); err != nil {
		logger.Warn("coinbase provider disabled", slog.String("error", err.Error()))
	} else if cbClient, err := coinbase.NewClient(key); err != nil {
		logger.Warn("coinbase provider disabled", slog.String("error", err.Error()))
	} else {
		providers[ordersdomain.MethodCoinbase] = cbClient
	}

	if key, err := store.Get(ctx, secrets.NOWPaymentsAPIKey); err != nil {
		logger.Warn("nowpayments provider disabled", slog.String("error", err.Error()))
	} else if npClient, err := nowpayments.NewClient(key, cfg.NOWPaymentsIPNURL); err != nil {
		logger.Warn("nowpayments provider disabled", slog.String("error", err.Error()))
	} else {
		providers[ordersdomain.MethodNOWPayments] = npClient
	}

	if len(providers) == 0 {
		logger.Warn("no payment providers configured, checkout will reject payment creation")
	}
	return providers
}

// buildRegistrar constructs the blockchain anchoring client when configured.
// Returns nil otherwise; the fulfiller treats a nil registrar as a no-op.
func buildRegistrar(ctx context.Context, cfg Config, store paymentsports.SecretStore, logger *slog.Logger) paymentsports.BlockchainRegistrar {
	if cfg.BlockchainBaseURL == "" {
		logger.Info("blockchain registration disabled, BLOCKCHAIN_BASE_URL not set")
		return nil
	}
	key, err := store.Get(ctx, secrets.BlockchainAPIKey)
	if err != nil {
		logger.Warn("blockchain registration disabled", slog.String("error", err.Error()))
		return nil
	}
	opts := []blockchain.Option{}
	if network, err := store.Get(ctx, secrets.BlockchainNetwork); err == nil {
		opts = append(opts, blockchain.WithNetwork(network))
	}
	registrar, err := blockchain.NewClient(cfg.BlockchainBaseURL, key, opts...)
	if err != nil {
		logger.Warn("blockchain registration disabled", slog.String("error", err.Error()))
		return nil
	}
	return registrar
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
