package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	ordersmemory "github.com/fcl-labs/fcl-commerce/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/fcl-labs/fcl-commerce/internal/domains/orders/adapters/persistence/postgres"
	ordersports "github.com/fcl-labs/fcl-commerce/internal/domains/orders/ports"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/blockchain"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/notify"
	"github.com/fcl-labs/fcl-commerce/internal/domains/payments/adapters/secrets"
	paymentsapp "github.com/fcl-labs/fcl-commerce/internal/domains/payments/application"
	paymentsports "github.com/fcl-labs/fcl-commerce/internal/domains/payments/ports"
	platformobservability "github.com/fcl-labs/fcl-commerce/internal/platform/observability"
	platformpostgres "github.com/fcl-labs/fcl-commerce/internal/platform/postgres"
	fulfillmentactivities "github.com/fcl-labs/fcl-commerce/internal/platform/temporal/activities/fulfillment"
	fulfillmentwf "github.com/fcl-labs/fcl-commerce/internal/platform/temporal/workflows/fulfillment"
)

func main() {
	ctx := context.Background()
	const serviceName = "commerce-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	orderRepo, cleanupRepo := buildOrderRepository(ctx, logger)
	defer cleanupRepo()

	secretStore := secrets.NewEnvStore()
	fulfiller := paymentsapp.NewFulfiller(
		orderRepo,
		notify.NewLogSender(logger),
		buildRegistrar(ctx, secretStore, logger),
		paymentsapp.WithFulfillerLogger(logger),
	)
	activities := fulfillmentactivities.NewActivities(fulfiller)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, fulfillmentwf.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(fulfillmentwf.Workflow, workflow.RegisterOptions{Name: fulfillmentwf.WorkflowName})
	w.RegisterActivityWithOptions(activities.SendConfirmation, activity.RegisterOptions{Name: fulfillmentwf.SendConfirmationActivityName})
	w.RegisterActivityWithOptions(activities.RegisterCode, activity.RegisterOptions{Name: fulfillmentwf.RegisterCodeActivityName})

	logger.Info("worker listening", slog.String("taskQueue", fulfillmentwf.TaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildOrderRepository(ctx context.Context, logger *slog.Logger) (ordersports.Repository, func()) {
	dsn := os.Getenv("POSTGRES_DSN")
	if strings.TrimSpace(dsn) == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory order repository")
		return ordersmemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Warn("worker failed to connect to postgres (falling back to memory)", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("worker failed to unwrap postgres connection (falling back to memory)", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), func() {}
	}
	logger.Info("worker order repository configured with postgres")
	return orderspostgres.NewRepository(db), func() { _ = sqlDB.Close() }
}

func buildRegistrar(ctx context.Context, store paymentsports.SecretStore, logger *slog.Logger) paymentsports.BlockchainRegistrar {
	baseURL := strings.TrimSpace(os.Getenv("BLOCKCHAIN_BASE_URL"))
	if baseURL == "" {
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
	registrar, err := blockchain.NewClient(baseURL, key, opts...)
	if err != nil {
		logger.Warn("blockchain registration disabled", slog.String("error", err.Error()))
		return nil
	}
	return registrar
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
