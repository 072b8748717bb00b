package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/brpay/payment-service/internal/adapters/events"
	"github.com/brpay/payment-service/internal/adapters/postgres"
	"github.com/brpay/payment-service/internal/adapters/secrets"
	"github.com/brpay/payment-service/internal/config"
	"github.com/brpay/payment-service/internal/domain/ports"
	"github.com/brpay/payment-service/internal/gateway"
	paymentHandler "github.com/brpay/payment-service/internal/handlers/payment"
	webhookHandler "github.com/brpay/payment-service/internal/handlers/webhook"
	paymentService "github.com/brpay/payment-service/internal/services/payment"
	webhookService "github.com/brpay/payment-service/internal/services/webhook"
	"github.com/brpay/payment-service/internal/validation"
	"github.com/brpay/payment-service/pkg/middleware"
	"github.com/brpay/payment-service/pkg/observability"
	"github.com/brpay/payment-service/pkg/shutdown"
	"github.com/brpay/payment-service/pkg/timeutil"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger := initLogger(cfg.Logger)
	defer logger.Sync()

	logger.Info("starting payment service",
		zap.String("version", "0.1.0"),
		zap.Int("port", cfg.Server.Port))

	ctx := context.Background()
	clock := timeutil.SystemClock{}

	secretMgr, err := initSecretManager(ctx, cfg.Secrets, logger)
	if err != nil {
		logger.Fatal("failed to initialize secret manager", zap.Error(err))
	}
	resolveSecrets(ctx, cfg, secretMgr, logger)

	dbPool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.Database.ConnectionString(),
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
	}, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	store := postgres.NewPaymentRepository(dbPool, clock, logger)
	paymentGateway := gateway.NewSimulator(gateway.Config{Latency: cfg.Gateway.Latency}, clock, logger)

	eventClient := &http.Client{Timeout: cfg.Events.Timeout}
	publisher := events.NewPublisher(
		events.NewHTTPSender(cfg.Events.StreamEndpoint, cfg.Events.SigningSecret, eventClient),
		events.NewHTTPSender(cfg.Events.QueueEndpoint, cfg.Events.SigningSecret, eventClient),
		logger)

	limiter := validation.NewRateLimiter(cfg.Payments.RateLimitPerMinute, clock)

	threshold, err := decimal.NewFromString(cfg.Payments.HighValueThreshold)
	if err != nil {
		logger.Fatal("invalid high value threshold",
			zap.String("value", cfg.Payments.HighValueThreshold), zap.Error(err))
	}

	paySvc := paymentService.NewService(store, paymentGateway, publisher, limiter, clock, logger,
		paymentService.Config{HighValueThreshold: threshold})
	hookSvc := webhookService.NewService(store, publisher, clock, logger)

	ipLimiter := middleware.NewIPRateLimiter(100, 200)

	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(ipLimiter.Handler)
	paymentHandler.NewHandler(paySvc, logger).RegisterRoutes(router)
	webhookHandler.NewHandler(hookSvc, cfg.Payments.WebhookSecret, logger).RegisterRoutes(router)

	apiServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	healthChecker := observability.NewHealthChecker(dbPool)
	metricsServer := observability.StartMetricsServer(
		fmt.Sprintf("%d", cfg.Server.MetricsPort), healthChecker, logger)

	manager := shutdown.NewManager(logger, cfg.Server.ShutdownTimeout)
	manager.Register("database", func(ctx context.Context) error {
		dbPool.Close()
		return nil
	})
	manager.Register("metrics-server", func(ctx context.Context) error {
		return metricsServer.Shutdown(ctx)
	})
	manager.Register("ip-rate-limiter", func(ctx context.Context) error {
		ipLimiter.Shutdown()
		return nil
	})
	manager.Register("api-server", func(ctx context.Context) error {
		return apiServer.Shutdown(ctx)
	})

	go func() {
		logger.Info("api server listening", zap.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server failed", zap.Error(err))
		}
	}()

	manager.WaitForShutdown()
}

func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func initSecretManager(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) (ports.SecretManager, error) {
	switch cfg.Backend {
	case "aws":
		return secrets.NewAWSSecretsManager(ctx, secrets.AWSConfig{
			Region:   cfg.AWSRegion,
			CacheTTL: 5 * time.Minute,
		}, logger)
	case "vault":
		return secrets.NewVaultSecretManager(secrets.VaultConfig{
			Address:   cfg.VaultAddress,
			Token:     cfg.VaultToken,
			MountPath: cfg.VaultMount,
		}, logger)
	default:
		return secrets.NewEnvSecretManager(), nil
	}
}

// resolveSecrets fills config values left blank from the secret
// backend. Missing secrets are logged and left blank so local setups
// without a backend still start.
func resolveSecrets(ctx context.Context, cfg *config.Config, mgr ports.SecretManager, logger *zap.Logger) {
	lookup := func(name string, target *string) {
		if *target != "" {
			return
		}
		value, err := mgr.GetSecret(ctx, name)
		if err != nil {
			logger.Warn("secret not resolved", zap.String("name", name), zap.Error(err))
			return
		}
		*target = value
	}

	lookup("payments/db-password", &cfg.Database.Password)
	lookup("payments/webhook-secret", &cfg.Payments.WebhookSecret)
	lookup("payments/event-signing-secret", &cfg.Events.SigningSecret)
}
