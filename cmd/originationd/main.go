package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/optic/loan-origination/internal/application/usecase"
	"github.com/optic/loan-origination/internal/domain/port"
	"github.com/optic/loan-origination/internal/domain/service"
	"github.com/optic/loan-origination/internal/infrastructure/adapter"
	"github.com/optic/loan-origination/internal/infrastructure/config"
	"github.com/optic/loan-origination/internal/infrastructure/kafka"
	pgRepo "github.com/optic/loan-origination/internal/infrastructure/persistence/postgres"
	"github.com/optic/loan-origination/internal/infrastructure/telemetry"
	grpcPresentation "github.com/optic/loan-origination/internal/presentation/grpc"
	"github.com/optic/loan-origination/internal/presentation/rest"
	"github.com/optic/loan-origination/pkg/auth"
	pkgkafka "github.com/optic/loan-origination/pkg/kafka"
	"github.com/optic/loan-origination/pkg/observability"
	pkgpostgres "github.com/optic/loan-origination/pkg/postgres"
	"github.com/optic/loan-origination/pkg/tlsutil"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	switch {
	case opts.genDevCerts != "":
		err = genDevCerts(opts.genDevCerts, opts.hosts, opts.certTTL, os.Stdout)
	case opts.migrateDown:
		err = migrateDown(config.Load())
	default:
		err = run()
	}
	if err != nil {
		slog.Error("originationd exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting originationd",
		"environment", cfg.Environment,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPC.Port,
	)

	// Tracing is optional.
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
			SampleRatio: cfg.TraceSampling,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return err
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	// Database connection.
	dbCfg := dbConfig(cfg)
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	dbCancel()
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if cfg.DB.Migrate {
		if err := pkgpostgres.RunMigrations(dbCfg.DSN(), pgRepo.Migrations, pgRepo.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Wire infrastructure adapters.
	appRepo := pgRepo.NewLoanApplicationRepo(pool)
	clientRepo := pgRepo.NewClientRepo(pool)
	userRepo := pgRepo.NewUserRepo(pool)
	dashboardRepo := pgRepo.NewDashboardRepo(pool)

	publisher, closePublisher, err := newPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	gateway, riskCache, closeGateway, err := newRiskGateway(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeGateway()

	rates, err := service.NewRiskRateTable(cfg.Rates.Low, cfg.Rates.Medium, cfg.Rates.High)
	if err != nil {
		return fmt.Errorf("rate table: %w", err)
	}
	engine := service.NewLoanDecisionEngine(rates)

	recorder, err := telemetry.NewDecisionMetrics(meterProvider.Meter("github.com/optic/loan-origination"))
	if err != nil {
		return err
	}

	jwtSvc, err := newJWTService(cfg.JWT)
	if err != nil {
		return fmt.Errorf("initialize JWT service: %w", err)
	}

	// Wire use cases.
	simulateUC := usecase.NewSimulateLoanUseCase(clientRepo, gateway, engine, recorder, logger)
	createUC := usecase.NewCreateLoanApplicationUseCase(appRepo, clientRepo, gateway, engine, publisher, recorder, logger)
	recomputeUC := usecase.NewRecomputeLoanApplicationUseCase(appRepo, clientRepo, engine.Rates(), publisher)
	getAppUC := usecase.NewGetApplicationUseCase(appRepo, clientRepo)
	searchAppsUC := usecase.NewSearchApplicationsUseCase(appRepo, clientRepo)
	deleteAppUC := usecase.NewDeleteLoanApplicationUseCase(appRepo)

	tokens := adapter.NewJWTTokenIssuer(jwtSvc)
	hasher := adapter.BcryptHasher{}

	restHandler := rest.NewHandler(rest.UseCases{
		Simulate:          simulateUC,
		CreateApplication: createUC,
		Recompute:         recomputeUC,
		GetApplication:    getAppUC,
		SearchApps:        searchAppsUC,
		Schedule:          usecase.NewGetScheduleUseCase(appRepo),
		DeleteApplication: deleteAppUC,
		RegisterClient:    usecase.NewRegisterClientUseCase(clientRepo, publisher),
		GetClient:         usecase.NewGetClientUseCase(clientRepo),
		SearchClients:     usecase.NewSearchClientsUseCase(clientRepo),
		UpdateClient:      usecase.NewUpdateClientUseCase(clientRepo, riskCache, logger),
		DeleteClient:      usecase.NewDeleteClientUseCase(clientRepo),
		RegisterUser:      usecase.NewRegisterUserUseCase(userRepo, hasher, tokens),
		Login:             usecase.NewLoginUseCase(userRepo, hasher, tokens),
		Dashboard:         usecase.NewGetDashboardUseCase(dashboardRepo),
	}, logger)

	// gRPC server.
	grpcHandler := grpcPresentation.NewOriginationHandler(grpcPresentation.UseCases{
		Simulate:          simulateUC,
		CreateApplication: createUC,
		GetApplication:    getAppUC,
		Recompute:         recomputeUC,
		SearchApps:        searchAppsUC,
		DeleteApplication: deleteAppUC,
	}, logger)
	grpcServer := grpcPresentation.NewServer(grpcHandler, logger, jwtSvc, grpcPresentation.ServerConfig{
		TLSCertFile: cfg.GRPC.TLSCertFile,
		TLSKeyFile:  cfg.GRPC.TLSKeyFile,
		Reflection:  cfg.GRPC.Reflection,
	})

	// HTTP server.
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Handler:       restHandler,
			Health:        rest.NewHealthHandler(cfg.ServiceName, pool, logger),
			Metrics:       metricsHandler,
			JWT:           jwtSvc,
			PublicLimiter: rest.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
			Logger:        logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
	if cfg.HTTP.TLSEnabled() {
		tlsCfg, err := tlsutil.LoadServerConfig(cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("load HTTP TLS: %w", err)
		}
		httpServer.TLSConfig = tlsCfg
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "addr", httpServer.Addr, "tls", httpServer.TLSConfig != nil)
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("originationd stopped")
	return serveErr
}

// newPublisher returns a Kafka publisher when brokers are configured and a
// log-only publisher otherwise.
func newPublisher(cfg config.KafkaConfig, logger *slog.Logger) (port.EventPublisher, func(), error) {
	if !cfg.Enabled() {
		logger.Info("no kafka brokers configured, logging domain events instead")
		return kafka.NewLogPublisher(logger), func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers:       cfg.Brokers,
		TLS:           cfg.TLS,
		SASLEnabled:   cfg.SASLUsername != "",
		SASLMechanism: cfg.SASLMechanism,
		SASLUsername:  cfg.SASLUsername,
		SASLPassword:  cfg.SASLPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka producer: %w", err)
	}
	closeFn := func() {
		if err := producer.Close(); err != nil {
			logger.Error("kafka producer close error", "error", err)
		}
	}
	return kafka.NewEventPublisher(producer, cfg.Topic, logger), closeFn, nil
}

// newRiskGateway builds the risk validation client, wrapped in a Redis cache
// when one is configured. The cache is nil otherwise.
func newRiskGateway(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.RiskValidationGateway, port.RiskCache, func(), error) {
	var gateway port.RiskValidationGateway
	if cfg.RiskGateway.Stub {
		logger.Warn("using stub risk validation gateway")
		gateway = adapter.NewStubRiskGateway()
	} else {
		gateway = adapter.NewHTTPRiskGateway(adapter.RiskGatewayConfig{
			BaseURL:    cfg.RiskGateway.URL,
			Timeout:    cfg.RiskGateway.Timeout,
			MaxRetries: cfg.RiskGateway.MaxRetries,
		}, nil)
	}

	if !cfg.Redis.Enabled() {
		return gateway, nil, func() {}, nil
	}

	rdb, err := adapter.NewRedisClient(ctx, adapter.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("risk answers cached in redis", "ttl", cfg.Redis.TTL)
	cached := adapter.NewCachedRiskGateway(gateway, rdb, cfg.Redis.TTL, logger)
	return cached, cached, func() { _ = rdb.Close() }, nil
}

// newJWTService prefers an RSA private key and falls back to the HMAC secret.
func newJWTService(cfg config.JWTConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{
		Issuer:     cfg.Issuer,
		Expiration: cfg.Expiration,
	}
	switch {
	case cfg.PrivateKey != "":
		jwtCfg.PrivateKeyPEM = cfg.PrivateKey
	case cfg.PrivateKeyFile != "":
		keyData, err := auth.LoadKeyFromFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load JWT private key file: %w", err)
		}
		jwtCfg.PrivateKeyPEM = string(keyData)
	default:
		jwtCfg.Secret = cfg.Secret
	}
	return auth.NewJWTService(jwtCfg)
}
