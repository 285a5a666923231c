package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	apppurchasing "github.com/stockledger/backend/internal/application/purchasing"
	"github.com/stockledger/backend/internal/domain/purchasing"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/infrastructure/cache"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stockledger/backend/internal/infrastructure/event"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/infrastructure/scheduler"
	"github.com/stockledger/backend/internal/infrastructure/telemetry"
	"github.com/stockledger/backend/internal/interfaces/http/handler"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"github.com/stockledger/backend/internal/interfaces/http/router"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "stockledger:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		SpanProfiles:      cfg.Telemetry.ProfilingEnabled && cfg.Telemetry.ProfilingSpanProfiles,
	}, bootLog)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}

	// Tee application logs into the OTLP exporter once it exists
	log, err := logger.New(logCfg, providers.ZapCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingBasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingBasicAuthPassword,
		ContentionRate:    cfg.Telemetry.ProfilingContentionRate,
	}, log)
	if err != nil {
		return fmt.Errorf("initialize profiler: %w", err)
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	log.Info("Starting stockledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("auth", cfg.JWT.Enabled),
		zap.Bool("telemetry", providers.IsEnabled()),
		zap.Bool("profiling", profiler.IsEnabled()),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	if err := telemetry.InstrumentDB(db.DB, telemetry.DBTracingConfig{
		Enabled:        cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:         cfg.Database.DBName,
		TracerProvider: otel.GetTracerProvider(),
	}, log); err != nil {
		return err
	}
	meter := providers.Meter("stockledger")
	if reg, err := telemetry.RegisterPoolMetrics(db.DB, meter); err != nil {
		log.Warn("Pool metrics unavailable", zap.Error(err))
	} else {
		defer func() { _ = reg.Unregister() }()
	}

	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore(ctx)
	if err != nil {
		return fmt.Errorf("create idempotency store: %w", err)
	}
	defer func() { _ = store.Close() }()

	bus, err := newEventBus(ctx, store, meter, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := bus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	repos := persistence.NewRepositories(db.DB)
	deps := appinv.ServiceDeps{
		Scope:     persistence.NewGormTransactionScope(db.DB),
		Repos:     repos,
		Clock:     shared.SystemClock{},
		Publisher: bus,
		Logger:    log,
	}
	stockService := appinv.NewStockService(deps)
	reservationService := appinv.NewReservationService(deps, cfg.Reservation.DefaultDurationDays)
	orderService := apppurchasing.NewService(apppurchasing.ServiceDeps{
		Scope:     persistence.NewGormPurchasingTransactionScope(db.DB),
		Repos:     repos,
		Clock:     deps.Clock,
		Publisher: bus,
		Logger:    log,
		Rates: purchasing.TaxRates{
			GSTRate:        cfg.Ledger.GSTRate,
			PriceExcFactor: cfg.Ledger.PriceExcFactor,
		},
	})

	sweeper := scheduler.NewReservationSweeper(scheduler.SweeperConfig{
		Enabled:    cfg.Reservation.SweepEnabled,
		Interval:   cfg.Reservation.SweepInterval,
		RunTimeout: scheduler.DefaultSweeperConfig().RunTimeout,
	}, reservationService, log)
	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("start reservation sweeper: %w", err)
	}
	defer func() {
		if err := sweeper.Stop(context.Background()); err != nil {
			log.Error("Error stopping reservation sweeper", zap.Error(err))
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var jwtService *auth.JWTService
	if cfg.JWT.Enabled {
		jwtService = auth.NewJWTService(cfg.JWT)
	}
	revocations := auth.NewRevocations(store)

	httpCfg := router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		TracingEnabled: providers.IsEnabled(),
		TracerProvider: otel.GetTracerProvider(),
		Meter:          meter,
		Auth: middleware.AuthConfig{
			JWTService:  jwtService,
			Revocations: revocations,
		},
		Idempotency:    store,
		IdempotencyTTL: cfg.HTTP.IdempotencyTTL,
		Logger:         log,
	}
	engine, err := router.NewEngine(httpCfg)
	if err != nil {
		return fmt.Errorf("build http engine: %w", err)
	}

	handler.NewSystemHandler(version, map[string]handler.HealthCheck{
		"database":      db.Ping,
		"database_pool": db.CheckPool,
	}).RegisterRoutes(engine)

	router.NewRouter(engine, router.WithGroupMiddleware(router.APIMiddleware(httpCfg)...)).
		Register(
			handler.NewAuthHandler(revocations),
			handler.NewStockItemHandler(stockService),
			handler.NewCommitmentHandler(appinv.NewCommitmentService(deps)),
			handler.NewReservationHandler(reservationService),
			handler.NewTransferHandler(appinv.NewTransferService(deps)),
			handler.NewAuditHandler(appinv.NewAuditService(deps)),
			handler.NewPurchaseOrderHandler(orderService),
		).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

// newEventBus starts the in-process bus and subscribes the ledger's
// listeners. The low stock handler is wrapped so a replayed event is only
// acted on once.
func newEventBus(ctx context.Context, store shared.IdempotencyStore, meter metric.Meter, log *zap.Logger) (*event.InMemoryEventBus, error) {
	bus := event.NewInMemoryEventBus(log)

	lowStock := event.NewIdempotentHandler(appinv.NewLowStockHandler(log), store, shared.DefaultIdempotencyConfig(), log)
	bus.Subscribe(lowStock)

	metrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create ledger metrics: %w", err)
	}
	bus.Subscribe(metrics)

	if err := bus.Start(ctx); err != nil {
		return nil, fmt.Errorf("start event bus: %w", err)
	}
	log.Info("Event handlers registered", zap.Strings("low_stock_events", lowStock.EventTypes()))
	return bus, nil
}
