package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apperp "github.com/erpbridge/backend/internal/application/erp"
	"github.com/erpbridge/backend/internal/domain/erp"
	"github.com/erpbridge/backend/internal/infrastructure/config"
	"github.com/erpbridge/backend/internal/infrastructure/event"
	"github.com/erpbridge/backend/internal/infrastructure/lock"
	"github.com/erpbridge/backend/internal/infrastructure/logger"
	"github.com/erpbridge/backend/internal/infrastructure/migration"
	"github.com/erpbridge/backend/internal/infrastructure/persistence"
	"github.com/erpbridge/backend/internal/infrastructure/scheduler"
	"github.com/erpbridge/backend/internal/infrastructure/telemetry"
	"github.com/erpbridge/backend/internal/interfaces/http/handler"
	"github.com/erpbridge/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: time.RFC3339,
	})
	defer func() { _ = log.Sync() }()

	log.Info("Starting ERP bridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg.Database, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	settlementRepo := persistence.NewGormSettlementRepository(db.DB)
	configRepo := persistence.NewGormErpConfigRepository(db.DB)
	templateRepo := persistence.NewGormSalesTemplateRepository(db.DB)
	mappingRepo := persistence.NewGormFieldMappingRepository(db.DB)
	documentRepo := persistence.NewGormSalesDocumentRepository(db.DB)

	locker, closeLocker := lock.NewOrderLocker(cfg.Redis, log)

	policy, err := deliveryCommissionPolicy(cfg.Commission)
	if err != nil {
		log.Fatal("Invalid commission configuration", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)

	generationService := apperp.NewGenerationService(apperp.GenerationServiceConfig{
		OrderRepo:       orderRepo,
		SettlementRepo:  settlementRepo,
		ConfigRepo:      configRepo,
		TemplateRepo:    templateRepo,
		MappingRepo:     mappingRepo,
		DocumentRepo:    documentRepo,
		TemplateBuilder: erp.NewTemplateLineBuilder(erp.WithDeliveryCommissionPolicy(policy)),
		MappingBuilder:  erp.NewMappingLineBuilder(erp.WithDeliveryCommissionPolicy(policy)),
		Locker:          locker,
		Logger:          log,
	})
	dispatchService := apperp.NewDispatchService(apperp.DispatchServiceConfig{
		DocumentRepo: documentRepo,
		ConfigRepo:   configRepo,
		OrderRepo:    orderRepo,
		Gateways:     newGatewayRegistry(cfg.Ecount, log),
		Locker:       locker,
		Logger:       log,
	})
	generationService.SetEventPublisher(eventBus)
	dispatchService.SetEventPublisher(eventBus)

	queryService := apperp.NewDocumentQueryService(documentRepo)
	autoBatchService := apperp.NewAutoBatchService(configRepo, generationService, dispatchService, log)

	eventBus.Subscribe(apperp.NewOrderShippedHandler(generationService, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	var (
		jobs        handler.BatchJobQueue
		batch       *scheduler.ErpBatchScheduler
		cronTrigger *scheduler.CronTrigger
	)
	if cfg.ErpBatch.Enabled {
		batch, err = scheduler.NewErpBatchScheduler(scheduler.ErpBatchSchedulerConfig{
			MaxConcurrentJobs: cfg.ErpBatch.Workers,
			JobTimeout:        cfg.ErpBatch.JobTimeout,
			QueueSize:         scheduler.DefaultErpBatchSchedulerConfig().QueueSize,
			HistorySize:       cfg.ErpBatch.HistorySize,
		}, autoBatchService, log)
		if err != nil {
			log.Fatal("Failed to create ERP batch scheduler", zap.Error(err))
		}
		if err := batch.Start(ctx); err != nil {
			log.Fatal("Failed to start ERP batch scheduler", zap.Error(err))
		}

		cronTrigger = scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
			Hour:          cfg.ErpBatch.Hour,
			Minute:        cfg.ErpBatch.Minute,
			CheckInterval: cfg.ErpBatch.CheckInterval,
		}, batch, autoBatchService, log)
		if err := cronTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start ERP batch trigger", zap.Error(err))
		}
		jobs = batch
		log.Info("ERP batch scheduler started",
			zap.Int("hour", cfg.ErpBatch.Hour),
			zap.Int("minute", cfg.ErpBatch.Minute),
			zap.Int("workers", cfg.ErpBatch.Workers),
		)
	} else {
		log.Info("ERP batch scheduler disabled")
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		CORSOrigins:    cfg.HTTP.CORSAllowOrigins,
		CORSMethods:    cfg.HTTP.CORSAllowMethods,
		CORSHeaders:    cfg.HTTP.CORSAllowHeaders,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}
	engine.GET("/ready", readinessHandler(db))

	erpHandler := handler.NewErpDocumentHandler(queryService, generationService, dispatchService, autoBatchService, jobs)
	router.NewRouter(engine).Register("/erp", erpHandler).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if cronTrigger != nil {
		if err := cronTrigger.Stop(shutdownCtx); err != nil {
			log.Warn("Failed to stop ERP batch trigger", zap.Error(err))
		}
	}
	if batch != nil {
		if err := batch.Stop(shutdownCtx); err != nil {
			log.Warn("Failed to stop ERP batch scheduler", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Failed to stop event bus", zap.Error(err))
	}
	if err := closeLocker(); err != nil {
		log.Warn("Failed to close Redis client", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Warn("Failed to close database", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateUp applies the embedded migrations on a dedicated connection
func migrateUp(cfg config.DatabaseConfig, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return err
	}
	src, err := migration.EmbeddedSource()
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	// Closing the migrator also closes sqlDB
	m, err := migration.New(sqlDB, src, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	upErr := m.Up()
	if err := m.Close(); err != nil {
		log.Warn("Failed to close migrator", zap.Error(err))
	}
	return upErr
}

// readinessHandler reports whether the database answers
func readinessHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unavailable",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		resp := gin.H{
			"status":   "ready",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			resp["pool"] = stats
		}
		c.JSON(http.StatusOK, resp)
	}
}
