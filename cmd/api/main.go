package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/call-console/internal/api/http"
	"github.com/spec-kit/call-console/internal/api/http/handlers"
	"github.com/spec-kit/call-console/internal/config"
	"github.com/spec-kit/call-console/internal/events"
	"github.com/spec-kit/call-console/internal/observability"
	"github.com/spec-kit/call-console/internal/persistence"
	"github.com/spec-kit/call-console/internal/repository"
	"github.com/spec-kit/call-console/internal/service"
	"github.com/spec-kit/call-console/internal/store"
	"github.com/spec-kit/call-console/internal/ticketing"
	"github.com/spec-kit/call-console/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	projection := store.New()
	tracker := store.NewStatusTracker()

	var callRepo repository.CallRepository
	if pool := pg.PoolHandle(); pool != nil {
		callRepo = repository.NewPostgresCallRepository(pool)
	} else {
		logger.Warn("running with in-memory call repository")
		callRepo = repository.NewMemoryCallRepository()
	}

	var source events.Source
	switch cfg.Monitor.Source {
	case "polling":
		source = events.NewPollingSource(callRepo, cfg.Monitor.PollInterval(), logger)
	default:
		source = events.NewRedisSource(redis.Client, cfg.Redis.CallsChannel, cfg.Redis.SegmentsChannel, logger, metrics)
	}

	monitor := service.NewMonitorService(service.MonitorDependencies{
		Store:   projection,
		Tracker: tracker,
		Repo:    callRepo,
		Source:  source,
		Metrics: metrics,
		Logger:  logger,
	})
	if err := monitor.Start(ctx); err != nil {
		logger.Error("failed to start realtime monitor", zap.Error(err))
	}
	defer monitor.Stop()

	stopRefresher := worker.StartSnapshotRefresher(ctx, monitor, cfg.Monitor.RefreshInterval(), logger)
	defer stopRefresher()

	ticketClient := ticketing.NewHTTPClient(cfg.Ticketing.BaseURL, cfg.Ticketing.APIKey, cfg.Ticketing.Timeout(), logger)
	ticketService := service.NewTicketService(projection, callRepo, ticketClient, logger)
	notesService := service.NewNotesService(projection, callRepo, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Calls:  handlers.NewCallsHandler(projection, callRepo, ticketService, notesService),
		Status: handlers.NewStatusHandler(tracker, metrics),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
