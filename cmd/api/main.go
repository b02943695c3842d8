package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk/internal/api/http"
	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/iplookup"
	"github.com/spec-kit/helpdesk/internal/live"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/persistence"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
	"github.com/spec-kit/helpdesk/internal/worker"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.Pool == nil && cfg.App.Env == "production" {
		logger.Fatal("POSTGRES_DSN is required in production")
	}

	if pg.Pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	ticketRepo := repository.NewTicketRepository(pg.Pool)
	userRepo := repository.NewUserRepository(pg.Pool)
	reportRepo := repository.NewReportRepository(pg.Pool)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		IPResolver:  iplookup.NewResolver(cfg.IPLookup.URL, cfg.IPLookup.Timeout(), logger),
		Logger:      logger,
		MaxAge:      cfg.Retention.MaxAge(),
		SweepOnLoad: cfg.Retention.SweepOnLoad,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo: reportRepo,
		Cache:      redis.Client,
		CacheTTL:   cfg.Report.CacheTTL(),
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	sessions := auth.NewRedisSessionStore(redis.Client)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:     userRepo,
		SessionStore: sessions,
		TokenManager: tokens,
	})

	worker.StartNotificationWorker(dispatcher, notificationService, reportService)
	hub := live.NewHub(16, logger)
	hub.Register(dispatcher)

	if pg.Pool != nil {
		listener := worker.NewChangeListener(worker.ChangeListenerConfig{
			Pool:           pg.Pool,
			Dispatcher:     dispatcher,
			ReconnectDelay: cfg.Live.ReconnectDelay(),
			Logger:         logger,
			Metrics:        metrics,
		})
		go listener.Run(ctx)
		go worker.NewRetentionWorker(ticketService, cfg.Retention.SweepInterval(), logger).Run(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Reports:        handlers.NewReportsHandler(reportService),
		Live:           handlers.NewLiveHandler(hub, logger),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
