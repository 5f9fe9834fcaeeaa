package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carforsales_backend/internal/appointments"
	apptrepo "carforsales_backend/internal/appointments/repository"
	"carforsales_backend/internal/auth"
	"carforsales_backend/internal/dealers"
	dealerrepo "carforsales_backend/internal/dealers/repository"
	"carforsales_backend/internal/email"
	"carforsales_backend/internal/events"
	"carforsales_backend/internal/gateway"
	"carforsales_backend/internal/geo"
	apphttp "carforsales_backend/internal/http"
	"carforsales_backend/internal/http/router"
	"carforsales_backend/internal/leads"
	"carforsales_backend/internal/notification"
	"carforsales_backend/internal/scheduler"
	"carforsales_backend/internal/vehicles"
	vehiclerepo "carforsales_backend/internal/vehicles/repository"
	"carforsales_backend/internal/webhook"
	"carforsales_backend/platform/config"
	"carforsales_backend/platform/db"
	"carforsales_backend/platform/logger"
	"carforsales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
		log.Info("smtp sender initialized", "host", cfg.GetSMTPHost())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, eventBus, log, val)
	leadsModule := leads.NewModule(pool, eventBus, val, log)
	dealersModule := dealers.NewModule(pool, leadsModule.Service(), val, log)
	vehiclesModule := vehicles.NewModule(pool, val)
	appointmentsModule := appointments.NewModule(pool, leadsModule.Service(), dealersModule.Service(), eventBus, val, log)
	webhookModule := webhook.NewModule(cfg, leadsModule.Service(), val, log)

	// Agent gateway is optional; a nil client is a no-op.
	agentClient := gateway.NewClient(cfg, log)
	if agentClient != nil {
		leadsModule.SetAgentGateway(agentClient)
		log.Info("agent gateway enabled", "url", cfg.GetGatewayURL())
	}

	dealersModule.SetGeocoder(geo.NewService(cfg, log))

	// Email follow-ups need a real sender; the noop sender delivers
	// nothing so it must not count as a delivery path.
	if cfg.GetEmailEnabled() {
		leadsModule.SetFollowUpMailer(sender)
	}

	// Follow-up delivery runs through asynq when Redis is configured.
	if cfg.GetRedisURL() != "" {
		taskClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize task queue client", "error", err)
			panic("failed to initialize task queue client: " + err.Error())
		}
		defer func() { _ = taskClient.Close() }()
		leadsModule.SetFollowUpScheduler(taskClient)
		log.Info("follow-up task queue enabled")
	}

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.NewModule(
		sender,
		leadsModule.Repository(),
		dealerrepo.New(pool),
		vehiclerepo.New(pool),
		apptrepo.New(pool),
		log,
	)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			dealersModule,
			vehiclesModule,
			appointmentsModule,
			webhookModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
