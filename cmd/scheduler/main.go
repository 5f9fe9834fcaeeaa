package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	apptrepo "carforsales_backend/internal/appointments/repository"
	dealerrepo "carforsales_backend/internal/dealers/repository"
	"carforsales_backend/internal/email"
	"carforsales_backend/internal/events"
	"carforsales_backend/internal/gateway"
	"carforsales_backend/internal/leads"
	"carforsales_backend/internal/notification"
	"carforsales_backend/internal/scheduler"
	vehiclerepo "carforsales_backend/internal/vehicles/repository"
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
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
	}

	// Worker-side leads wiring (no HTTP handlers required).
	leadsModule := leads.NewModule(pool, eventBus, val, log)
	if agentClient := gateway.NewClient(cfg, log); agentClient != nil {
		leadsModule.SetAgentGateway(agentClient)
	}
	// Email follow-ups need a real sender; the noop sender delivers
	// nothing so it must not count as a delivery path.
	if cfg.GetEmailEnabled() {
		leadsModule.SetFollowUpMailer(sender)
	}

	notificationModule := notification.NewModule(
		sender,
		leadsModule.Repository(),
		dealerrepo.New(pool),
		vehiclerepo.New(pool),
		apptrepo.New(pool),
		log,
	)
	notificationModule.RegisterHandlers(eventBus)

	worker, err := scheduler.NewWorker(cfg, leadsModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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
