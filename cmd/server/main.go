package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	httpapi "signup/internal/http"
	"signup/internal/i18n"
	"signup/internal/notification"
	"signup/internal/platform/config"
	"signup/internal/platform/httpserver"
	"signup/internal/platform/logger"
	"signup/internal/platform/metrics"
	"signup/internal/platform/redis"
	"signup/internal/ratelimit"
	"signup/internal/user"
	"signup/internal/user/secrets"
	"signup/internal/user/service"
	"signup/internal/user/store/account"
)

const (
	startupTimeout     = 15 * time.Second
	rateLimitSweepTick = time.Minute
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("signup stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancelStart := context.WithTimeout(ctx, startupTimeout)
	defer cancelStart()

	localizer, err := i18n.New()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	accounts, checks, closeStore, err := buildAccountStore(startCtx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	redisClient, err := redis.New(startCtx, cfg.Redis)
	if err != nil {
		return err
	}
	var memLimits *ratelimit.InMemoryStore
	var limitStore ratelimit.Store
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		checks["redis"] = redisClient.Health
		limitStore = ratelimit.NewRedisStore(redisClient)
		log.Info("rate limits stored in redis")
	} else {
		memLimits = ratelimit.NewInMemoryStore()
		limitStore = memLimits
	}

	sender, closeSender, err := buildSender(startCtx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSender()

	dispatcher := notification.NewDispatcher(sender,
		notification.WithLogger(log),
		notification.WithMetrics(m),
		notification.WithWorkers(cfg.Notify.Workers),
		notification.WithQueueSize(cfg.Notify.QueueSize),
		notification.WithSendTimeout(cfg.Notify.Timeout),
		notification.WithDrainTimeout(cfg.ShutdownTimeout),
	)

	svc := user.NewService(accounts, localizer, dispatcher,
		service.WithHasher(secrets.NewHasher(cfg.BcryptCost)),
		service.WithLogger(log),
		service.WithMetrics(m),
	)
	limiter := ratelimit.NewLimiter(limitStore, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Metrics:   m,
		Gatherer:  reg,
		Locales:   localizer,
		Users:     user.NewHandler(svc, log),
		RateLimit: ratelimit.NewMiddleware(limiter, log, ratelimit.WithDisabled(cfg.RateLimit.Disabled), ratelimit.WithMetrics(m)),
		Checks:    checks,
	})
	srv := httpserver.New(cfg.Addr, router)

	// The dispatcher stops only after the server has drained, then sends what
	// is still queued for up to ShutdownTimeout before dropping the rest.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(dispatchCtx)
	})
	g.Go(func() error {
		log.Info("starting signup", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		stopDispatch()
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("signup stopped")
		return nil
	})
	if memLimits != nil {
		g.Go(func() error {
			ticker := time.NewTicker(rateLimitSweepTick)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					memLimits.Sweep(cfg.RateLimit.Window)
				}
			}
		})
	}
	return g.Wait()
}

// buildAccountStore picks PostgreSQL when DATABASE_URL is set and the
// in-memory store otherwise.
func buildAccountStore(ctx context.Context, cfg config.Server, log *slog.Logger) (service.AccountStore, map[string]httpapi.HealthCheck, func(), error) {
	checks := map[string]httpapi.HealthCheck{}
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, accounts are kept in memory")
		return account.NewInMemory(), checks, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := account.NewPostgres(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	checks["postgres"] = db.PingContext
	log.Info("accounts stored in postgres")
	return store, checks, func() { _ = db.Close() }, nil
}

// buildSender prefers Kafka, then SMTP, and falls back to logging messages.
func buildSender(ctx context.Context, cfg config.Server, log *slog.Logger) (notification.Sender, func(), error) {
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		sender, err := notification.NewKafkaSender(cfg.Kafka)
		if err != nil {
			return nil, nil, err
		}
		if err := sender.EnsureTopic(ctx, 1, 1); err != nil {
			sender.Close()
			return nil, nil, err
		}
		log.Info("activation emails published to kafka", "topic", cfg.Kafka.Topic)
		return sender, sender.Close, nil
	case cfg.SMTP.Host != "":
		log.Info("activation emails sent over smtp", "host", cfg.SMTP.Host)
		return notification.NewSMTPSender(cfg.SMTP), func() {}, nil
	default:
		log.Warn("no mail transport configured, activation emails are only logged")
		return notification.NewLogSender(log), func() {}, nil
	}
}
