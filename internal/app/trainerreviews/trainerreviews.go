// Package trainerreviews собирает зависимости сервиса отзывов и запускает HTTP‑сервер.
package trainerreviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/7BlackFire7/sport-program/internal/config"
	"github.com/7BlackFire7/sport-program/internal/events"
	"github.com/7BlackFire7/sport-program/internal/http/page"
	"github.com/7BlackFire7/sport-program/internal/lib/jwt"
	"github.com/7BlackFire7/sport-program/internal/lib/sl"
	"github.com/7BlackFire7/sport-program/internal/metrics"
	"github.com/7BlackFire7/sport-program/internal/migrations"
	"github.com/7BlackFire7/sport-program/internal/services/auth"
	"github.com/7BlackFire7/sport-program/internal/services/reviews"
	"github.com/7BlackFire7/sport-program/internal/services/trainers"
	"github.com/7BlackFire7/sport-program/internal/session"
	"github.com/7BlackFire7/sport-program/internal/storage/repository"
)

const (
	shutdownTimeout = 15 * time.Second
	amqpRetries     = 3
	amqpRetryDelay  = 2 * time.Second
)

type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	redis     *redis.Client
	publisher *events.AMQPPublisher
}

// New подключается к PostgreSQL, redis и RabbitMQ, накатывает миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "trainerreviews.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	schemaVersion, dirty, err := migrations.Version(db.DB)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("database schema is up to date",
		slog.Uint64("version", uint64(schemaVersion)), slog.Bool("dirty", dirty))

	redisClient, err := session.Connect(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQ.URL != "" {
		p, err := events.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, amqpRetries, amqpRetryDelay)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.publisher = p
		publisher = p
	} else {
		logger.Info("rabbitmq url is empty, review events are disabled")
	}

	view, err := page.NewRenderer()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sessions := session.NewStore(redisClient, cfg.Session.TTL)
	deps := Deps{
		Logger:        logger,
		DB:            db,
		SchemaVersion: schemaVersion,
		Auth:          auth.NewService(db, sessions),
		Reviews:       reviews.NewService(logger, db, publisher),
		Trainers:      trainers.NewService(db),
		Cookies: session.NewCookies(
			jwt.NewJWTMaker(cfg.Session.SecretKey, cfg.Session.TTL),
			cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Secure),
		Metrics:  metrics.New(registry),
		Gatherer: registry,
		View:     view,
		RateRPS:  cfg.RateLimit.RPS,
		Burst:    cfg.RateLimit.Burst,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, deps)

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

// Handler корневой обработчик, нужен для тестов через httptest.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// Close освобождает соединения без запуска сервера.
func (a *App) Close() {
	a.close()
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq publisher", sl.Err(err))
		}
		a.publisher = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
		a.redis = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
		a.db = nil
	}
}
