package appointmentscheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	// регистрирует swagger-спецификацию для /docs
	_ "github.com/magabrotheeeer/appointment-scheduler/docs"
	"github.com/magabrotheeeer/appointment-scheduler/internal/cache"
	"github.com/magabrotheeeer/appointment-scheduler/internal/config"
	"github.com/magabrotheeeer/appointment-scheduler/internal/http/handlers/health"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/datefmt"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/jwt"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/appointment-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/appointment-scheduler/internal/migrations"
	"github.com/magabrotheeeer/appointment-scheduler/internal/models"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/appointment"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/auth"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/availability"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/files"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/notification"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/provider"
	"github.com/magabrotheeeer/appointment-scheduler/internal/services/queue"
	"github.com/magabrotheeeer/appointment-scheduler/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилища, применяет миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "appointmentscheduler.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange, rabbitmq.JobQueues(cfg.RabbitMQ.DeliveryLimit, models.CancellationMailKey))
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dates := datefmt.New(cfg.Locale)
	if dates.Locale() != cfg.Locale {
		logger.Warn("unsupported locale, using default", slog.String("locale", cfg.Locale), slog.String("default", dates.Locale()))
	}
	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	notifier := notification.New(cacheRedis, logger)
	dispatcher := queue.New(ch, cfg.RabbitMQ.Exchange, logger)
	providers := provider.New(db, cacheRedis, cfg.PublicURL, logger)

	services := Services{
		Auth:      auth.New(db, tokens, logger),
		Tokens:    tokens,
		Providers: providers,
		Files:     files.New(db, providers, cfg.Uploads.Dir, cfg.PublicURL, logger),
		Appointments: appointment.New(
			db,
			availability.New(db),
			notifier,
			dispatcher,
			dates,
			cfg.PublicURL,
			logger,
		),
		Notifications: notifier,
		Health: map[string]health.Pinger{
			"postgres": db,
			"redis":    cacheRedis,
		},
		Limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
		UploadsDir: cfg.Uploads.Dir,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
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

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		runErr = a.server.Shutdown(timeoutCtx)
	}

	a.close()
	return runErr
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
