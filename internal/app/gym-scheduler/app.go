// Package gymscheduler собирает основное HTTP-приложение: хранилище,
// миграции, кеш, подключение к RabbitMQ, сервисы и маршруты.
package gymscheduler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-scheduler/internal/cache"
	"github.com/magabrotheeeer/gym-scheduler/internal/config"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-scheduler/internal/migrations"
	attendanceservice "github.com/magabrotheeeer/gym-scheduler/internal/services/attendance"
	recoveryservice "github.com/magabrotheeeer/gym-scheduler/internal/services/recovery"
	reminderservice "github.com/magabrotheeeer/gym-scheduler/internal/services/reminder"
	subscriptionservice "github.com/magabrotheeeer/gym-scheduler/internal/services/subscription"
	"github.com/magabrotheeeer/gym-scheduler/internal/storage/repository"
)

// App представляет основное приложение планировщика зала.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New создает новый экземпляр приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	reminderPublisher := reminderservice.NewReminderPublisher(ch)
	recoveryService := recoveryservice.NewRecoveryService(db, cacheRedis, logger)
	subscriptionService := subscriptionservice.NewSubscriptionService(db, cacheRedis, reminderPublisher, logger)
	attendanceService := attendanceservice.NewAttendanceService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, db,
		recoveryService, subscriptionService, attendanceService)

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
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста.
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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
