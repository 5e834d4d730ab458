package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/rephome/repair-booking/internal/cache"
	"github.com/rephome/repair-booking/internal/config"
	"github.com/rephome/repair-booking/internal/lib/jwt"
	"github.com/rephome/repair-booking/internal/lib/rabbitmq"
	"github.com/rephome/repair-booking/internal/lib/smtp"
	"github.com/rephome/repair-booking/internal/migrations"
	authservice "github.com/rephome/repair-booking/internal/services/auth"
	bookingservice "github.com/rephome/repair-booking/internal/services/booking"
	senderservice "github.com/rephome/repair-booking/internal/services/sender"
	shopservice "github.com/rephome/repair-booking/internal/services/shop"
	sweeperservice "github.com/rephome/repair-booking/internal/services/sweeper"
	"github.com/rephome/repair-booking/internal/storage/repository"
)

// App собирает HTTP-сервер, хранилище и фоновую задачу автоподтверждения.
type App struct {
	server  *http.Server
	sweeper *sweeperservice.Service
	conn    *amqp.Connection
	ch      *amqp.Channel
	db      *repository.Storage
	logger  *slog.Logger
}

// New инициализирует зависимости приложения: базу с миграциями, redis,
// RabbitMQ, SMTP-транспорт и все сервисы с маршрутами.
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

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close rabbitmq connection", slog.Any("err", closeErr))
		}
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(transport, logger)

	// Общий publisher: уведомления о подтверждении уходят в одну очередь
	// и при проверке кода, и при автоподтверждении.
	publisher := sweeperservice.NewAMQPPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.New(db, jwtMaker)
	bookingService := bookingservice.New(db, senderService, publisher, logger, cfg.OTPTTL, nil)
	shopService := shopservice.New(db, cacheRedis, logger, cfg.ServiceCity)

	sweeper := sweeperservice.New(db, publisher, logger,
		cfg.StaleAfter, cfg.SweepInterval, nil)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, authService, bookingService, shopService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		sweeper: sweeper,
		conn:    conn,
		ch:      ch,
		db:      db,
		logger:  logger,
	}, nil
}

// Run запускает HTTP-сервер и фоновое автоподтверждение, останавливает
// оба по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	go a.sweeper.Run(ctx)

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
