package offerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/offer-service/internal/cache"
	"github.com/magabrotheeeer/offer-service/internal/config"
	"github.com/magabrotheeeer/offer-service/internal/events"
	grpcserver "github.com/magabrotheeeer/offer-service/internal/grpc/server"
	"github.com/magabrotheeeer/offer-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/offer-service/internal/lib/jwt"
	"github.com/magabrotheeeer/offer-service/internal/lib/sl"
	"github.com/magabrotheeeer/offer-service/internal/migrations"
	"github.com/magabrotheeeer/offer-service/internal/rabbitmq"
	offersvc "github.com/magabrotheeeer/offer-service/internal/services/offer"
	usersvc "github.com/magabrotheeeer/offer-service/internal/services/user"
	"github.com/magabrotheeeer/offer-service/internal/storage/repository"
)

const healthInterval = 10 * time.Second

// App владеет HTTP и gRPC серверами и соединениями с внешними системами.
type App struct {
	server          *http.Server
	health          *grpcserver.HealthServer
	grpcAddr        string
	shutdownTimeout time.Duration
	logger          *slog.Logger
	db              *repository.Storage
	cache           *cache.Cache
	amqpConn        *amqp.Connection
	amqpChannel     *amqp.Channel
}

// New подключается к PostgreSQL, Redis и RabbitMQ и собирает сервисы.
// Пустой AMQPURL отключает публикацию событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a := &App{
		grpcAddr:        cfg.AddressGRPC,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
		db:              db,
		cache:           cacheRedis,
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		a.amqpConn, err = rabbitmq.Connect(ctx, cfg.AMQPURL, cfg.ConnectRetries, cfg.ConnectDelay)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.amqpChannel, err = rabbitmq.SetupExchange(a.amqpConn, cfg.Exchange)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = events.NewAMQPPublisher(a.amqpChannel, cfg.Exchange)
	} else {
		logger.Info("amqp url is empty, offer events are disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	userService := usersvc.New(db, jwtMaker, nil, nil)
	offerService := offersvc.New(offersvc.Deps{
		Offers:   db,
		Users:    db,
		Cache:    cacheRedis,
		Events:   publisher,
		CacheTTL: cfg.CacheTTL,
		Log:      logger,
	})

	checks := map[string]health.Check{
		"postgres": func(ctx context.Context) error { return db.DB.PingContext(ctx) },
		"redis":    func(ctx context.Context) error { return cacheRedis.Db.Ping(ctx).Err() },
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.RateLimit, userService, offerService, checks)

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	a.health = grpcserver.NewHealthServer(logger, map[string]grpcserver.Check{
		"postgres": grpcserver.Check(checks["postgres"]),
		"redis":    grpcserver.Check(checks["redis"]),
	})
	return a, nil
}

// Run запускает серверы и блокируется до отмены ctx или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	const op = "app.Run"

	lis, err := net.Listen("tcp", a.grpcAddr)
	if err != nil {
		a.close()
		return fmt.Errorf("%s: %w", op, err)
	}

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()
	go func() {
		errCh <- a.health.Serve(lis)
	}()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go a.health.Watch(watchCtx, healthInterval)

	var runErr error
	select {
	case runErr = <-errCh:
		if runErr != nil {
			a.logger.Error("server stopped unexpectedly", sl.Err(runErr))
		}
	case <-ctx.Done():
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	a.logger.Info("stopping gRPC health server")
	a.health.Stop()
	a.close()
	return runErr
}

func (a *App) close() {
	if a.amqpChannel != nil {
		if err := a.amqpChannel.Close(); err != nil {
			a.logger.Warn("failed to close amqp channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close amqp connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis client", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", sl.Err(err))
		}
	}
}
