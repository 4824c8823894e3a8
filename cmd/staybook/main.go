package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/registry"
	"staybook/internal/app/services/auth"
	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainlistings "staybook/internal/domain/listings"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongostore "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	outboxworker "staybook/internal/infra/outbox"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
	redisstore "staybook/internal/infra/storage/redis"
	"staybook/internal/infra/storage/s3"
	"staybook/internal/infra/validation"
)

const serviceName = "staybook"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, loadErr := config.Load()
	if loadErr != nil {
		fallback, err := config.Fallback(loadErr)
		if err != nil {
			obs.NewLogger(os.Getenv("APP_ENV"), "info").Error("invalid configuration", "error", err)
			os.Exit(1)
		}
		cfg = fallback
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel)
	if loadErr != nil {
		logger.Warn("using development fallback configuration", "error", loadErr)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Checks:  app.checks,
		Timeout: 2 * time.Second,
	}, app.handlers)

	go func() {
		if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.Store, "sessions", cfg.SessionStore)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	worker   *outboxworker.Worker
	checks   map[string]obs.Check
	closers  []func(context.Context) error
}

func (a application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("resource close failed", "error", err)
		}
	}
}

// storage is the persistence side of the application for the selected store.
type storage struct {
	factory     uow.UoWFactory
	users       domainuser.Repository
	outbox      outbox.Outbox
	pending     outboxworker.Store
	idempotency middleware.IdempotencyStore
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	app := application{checks: map[string]obs.Check{}}

	store, err := openStorage(ctx, cfg, &app)
	if err != nil {
		return app, err
	}
	sessions, err := openSessions(ctx, cfg, &app)
	if err != nil {
		return app, err
	}

	var uploader s3.Uploader = s3.Disabled{}
	s3cfg := s3.Config{
		Endpoint:      cfg.S3Endpoint,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
		UseSSL:        cfg.S3UseSSL,
	}
	if s3cfg.Enabled() {
		client, err := s3.NewClient(s3cfg, logger)
		if err != nil {
			return app, err
		}
		uploader = client
	} else {
		logger.Info("image uploads disabled, S3 is not configured")
	}

	tokens, err := security.NewJWTIssuer(cfg.JWTSecret, serviceName)
	if err != nil {
		return app, err
	}
	authService := &auth.Service{
		Users:       store.users,
		Sessions:    sessions,
		Passwords:   security.BcryptHasher{},
		Tokens:      tokens,
		SessionTTL:  cfg.JWTTTL,
		AdminEmails: cfg.AdminEmails,
		Logger:      logger,
	}

	validator := validation.New()
	buses := registry.Build(registry.Deps{
		UoWFactory:        store.factory,
		Outbox:            store.outbox,
		Encoder:           outbox.JSONEventEncoder{},
		Idempotency:       store.idempotency,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		Uploader:          uploader,
		Validator:         validator,
		Authorizer:        policies.RoleAuthorizer{},
		Logger:            logger,
		DefaultPageSize:   cfg.DefaultPageSize,
		RecomputeOnDelete: cfg.RecomputeOnDelete,
	})

	app.handlers = ginserver.Handlers{
		Auth: ginserver.AuthHandler{Service: authService, Validator: validator, Logger: logger},
		Booking: ginserver.BookingHandler{
			Commands: buses.Commands,
			Queries:  buses.Queries,
			Logger:   logger,
		},
		Reviews: ginserver.ReviewsHandler{
			Commands: buses.Commands,
			Queries:  buses.Queries,
			Logger:   logger,
		},
		Properties: ginserver.ListingHandler{
			Kind:     domainlistings.KindProperty,
			Commands: buses.Commands,
			Queries:  buses.Queries,
			Logger:   logger,
		},
		Experiences: ginserver.ListingHandler{
			Kind:     domainlistings.KindExperience,
			Commands: buses.Commands,
			Queries:  buses.Queries,
			Logger:   logger,
		},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}

	producer, err := openProducer(cfg, logger, &app)
	if err != nil {
		return app, err
	}
	app.worker = &outboxworker.Worker{
		Store:       store.pending,
		Producer:    producer,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		ID:          "outbox-" + uuid.NewString()[:8],
		Backoff:     cfg.RetryBackoff,
	}
	return app, nil
}

func openStorage(ctx context.Context, cfg config.Config, app *application) (storage, error) {
	if cfg.Store != config.StoreMongo {
		factory := memory.NewFactory()
		box := memory.NewOutbox()
		return storage{
			factory:     factory,
			users:       factory.UsersRepo,
			outbox:      box,
			pending:     box,
			idempotency: memory.NewIdempotencyStore(),
		}, nil
	}

	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, err
	}
	app.closers = append(app.closers, client.Close)
	app.checks["mongo"] = client.Ping
	if err := client.EnsureIndexes(ctx); err != nil {
		return storage{}, err
	}
	box, err := outboxworker.NewMongoStore(ctx, client.DB)
	if err != nil {
		return storage{}, err
	}
	idem, err := mongostore.NewIdempotencyStore(ctx, client.DB)
	if err != nil {
		return storage{}, err
	}
	factory := mongostore.NewFactory(client.DB)
	return storage{
		factory:     factory,
		users:       factory.UsersRepo,
		outbox:      box,
		pending:     box,
		idempotency: idem,
	}, nil
}

func openSessions(ctx context.Context, cfg config.Config, app *application) (domainauth.SessionStore, error) {
	if cfg.SessionStore != config.SessionsRedis {
		return memory.NewSessionStore(), nil
	}
	client, err := redisstore.NewClient(ctx, redisstore.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func(context.Context) error { return client.Close() })
	app.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return redisstore.NewSessionStore(client), nil
}

func openProducer(cfg config.Config, logger *slog.Logger, app *application) (outboxworker.Producer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("kafka brokers not configured, outbox events are logged only")
		return outboxworker.LogProducer{Logger: logger}, nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, serviceName)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func(context.Context) error { return producer.Close() })
	return producer, nil
}
