package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/dakshina/internal/config"
	"github.com/kirinyoku/dakshina/internal/events"
	"github.com/kirinyoku/dakshina/internal/payment"
	"github.com/kirinyoku/dakshina/internal/postgres"
	"github.com/kirinyoku/dakshina/internal/redis"
	"github.com/kirinyoku/dakshina/internal/repository"
	"github.com/kirinyoku/dakshina/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/dakshina/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/dakshina/internal/repository/redis"
	"github.com/kirinyoku/dakshina/internal/service"
	"github.com/kirinyoku/dakshina/internal/service/booking"
	"github.com/kirinyoku/dakshina/internal/service/travel"
	httpgin "github.com/kirinyoku/dakshina/internal/transport/http/gin"
	"github.com/kirinyoku/dakshina/internal/uow"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	dispatcher *events.Dispatcher
	consumer   *events.Consumer
	pubsub     *redisrepo.BookingsPubSub
	cache      *redisrepo.Cache
	closers    []io.Closer
	closeFns   []func()
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()
	a := &App{cfg: cfg, logger: logger}

	// Storage
	var (
		repos repository.Repos
		tx    uow.Transactor
	)
	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.New()
		repos, tx = store, store
		logger.Warn("using in-memory storage; data is lost on restart")
	default:
		pgxPool, err := postgres.New(ctx, postgres.Config{DSN: cfg.Postgres.DSN(), MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.closeFns = append(a.closeFns, pgxPool.Close)

		store := postgresrepo.NewStore(pgxPool)
		repos, tx = store, uow.NewUoW(store)
	}

	// Redis-backed cache, limits and idempotency
	var (
		limiter booking.Limiter
		idem    *redisrepo.IdempotencyStore
		sinks   []events.Sink
	)
	if cfg.Redis.Enabled {
		rdb, err := redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, rdb)

		a.cache = redisrepo.New(rdb)
		a.pubsub = redisrepo.NewBookingsPubSub(rdb)
		limiter = redisrepo.NewSlidingWindowLimiter(rdb, "bookings", cfg.RateLimit.Limit, cfg.RateLimit.Window)
		idem = redisrepo.NewIdempotencyStore(rdb, cfg.Cache.IdempotencyTTL)
		sinks = append(sinks, events.NewRedisSink(a.pubsub))
	}

	// Event delivery
	notifier := events.NewNotifier(events.NewLogSender(logger))
	if len(cfg.Kafka.Brokers) > 0 {
		writer := events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		reader := events.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
		a.closers = append(a.closers, writer, reader)

		sinks = append(sinks, events.NewKafkaSink(writer))
		a.consumer = events.NewConsumer(reader, notifier, logger)
	} else {
		sinks = append(sinks, notifier)
	}
	a.dispatcher = events.NewDispatcher(logger, sinks...)

	gateway := payment.NewHMACGateway(payment.Config{
		KeyID:     cfg.Payment.KeyID,
		KeySecret: cfg.Payment.KeySecret,
	})

	// Initialize services
	services := service.NewServices(repos, tx, gateway, a.dispatcher, a.cache, limiter, logger, service.Config{
		Booking: booking.Config{
			NumberPrefix:   cfg.Booking.NumberPrefix,
			Location:       cfg.Booking.Location,
			Pricing:        cfg.Pricing,
			PaymentKeyID:   cfg.Payment.KeyID,
			BookingViewTTL: cfg.Cache.BookingTTL,
			MaxEventDays:   cfg.Booking.MaxEventDays,
		},
		Travel: travel.Config{
			Rates:       cfg.Travel,
			DistanceTTL: cfg.Cache.DistanceTTL,
		},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(services, idem, []byte(cfg.Auth.JWTSecret), logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Notification consumer
	if a.consumer != nil {
		g.Go(func() error {
			a.logger.Info("kafka consumer started", "topic", a.cfg.Kafka.Topic, "group", a.cfg.Kafka.GroupID)
			return a.consumer.Run(gCtx)
		})
	}

	// Drop cached booking views changed by other instances
	if a.pubsub != nil {
		g.Go(func() error {
			err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, bookingID uuid.UUID) {
				if err := a.cache.InvalidateBooking(ctx, bookingID); err != nil {
					a.logger.Warn("cache invalidation failed", "booking_id", bookingID, "err", err)
				}
			})
			if err != nil && gCtx.Err() == nil {
				return fmt.Errorf("bookings subscription: %w", err)
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// close flushes in-flight events, then releases connections.
func (a *App) close() {
	if a.dispatcher != nil {
		a.dispatcher.Close()
		a.dispatcher = nil
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close failed", "err", err)
		}
	}
	a.closers = nil
	for _, fn := range a.closeFns {
		fn()
	}
	a.closeFns = nil
}
