package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/billing"
	"github.com/iliyamo/hotel-reservation/internal/booking"
	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/lock"
	"github.com/iliyamo/hotel-reservation/internal/logger"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/router"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

func main() {
	cfg := config.Load()
	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		zl.Fatal("database", zap.Error(err))
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			zl.Fatal("migrate", zap.Error(err))
		}
		zl.Info("schema ready")
	}

	// Redis is optional unless the lock backend needs it.
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		if cfg.Lock.Backend == "redis" {
			zl.Fatal("redis required by LOCK_BACKEND=redis", zap.Error(err))
		}
		zl.Warn("redis unavailable, running without cache and rate limit", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	opts := []booking.Option{
		booking.WithLogger(zl.Named("booking")),
		booking.WithLocation(cfg.Location),
		booking.WithLockWait(cfg.Lock.Wait),
	}
	if cfg.Lock.Backend == "redis" {
		opts = append(opts, booking.WithLocker(lock.NewRedisLocker(rdb, cfg.Lock.Prefix, cfg.Lock.TTL, cfg.Lock.Retry, zl.Named("lock"))))
		zl.Info("using redis room locks")
	}
	if cfg.Queue.Enabled {
		pub := service.NewPublisher(cfg.Queue.URL, cfg.Queue.Name, zl.Named("publisher"))
		defer pub.Close()
		opts = append(opts, booking.WithPublisher(pub))

		go func() {
			if err := queue.StartReservationConsumer(ctx, cfg.Queue.URL, cfg.Queue.Name, cfg.Queue.ConsumerLog, zl.Named("consumer")); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("reservation consumer stopped", zap.Error(err))
			}
		}()
	}

	reservations := repository.NewReservationRepo(db)
	rooms := repository.NewRoomRepo(db)
	guests := repository.NewGuestRepo(db)
	services := repository.NewServiceRepo(db)
	orch := booking.NewOrchestrator(repository.NewBookingStore(db), opts...)
	ledger := &billing.Ledger{
		Reservations: reservations,
		Payments:     repository.NewPaymentRepo(db),
		Services:     services,
		Charges:      repository.NewReservationServiceRepo(db),
		Guests:       guests,
		Rooms:        rooms,
		Log:          zl.Named("billing"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	router.Register(e, router.Deps{
		Reservations: handler.NewReservationHandler(orch, reservations, zl),
		Rooms:        handler.NewRoomHandler(rooms, zl),
		Guests:       handler.NewGuestHandler(guests, zl),
		Billing:      handler.NewBillingHandler(ledger, services, zl),
		DB:           db,
		Log:          zl.Named("http"),
		Redis:        rdb,
		JWTSecret:    cfg.JWTSecret,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        config.LoadCacheConfig(),
	})

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
