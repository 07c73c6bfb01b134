package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeRez0/ypstore/internal/adapter/auth"
	"github.com/MikeRez0/ypstore/internal/adapter/client/notifier"
	"github.com/MikeRez0/ypstore/internal/adapter/config"
	"github.com/MikeRez0/ypstore/internal/adapter/handler/http"
	"github.com/MikeRez0/ypstore/internal/adapter/logger"
	"github.com/MikeRez0/ypstore/internal/adapter/metrics"
	"github.com/MikeRez0/ypstore/internal/adapter/storage"
	"github.com/MikeRez0/ypstore/internal/adapter/storage/memory"
	"github.com/MikeRez0/ypstore/internal/adapter/storage/redis"
	"github.com/MikeRez0/ypstore/internal/adapter/storage/repository"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/MikeRez0/ypstore/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(conf.App)
	if err != nil {
		fmt.Printf("error creating log: %s", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, conf *config.Config, log *zap.Logger) error {
	repo, closeRepo, err := newRepository(ctx, conf.Database, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	idempotency, closeIdempotency, err := newIdempotencyStore(ctx, conf.Idempotency)
	if err != nil {
		return err
	}
	defer closeIdempotency()

	tokenService, err := auth.New(conf.Token)
	if err != nil {
		return fmt.Errorf("token service creating error: %w", err)
	}

	publisher, err := notifier.NewPublisher(conf.Notifier, log.Named("Publisher"))
	if err != nil {
		return fmt.Errorf("notification publisher creating error: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("publisher close error", zap.Error(err))
		}
	}()

	notifyCtx, cancelNotify := context.WithCancel(ctx)
	sellerNotifier := notifier.NewNotifier(conf.Notifier, publisher, log.Named("Notifier"))
	sellerNotifier.Run(notifyCtx)
	defer func() {
		cancelNotify()
		sellerNotifier.Wait()
	}()

	m := metrics.New()

	svc, err := service.NewService(repo, tokenService, sellerNotifier, log.Named("Service"),
		service.WithIdempotency(idempotency),
		service.WithObserver(m),
		service.WithNotificationLimit(conf.Orders.NotificationLimit),
	)
	if err != nil {
		return fmt.Errorf("order service creating error: %w", err)
	}

	if conf.Admin.Login != "" {
		if err := svc.EnsureAdmin(ctx, conf.Admin.Login, conf.Admin.Password); err != nil {
			return fmt.Errorf("admin bootstrap error: %w", err)
		}
	}

	userHandler, err := http.NewUserHandler(svc, log.Named("User handler"))
	if err != nil {
		return fmt.Errorf("user handler creating error: %w", err)
	}
	productHandler, err := http.NewProductHandler(svc, log.Named("Product handler"))
	if err != nil {
		return fmt.Errorf("product handler creating error: %w", err)
	}
	orderHandler, err := http.NewOrderHandler(svc, log.Named("Order handler"))
	if err != nil {
		return fmt.Errorf("order handler creating error: %w", err)
	}

	r, err := http.NewRouter(conf.App, tokenService, m,
		userHandler, productHandler, orderHandler, log.Named("Router"))
	if err != nil {
		return fmt.Errorf("router creating error: %w", err)
	}

	log.Info("starting server", zap.String("address", conf.HTTP.HostString))
	return r.Serve(ctx, conf.HTTP.HostString)
}

// newRepository picks Postgres when a DSN is configured and the in-memory store otherwise.
func newRepository(ctx context.Context, conf *config.Database, log *zap.Logger) (port.Repository, func(), error) {
	if conf.DSN == "" {
		log.Info("using in-memory storage")
		return memory.NewRepository(), func() {}, nil
	}

	db, err := storage.NewDBStorage(ctx, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}
	err = db.RunMigrations()
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database migration error: %w", err)
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("order repo creating error: %w", err)
	}
	return repo, db.Close, nil
}

func newIdempotencyStore(ctx context.Context, conf *config.Idempotency) (port.IdempotencyStore, func(), error) {
	if conf.RedisURL == "" {
		return memory.NewIdempotencyStore(conf.TTL), func() {}, nil
	}

	store, err := redis.NewIdempotencyStore(ctx, conf)
	if err != nil {
		return nil, nil, fmt.Errorf("idempotency store error: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}
