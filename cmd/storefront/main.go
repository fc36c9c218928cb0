package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/events"
	"github.com/nikolayk812/storefront/internal/httpapi"
	"github.com/nikolayk812/storefront/internal/migrations"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/pricing"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 15 * time.Second

func main() {
	seedFile := flag.String("seed", "", "JSON file of products to insert when the catalog is empty")
	migrateOnly := flag.Bool("migrate-only", false, "apply migrations and exit")
	migrateDown := flag.Bool("migrate-down", false, "roll back all migrations and exit")
	flag.Parse()

	cfg, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *migrateDown {
		if err := migrations.Down(cfg.DatabaseURL); err != nil {
			logger.Error("migrations rollback failed", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("migrations rolled back")
		return
	}

	if err := run(ctx, cfg, logger, *seedFile, *migrateOnly); err != nil {
		logger.Error("storefront stopped", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, seedFile string, migrateOnly bool) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cfg.Validate: %w", err)
	}

	if err := migrations.Up(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}
	logger.Info("migrations applied")

	if migrateOnly {
		return nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	products := repository.NewProduct(pool)
	if seedFile != "" {
		if err := seedProducts(ctx, products, seedFile, logger); err != nil {
			return fmt.Errorf("seedProducts: %w", err)
		}
	}

	rules := pricing.DefaultRules()
	rules.Currency = cfg.CurrencyUnit()

	catalogSvc := catalog.NewService(products, cfg.CatalogTTL, logger.Named("catalog"))
	broadcaster := events.NewBroadcaster()

	carts := cart.NewService(
		repository.NewCart(pool),
		repository.NewGuestCart(redisClient, cfg.GuestCartTTL),
		catalogSvc,
		broadcaster,
		cart.Config{
			Rules:          rules,
			RequestTimeout: cfg.RequestTimeout,
		},
		logger.Named("cart"))

	notifier, closeNotifier := newNotifier(cfg, logger)
	defer closeNotifier()

	checkouts := checkout.NewService(carts, catalogSvc, repository.NewOrder(pool), notifier, checkout.Config{
		Rules:          rules,
		DefaultCountry: cfg.DefaultCountry,
		NotifyTimeout:  cfg.NotifyTimeout,
	}, logger.Named("checkout"))

	router := httpapi.NewRouter(httpapi.Deps{
		Catalog:        catalogSvc,
		Carts:          carts,
		Checkout:       checkouts,
		Changes:        broadcaster,
		Probe:          session.NewProbe(cfg.JWTSecret, cfg.JWTIssuer, logger.Named("session")),
		Logger:         logger.Named("http"),
		GuestCookieTTL: cfg.GuestCartTTL,
		SecureCookies:  cfg.IsProduction(),
		Heartbeat:      30 * time.Second,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	return nil
}

// newNotifier always logs placed orders and adds email and kafka delivery when configured.
func newNotifier(cfg config.Config, logger *zap.Logger) (port.OrderNotifier, func()) {
	fanout := notify.Fanout{notify.NewLog(logger.Named("notify"))}
	closers := []func() error{}

	if cfg.SMTPEnabled() {
		sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.SMTPFrom,
		})
		fanout = append(fanout, notify.NewMailer(sender, cfg.SellerEmail))
	}

	if cfg.KafkaEnabled() {
		writer := notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.OrdersTopic)
		fanout = append(fanout, notify.NewKafkaPublisher(writer))
		closers = append(closers, writer.Close)
	}

	return fanout, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("notifier close failed", zap.Error(err))
			}
		}
	}
}
