package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tea-kart/internal/cache"
	"tea-kart/internal/catalog"
	"tea-kart/internal/checkout"
	"tea-kart/internal/config"
	"tea-kart/internal/database"
	"tea-kart/internal/handler"
	"tea-kart/internal/payment"
	"tea-kart/internal/repository"
	"tea-kart/internal/router"
	"tea-kart/internal/service"
	"tea-kart/internal/session"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting tea-kart storefront")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cart persistence is optional; without it carts live in memory only.
	persister, closePersistence, err := newCartPersister(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePersistence()

	var sessionOpts []session.Option
	if persister != nil {
		sessionOpts = append(sessionOpts, session.WithPersister(persister))
	}
	sessions := session.NewManager(logger, sessionOpts...)
	go sessions.Run(ctx, cfg.Session.SweepDuration(), cfg.Session.MaxIdleDuration())

	// Initialize catalogue client with snapshot fallback
	productCatalog := newCatalog(ctx, cfg, logger)

	// Initialize payment gateway
	gateway := payment.NewHTTPGateway(payment.GatewayConfig{
		BaseURL:         cfg.Payment.BaseURL,
		Timeout:         cfg.Payment.TimeoutDuration(),
		BreakerFailures: uint32(cfg.Payment.BreakerFailures),
		BreakerCooldown: cfg.Payment.CooldownDuration(),
	}, nil, logger)
	initiator := payment.NewInitiator(gateway, cfg.Payment.TimeoutDuration(), logger)

	// Initialize services
	assembler := checkout.NewAssembler()
	productService := service.NewProductService(productCatalog, logger)
	cartService := service.NewCartService(productService, assembler.ShippingCost(), logger)
	checkoutService := service.NewCheckoutService(assembler, initiator, gateway, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(productService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Payments: handler.NewPaymentHandler(checkoutService, logger),
	}, sessions, cfg, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:        cfg.Server.Address(),
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// Payment initiation may take up to its own timeout.
		WriteTimeout: cfg.Payment.TimeoutDuration() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Int("sessions", sessions.Len()).Msg("server shutdown completed")
	}

	return nil
}

// newCatalog builds the live catalogue client, falling back to a gzipped
// snapshot from S3 or the local file system when one is configured.
func newCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) catalog.Catalog {
	live := catalog.NewHTTPCatalog(cfg.Catalog.BaseURL, cfg.Catalog.TimeoutDuration(), nil, logger)
	if cfg.Catalog.SnapshotPath == "" {
		logger.Info().Msg("no catalogue snapshot configured, outages are reported to clients")
		return catalog.NewFallbackCatalog(live, nil, "", logger)
	}

	fileLoader := catalog.NewFileLoader(logger)
	var s3Loader catalog.SnapshotLoader

	if cfg.S3.Enabled {
		l, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	} else {
		logger.Info().Msg("using local file system for catalogue snapshots (S3 disabled)")
	}

	loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, s3Loader != nil, logger)
	return catalog.NewFallbackCatalog(live, loader, cfg.Catalog.SnapshotPath, logger)
}

// newCartPersister wires PostgreSQL and Redis cart persistence as enabled.
// The returned func releases whatever was opened.
func newCartPersister(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (session.CartPersister, func(), error) {
	var (
		repo    repository.CartRepository
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.Enabled {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return nil, closeAll, fmt.Errorf("failed to migrate database: %w", err)
		}

		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to initialize database: %w", err)
		}
		closers = append(closers, pool.Close)
		repo = repository.NewCartRepository(pool, logger)
	}

	if !cfg.Redis.Enabled {
		if repo == nil {
			logger.Info().Msg("cart persistence disabled, carts are kept in memory")
			return nil, closeAll, nil
		}
		return repo, closeAll, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	closers = append(closers, func() { client.Close() })

	if err := client.Ping(ctx).Err(); err != nil {
		closeAll()
		return nil, func() {}, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis cart cache connected")

	return cache.NewCartStore(cache.NewRedisCache(client, cfg.Redis.TTLDuration()), repo, logger), closeAll, nil
}
