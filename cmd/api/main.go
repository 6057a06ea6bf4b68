package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookmart/internal/cart"
	"bookmart/internal/config"
	"bookmart/internal/database"
	"bookmart/internal/events"
	"bookmart/internal/handler"
	"bookmart/internal/kvstore"
	"bookmart/internal/promo"
	"bookmart/internal/repository"
	"bookmart/internal/router"
	"bookmart/internal/service"
	"bookmart/internal/wallet"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting bookmart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize the cart/wallet state store
	var kv kvstore.Store
	if cfg.Redis.Enabled {
		kv, err = kvstore.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.KeyPrefix, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize redis store: %w", err)
		}
	} else {
		kv = kvstore.NewMemory()
		logger.Info().Msg("using in-memory state store (redis disabled)")
	}

	cartStore, err := cart.NewStore(ctx, kv, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cart store: %w", err)
	}

	ledger, err := wallet.NewLedger(ctx, kv, logger, wallet.WithSeed(cfg.Pricing.WalletSeed))
	if err != nil {
		return fmt.Errorf("failed to initialize wallet ledger: %w", err)
	}

	// Initialize repositories
	bookRepo := repository.NewBookRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Load promo rules: S3 first when enabled, local file next, built-in
	// defaults last
	rules := promo.DefaultRules()
	if cfg.Promo.S3Enabled || cfg.Promo.File != "" {
		fileLoader := promo.NewFileLoader(logger)

		var s3Loader promo.Loader
		if cfg.Promo.S3Enabled {
			s3Loader, err = promo.NewS3Loader(ctx, cfg.Promo.S3Bucket, cfg.Promo.S3Region, logger)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to initialise S3 promo loader, falling back to local file system")
			}
		}

		loader := promo.NewFallbackLoader(s3Loader, fileLoader, "", cfg.Promo.S3Enabled, logger)

		path := cfg.Promo.File
		if cfg.Promo.S3Enabled && path == "" {
			path = cfg.Promo.S3Key
		}

		loaded, err := loader.Load(ctx, path)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to load promo rules, using built-in defaults")
		} else {
			rules = loaded
		}
	}

	evaluator, err := promo.NewEvaluator(rules, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize promo evaluator: %w", err)
	}

	// Initialize order event publisher
	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, 256, logger)
	} else {
		publisher = events.NewNopPublisher()
		logger.Info().Msg("order events disabled (kafka disabled)")
	}
	defer publisher.Close()

	// Initialize payment gateway
	gateway := service.NewSimulatedGateway(time.Duration(cfg.Payment.GatewayDelayMs)*time.Millisecond, logger)

	// Initialize services
	catalogService := service.NewCatalogService(bookRepo, logger)
	checkoutService := service.NewCheckoutService(
		cartStore,
		ledger,
		evaluator,
		orderRepo,
		gateway,
		publisher,
		service.CheckoutConfig{
			TaxRate:     cfg.Pricing.TaxRate,
			ShippingFee: cfg.Pricing.ShippingFee,
		},
		logger,
	)

	// Initialize HTTP handlers
	bookHandler := handler.NewBookHandler(catalogService, logger)
	cartHandler := handler.NewCartHandler(cartStore, logger)
	walletHandler := handler.NewWalletHandler(ledger, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	orderHandler := handler.NewOrderHandler(checkoutService, logger)

	// Initialize router
	mux := router.New(bookHandler, cartHandler, walletHandler, checkoutHandler, orderHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
