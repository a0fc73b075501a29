package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/omidvar1986/smartoffice/internal/backend"
	"github.com/omidvar1986/smartoffice/internal/cart"
	"github.com/omidvar1986/smartoffice/internal/checkout"
	h "github.com/omidvar1986/smartoffice/internal/http"
	"github.com/omidvar1986/smartoffice/internal/orders"
	"github.com/omidvar1986/smartoffice/internal/payment"
	"github.com/omidvar1986/smartoffice/internal/storage"
)

type Config struct {
	HTTPPort        string
	BackendURL      string
	StorageBackend  string // "file" or "redis"
	StorageDir      string
	RedisAddr       string
	WatchInterval   time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxReceiptSize  int64
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BackendURL:      getEnv("SHOP_BACKEND_URL", "http://127.0.0.1:8000"),
		StorageBackend:  getEnv("STORAGE_BACKEND", "file"),
		StorageDir:      getEnv("STORAGE_DIR", "./data"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		WatchInterval:   getDurationEnv("WATCH_INTERVAL", 2*time.Second),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxReceiptSize:  10 << 20, // 10MB
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	store, err := newStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}

	backendClient := backend.NewClient(backend.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout,
	}, logger)

	cartRepo := cart.NewRepository(store, logger)
	cartService := cart.NewService(cartRepo)
	historyRepo := orders.NewHistoryRepository(store, logger)
	checkoutService := checkout.NewService(cartService, backendClient, historyRepo, logger)
	paymentService := payment.NewService(backendClient, historyRepo, logger)
	ordersService := orders.NewService(backendClient, historyRepo, logger)

	// Cross-process change notification: another process writing the same
	// store shows up here; per-request reads re-derive the cart anyway.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := storage.NewWatcher(store, cfg.WatchInterval, logger)
	for _, key := range []string{cart.CanonicalKey, cart.LegacyKey, cart.CountKey} {
		watcher.Subscribe(ctx, key, func(key string) {
			logger.Info().Str("key", key).Msg("cart changed externally")
		})
	}
	go watcher.Run(ctx)

	cartHandler := h.NewCartHandler(cartService, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	paymentHandler := h.NewPaymentHandler(paymentService, cfg.RequestTimeout, cfg.MaxReceiptSize)
	ordersHandler := h.NewOrdersHandler(ordersService, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Post("/checkout", checkoutHandler.Submit)
		r.Post("/payment/receipt", paymentHandler.SubmitReceipt)
		r.Get("/orders", ordersHandler.ListOrders)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

func newStore(cfg *Config) (storage.Store, error) {
	if cfg.StorageBackend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return storage.NewRedisStore(client), nil
	}
	return storage.NewFileStore(cfg.StorageDir)
}
