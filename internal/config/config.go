package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	RedisAddress      string
	GatewayBaseURL    string
	GatewayShopID     string
	GatewaySecretKey  string
	WebhookSecret     string
	TelegramAPIBase   string
	TelegramBotToken  string
	PaymentReturnURL  string
	ReconcileInterval time.Duration
	PendingGrace      time.Duration
	OrderExpiry       time.Duration
	WorkerPoolSize    int
	MaxOrdersBatch    int
	ShutdownTimeout   time.Duration
}

const (
	defaultRunAddress        = ":8080"
	defaultRedisAddress      = "localhost:6379"
	defaultTelegramAPIBase   = "https://api.telegram.org"
	defaultReconcileInterval = time.Minute
	defaultPendingGrace      = 30 * time.Second
	defaultOrderExpiry       = 15 * time.Minute
	defaultWorkerPoolSize    = 4
	defaultMaxOrdersBatch    = 32
	defaultShutdownTimeout   = 10 * time.Second
)

// Load parses configuration from an optional .env file, environment
// variables and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		RedisAddress:      getString(lookup, "REDIS_ADDRESS", defaultRedisAddress),
		GatewayBaseURL:    getString(lookup, "GATEWAY_BASE_URL", ""),
		GatewayShopID:     getString(lookup, "GATEWAY_SHOP_ID", ""),
		GatewaySecretKey:  getString(lookup, "GATEWAY_SECRET_KEY", ""),
		WebhookSecret:     getString(lookup, "WEBHOOK_SECRET", ""),
		TelegramAPIBase:   getString(lookup, "TELEGRAM_API_BASE", defaultTelegramAPIBase),
		TelegramBotToken:  getString(lookup, "TELEGRAM_BOT_TOKEN", ""),
		PaymentReturnURL:  getString(lookup, "PAYMENT_RETURN_URL", ""),
		ReconcileInterval: getDuration(lookup, "RECONCILE_INTERVAL", defaultReconcileInterval),
		PendingGrace:      getDuration(lookup, "PENDING_GRACE", defaultPendingGrace),
		OrderExpiry:       getDuration(lookup, "ORDER_EXPIRY", defaultOrderExpiry),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		MaxOrdersBatch:    getInt(lookup, "RECONCILE_BATCH_SIZE", defaultMaxOrdersBatch),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("shopbot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		reconcileIntervalStr = cfg.ReconcileInterval.String()
		pendingGraceStr      = cfg.PendingGrace.String()
		orderExpiryStr       = cfg.OrderExpiry.String()
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for conversation sessions")
	fs.StringVar(&cfg.GatewayBaseURL, "g", cfg.GatewayBaseURL, "Payment gateway base URL")
	fs.StringVar(&cfg.GatewayShopID, "shop-id", cfg.GatewayShopID, "Payment gateway shop identifier")
	fs.StringVar(&cfg.WebhookSecret, "webhook-secret", cfg.WebhookSecret, "Secret for webhook signature verification")
	fs.StringVar(&cfg.PaymentReturnURL, "return-url", cfg.PaymentReturnURL, "URL the provider redirects to after payment")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconcile workers")
	fs.StringVar(&reconcileIntervalStr, "reconcile-interval", reconcileIntervalStr, "Interval between reconciliation sweeps")
	fs.StringVar(&pendingGraceStr, "pending-grace", pendingGraceStr, "Age before a pending order is reconciled")
	fs.StringVar(&orderExpiryStr, "order-expiry", orderExpiryStr, "Deadline for an unpaid order")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MaxOrdersBatch, "reconcile-batch", cfg.MaxOrdersBatch, "Maximum orders per reconciliation batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ReconcileInterval, err = time.ParseDuration(reconcileIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if cfg.PendingGrace, err = time.ParseDuration(pendingGraceStr); err != nil {
		return nil, fmt.Errorf("invalid pending grace: %w", err)
	}

	if cfg.OrderExpiry, err = time.ParseDuration(orderExpiryStr); err != nil {
		return nil, fmt.Errorf("invalid order expiry: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("GATEWAY_SECRET_KEY_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read gateway secret file: %w", err)
		}
		cfg.GatewaySecretKey = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxOrdersBatch <= 0 {
		cfg.MaxOrdersBatch = defaultMaxOrdersBatch
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}

	if cfg.OrderExpiry <= 0 {
		cfg.OrderExpiry = defaultOrderExpiry
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.GatewayBaseURL == "" {
		return nil, fmt.Errorf("gateway base URL must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
