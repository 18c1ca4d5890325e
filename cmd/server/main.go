package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nathanyu/account-transfer/internal/engine"
	"github.com/nathanyu/account-transfer/internal/handler"
	"github.com/nathanyu/account-transfer/internal/journal"
	"github.com/nathanyu/account-transfer/internal/middleware"
	"github.com/nathanyu/account-transfer/internal/notify"
	"github.com/nathanyu/account-transfer/internal/store"
	"github.com/nathanyu/account-transfer/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "account-transfer"

// Config holds application configuration
type Config struct {
	Port        int
	MetricsPort int
	NATSUrl     string
	JournalPath string
	GinMode     string
}

func main() {
	cfg := parseFlags()

	// Initialize structured logging
	telemetry.InitLogger(serviceName)

	// Initialize OpenTelemetry tracing
	cleanup, err := telemetry.InitTracer(serviceName)
	if err != nil {
		slog.Warn("failed to initialize tracer", slog.Any("error", err))
	} else {
		defer cleanup()
	}

	gin.SetMode(cfg.GinMode)

	slog.Info("starting account transfer service")

	// 1. Notification sink: NATS when configured, otherwise the log.
	var notifier engine.Notifier = notify.LogNotifier{}
	if cfg.NATSUrl != "" {
		slog.Info("connecting to NATS", slog.String("url", cfg.NATSUrl))
		natsNotifier, err := notify.NewNATSNotifier(cfg.NATSUrl)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer natsNotifier.Close()
		notifier = natsNotifier
		slog.Info("connected to NATS")
	}

	// 2. Transfer journal (optional).
	var jnl *journal.Journal
	if cfg.JournalPath != "" {
		slog.Info("opening transfer journal", slog.String("path", cfg.JournalPath))
		jnl, err = journal.Open(cfg.JournalPath)
		if err != nil {
			log.Fatalf("Failed to open transfer journal: %v", err)
		}
		defer jnl.Close()
	}

	// 3. Account store and transfer engine.
	accounts := store.NewAccountStore()
	transferEngine := engine.NewTransferEngine(accounts, notifier, jnl)

	// 4. HTTP handler and router.
	h := handler.NewHandler(accounts, transferEngine)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Tracing())
	router.Use(middleware.Metrics())
	handler.SetupRoutes(router, h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// 5. Metrics server (separate port for Prometheus scraping).
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	go func() {
		slog.Info("HTTP server listening", slog.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	go func() {
		slog.Info("metrics server listening", slog.Int("port", cfg.MetricsPort))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Metrics server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("HTTP server forced to shutdown", slog.Any("error", err))
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		slog.Warn("metrics server forced to shutdown", slog.Any("error", err))
	}

	slog.Info("service stopped")
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.IntVar(&cfg.Port, "port", getEnvInt("PORT", 8080), "HTTP server port")
	flag.IntVar(&cfg.MetricsPort, "metrics-port", getEnvInt("METRICS_PORT", 9090), "Metrics server port")
	flag.StringVar(&cfg.NATSUrl, "nats-url", getEnv("NATS_URL", ""), "NATS server URL (empty logs notifications instead)")
	flag.StringVar(&cfg.JournalPath, "journal", getEnv("JOURNAL_PATH", ""), "Transfer journal file path (empty disables)")
	flag.StringVar(&cfg.GinMode, "gin-mode", getEnv("GIN_MODE", "release"), "Gin mode (debug/release)")

	flag.Parse()

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var v int
		if _, err := fmt.Sscanf(value, "%d", &v); err == nil {
			return v
		}
	}
	return defaultValue
}
