package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	peerpay "github.com/peerpay-dev/peerpay"
	echoapi "github.com/peerpay-dev/peerpay/api/echo"
	"github.com/peerpay-dev/peerpay/cache"
	redisstore "github.com/peerpay-dev/peerpay/cache/redis"
	"github.com/peerpay-dev/peerpay/config"
	"github.com/peerpay-dev/peerpay/internal/server"
	"github.com/peerpay-dev/peerpay/log"
	"github.com/peerpay-dev/peerpay/mongodb"
	"github.com/peerpay-dev/peerpay/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := log.NewZerologAdapter(zerolog.InfoLevel, false)
		bootLogger.Fatal(context.Background(), "Failed to load configuration", err)
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	appLogger := log.NewZerologAdapter(logLevel, cfg.LogPretty)

	ctx := context.Background()
	appLogger.Info(ctx, "Starting peerpay server", map[string]any{
		"http_port":     cfg.HTTPPort,
		"pending_store": cfg.PendingStore,
		"log_level":     cfg.LogLevel,
	})

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize TracerProvider", err)
	}

	pendingTTL := time.Duration(cfg.PendingTTLMin) * time.Minute

	var pendingStore cache.PendingAuthStore
	switch cfg.PendingStore {
	case config.PendingStoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			appLogger.Fatal(ctx, "Failed to connect to Redis", err)
		}
		pendingStore = redisstore.NewPendingAuthStore(client, cfg.RedisPrefix, pendingTTL)
	case config.PendingStoreMongo:
		if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
			appLogger.Fatal(ctx, "Failed to initialize MongoDB", err)
		}
		store, repoErr := mongodb.NewPendingAuthRepository(ctx, mongodb.GetDB(), pendingTTL)
		if repoErr != nil {
			appLogger.Fatal(ctx, "Failed to initialize pending authorization repository", repoErr)
		}
		pendingStore = store
	default:
		pendingStore = cache.NewMemoryPendingAuthStore(pendingTTL)
	}

	service := peerpay.NewService(peerpay.DefaultClientFactory(), pendingStore, peerpay.Options{
		CallbackBaseURL:        cfg.CallbackBaseURL,
		PendingTTL:             pendingTTL,
		IncludeOutgoingHistory: cfg.HistoryIncludeOutgoing,
		HistoryPageSize:        cfg.HistoryPageSize,
	})

	paymentsAPI := echoapi.NewPaymentsAPI(service, cfg.FrontendSuccessURL, cfg.FrontendErrorURL)
	httpServer := server.NewHTTPServer(cfg, appLogger, paymentsAPI)

	go func() {
		appLogger.Info(ctx, "HTTP server listening", map[string]any{"addr": httpServer.Addr})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(ctx, "HTTP server stopped unexpectedly", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info(ctx, "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown failed", err)
	}
	if err := pendingStore.Close(); err != nil {
		appLogger.Error(shutdownCtx, "Pending store close failed", err)
	}
	if cfg.PendingStore == config.PendingStoreMongo {
		if err := mongodb.Disconnect(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "MongoDB disconnect failed", err)
		}
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "TracerProvider shutdown failed", err)
	}
}
