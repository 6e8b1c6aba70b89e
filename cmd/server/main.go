package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/wms/internal/adapter/handler"
	"github.com/rl1809/wms/internal/adapter/storage"
	"github.com/rl1809/wms/internal/core/ledger"
	"github.com/rl1809/wms/internal/core/service"
	"github.com/rl1809/wms/internal/port"
)

const (
	defaultDBPath   = "wms.db"
	defaultHTTPAddr = ":8080"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	dbPath := envOr("WMS_DB_PATH", defaultDBPath)
	httpAddr := envOr("WMS_HTTP_ADDR", defaultHTTPAddr)

	// Initialize SQLite
	db, err := storage.Open(dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", dbPath), zap.Error(err))
	}
	defer db.Close()

	if err := storage.InitSchema(db); err != nil {
		logger.Fatal("failed to initialize schema", zap.Error(err))
	}
	logger.Info("connected to sqlite", zap.String("path", dbPath))

	// Optional redis mirror for stock snapshots
	var cache port.CacheRepository
	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("failed to connect redis", zap.String("addr", addr), zap.Error(err))
		}
		cache = storage.NewRedisAdapter(rdb)
		logger.Info("connected to redis", zap.String("addr", addr))
	}

	// Wire adapters, engine and service
	products := storage.NewProductRepository(db)
	variants := storage.NewVariantRepository(db)
	documents := storage.NewDocumentRepository(db)
	engine := ledger.NewEngine(variants, documents, logger)
	inventory := service.NewInventoryService(products, variants, documents, engine, cache, logger)

	// HTTP server
	mux := http.NewServeMux()
	httpHandler := handler.NewHTTPHandler(inventory, logger)
	httpHandler.Register(mux)

	httpServer := &http.Server{
		Addr:    httpAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	if rdb != nil {
		rdb.Close()
	}
	logger.Info("connections closed")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
