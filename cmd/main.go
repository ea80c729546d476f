package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"biliticket/sessionstore/internal/config"
	"biliticket/sessionstore/internal/handler"
	"biliticket/sessionstore/internal/model"
	"biliticket/sessionstore/internal/repository"
	"biliticket/sessionstore/internal/session"
)

func main() {
	// 1. Load configuration
	configPath := "config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Initialize state store (Redis, in-memory or Postgres)
	var stateStore repository.StateStore
	switch cfg.State.Backend {
	case "redis":
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		stateStore = repository.NewRedisStateStore(redisClient)
		logger.Info("using Redis state store")
	case "memory":
		stateStore = repository.NewMemoryStateStore()
		logger.Info("using in-memory state store")
	case "postgres":
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				logger.Fatal("failed to auto-migrate", zap.Error(err))
			}
			logger.Info("database migration completed")
		}
		pgStore := repository.NewPGStateStore(db)
		go pgStore.RunPurgeLoop(ctx, cfg.State.PurgeInterval, logger)
		stateStore = pgStore
		logger.Info("using Postgres state store", zap.Duration("purge_interval", cfg.State.PurgeInterval))
	default:
		logger.Fatal("unknown state backend", zap.String("backend", cfg.State.Backend))
	}
	stateStore = repository.NewInstrumentedStateStore(stateStore, logger.Named("state"))

	// 4. Initialize session save handler
	saveHandler, err := session.NewStoreHandler(stateStore, cfg.Session.Lifetime, cfg.Session.Options)
	if err != nil {
		logger.Fatal("failed to init session handler", zap.Error(err))
	}
	if _, ok := cfg.Session.Options[session.OptionKeyPrefix].(string); !ok {
		logger.Warn("session key_prefix is not a string, keys are not namespaced",
			zap.Any("key_prefix", cfg.Session.Options[session.OptionKeyPrefix]))
	}
	logger.Info("session handler initialized",
		zap.Duration("lifetime", saveHandler.Lifetime()),
		zap.String("example_key", saveHandler.Key("<id>")),
	)

	// 5. Setup router
	router := handler.SetupRouter(cfg, logger, stateStore, saveHandler, handler.NewSessionHandler())

	// 6. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 7. Start server with graceful shutdown
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// 8. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
