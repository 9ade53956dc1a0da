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

	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/api"
	"github.com/jafarshop/larek/internal/config"
	"github.com/jafarshop/larek/internal/larekapi"
	"github.com/jafarshop/larek/internal/logger"
	"github.com/jafarshop/larek/internal/repository"
	"github.com/jafarshop/larek/internal/repository/memory"
	"github.com/jafarshop/larek/internal/repository/postgres"
	"github.com/jafarshop/larek/internal/repository/redis"
	"github.com/jafarshop/larek/internal/store"
	"github.com/jafarshop/larek/internal/storefront"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var repos *repository.Repositories
	if cfg.Database.Enabled() {
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		repos = postgres.NewRepositories(db, log)
		log.Info("Order journal stored in postgres", zap.String("host", cfg.Database.Host))
	} else if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()

		repos = redis.NewRepositories(rdb, log)
		log.Info("Order journal stored in redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		repos = memory.NewRepositories()
		log.Info("Order journal kept in memory")
	}

	client := larekapi.NewClient(cfg.API, log)
	registry := storefront.NewRegistry(client, repos.Orders, log,
		store.WithStrictInvariants(cfg.IsDevelopment()),
		store.WithRetainedContacts(cfg.Shop.RetainContacts),
	)
	go registry.RunSweeper(ctx, time.Minute, cfg.Shop.SessionTTL)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(cfg, registry, repos, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("api", cfg.API.BaseURL),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
