// Package main runs the product service the dashboard talks to.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abgdnv/invdash/internal/config"
	"github.com/abgdnv/invdash/internal/logger"
	"github.com/abgdnv/invdash/internal/product/app"
	grpcImpl "github.com/abgdnv/invdash/internal/product/grpc"
	"github.com/abgdnv/invdash/internal/product/store"
	"github.com/abgdnv/invdash/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const healthInterval = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads configuration, opens the product store and serves HTTP and gRPC until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, cfgErr := config.LoadProductService()
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	appLogger := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(appLogger)

	shutdownTracing, err := telemetry.Setup(ctx, "product-service", cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := cfg.Shutdown.Context()
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			appLogger.Error("failed to shut down tracer provider", "error", err)
		}
	}()

	productStore, closeStore, err := openStore(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	deps := app.SetupDependencies(productStore, appLogger)
	httpServer := app.SetupHttpServer(deps, cfg)

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		appLogger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := cfg.Shutdown.Context()
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.GRPC.Enabled {
		reporter := grpcImpl.NewHealthReporter(deps.ProductService, healthInterval, appLogger)
		grpcServer := app.SetupGrpcServer(reporter, cfg.GRPC.ReflectionEnabled, appLogger)

		g.Go(func() error {
			reporter.Run(gCtx)
			return nil
		})
		// Start the gRPC server
		g.Go(func() error {
			grpcAddr := ":" + cfg.GRPC.Port
			lis, err := net.Listen("tcp", grpcAddr)
			if err != nil {
				return fmt.Errorf("failed to listen on gRPC port: %w", err)
			}
			appLogger.Info("gRPC server listening", slog.String("addr", grpcAddr))
			return grpcServer.Serve(lis)
		})
		// gracefully shutdown gRPC server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			appLogger.Info("Shutting down gRPC server...")
			stopped := make(chan struct{})
			go func() {
				grpcServer.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
				appLogger.Info("gRPC server stopped gracefully.")
				return nil
			case <-time.After(cfg.Shutdown.Timeout):
				appLogger.Warn("gRPC server graceful stop timed out. Forcing stop.")
				grpcServer.Stop()
				return fmt.Errorf("grpc server graceful stop timed out")
			}
		})
	} else {
		appLogger.Info("gRPC server is disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// openStore returns the in-memory store when no database URL is configured,
// otherwise a migrated PostgreSQL store.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.ProductStore, func(), error) {
	if cfg.InMemory() {
		logger.Info("No database configured, keeping products in memory")
		return store.NewInMemoryStore(), func() {}, nil
	}

	if cfg.Migrate {
		if err := store.Migrate(cfg.URL); err != nil {
			return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.Info("Database migrations applied")
	}

	dbPool, err := newDbPool(ctx, cfg.URL, cfg.Timeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Successfully connected to the database!")
	return store.NewPgStore(dbPool), dbPool.Close, nil
}

// newDbPool creates a connection pool and pings it so start-up fails early on a bad URL.
func newDbPool(ctx context.Context, url string, timeout time.Duration) (*pgxpool.Pool, error) {
	poolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dbPool, err := pgxpool.New(poolCtx, url)
	if err != nil {
		return nil, err
	}
	if err := dbPool.Ping(poolCtx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return dbPool, nil
}
