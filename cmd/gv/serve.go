package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gridvault/internal/apikey"
	"github.com/alfredjeanlab/gridvault/internal/backup"
	"github.com/alfredjeanlab/gridvault/internal/config"
	"github.com/alfredjeanlab/gridvault/internal/events"
	"github.com/alfredjeanlab/gridvault/internal/keyreg"
	"github.com/alfredjeanlab/gridvault/internal/reconcile"
	"github.com/alfredjeanlab/gridvault/internal/router"
	"github.com/alfredjeanlab/gridvault/internal/server"
	"github.com/alfredjeanlab/gridvault/internal/store/postgres"
	"github.com/alfredjeanlab/gridvault/internal/store/ssm"
	"github.com/alfredjeanlab/gridvault/internal/tenant"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gridvault server",
	// Override PersistentPreRunE so the server does not create an HTTP client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Load the tenant registry and open one pool per tenant.
		dsns, err := config.LoadTenants(cfg.TenantsFile)
		if err != nil {
			return err
		}
		pools, err := tenant.NewManager(dsns, logger)
		if err != nil {
			return err
		}

		// Run migrations against every tenant database.
		if err := pools.ForEach(func(id string, db *sql.DB) error {
			return postgres.Migrate(db)
		}); err != nil {
			pools.Close()
			return err
		}

		dbStore := postgres.New(pools, logger)

		secrets, err := ssm.New(context.Background(), cfg.AWSRegion, cfg.SSMEndpoint, logger)
		if err != nil {
			pools.Close()
			return err
		}

		// Create event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				pools.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (GV_NATS_URL not set)")
		}

		registry := keyreg.Default(logger)
		rt := router.New(registry, dbStore, secrets, logger)
		keys := apikey.NewManager(dbStore, secrets, publisher, logger)

		// Start HTTP server.
		srv := server.NewServer(rt, keys, logger)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: srv.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start backup scheduler if a destination is configured.
		var scheduler *backup.Scheduler
		if cfg.BackupInterval > 0 && cfg.BackupS3Bucket != "" {
			s3Dest, err := backup.NewS3Destination(
				context.Background(),
				cfg.BackupS3Bucket,
				cfg.BackupS3Key,
				cfg.BackupS3Region,
				cfg.BackupS3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 backup destination", "err", err)
			} else {
				scheduler = backup.NewScheduler(rt, pools.Tenants(), []backup.Destination{s3Dest}, cfg.BackupInterval, logger)
				scheduler.Start()
				logger.Info("backup scheduler started",
					"interval", cfg.BackupInterval, "bucket", cfg.BackupS3Bucket, "key", cfg.BackupS3Key)
			}
		}

		// Start the reconcile worker if NATS is available.
		var reconcileCancel context.CancelFunc
		if cfg.NATSURL != "" {
			sub, err := events.NewNATSSubscriber(cfg.NATSURL)
			if err != nil {
				logger.Error("failed to create reconcile subscriber", "err", err)
			} else {
				worker := reconcile.NewWorker(secrets, logger)
				var reconcileCtx context.Context
				reconcileCtx, reconcileCancel = context.WithCancel(context.Background())
				go func() {
					if err := worker.Run(reconcileCtx, sub); err != nil {
						logger.Error("reconcile worker error", "err", err)
					}
					sub.Close()
				}()
				logger.Info("reconcile worker started")
			}
		}

		logger.Info("gridvault server started",
			"http_addr", cfg.HTTPAddr,
			"tenants", len(pools.Tenants()),
		)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if reconcileCancel != nil {
			reconcileCancel()
			logger.Info("reconcile worker stopped")
		}

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("backup scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		pools.Close()

		logger.Info("shutdown complete")
		return nil
	},
}
