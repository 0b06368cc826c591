package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cofrinho-app/cofrinho-api/internal/database"
	importhandler "github.com/cofrinho-app/cofrinho-api/internal/domain/import/handler"
	importrepo "github.com/cofrinho-app/cofrinho-api/internal/domain/import/repository"
	importservice "github.com/cofrinho-app/cofrinho-api/internal/domain/import/service"
	"github.com/cofrinho-app/cofrinho-api/pkg/config"
	"github.com/cofrinho-app/cofrinho-api/pkg/cron"
	"github.com/cofrinho-app/cofrinho-api/pkg/metrics"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	Pool     *pgxpool.Pool
	Logger   *slog.Logger
	Registry *prometheus.Registry

	ImportRepo    importrepo.ImportRepository
	ImportService *importservice.ImportService
	ImportHandler *importhandler.ImportHandler
	Scheduler     *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	deps.initMetrics()
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase opens the connection pool and runs migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	dsn := d.Config.Database.DSN()

	if err := database.Migrate(dsn); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := database.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	d.Pool = pool

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// initServices initializes the repository and service layers
func (d *Dependencies) initServices() {
	d.ImportRepo = importrepo.NewPostgresRepository(d.Pool)

	previewTTL := time.Duration(d.Config.Import.PreviewTTLMinutes) * time.Minute
	d.ImportService = importservice.NewImportService(
		d.ImportRepo,
		metrics.NewImportMetrics(d.Registry),
		d.Logger,
		previewTTL,
	)

	d.Scheduler = cron.NewScheduler(d.ImportService, d.Config.Import.PreviewPurgeSpec, d.Logger)

	d.Logger.Info("services initialized")
}

// initHandlers initializes the HTTP layer
func (d *Dependencies) initHandlers() {
	maxFileSize := int64(d.Config.Import.MaxFileSizeMB) << 20
	d.ImportHandler = importhandler.NewImportHandler(d.ImportService, d.Logger, maxFileSize)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
	d.Logger.Info("cleanup completed")
}
