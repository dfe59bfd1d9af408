package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/auth"
	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/database"
	auditrepo "github.com/mrlokans/readinglog/internal/database/audit"
	"github.com/mrlokans/readinglog/internal/database/books"
	http_controllers "github.com/mrlokans/readinglog/internal/http"
	"github.com/mrlokans/readinglog/internal/importers"
	"github.com/mrlokans/readinglog/internal/scheduler"
	"github.com/mrlokans/readinglog/internal/services"
	"github.com/mrlokans/readinglog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Components are the storage and services shared by the server and the
// offline commands.
type Components struct {
	DB      *database.Database
	Books   *books.Repository
	Audit   *audit.Service
	Imports *services.ImportService
	Exports *services.ExportService
}

// Build opens the database and wires the import and export services.
func Build(cfg *config.Config) (*Components, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var archive *audit.Archive
	if cfg.Audit.ArchiveUploads {
		archive = audit.NewArchive(cfg.Audit.Dir)
	}

	bookRepo := books.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB), archive)
	pipeline := importers.NewPipeline(bookRepo, cfg.Import.MaxFileSize)

	return &Components{
		DB:      db,
		Books:   bookRepo,
		Audit:   auditService,
		Imports: services.NewImportService(pipeline, bookRepo, auditService, cfg.Import.ErrorPreview),
		Exports: services.NewExportService(bookRepo, auditService),
	}, nil
}

func (c *Components) Close() error {
	return c.DB.Close()
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

// Run wires every component and serves HTTP until shutdown.
func Run(cfg *config.Config, version string) error {
	log.Printf("Starting readinglog v%s", version)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if schedule := cfg.Retention.Schedule; schedule != "" {
		if err := scheduler.ValidateSchedule(schedule); err != nil {
			return fmt.Errorf("invalid configuration: RETENTION_SCHEDULE %q: %w", schedule, err)
		}
	}

	components, err := Build(cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	var limiter *auth.RateLimiter
	if cfg.Auth.Mode == config.AuthModeToken {
		limiter = auth.NewRateLimiter(auth.DefaultRateLimitConfig())
		defer limiter.Stop()
		log.Printf("Authentication mode: token")
	} else {
		log.Printf("Authentication mode: none, all requests act as user %d", auth.DefaultUserID)
	}
	middleware := auth.NewMiddleware(components.DB, limiter, cfg.Auth)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var taskClient *tasks.Client
	var retention *scheduler.RetentionScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to create task client: %w", err)
		}
		defer taskClient.Close()

		taskClient.Register(tasks.NewPruneAuditTrailQueue(components.Audit))
		taskClient.Start(ctx)

		retention = scheduler.NewRetentionScheduler(taskClient, cfg.Retention.Schedule, cfg.Audit.RetentionDays)
		if err := retention.Start(ctx); err != nil {
			return fmt.Errorf("failed to start retention scheduler: %w", err)
		}
	} else {
		log.Printf("Background tasks disabled, audit retention will not run")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Importer:       components.Imports,
		Exporter:       components.Exports,
		History:        components.Audit,
		Database:       components.DB,
		AuthMiddleware: middleware,
		MaxUploadBytes: cfg.Import.MaxFileSize,
		Version:        version,
	})

	return Serve(router, cfg, func(ctx context.Context) {
		if retention != nil {
			retention.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
	})
}
