package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/mrlokans/readinglog/internal/validation"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Every request acts as the default user (default)
	AuthModeToken AuthMode = "token" // Bearer API token issued by create-user
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Import
		Audit
		Tasks
		Retention
	}

	HTTP struct {
		Port int32  `env:"PORT" validate:"gte=1,lte=65535"`
		Host string `env:"HOST"`
	}
	Global struct {
		ShutdownTimeoutInSeconds int `env:"SHUTDOWN_TIMEOUT_IN_SECONDS" validate:"gte=0"`
	}
	Database struct {
		Path string `env:"DATABASE_PATH" validate:"required"`
	}
	Auth struct {
		Mode AuthMode `env:"AUTH_MODE" validate:"oneof=none token"`
	}
	Import struct {
		MaxFileSize  int64 `env:"IMPORT_MAX_FILE_SIZE" validate:"gt=0"`
		ErrorPreview int   `env:"IMPORT_ERROR_PREVIEW" validate:"gte=1"`
	}
	Audit struct {
		Dir            string `env:"AUDIT_DIR"`
		ArchiveUploads bool   `env:"AUDIT_ARCHIVE_UPLOADS"`
		RetentionDays  int    `env:"AUDIT_RETENTION_DAYS" validate:"gte=1"` // Days to keep audit events (default: 30)
	}
	Tasks struct {
		Enabled         bool          `env:"TASKS_ENABLED"`
		Workers         int           `env:"TASK_WORKERS" validate:"gte=1"`
		ReleaseAfter    time.Duration `env:"TASK_RELEASE_AFTER" validate:"gt=0"`
		CleanupInterval time.Duration `env:"TASK_CLEANUP_INTERVAL" validate:"gt=0"`
	}
	Retention struct {
		Schedule string `env:"RETENTION_SCHEDULE"` // Cron format: "30 3 * * *" = daily at 03:30
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("auth_mode", string(AuthModeNone))

	// Import defaults
	v.SetDefault("import_max_file_size", DefaultMaxFileSize)
	v.SetDefault("import_error_preview", DefaultErrorPreview)

	// Audit defaults
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("audit_archive_uploads", false)
	v.SetDefault("audit_retention_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("retention_schedule", "30 3 * * *") // Daily at 03:30

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			Mode: AuthMode(v.GetString("AUTH_MODE")),
		},
		Import: Import{
			MaxFileSize:  v.GetInt64("IMPORT_MAX_FILE_SIZE"),
			ErrorPreview: v.GetInt("IMPORT_ERROR_PREVIEW"),
		},
		Audit: Audit{
			Dir:            v.GetString("AUDIT_DIR"),
			ArchiveUploads: v.GetBool("AUDIT_ARCHIVE_UPLOADS"),
			RetentionDays:  v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Retention: Retention{
			Schedule: v.GetString("RETENTION_SCHEDULE"),
		},
	}
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	if err := validation.New().Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}
