package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/auth"
)

// multipartOverhead is headroom above the import size limit for the
// multipart envelope kept in memory before spilling to disk.
const multipartOverhead = 1 << 20

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	Importer Importer
	Exporter Exporter
	History  HistoryReader

	// Database is pinged by /health. May be nil.
	Database Pinger

	// AuthMiddleware identifies the caller. When nil every request acts as
	// auth.DefaultUserID.
	AuthMiddleware *auth.Middleware

	// MaxUploadBytes bounds the in-memory part of multipart parsing.
	MaxUploadBytes int64

	Version string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadBytes + multipartOverhead
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	NewDataController(cfg.Importer, cfg.Exporter, cfg.History).RegisterRoutes(router)

	return router
}
