package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyAuthType = "auth_type" // "bearer" or "none"
)

// AuthType indicates how the caller was identified
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
)

// DefaultUserID is used when authentication is disabled
const DefaultUserID = uint(0)

// TokenStore resolves API tokens to users.
type TokenStore interface {
	GetUserByToken(token string) (*entities.User, error)
}

// Middleware resolves the caller identity for HTTP requests.
type Middleware struct {
	store       TokenStore
	limiter     *RateLimiter
	config      config.Auth
	publicPaths map[string]bool
}

// NewMiddleware creates a new authentication middleware. limiter may be nil.
func NewMiddleware(store TokenStore, limiter *RateLimiter, cfg config.Auth) *Middleware {
	publicPaths := map[string]bool{
		"/health":                true,
		"/ping":                  true,
		"/api/data/template/csv": true,
	}

	return &Middleware{
		store:       store,
		limiter:     limiter,
		config:      cfg,
		publicPaths: publicPaths,
	}
}

// Handler returns a Gin middleware handler that identifies the caller.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return m.noAuthHandler()
	}

	return m.authHandler()
}

// noAuthHandler injects DefaultUserID for all requests when auth is disabled.
func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, DefaultUserID)
		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

func (m *Middleware) authHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
			return
		}

		ip := c.ClientIP()
		if m.limiter != nil {
			if allowed, retryAfter := m.limiter.Allow(ip); !allowed {
				c.Header("Retry-After", retryAfter.String())
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":       "too many failed authentication attempts",
					"retry_after": retryAfter.String(),
				})
				return
			}
		}

		user, attempted := m.tryBearerAuth(c)
		if user != nil {
			if m.limiter != nil {
				m.limiter.RecordSuccess(ip)
			}
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyUsername, user.Username)
			c.Set(ContextKeyAuthType, AuthTypeBearer)
			c.Next()
			return
		}

		if attempted && m.limiter != nil {
			m.limiter.RecordFailure(ip)
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
	}
}

// tryBearerAuth looks up the "Bearer <token>" header. attempted reports
// whether a token was presented at all.
func (m *Middleware) tryBearerAuth(c *gin.Context) (user *entities.User, attempted bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, true
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return nil, true
	}

	user, err := m.store.GetUserByToken(token)
	if err != nil {
		return nil, true
	}

	return user, true
}

func (m *Middleware) isPublicPath(path string) bool {
	return m.publicPaths[path]
}

// GetUserID retrieves the caller's user ID from the context.
// Returns DefaultUserID (0) if auth is disabled.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
