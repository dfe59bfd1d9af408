// Package auth identifies the caller of the HTTP API.
//
// It supports two modes:
//   - "none": No authentication (default), every request acts as user 0
//   - "token": Requests under /api must carry "Authorization: Bearer <token>"
//
// # Configuration
//
//	AUTH_MODE=none   # Default, single local library
//	AUTH_MODE=token  # Tokens are minted by the create-user command
//
// The template, health and ping routes stay public in token mode. Client IPs
// that keep presenting unknown tokens are locked out for a while by
// RateLimiter.
//
// # Usage
//
//	limiter := auth.NewRateLimiter(auth.DefaultRateLimitConfig())
//	mw := auth.NewMiddleware(db, limiter, cfg.Auth)
//	router.Use(mw.Handler())
//
// Extract the caller in handlers:
//
//	userID := auth.GetUserID(c)
package auth
