package auth

import (
	"sync"
	"time"
)

// RateLimiter locks out client IPs that keep presenting bad API tokens.
// Failures are counted in a fixed window starting at the first failure.
type RateLimiter struct {
	mu          sync.Mutex
	failures    map[string]*failureRecord
	maxFailures int
	window      time.Duration
	lockout     time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

type failureRecord struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxFailures     int           // Failures before lockout (default: 10)
	Window          time.Duration // Window for counting failures (default: 15m)
	Lockout         time.Duration // Lockout after max failures (default: 15m)
	CleanupInterval time.Duration // 0 disables background cleanup
}

// DefaultRateLimitConfig returns the limits used by the server.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxFailures:     10,
		Window:          15 * time.Minute,
		Lockout:         15 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a rate limiter. Call Stop when done if a cleanup
// interval was configured.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = 15 * time.Minute
	}

	rl := &RateLimiter{
		failures:    make(map[string]*failureRecord),
		maxFailures: cfg.MaxFailures,
		window:      cfg.Window,
		lockout:     cfg.Lockout,
		now:         time.Now,
		stop:        make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go rl.cleanupLoop(cfg.CleanupInterval)
	}

	return rl
}

// Stop ends the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Allow reports whether the IP may try to authenticate, and if not, how
// long until the lockout expires.
func (rl *RateLimiter) Allow(ip string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, exists := rl.failures[ip]
	if !exists {
		return true, 0
	}
	if !record.lockedUntil.IsZero() && now.Before(record.lockedUntil) {
		return false, record.lockedUntil.Sub(now)
	}
	return true, 0
}

// RecordFailure counts a rejected token. It reports whether the IP is now
// locked out.
func (rl *RateLimiter) RecordFailure(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	record, exists := rl.failures[ip]
	if !exists || now.Sub(record.firstFailed) > rl.window {
		record = &failureRecord{firstFailed: now}
		rl.failures[ip] = record
	}

	record.count++
	if record.count >= rl.maxFailures {
		record.lockedUntil = now.Add(rl.lockout)
		return true
	}
	return false
}

// RecordSuccess forgets earlier failures of the IP.
func (rl *RateLimiter) RecordSuccess(ip string) {
	rl.mu.Lock()
	delete(rl.failures, ip)
	rl.mu.Unlock()
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup drops records whose window and lockout have both passed.
func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, record := range rl.failures {
		windowExpired := now.Sub(record.firstFailed) > rl.window
		lockoutExpired := record.lockedUntil.IsZero() || now.After(record.lockedUntil)
		if windowExpired && lockoutExpired {
			delete(rl.failures, ip)
		}
	}
}
