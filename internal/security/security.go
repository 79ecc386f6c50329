// Package security provides the transport hardening for the service:
// security headers, CSP nonces, per-IP rate limiting, content-type and input
// validation, and request timeouts.
package security

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxNameLength     int           `json:"max_name_length"`
	MaxTextLength     int           `json:"max_text_length"`
	MaxRequestsPerMin int           `json:"max_requests_per_min"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	RequestTimeout    time.Duration `json:"request_timeout"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxNameLength:     200,
		MaxTextLength:     10000,
		MaxRequestsPerMin: 120,
		TrustedProxies:    []string{"127.0.0.1", "::1"},
		RequestTimeout:    10 * time.Second,
	}
}

// SecurityMiddleware provides the security middleware set
type SecurityMiddleware struct {
	config SecurityConfig

	mu         sync.Mutex
	ipLimiters map[string]*ipLimiter
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	sm := &SecurityMiddleware{
		config:     config,
		ipLimiters: make(map[string]*ipLimiter),
	}

	go sm.cleanupLoop()

	return sm
}

// ValidateName validates a factor name or scenario label
func (sm *SecurityMiddleware) ValidateName(input string) error {
	if len(input) > sm.config.MaxNameLength {
		return fmt.Errorf("input exceeds maximum length of %d characters", sm.config.MaxNameLength)
	}

	if strings.Contains(input, "\x00") {
		return fmt.Errorf("input contains invalid characters")
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("input contains invalid UTF-8 encoding")
	}

	return nil
}

// ValidateText validates a free-text field (reflection)
func (sm *SecurityMiddleware) ValidateText(input string) error {
	if len(input) > sm.config.MaxTextLength {
		return fmt.Errorf("text exceeds maximum length of %d characters", sm.config.MaxTextLength)
	}

	if strings.Contains(input, "\x00") {
		return fmt.Errorf("text contains invalid characters")
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("text contains invalid UTF-8 encoding")
	}

	return nil
}

// RateLimitByIP implements per-IP rate limiting
func (sm *SecurityMiddleware) RateLimitByIP(c *gin.Context) {
	clientIP := c.ClientIP()

	sm.mu.Lock()
	entry, exists := sm.ipLimiters[clientIP]
	if !exists {
		rps := rate.Limit(float64(sm.config.MaxRequestsPerMin) / 60.0)
		burst := sm.config.MaxRequestsPerMin / 2
		if burst < 5 {
			burst = 5
		}
		entry = &ipLimiter{limiter: rate.NewLimiter(rps, burst)}
		sm.ipLimiters[clientIP] = entry
	}
	entry.lastSeen = time.Now()
	sm.mu.Unlock()

	if !entry.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded for IP",
			"retry_after": "60",
		})
		c.Abort()
		return
	}

	c.Next()
}

// SecurityHeaders adds security headers to responses
func (sm *SecurityMiddleware) SecurityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

	if c.Request.TLS != nil {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	c.Next()
}

// ValidateContentType validates request content type
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")

	allowedTypes := []string{
		"application/json",
		"application/x-www-form-urlencoded",
	}

	if contentType != "" {
		found := false
		for _, allowed := range allowedTypes {
			if strings.Contains(strings.ToLower(contentType), allowed) {
				found = true
				break
			}
		}

		if !found {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "unsupported content type",
			})
			c.Abort()
			return
		}
	}

	c.Next()
}

// RequestTimeout enforces request timeout
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

// cleanupLoop drops limiters for IPs not seen in the last hour
func (sm *SecurityMiddleware) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)

		sm.mu.Lock()
		for ip, entry := range sm.ipLimiters {
			if entry.lastSeen.Before(cutoff) {
				delete(sm.ipLimiters, ip)
			}
		}
		sm.mu.Unlock()
	}
}
