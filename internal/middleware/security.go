package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimitConfig holds configuration for per-IP rate limiting
type RateLimitConfig struct {
	// Requests allowed per window
	Requests int
	// Window is the fixed counting window
	Window time.Duration
	// RedisKeyPrefix for storing counters
	RedisKeyPrefix string
}

// DefaultRateLimitConfig returns the general API limit.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests:       120,
		Window:         time.Minute,
		RedisKeyPrefix: "studio:ratelimit:",
	}
}

// LoginRateLimitConfig returns the stricter limit applied to credential
// endpoints, slowing URL probing and password guessing from one address.
func LoginRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests:       10,
		Window:         time.Minute,
		RedisKeyPrefix: "studio:ratelimit:login:",
	}
}

// RateLimiter provides fixed-window per-IP rate limiting backed by Redis,
// with an in-memory fallback when Redis is unavailable.
type RateLimiter struct {
	config      RateLimitConfig
	redisClient *redis.Client
	logger      *logrus.Logger

	localCounts map[string]*windowCount
	localMu     sync.Mutex
}

type windowCount struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, logger *logrus.Logger, config RateLimitConfig) *RateLimiter {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return &RateLimiter{
		config:      config,
		redisClient: redisClient,
		logger:      logger,
		localCounts: make(map[string]*windowCount),
	}
}

// Middleware returns the gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, retryAfter := rl.allow(c, ip)
		if !allowed {
			LogSecurityEvent(rl.logger, "rate_limit_exceeded", ip, "", map[string]interface{}{
				"endpoint": c.Request.URL.Path,
			})
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"code":        "RATE_LIMITED",
				"retry_after": int(retryAfter.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// allow counts one request against the IP's current window.
func (rl *RateLimiter) allow(c *gin.Context, ip string) (bool, time.Duration) {
	if rl.redisClient != nil {
		key := rl.config.RedisKeyPrefix + ip
		ctx := c.Request.Context()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err == nil {
			if count == 1 {
				rl.redisClient.Expire(ctx, key, rl.config.Window)
			}
			if count > int64(rl.config.Requests) {
				ttl, _ := rl.redisClient.TTL(ctx, key).Result()
				if ttl <= 0 {
					ttl = rl.config.Window
				}
				return false, ttl
			}
			return true, 0
		}
		rl.logger.WithError(err).Warn("Redis rate limit check failed, using local fallback")
	}

	return rl.allowLocal(ip)
}

func (rl *RateLimiter) allowLocal(ip string) (bool, time.Duration) {
	now := time.Now()

	rl.localMu.Lock()
	defer rl.localMu.Unlock()

	wc, exists := rl.localCounts[ip]
	if !exists || now.Sub(wc.windowStart) >= rl.config.Window {
		rl.localCounts[ip] = &windowCount{count: 1, windowStart: now}
		return true, 0
	}

	wc.count++
	if wc.count > rl.config.Requests {
		return false, rl.config.Window - now.Sub(wc.windowStart)
	}
	return true, 0
}

// LogSecurityEvent logs security-related events in a consistent shape so
// they can be filtered downstream.
func LogSecurityEvent(logger *logrus.Logger, eventType, ip, email string, details map[string]interface{}) {
	fields := logrus.Fields{
		"event_type":     eventType,
		"ip_address":     ip,
		"security_event": true,
	}
	if email != "" {
		fields["email_masked"] = maskEmail(email)
	}
	for k, v := range details {
		fields[k] = v
	}

	logger.WithFields(fields).Info("Security event")
}

// maskEmail masks email for logging (privacy)
func maskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***"
	}

	local := parts[0]
	domain := parts[1]

	if len(local) <= 2 {
		return "**@" + domain
	}

	return local[:2] + strings.Repeat("*", len(local)-2) + "@" + domain
}

// RequestLoggingMiddleware logs incoming requests
func RequestLoggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[STUDIO-ADMIN] %s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	})
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'")

		c.Next()
	}
}
