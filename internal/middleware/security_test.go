package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func rateLimitedRouter(cfg RateLimitConfig) *gin.Engine {
	limiter := NewRateLimiter(nil, testLogger(), cfg)
	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimiter_LocalFallbackBlocksOverLimit(t *testing.T) {
	router := rateLimitedRouter(RateLimitConfig{
		Requests:       3,
		Window:         time.Minute,
		RedisKeyPrefix: "test:",
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 over the limit, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header")
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	limiter := NewRateLimiter(nil, testLogger(), RateLimitConfig{
		Requests: 2,
		Window:   50 * time.Millisecond,
	})

	for i := 0; i < 2; i++ {
		if allowed, _ := limiter.allowLocal("10.0.0.1"); !allowed {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
	if allowed, _ := limiter.allowLocal("10.0.0.1"); allowed {
		t.Fatal("Expected third request in window to be blocked")
	}

	time.Sleep(60 * time.Millisecond)
	if allowed, _ := limiter.allowLocal("10.0.0.1"); !allowed {
		t.Error("Expected a fresh window after expiry")
	}
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	limiter := NewRateLimiter(nil, testLogger(), RateLimitConfig{
		Requests: 1,
		Window:   time.Minute,
	})

	if allowed, _ := limiter.allowLocal("10.0.0.1"); !allowed {
		t.Fatal("First request from first IP should be allowed")
	}
	if allowed, _ := limiter.allowLocal("10.0.0.1"); allowed {
		t.Fatal("Second request from first IP should be blocked")
	}
	if allowed, _ := limiter.allowLocal("10.0.0.2"); !allowed {
		t.Error("A different IP should have its own counter")
	}
}

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"owner@example.com", "ow***@example.com"},
		{"ab@example.com", "**@example.com"},
		{"not-an-email", "***"},
	}
	for _, tc := range cases {
		if got := maskEmail(tc.in); got != tc.want {
			t.Errorf("maskEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("Expected X-Frame-Options DENY, got %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("Expected X-Content-Type-Options nosniff, got %q", got)
	}
}
