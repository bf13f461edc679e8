package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIPRateLimiterPerAddress(t *testing.T) {
	l := NewIPRateLimiter(2, time.Hour)

	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatal("expected the burst to be allowed")
	}
	if l.Allow("1.1.1.1") {
		t.Fatal("expected the third request to be rejected")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatal("other addresses must have their own bucket")
	}
}

func TestIPRateLimiterRefillsAndSweeps(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("1.1.1.1") {
		t.Fatal("expected first request to pass")
	}
	if l.Allow("1.1.1.1") {
		t.Fatal("expected second request to be rejected")
	}

	now = now.Add(2 * time.Minute)
	if !l.Allow("1.1.1.1") {
		t.Fatal("expected bucket to refill after the window")
	}

	now = now.Add(5 * time.Minute)
	l.Allow("3.3.3.3")
	if _, ok := l.visitors["1.1.1.1"]; ok {
		t.Fatal("expected idle visitor to be swept")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(NewIPRateLimiter(1, time.Hour)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if first.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}
