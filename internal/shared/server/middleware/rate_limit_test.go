package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitAnalyzeStricterThanUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	groupFor := func(c *gin.Context) string {
		if c.Request.Method != http.MethodPost {
			return ""
		}
		if c.FullPath() == "/api/v1/documents/:id/analyze" {
			return "ANALYZE"
		}
		if c.FullPath() == "/api/v1/documents" {
			return "UPLOAD"
		}
		return ""
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(userIDKey, "user-1")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: groupFor,
		Limiter:  limiter,
		Rules: map[string]RateLimitRule{
			"ANALYZE": {Rate: 0.5, Burst: 2},
			"UPLOAD":  {Rate: 1, Burst: 5},
		},
	}))
	r.POST("/api/v1/documents/:id/analyze", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/api/v1/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/doc-1/analyze", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("analyze request %d expected 200, got %d", i+1, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/doc-1/analyze", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("analyze request 3 expected 429, got %d", resp.Code)
	}

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("upload request %d expected 200, got %d", i+1, resp.Code)
		}
	}
}

func TestRateLimitUngroupedRequestsPassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: func(c *gin.Context) string { return "" },
		Limiter:  limiter,
		Rules: map[string]RateLimitRule{
			"ANALYZE": {Rate: 0.5, Burst: 1},
		},
	}))
	r.GET("/api/v1/jobs", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i+1, resp.Code)
		}
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(userIDKey, "user-1")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		GroupFor: func(c *gin.Context) string { return "DEFAULT" },
		Limiter:  limiter,
		Rules: map[string]RateLimitRule{
			"DEFAULT": {Rate: 1, Burst: 1},
		},
	}))
	r.GET("/api/v1/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil)
	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, req1)
	if resp1.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/limited", nil)
	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.Code)
	}
	if resp2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	var payload map[string]any
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["error"] != "rate_limited" {
		t.Fatalf("expected error=rate_limited")
	}
	if _, ok := payload["retryAfterMs"]; !ok {
		t.Fatalf("expected retryAfterMs in response")
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	if ok, _ := limiter.Allow("user-1|DEFAULT", rule); !ok {
		t.Fatal("expected first call allowed")
	}
	if ok, retry := limiter.Allow("user-1|DEFAULT", rule); ok {
		t.Fatal("expected second call denied")
	} else if retry <= 0 {
		t.Fatalf("expected positive retry hint, got %s", retry)
	}

	now = now.Add(2 * time.Second)
	if ok, _ := limiter.Allow("user-1|DEFAULT", rule); !ok {
		t.Fatal("expected call allowed after refill")
	}
}
