package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
)

func limitedHandler(cfg RateLimitConfig) (echo.HandlerFunc, *echo.Echo) {
	e := echo.New()
	mw := RateLimit(cfg)
	return mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}), e
}

func TestRateLimit_WithinBurst(t *testing.T) {
	handler, e := limitedHandler(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Fatalf("request %d: expected X-RateLimit-Limit 10, got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsBurst(t *testing.T) {
	handler, e := limitedHandler(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := handler(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", httpErr.Code)
	}
	retryAfter, parseErr := strconv.Atoi(rec.Header().Get("Retry-After"))
	if parseErr != nil || retryAfter < 1 {
		t.Fatalf("expected positive Retry-After, got %q", rec.Header().Get("Retry-After"))
	}
}

func TestRateLimit_SeparateBucketsPerClient(t *testing.T) {
	handler, e := limitedHandler(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})

	for _, ip := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip
		c := e.NewContext(req, httptest.NewRecorder())
		if err := handler(c); err != nil {
			t.Fatalf("client %s: expected first request to pass, got %v", ip, err)
		}
	}
}
