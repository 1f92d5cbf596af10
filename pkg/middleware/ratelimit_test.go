package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuzammilBaloch-22/Cakelora/pkg/logger"
)

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(RateLimitConfig{}, logger.Discard())(http.HandlerFunc(ok))

	for range 20 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/custom-orders", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_BurstThenLimited(t *testing.T) {
	h := RateLimit(RateLimitConfig{PerMinute: 1, Burst: 2}, logger.Discard())(http.HandlerFunc(ok))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/custom-orders", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/custom-orders", nil)
	req.RemoteAddr = "198.51.100.4:51000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVisitorStore_RefillsAndSweeps(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newVisitorStore(RateLimitConfig{PerMinute: 1, Burst: 1, IdleTTL: 5 * time.Minute})
	store.nowFunc = func() time.Time { return now }

	assert.True(t, store.allow("203.0.113.7"))
	assert.False(t, store.allow("203.0.113.7"))

	now = now.Add(time.Minute)
	assert.True(t, store.allow("203.0.113.7"))
	assert.Equal(t, 1, store.len())

	now = now.Add(10 * time.Minute)
	assert.True(t, store.allow("198.51.100.4"))
	assert.Equal(t, 1, store.len())
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	h := RateLimit(RateLimitConfig{PerMinute: 1, Burst: 1}, logger.Discard())(http.HandlerFunc(ok))

	codes := make([]int, 0, 3)
	for i := range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/custom-orders", nil)
		req.RemoteAddr = "203.0.113.7:51000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i+1))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_TrustedProxyForwardsClient(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	h := RateLimit(RateLimitConfig{PerMinute: 1, Burst: 1, TrustedProxies: trusted}, logger.Discard())(http.HandlerFunc(ok))

	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/custom-orders", nil)
		req.RemoteAddr = "10.0.0.2:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"))
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{"10.1.2.3/8", " 192.0.2.10 ", "", "2001:db8::/32"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.10/32"),
		netip.MustParsePrefix("2001:db8::/32"),
	}, got)

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"10.0.0.0/99"})
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		header  map[string]string
		remote  string
		trusted []netip.Prefix
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:1234", trusted, "192.0.2.1"},
		{"no port", nil, "192.0.2.5", trusted, "192.0.2.5"},
		{"untrusted peer ignores forwarded", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "192.0.2.1:80", trusted, "192.0.2.1"},
		{"no trusted proxies ignores forwarded", map[string]string{"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "203.0.113.8"}, "10.0.0.1:80", nil, "10.0.0.1"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.7"}, "10.0.0.1:80", trusted, "203.0.113.9"},
		{"client-supplied hop skipped", map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.9"}, "10.0.0.1:80", trusted, "203.0.113.9"},
		{"garbage forwarded", map[string]string{"X-Forwarded-For": "nope", "X-Real-IP": "198.51.100.2"}, "10.0.0.1:80", trusted, "198.51.100.2"},
		{"all hops trusted", map[string]string{"X-Forwarded-For": "10.0.0.9"}, "10.0.0.1:80", trusted, "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trusted))
		})
	}
}
