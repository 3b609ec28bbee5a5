package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
	"github.com/paintqueue/paintqueue-backend/pkg/redis"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	scopes []string
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) Hit(_ context.Context, scope string, limit int64, window time.Duration) (redis.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.Window{}, f.err
	}
	f.counts[scope]++
	f.scopes = append(f.scopes, scope)
	return redis.Window{Count: f.counts[scope], Limit: limit, ResetIn: window - 1500*time.Millisecond}, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	store := newFakeRateStore()
	handler := RateLimit(NewRateLimitPolicy("Employee_Lookup", time.Minute, 2), store, nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/employees?code=E-1", nil)
		req.RemoteAddr = "10.0.0.7:4242"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
			t.Fatalf("request %d: limit header %q", i, got)
		}
		if i < 2 {
			if rec.Code != http.StatusOK {
				t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
			t.Fatalf("remaining header %q", got)
		}
		if got := rec.Header().Get("Retry-After"); got != "59" {
			t.Fatalf("retry-after header %q", got)
		}
		var payload struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if payload.Code != string(pkgerrors.CodeRateLimit) {
			t.Fatalf("unexpected code: %s", payload.Code)
		}
	}
	if store.scopes[0] != "employee_lookup:10.0.0.7" {
		t.Fatalf("unexpected scope %q", store.scopes[0])
	}
}

func TestRateLimit_SeparateClientsHaveSeparateWindows(t *testing.T) {
	store := newFakeRateStore()
	policy := NewRateLimitPolicy("lookup", time.Minute, 1).
		TrustProxies([]netip.Prefix{netip.MustParsePrefix("172.16.0.0/12")})
	handler := RateLimit(policy, store, nil)(okHandler())

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
		req.RemoteAddr = "172.16.0.2:5000"
		req.Header.Set("X-Forwarded-For", ip+", 172.16.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", ip, rec.Code)
		}
	}
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	store := newFakeRateStore()
	handler := RateLimit(NewRateLimitPolicy("lookup", time.Minute, 1), store, nil)(okHandler())

	codes := make([]int, 0, 2)
	for _, spoofed := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
		req.RemoteAddr = "203.0.113.9:4242"
		req.Header.Set("X-Forwarded-For", spoofed)
		req.Header.Set("X-Real-IP", spoofed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("rotating forwarded headers must not reset the window, got %v", codes)
	}
	for _, scope := range store.scopes {
		if scope != "lookup:203.0.113.9" {
			t.Fatalf("unexpected scope %q", scope)
		}
	}
}

func TestClientIPSkipsTrustedHops(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	req := httptest.NewRequest(http.MethodGet, "/api/employees", nil)
	req.RemoteAddr = "10.1.2.3:80"
	req.Header.Set("X-Forwarded-For", "6.6.6.6, 198.51.100.4, 10.0.0.5")

	if got := clientIP(req, trusted); got != "198.51.100.4" {
		t.Fatalf("expected first untrusted hop from the right, got %q", got)
	}
	if got := clientIP(req, nil); got != "10.1.2.3" {
		t.Fatalf("expected socket peer without trusted proxies, got %q", got)
	}
}

func TestRateLimit_DisabledWithoutStore(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("lookup", time.Minute, 1), nil, nil)(okHandler())
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected pass-through, got %d", rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "" {
			t.Fatalf("disabled limiter must not set headers")
		}
	}
}

func TestRateLimit_StoreFailureIsDependencyError(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	handler := RateLimit(NewRateLimitPolicy("lookup", time.Minute, 1), store, nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/employees", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
