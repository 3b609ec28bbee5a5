package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/paintqueue/paintqueue-backend/api/responses"
	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
	"github.com/paintqueue/paintqueue-backend/pkg/redis"
)

// RateLimitStore records one hit in a fixed window.
type RateLimitStore interface {
	Hit(ctx context.Context, scope string, limit int64, window time.Duration) (redis.Window, error)
}

// RateLimitPolicy is a per-IP fixed window for one route group.
type RateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int64

	trusted []netip.Prefix
}

func NewRateLimitPolicy(name string, window time.Duration, limit int) RateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "default"
	}
	return RateLimitPolicy{name: name, window: window, limit: int64(limit)}
}

// TrustProxies returns a copy that reads X-Forwarded-For and X-Real-IP only
// when the socket peer is inside one of prefixes.
func (p RateLimitPolicy) TrustProxies(prefixes []netip.Prefix) RateLimitPolicy {
	p.trusted = append([]netip.Prefix(nil), prefixes...)
	return p
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

// RateLimit throttles requests per client IP and reports the window in
// X-RateLimit-* headers. A nil store disables it, which is how deployments
// without Redis run.
func RateLimit(policy RateLimitPolicy, store RateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r, policy.trusted)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			win, err := store.Hit(ctx, policy.name+":"+ip, policy.limit, policy.window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(win.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(win.Remaining(), 10))
			if win.Allowed() {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(win.ResetIn.Seconds()))))
			if logg != nil {
				logg.Warn(logg.WithFields(ctx, map[string]any{
					"policy":   policy.name,
					"ip":       ip,
					"attempts": win.Count,
					"limit":    win.Limit,
					"reset_ms": win.ResetIn.Milliseconds(),
				}), "rate_limit.blocked")
			}
			responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many lookups, try again shortly"))
		})
	}
}

// clientIP keys on the socket peer. Behind a trusted proxy it walks
// X-Forwarded-For from the right and takes the first untrusted hop, then
// falls back to X-Real-IP.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if !isTrusted(peer, trusted) {
		return peer
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !isTrusted(hop, trusted) {
				return hop
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return peer
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
