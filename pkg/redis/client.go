// Package redis holds the optional Redis connection. It backs the per-IP
// employee lookup limiter and nothing else; the service runs without it.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paintqueue/paintqueue-backend/pkg/config"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
)

const keyPrefix = "paintqueue:rate_limit"

var errNoConnection = errors.New("redis: no connection")

// counter is the subset of go-redis the limiter needs.
type counter interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

type Client struct {
	cmd  counter
	conn *redis.Client
}

// New connects and pings. Options from a URL win over the discrete fields.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	conn := redis.NewClient(opts)
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "redis_addr", opts.Addr), "redis connection established")
	}
	return &Client{cmd: conn, conn: conn}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis url or address is required")
	}
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	}
	setDefault(&opts.DB, cfg.DB)
	setDefault(&opts.PoolSize, cfg.PoolSize)
	setDefault(&opts.MinIdleConns, cfg.MinIdleConns)
	setDefault(&opts.DialTimeout, cfg.DialTimeout)
	setDefault(&opts.ReadTimeout, cfg.ReadTimeout)
	setDefault(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// Window is a fixed-window counter right after a hit was recorded.
type Window struct {
	Count   int64
	Limit   int64
	ResetIn time.Duration
}

func (w Window) Allowed() bool { return w.Count <= w.Limit }

func (w Window) Remaining() int64 {
	if w.Count >= w.Limit {
		return 0
	}
	return w.Limit - w.Count
}

// Hit counts one request against scope. The first hit of a window sets the
// expiry; a counter found without one (INCR landed but EXPIRE did not) is
// given a fresh window instead of living forever.
func (c *Client) Hit(ctx context.Context, scope string, limit int64, window time.Duration) (Window, error) {
	if c == nil || c.cmd == nil {
		return Window{}, errNoConnection
	}
	key := Key(scope)
	count, err := c.cmd.Incr(ctx, key).Result()
	if err != nil {
		return Window{}, fmt.Errorf("incr %s: %w", key, err)
	}
	w := Window{Count: count, Limit: limit, ResetIn: window}
	if count == 1 {
		return w, c.expire(ctx, key, window)
	}

	ttl, err := c.cmd.PTTL(ctx, key).Result()
	if err != nil {
		return w, fmt.Errorf("pttl %s: %w", key, err)
	}
	if ttl < 0 {
		return w, c.expire(ctx, key, window)
	}
	w.ResetIn = ttl
	return w, nil
}

func (c *Client) expire(ctx context.Context, key string, window time.Duration) error {
	if err := c.cmd.Expire(ctx, key, window).Err(); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// Key namespaces a limiter scope, skipping blank segments.
func Key(scope ...string) string {
	parts := []string{keyPrefix}
	for _, s := range scope {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ":")
}

// Ping is used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.cmd == nil {
		return errNoConnection
	}
	return c.cmd.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
