package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paintqueue/paintqueue-backend/pkg/config"
)

type fakeCounter struct {
	counts  map[string]int64
	ttls    map[string]time.Duration
	expires []string
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCounter) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires = append(f.expires, key)
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCounter) PTTL(_ context.Context, key string) *redis.DurationCmd {
	ttl, ok := f.ttls[key]
	if !ok {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(ttl-time.Second, nil)
}

func TestHitCountsWithinOneWindow(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCounter()
	client := &Client{cmd: fake}

	w, err := client.Hit(ctx, "employee_lookup:10.0.0.1", 2, time.Minute)
	if err != nil {
		t.Fatalf("Hit: %v", err)
	}
	if !w.Allowed() || w.Count != 1 || w.Remaining() != 1 || w.ResetIn != time.Minute {
		t.Fatalf("unexpected first window %+v", w)
	}
	if len(fake.expires) != 1 || fake.expires[0] != "paintqueue:rate_limit:employee_lookup:10.0.0.1" {
		t.Fatalf("expected one expire on the namespaced key, got %v", fake.expires)
	}

	w, err = client.Hit(ctx, "employee_lookup:10.0.0.1", 2, time.Minute)
	if err != nil {
		t.Fatalf("Hit: %v", err)
	}
	if !w.Allowed() || w.Remaining() != 0 || w.ResetIn != 59*time.Second {
		t.Fatalf("unexpected second window %+v", w)
	}

	w, _ = client.Hit(ctx, "employee_lookup:10.0.0.1", 2, time.Minute)
	if w.Allowed() || w.Remaining() != 0 {
		t.Fatalf("third hit should be over the limit, got %+v", w)
	}
	if len(fake.expires) != 1 {
		t.Fatalf("expiry must only be set once per window, got %d", len(fake.expires))
	}
}

func TestHitRepairsCounterWithoutExpiry(t *testing.T) {
	ctx := context.Background()
	fake := newFakeCounter()
	fake.counts[Key("stuck")] = 5
	client := &Client{cmd: fake}

	w, err := client.Hit(ctx, "stuck", 10, time.Minute)
	if err != nil {
		t.Fatalf("Hit: %v", err)
	}
	if w.Count != 6 || w.ResetIn != time.Minute {
		t.Fatalf("unexpected window %+v", w)
	}
	if len(fake.expires) != 1 {
		t.Fatalf("expected the orphaned counter to get an expiry")
	}
}

func TestNilClientErrors(t *testing.T) {
	var client *Client
	if _, err := client.Hit(context.Background(), "k", 1, time.Second); err == nil {
		t.Fatalf("expected error without a connection")
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error without a connection")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without a connection should be a no-op: %v", err)
	}
}

func TestKeySkipsBlankSegments(t *testing.T) {
	if got := Key("employee_lookup", "", " 1.2.3.4 "); got != "paintqueue:rate_limit:employee_lookup:1.2.3.4" {
		t.Fatalf("unexpected key %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@cache:6380/2", PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 2 || opts.Password != "secret" || opts.PoolSize != 7 {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 3, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 3 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
}
