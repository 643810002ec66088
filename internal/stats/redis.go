package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis increments hash counters in Redis:
//
//	<prefix>:total              outcome -> count
//	<prefix>:minute:YYYYMMDDhhmm outcome -> count (expires after ttl)
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a Redis recorder.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = strings.Trim(prefix, ":") }
}

// WithTTL sets how long per-minute buckets are kept. Zero keeps them.
func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = d }
}

// NewRedis returns a recorder writing through rdb.
func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		rdb:    rdb,
		prefix: "handoff:logins",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prefix returns the key prefix in use.
func (r *Redis) Prefix() string { return r.prefix }

// MinuteKey returns the bucket key for t.
func (r *Redis) MinuteKey(t time.Time) string {
	return fmt.Sprintf("%s:minute:%s", r.prefix, t.UTC().Format("200601021504"))
}

// Record implements Recorder.
func (r *Redis) Record(ctx context.Context, ev Event) error {
	if r == nil || r.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Outcome)
	bucket := r.MinuteKey(at)

	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.prefix+":total", field, 1)
	pipe.HIncrBy(ctx, bucket, field, 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, bucket, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record login stats: %w", err)
	}
	return nil
}
