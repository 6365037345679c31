package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	warperrors "github.com/mirkobrombin/go-protected/v1/errors"
)

var tracer = otel.Tracer("github.com/mirkobrombin/go-protected/v1/lock")

var delScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

const (
	defaultRedisTTL  = 30 * time.Second
	defaultRedisPoll = 50 * time.Millisecond
)

// Redis is a Locker whose exclusion spans every process sharing the Redis
// key. Goroutines of one process first serialize on a local ErrorCheck, so
// recursive locking and foreign unlocks are detected exactly as for
// ErrorCheck. The holder then owns the key until Unlock or until the TTL
// elapses, whichever comes first.
//
// A Redis failure while locking or unlocking is fatal: Lock and Unlock panic
// with a *errors.MisuseError wrapping ErrBackend.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	poll   time.Duration
	ctx    context.Context

	local *ErrorCheck
	token string // guarded by local
}

// RedisOption configures a Redis locker.
type RedisOption func(*Redis)

// WithTTL sets how long the key is held before Redis expires it. A
// non-positive duration keeps the default of 30 seconds.
func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithPollInterval sets how often a waiting Lock retries when no unlock
// notification arrives, which covers holders whose key expired.
func WithPollInterval(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.poll = d
		}
	}
}

// WithContext sets the context used for Redis calls and as the parent of
// acquisition spans.
func WithContext(ctx context.Context) RedisOption {
	return func(r *Redis) {
		r.ctx = ctx
	}
}

// NewRedis returns a locker guarding key on the given client.
func NewRedis(client *redis.Client, key string, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		key:    key,
		ttl:    defaultRedisTTL,
		poll:   defaultRedisPoll,
		ctx:    context.Background(),
		local:  NewErrorCheck(key),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lock implements Locker.Lock.
func (r *Redis) Lock() {
	ctx, span := tracer.Start(r.ctx, "lock.Redis.Lock",
		trace.WithAttributes(attribute.String("warp.lock.key", r.key)))
	defer span.End()

	r.local.Lock()

	token := uuid.NewString()
	var sub *redis.PubSub
	defer func() {
		if sub != nil {
			_ = sub.Close()
		}
	}()

	attempts := 0
	for {
		attempts++
		ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
		if err != nil {
			r.local.Unlock()
			span.RecordError(err)
			span.SetStatus(codes.Error, "setnx failed")
			r.fail("lock", err)
		}
		if ok {
			break
		}
		if sub == nil {
			sub = r.client.Subscribe(ctx, unlockChannel(r.key))
			if _, err := sub.Receive(ctx); err != nil {
				r.local.Unlock()
				span.RecordError(err)
				span.SetStatus(codes.Error, "subscribe failed")
				r.fail("lock", err)
			}
			// the holder may have released between SetNX and Subscribe
			continue
		}
		select {
		case <-sub.Channel():
		case <-time.After(r.poll):
		}
	}
	r.token = token
	span.SetAttributes(attribute.Int("warp.lock.attempts", attempts))
}

// Unlock implements Locker.Unlock.
func (r *Redis) Unlock() {
	if !r.local.Held() {
		// panics with ErrUnlockNotHeld
		r.local.Unlock()
		return
	}
	token := r.token
	r.token = ""
	n, err := delScript.Run(r.ctx, r.client, []string{r.key}, token).Int()
	if err == nil && n == 1 {
		err = r.client.Publish(r.ctx, unlockChannel(r.key), token).Err()
	}
	r.local.Unlock()
	if err != nil {
		r.fail("unlock", err)
	}
	if n == 0 {
		slog.Warn("warp: redis lock expired before unlock", "key", r.key, "ttl", r.ttl)
	}
}

// Key returns the Redis key guarded by the locker.
func (r *Redis) Key() string { return r.key }

func (r *Redis) fail(op string, err error) {
	slog.Error("warp: redis lock backend failure", "op", op, "key", r.key, "error", err)
	panic(&warperrors.MisuseError{
		Op:   op,
		Lock: r.key,
		Err:  fmt.Errorf("%w: %v", warperrors.ErrBackend, err),
	})
}

func unlockChannel(key string) string {
	return "unlock:" + key
}

var _ Locker = (*Redis)(nil)
