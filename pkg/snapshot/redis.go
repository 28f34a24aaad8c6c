package snapshot

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/groupfit/pkg/errors"
)

// RedisConfig configures a [RedisStore].
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key. Defaults to "groupfit:".
	Prefix string

	// TTL expires snapshots after the given duration. Zero keeps them.
	TTL time.Duration
}

// RedisStore keeps each snapshot as a JSON string under <prefix>snapshot:<id>
// and a sorted set <prefix>snapshots scored by creation time for listing.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, classifyRedis(err, "connect %s", cfg.Addr)
	}
	return NewRedisStoreFromClient(client, cfg.Prefix, cfg.TTL), nil
}

// NewRedisStoreFromClient wraps an existing client. The store takes
// ownership of the client and closes it on Close.
func NewRedisStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "groupfit:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(id string) string { return r.prefix + "snapshot:" + id }
func (r *RedisStore) indexKey() string     { return r.prefix + "snapshots" }

// Save implements [Store].
func (r *RedisStore) Save(ctx context.Context, s *Snapshot) error {
	if err := validate(s); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot %s", s.ID)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(s.ID), data, r.ttl)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: score(s.CreatedAt), Member: s.ID})
		return nil
	})
	if err != nil {
		return classifyRedis(err, "save %s", s.ID)
	}
	return nil
}

// Get implements [Store].
func (r *RedisStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, classifyRedis(err, "get %s", id)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "snapshot %s is corrupt", id)
	}
	return &s, nil
}

// List implements [Store]. Index entries whose snapshot has expired are
// pruned on the way.
func (r *RedisStore) List(ctx context.Context) ([]Summary, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, classifyRedis(err, "list")
	}
	if len(ids) == 0 {
		return []Summary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, classifyRedis(err, "list")
	}

	out := make([]Summary, 0, len(ids))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var s Snapshot
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			continue
		}
		out = append(out, s.Summary())
	}
	if len(stale) > 0 {
		r.client.ZRem(ctx, r.indexKey(), stale...)
	}
	sortSummaries(out)
	return out, nil
}

// Delete implements [Store].
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.key(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return classifyRedis(err, "delete %s", id)
	}
	if del.Val() == 0 {
		return notFound(id)
	}
	return nil
}

// Close implements [Store].
func (r *RedisStore) Close() error { return r.client.Close() }

// Kind implements [Store].
func (r *RedisStore) Kind() string { return "redis" }

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// classifyRedis maps a client error to UNAUTHORIZED for rejected credentials
// and STORE_UNAVAILABLE for everything else.
func classifyRedis(err error, format string, args ...any) error {
	msg := err.Error()
	if strings.HasPrefix(msg, "NOAUTH") || strings.HasPrefix(msg, "WRONGPASS") ||
		strings.Contains(msg, "invalid password") {
		return errors.Wrap(errors.ErrCodeUnauthorized, err, "redis store: "+format, args...)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(errors.ErrCodeTimeout, err, "redis store: "+format, args...)
	}
	return unavailable("redis", err, format, args...)
}

var _ Store = (*RedisStore)(nil)
