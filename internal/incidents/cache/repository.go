// Package cache provides a Redis read-through cache in front of an
// incident repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bissquit/incident-log/internal/domain"
	"github.com/bissquit/incident-log/internal/incidents"
	"github.com/bissquit/incident-log/internal/pkg/ctxlog"
	"github.com/redis/go-redis/v9"
)

// Config contains Redis connection settings.
type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Connect creates a Redis client from cfg and verifies it with PING.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Info("connected to redis", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}

const (
	defaultTTL    = 5 * time.Minute
	defaultPrefix = "incidentlog:incident:"
	// minTombstoneTTL outlives any read that was in flight when the
	// record was deleted; requests are cut off well before it.
	minTombstoneTTL = 2 * time.Minute
)

// fillScript caches KEYS[1] only while neither the record's tombstone
// (KEYS[2]) nor the flush marker (KEYS[3]) exists.
var fillScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2], KEYS[3]) > 0 then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`)

// Repository wraps an incidents.Repository and caches individual
// incidents in Redis. The wrapped repository stays the source of truth:
// cache failures are logged and fall through to it.
//
// A read that loaded a record before it was deleted must not put it back
// into the cache. Delete leaves a tombstone and DeleteAll a flush marker
// before evicting, and read-through fills are skipped while either exists.
type Repository struct {
	next   incidents.Repository
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRepository wraps next with a Redis cache. A non-positive ttl falls
// back to five minutes.
func NewRepository(next incidents.Repository, client redis.Cmdable, ttl time.Duration, prefix string) *Repository {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Repository{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}
}

func (r *Repository) key(id string) string {
	return r.prefix + id
}

func (r *Repository) tombstoneKey(id string) string {
	return r.prefix + "deleted:" + id
}

func (r *Repository) flushKey() string {
	return r.prefix + "flush"
}

func (r *Repository) tombstoneTTL() time.Duration {
	return max(r.ttl, minTombstoneTTL)
}

// Create stores the incident and primes the cache with it.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	if err := r.next.Create(ctx, incident); err != nil {
		return err
	}
	r.store(ctx, incident)
	return nil
}

// List always reads from the wrapped repository.
func (r *Repository) List(ctx context.Context) ([]domain.Incident, error) {
	return r.next.List(ctx)
}

// Get serves the incident from Redis when present, otherwise loads it
// from the wrapped repository and caches it.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Incident, error) {
	key, ok := incidents.CanonicalID(id)
	if !ok {
		return nil, incidents.ErrIncidentNotFound
	}

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	switch {
	case err == nil:
		var incident domain.Incident
		if jsonErr := json.Unmarshal(data, &incident); jsonErr == nil {
			recordCacheRequest("hit")
			return &incident, nil
		}
		ctxlog.FromContext(ctx).Warn("discarding corrupt cached incident", "id", key)
		recordCacheRequest("error")
	case errors.Is(err, redis.Nil):
		recordCacheRequest("miss")
	default:
		ctxlog.FromContext(ctx).Warn("incident cache read failed", "id", key, "error", err)
		recordCacheRequest("error")
	}

	incident, err := r.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	r.fill(ctx, incident)
	return incident, nil
}

// Delete removes the incident, tombstones it and evicts it from the cache.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	key, ok := incidents.CanonicalID(id)
	if !ok {
		return nil
	}

	if err := r.client.Set(ctx, r.tombstoneKey(key), 1, r.tombstoneTTL()).Err(); err != nil {
		ctxlog.FromContext(ctx).Warn("incident cache tombstone failed", "id", key, "error", err)
	}
	r.evict(ctx, r.key(key))
	return nil
}

// DeleteAll removes every incident and every cached entry under the prefix.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	n, err := r.next.DeleteAll(ctx)
	if err != nil {
		return n, err
	}

	flush := r.flushKey()
	if err := r.client.Set(ctx, flush, 1, r.tombstoneTTL()).Err(); err != nil {
		ctxlog.FromContext(ctx).Warn("incident cache flush marker failed", "error", err)
	}

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		if k := iter.Val(); k != flush {
			keys = append(keys, k)
		}
	}
	if err := iter.Err(); err != nil {
		ctxlog.FromContext(ctx).Warn("incident cache scan failed", "error", err)
	}
	if len(keys) > 0 {
		r.evict(ctx, keys...)
	}
	return n, nil
}

// store writes a freshly created incident unconditionally.
func (r *Repository) store(ctx context.Context, incident *domain.Incident) {
	data, err := json.Marshal(incident)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("encode incident for cache", "id", incident.ID, "error", err)
		return
	}
	if err := r.client.Set(ctx, r.key(incident.ID), data, r.ttl).Err(); err != nil {
		ctxlog.FromContext(ctx).Warn("incident cache write failed", "id", incident.ID, "error", err)
	}
}

// fill caches an incident loaded from the wrapped repository unless it
// was deleted in the meantime.
func (r *Repository) fill(ctx context.Context, incident *domain.Incident) {
	data, err := json.Marshal(incident)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("encode incident for cache", "id", incident.ID, "error", err)
		return
	}

	keys := []string{r.key(incident.ID), r.tombstoneKey(incident.ID), r.flushKey()}
	stored, err := fillScript.Run(ctx, r.client, keys, data, r.ttl.Milliseconds()).Int()
	if err != nil {
		ctxlog.FromContext(ctx).Warn("incident cache write failed", "id", incident.ID, "error", err)
		return
	}
	if stored == 0 {
		recordCacheRequest("fill_skipped")
	}
}

func (r *Repository) evict(ctx context.Context, keys ...string) {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		ctxlog.FromContext(ctx).Warn("incident cache eviction failed", "keys", len(keys), "error", err)
	}
}
