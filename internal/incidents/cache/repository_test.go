package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bissquit/incident-log/internal/incidents"
	"github.com/bissquit/incident-log/internal/incidents/memory"
	"github.com/bissquit/incident-log/internal/incidents/repotest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableClient points at a port nothing listens on, so every
// command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRepository_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(memory.NewRepository(), unreachableClient(t), time.Minute, "")

	incident := repotest.NewIncident("cached", time.Now())
	require.NoError(t, repo.Create(ctx, incident))

	got, err := repo.Get(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, incident.ID, got.ID)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, incident.ID))
	_, err = repo.Get(ctx, incident.ID)
	assert.ErrorIs(t, err, incidents.ErrIncidentNotFound)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepository_MalformedIDSkipsRedis(t *testing.T) {
	repo := NewRepository(memory.NewRepository(), unreachableClient(t), time.Minute, "test:")

	_, err := repo.Get(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, incidents.ErrIncidentNotFound)
	assert.Equal(t, "test:abc", repo.key("abc"))
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), Config{URL: "http://not-redis"})
	assert.Error(t, err)
}

func TestNewRepository_Defaults(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		repo := NewRepository(memory.NewRepository(), unreachableClient(t), ttl, "")
		assert.Equal(t, defaultTTL, repo.ttl, "ttl %v", ttl)
		assert.Equal(t, defaultPrefix, repo.prefix)
	}

	repo := NewRepository(memory.NewRepository(), unreachableClient(t), time.Hour, "x:")
	assert.Equal(t, time.Hour, repo.tombstoneTTL(), "tombstones outlive cached entries")
	assert.Equal(t, "x:deleted:abc", repo.tombstoneKey("abc"))
	assert.Equal(t, "x:flush", repo.flushKey())

	repo = NewRepository(memory.NewRepository(), unreachableClient(t), time.Second, "")
	assert.Equal(t, minTombstoneTTL, repo.tombstoneTTL())
}
