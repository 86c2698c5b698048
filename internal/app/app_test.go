package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bissquit/incident-log/api/openapi"
	"github.com/bissquit/incident-log/internal/config"
	"github.com/bissquit/incident-log/internal/domain"
	"github.com/bissquit/incident-log/internal/incidents/cache"
	"github.com/bissquit/incident-log/internal/incidents/memory"
	"github.com/bissquit/incident-log/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Storage.Driver = config.DriverMemory
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.CORS.AllowedOrigins = []string{"*"}
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	application := NewWithStore(cfg, &Store{Repository: memory.NewRepository()})
	srv := httptest.NewServer(application.Router())
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Shutdown(ctx)
	})
	return srv
}

func newValidatedClient(t *testing.T, baseURL string) *testutil.Client {
	t.Helper()

	validator, err := testutil.LoadOpenAPIValidator(openapi.Spec)
	require.NoError(t, err)
	return testutil.NewClientWithValidator(t, baseURL, validator)
}

func TestApp_IncidentLifecycle(t *testing.T) {
	srv := newTestServer(t, newTestConfig())
	client := newValidatedClient(t, srv.URL)

	resp, err := client.GET("/incidents")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, testutil.ReadBody(t, resp))

	resp, err = client.POST("/incidents", map[string]string{
		"title":       "Hallucinated citation",
		"description": "Legal assistant invented case law",
		"severity":    "Medium",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created domain.Incident
	testutil.DecodeJSON(t, resp, &created)

	resp, err = client.GET("/incidents/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.DELETE("/incidents/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.GET("/incidents/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.POST("/incidents", map[string]string{"title": "t", "description": "d", "severity": "Extreme"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestApp_IndexAndVersion(t *testing.T) {
	srv := newTestServer(t, newTestConfig())
	client := newValidatedClient(t, srv.URL)

	resp, err := client.GET("/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, testutil.ReadBody(t, resp), "GET /incidents/:id")

	resp, err = client.GET("/version")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestApp_HealthEndpoints(t *testing.T) {
	srv := newTestServer(t, newTestConfig())
	client := testutil.NewClient(srv.URL)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := client.GET(path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "OK", testutil.ReadBody(t, resp))
	}

	resp, err := client.GET("/api/openapi.yaml")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(testutil.ReadBody(t, resp), "openapi:"))
}

func TestApp_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, newTestConfig())
	client := testutil.NewClient(srv.URL)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/incidents/a/b"},
		{http.MethodPut, "/incidents"},
		{http.MethodPatch, "/incidents/5d3f1a9e-8c1b-4b7a-9e2f-0a6c4d2b1e33"},
	}

	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
		require.NoError(t, err)

		resp, err := client.HTTPClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "%s %s", tt.method, tt.path)
		assert.JSONEq(t, `{"error":{"message":"route not found"}}`, testutil.ReadBody(t, resp))
	}
}

func TestApp_SecurityHeaders(t *testing.T) {
	srv := newTestServer(t, newTestConfig())

	resp, err := testutil.NewClient(srv.URL).GET("/incidents")
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
}

func TestApp_RateLimit(t *testing.T) {
	cfg := newTestConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2}
	srv := newTestServer(t, cfg)
	client := testutil.NewClient(srv.URL)

	body := map[string]string{"title": "t", "description": "d", "severity": "Low"}
	statuses := make([]int, 0, 3)
	for range 3 {
		resp, err := client.POST("/incidents", body)
		require.NoError(t, err)
		_ = resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, statuses)

	resp, err := client.GET("/incidents")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApp_DefaultConfigDoesNotThrottle(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverMemory
	cfg.Log.Level = "error"
	srv := newTestServer(t, cfg)
	client := testutil.NewClient(srv.URL)

	body := map[string]string{"title": "t", "description": "d", "severity": "High"}
	statuses := make(map[int]int)
	for range 30 {
		resp, err := client.POST("/incidents", body)
		require.NoError(t, err)
		_ = resp.Body.Close()
		statuses[resp.StatusCode]++
	}

	assert.Equal(t, map[int]int{http.StatusCreated: 30}, statuses)
}

func TestApp_ReadyWhileCacheDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := &Store{
		Repository: cache.NewRepository(memory.NewRepository(), client, time.Minute, ""),
		redis:      client,
	}
	require.Error(t, client.Ping(context.Background()).Err(), "nothing listens on the cache address")

	application := NewWithStore(newTestConfig(), store)
	srv := httptest.NewServer(application.Router())
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Shutdown(ctx)
	})
	api := testutil.NewClient(srv.URL)

	resp, err := api.GET("/readyz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", testutil.ReadBody(t, resp))

	resp, err = api.POST("/incidents", map[string]string{
		"title": "cache down", "description": "reads fall through", "severity": "Low",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestOpenStore_Memory(t *testing.T) {
	store, err := OpenStore(context.Background(), newTestConfig())
	require.NoError(t, err)
	defer store.Close()

	assert.Nil(t, store.Pool())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := newTestConfig()
	cfg.Storage.Driver = config.DriverSQLite
	cfg.SQLite.Path = t.TempDir() + "/incidents.db"

	store, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Ping(context.Background()))
	list, err := store.Repository.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := newTestConfig()
	cfg.Storage.Driver = "mongo"

	_, err := OpenStore(context.Background(), cfg)
	assert.Error(t, err)
}
