package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bissquit/incident-log/internal/config"
	"github.com/bissquit/incident-log/internal/incidents"
	"github.com/bissquit/incident-log/internal/incidents/cache"
	"github.com/bissquit/incident-log/internal/incidents/memory"
	incidentspostgres "github.com/bissquit/incident-log/internal/incidents/postgres"
	"github.com/bissquit/incident-log/internal/incidents/sqlite"
	"github.com/bissquit/incident-log/internal/pkg/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const defaultConnectTimeout = 60 * time.Second

// Store owns the storage connections behind the incident repository.
// It is created once per process and passed to whatever needs it.
type Store struct {
	Repository incidents.Repository

	pool  *pgxpool.Pool
	sqlDB *sql.DB
	redis *redis.Client
}

// OpenStore connects the backend selected by cfg.Storage.Driver and, when
// a Redis URL is configured, puts the incident cache in front of it.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	s := &Store{}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		timeout := cfg.Database.ConnectTimeout
		if timeout <= 0 {
			timeout = defaultConnectTimeout
		}
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		pool, err := postgres.Connect(connectCtx, postgres.Config{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnectAttempts: cfg.Database.ConnectAttempts,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		s.pool = pool
		s.Repository = incidentspostgres.NewRepository(pool)

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s.sqlDB = db
		s.Repository = sqlite.NewRepository(db)

	case config.DriverMemory:
		slog.Warn("using in-memory incident store: data is lost on restart")
		s.Repository = memory.NewRepository()

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	slog.Info("incident store opened", "driver", cfg.Storage.Driver)

	if cfg.Redis.URL != "" {
		client, err := cache.Connect(ctx, cache.Config{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		s.redis = client
		s.Repository = cache.NewRepository(s.Repository, client, cfg.Redis.TTL, cfg.Redis.KeyPrefix)
	}

	return s, nil
}

// Pool returns the PostgreSQL pool, or nil for other drivers.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping checks that the source-of-truth connections are reachable. The
// cache is optional and reads fall through when it is down, so a Redis
// failure is logged without failing the check.
func (s *Store) Ping(ctx context.Context) error {
	var errs []error
	if s.pool != nil {
		if err := s.pool.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if s.sqlDB != nil {
		if err := s.sqlDB.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("sqlite: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			slog.WarnContext(ctx, "incident cache unreachable", "error", err)
		}
	}
	return errors.Join(errs...)
}

// Close releases every backing connection.
func (s *Store) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Warn("close redis", "error", err)
		}
	}
	if s.sqlDB != nil {
		if err := s.sqlDB.Close(); err != nil {
			slog.Warn("close sqlite", "error", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}
