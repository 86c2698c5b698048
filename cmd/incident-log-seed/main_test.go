package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bissquit/incident-log/internal/incidents/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SeedsSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.db")
	t.Setenv("INCIDENTLOG_STORAGE_DRIVER", "sqlite")
	t.Setenv("INCIDENTLOG_SQLITE_PATH", path)
	t.Setenv("INCIDENTLOG_LOG__LEVEL", "error")

	// Seeding twice must leave exactly one copy of the sample data.
	require.NoError(t, run("", time.Minute))
	require.NoError(t, run("", time.Minute))

	db, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	list, err := sqlite.NewRepository(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "AI Recommendation Algorithm Reinforcing Bias", list[0].Title)
	assert.Equal(t, "AI Chatbot Produced Harmful Content", list[2].Title)
}

func TestRun_MissingConfigFile(t *testing.T) {
	err := run(filepath.Join(t.TempDir(), "absent.yaml"), time.Minute)
	assert.Error(t, err)
}
