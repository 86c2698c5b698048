package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bissquit/incident-log/internal/incidents"
	"github.com/bissquit/incident-log/internal/incidents/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestRepository(t *testing.T) {
	suite.Run(t, &repotest.Suite{
		NewRepository: func() incidents.Repository {
			db, err := Open(context.Background(), filepath.Join(t.TempDir(), "incidents.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			return NewRepository(db)
		},
	})
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "incidents.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)

	incident := repotest.NewIncident("persisted", time.Date(2023, 9, 23, 0, 0, 0, 0, time.UTC))
	require.NoError(t, NewRepository(db).Create(ctx, incident))
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	got, err := NewRepository(db).Get(ctx, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Title)
	assert.True(t, incident.ReportedAt.Equal(got.ReportedAt))
}

func TestCreate_RejectsInvalidSeverity(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, filepath.Join(t.TempDir(), "incidents.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	incident := repotest.NewIncident("bad", time.Now())
	incident.Severity = "Critical"

	assert.Error(t, NewRepository(db).Create(ctx, incident))
}
