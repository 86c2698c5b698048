// Package sqlite provides a SQLite implementation of the incident repository
// for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bissquit/incident-log/internal/domain"
	"github.com/bissquit/incident-log/internal/incidents"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS incidents (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		title       TEXT NOT NULL CHECK (trim(title) <> ''),
		description TEXT NOT NULL CHECK (trim(description) <> ''),
		severity    TEXT NOT NULL CHECK (severity IN ('Low', 'Medium', 'High')),
		reported_at INTEGER NOT NULL,
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_incidents_reported_at ON incidents(reported_at DESC, seq);`,
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the incidents table exists.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite schema statement #%d: %w", i+1, err)
		}
	}

	return db, nil
}

// Repository implements incidents.Repository on SQLite.
// Timestamps are stored as Unix microseconds.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository on an opened database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `id, title, description, severity, reported_at, created_at, updated_at`

// Create inserts a new incident.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO incidents (id, title, description, severity, reported_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		incident.ID,
		incident.Title,
		incident.Description,
		string(incident.Severity),
		incident.ReportedAt.UnixMicro(),
		incident.CreatedAt.UnixMicro(),
		incident.UpdatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// List retrieves all incidents, most recently reported first.
func (r *Repository) List(ctx context.Context) ([]domain.Incident, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+incidentColumns+` FROM incidents ORDER BY reported_at DESC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]domain.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		result = append(result, *incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return result, nil
}

// Get retrieves an incident by its ID.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Incident, error) {
	key, ok := incidents.CanonicalID(id)
	if !ok {
		return nil, incidents.ErrIncidentNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id = ?`, key)
	incident, err := scanIncident(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, incidents.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("get incident by id: %w", err)
	}
	return incident, nil
}

// Delete deletes an incident by its ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	key, ok := incidents.CanonicalID(id)
	if !ok {
		return incidents.ErrIncidentNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM incidents WHERE id = ?`, key)
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete incident: rows affected: %w", err)
	}
	if n == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// DeleteAll deletes every incident and reports how many were removed.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM incidents`)
	if err != nil {
		return 0, fmt.Errorf("delete all incidents: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all incidents: rows affected: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIncident(row scanner) (*domain.Incident, error) {
	var incident domain.Incident
	var severity string
	var reportedAt, createdAt, updatedAt int64
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&severity,
		&reportedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	incident.Severity = domain.Severity(severity)
	incident.ReportedAt = time.UnixMicro(reportedAt).UTC()
	incident.CreatedAt = time.UnixMicro(createdAt).UTC()
	incident.UpdatedAt = time.UnixMicro(updatedAt).UTC()
	return &incident, nil
}
