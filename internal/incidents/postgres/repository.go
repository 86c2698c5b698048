// Package postgres provides PostgreSQL implementation of the incident repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bissquit/incident-log/internal/domain"
	"github.com/bissquit/incident-log/internal/incidents"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the incidents.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const incidentColumns = `id, title, description, severity, reported_at, created_at, updated_at`

// Create inserts a new incident.
func (r *Repository) Create(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (id, title, description, severity, reported_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		incident.ID,
		incident.Title,
		incident.Description,
		string(incident.Severity),
		incident.ReportedAt,
		incident.CreatedAt,
		incident.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	return nil
}

// List retrieves all incidents, most recently reported first.
func (r *Repository) List(ctx context.Context) ([]domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY reported_at DESC, seq ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

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

	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	result, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, key)
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}

	if result.RowsAffected() == 0 {
		return incidents.ErrIncidentNotFound
	}
	return nil
}

// DeleteAll deletes every incident and reports how many were removed.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM incidents`)
	if err != nil {
		return 0, fmt.Errorf("delete all incidents: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var incident domain.Incident
	var severity string
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&severity,
		&incident.ReportedAt,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	incident.Severity = domain.Severity(severity)
	incident.ReportedAt = incident.ReportedAt.UTC()
	incident.CreatedAt = incident.CreatedAt.UTC()
	incident.UpdatedAt = incident.UpdatedAt.UTC()
	return &incident, nil
}
