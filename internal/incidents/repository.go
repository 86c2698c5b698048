package incidents

import (
	"context"

	"github.com/bissquit/incident-log/internal/domain"
	"github.com/google/uuid"
)

// Repository defines the interface for incident storage.
//
// Implementations return ErrIncidentNotFound from Get and Delete when no
// record matches, including ids that are not well-formed UUIDs.
type Repository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	// List returns incidents ordered by reported_at descending; ties keep
	// insertion order. It returns an empty slice when there are none.
	List(ctx context.Context) ([]domain.Incident, error)
	Get(ctx context.Context, id string) (*domain.Incident, error)
	Delete(ctx context.Context, id string) error
	// DeleteAll removes every incident. Used by the seeder.
	DeleteAll(ctx context.Context) (int64, error)
}

// CanonicalID parses id as a UUID and returns its canonical form.
// ok is false for malformed ids, which repositories treat as not found.
func CanonicalID(id string) (canonical string, ok bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
