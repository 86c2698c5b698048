package incidents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bissquit/incident-log/internal/domain"
	"github.com/google/uuid"
)

// Service implements incident business logic.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// NewService creates a new incident service on top of repo.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now: func() time.Time {
			// Postgres keeps microseconds; truncating keeps the returned
			// record equal to what a later read yields.
			return time.Now().UTC().Truncate(time.Microsecond)
		},
		newID: func() string { return uuid.New().String() },
	}
}

// CreateIncident validates input and persists a new incident.
func (s *Service) CreateIncident(ctx context.Context, input CreateIncidentInput) (*domain.Incident, error) {
	if err := Validate(input); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			recordRejected(verr.Kind)
		}
		return nil, err
	}
	input = Normalize(input)

	now := s.now()
	reportedAt := now
	if input.ReportedAt != nil {
		reportedAt = input.ReportedAt.UTC().Truncate(time.Microsecond)
	}

	incident := &domain.Incident{
		ID:          s.newID(),
		Title:       input.Title,
		Description: input.Description,
		Severity:    domain.Severity(input.Severity),
		ReportedAt:  reportedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, storageError("create incident", err)
	}

	recordCreated(incident.Severity)
	return incident, nil
}

// ListIncidents returns all incidents, most recently reported first.
func (s *Service) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	incidents, err := s.repo.List(ctx)
	if err != nil {
		return nil, storageError("list incidents", err)
	}
	if incidents == nil {
		incidents = make([]domain.Incident, 0)
	}
	return incidents, nil
}

// GetIncident returns the incident with the given id.
func (s *Service) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	incident, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storageError("get incident", err)
	}
	return incident, nil
}

// DeleteIncident permanently removes the incident with the given id.
func (s *Service) DeleteIncident(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageError("delete incident", err)
	}
	recordDeleted()
	return nil
}

// Seed replaces every stored incident with the given records.
// All records are validated before anything is deleted.
func (s *Service) Seed(ctx context.Context, inputs []CreateIncidentInput) ([]domain.Incident, error) {
	for i, input := range inputs {
		if err := Validate(input); err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
	}

	removed, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return nil, storageError("clear incidents", err)
	}
	slog.Info("incidents cleared", "count", removed)

	created := make([]domain.Incident, 0, len(inputs))
	for _, input := range inputs {
		incident, err := s.CreateIncident(ctx, input)
		if err != nil {
			return created, err
		}
		created = append(created, *incident)
	}

	return created, nil
}

func storageError(op string, err error) error {
	if errors.Is(err, ErrIncidentNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
