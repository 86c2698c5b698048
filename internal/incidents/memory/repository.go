// Package memory provides an in-process implementation of the incident repository.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bissquit/incident-log/internal/domain"
	"github.com/bissquit/incident-log/internal/incidents"
)

type entry struct {
	incident domain.Incident
	seq      uint64
}

// Repository implements incidents.Repository in memory.
// Records are lost when the process exits.
type Repository struct {
	mu      sync.RWMutex
	records map[string]entry
	nextSeq uint64
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		records: make(map[string]entry),
	}
}

// Create stores a copy of incident.
func (r *Repository) Create(_ context.Context, incident *domain.Incident) error {
	id, ok := incidents.CanonicalID(incident.ID)
	if !ok {
		return fmt.Errorf("create incident: malformed id %q", incident.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; exists {
		return fmt.Errorf("create incident: duplicate id %s", id)
	}

	r.nextSeq++
	r.records[id] = entry{incident: *incident, seq: r.nextSeq}
	return nil
}

// List returns copies of all incidents, most recently reported first.
func (r *Repository) List(_ context.Context) ([]domain.Incident, error) {
	r.mu.RLock()
	entries := make([]entry, 0, len(r.records))
	for _, e := range r.records {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	slices.SortFunc(entries, func(a, b entry) int {
		if c := b.incident.ReportedAt.Compare(a.incident.ReportedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	result := make([]domain.Incident, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.incident)
	}
	return result, nil
}

// Get returns a copy of the incident with the given id.
func (r *Repository) Get(_ context.Context, id string) (*domain.Incident, error) {
	key, ok := incidents.CanonicalID(id)
	if !ok {
		return nil, incidents.ErrIncidentNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.records[key]
	if !exists {
		return nil, incidents.ErrIncidentNotFound
	}
	incident := e.incident
	return &incident, nil
}

// Delete removes the incident with the given id.
func (r *Repository) Delete(_ context.Context, id string) error {
	key, ok := incidents.CanonicalID(id)
	if !ok {
		return incidents.ErrIncidentNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[key]; !exists {
		return incidents.ErrIncidentNotFound
	}
	delete(r.records, key)
	return nil
}

// DeleteAll removes every incident.
func (r *Repository) DeleteAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.records))
	r.records = make(map[string]entry)
	return n, nil
}
