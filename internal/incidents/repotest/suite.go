// Package repotest holds the behavioural test suite every incidents.Repository
// implementation must pass.
package repotest

import (
	"context"
	"sync"
	"time"

	"github.com/bissquit/incident-log/internal/domain"
	"github.com/bissquit/incident-log/internal/incidents"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// Suite runs the repository contract against the value returned by
// NewRepository, which is called once per test and must return an empty
// repository.
type Suite struct {
	suite.Suite

	NewRepository func() incidents.Repository

	repo incidents.Repository
}

// SetupTest creates a fresh repository.
func (s *Suite) SetupTest() {
	s.repo = s.NewRepository()
}

// NewIncident builds a valid incident reported at the given time.
func NewIncident(title string, reportedAt time.Time) *domain.Incident {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Incident{
		ID:          uuid.New().String(),
		Title:       title,
		Description: title + " description",
		Severity:    domain.SeverityMedium,
		ReportedAt:  reportedAt.UTC().Truncate(time.Microsecond),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *Suite) create(title string, reportedAt time.Time) *domain.Incident {
	incident := NewIncident(title, reportedAt)
	s.Require().NoError(s.repo.Create(context.Background(), incident))
	return incident
}

func titles(list []domain.Incident) []string {
	out := make([]string, 0, len(list))
	for _, inc := range list {
		out = append(out, inc.Title)
	}
	return out
}

func (s *Suite) TestListEmpty() {
	list, err := s.repo.List(context.Background())
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *Suite) TestCreateAndGet() {
	reported := time.Date(2023, 7, 15, 8, 30, 0, 123456000, time.UTC)
	created := s.create("Chatbot harmful output", reported)

	got, err := s.repo.Get(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal(created.Title, got.Title)
	s.Equal(created.Description, got.Description)
	s.Equal(created.Severity, got.Severity)
	s.True(created.ReportedAt.Equal(got.ReportedAt))
	s.True(created.CreatedAt.Equal(got.CreatedAt))
	s.True(created.UpdatedAt.Equal(got.UpdatedAt))
	s.Equal(time.UTC, got.ReportedAt.Location())
}

func (s *Suite) TestListOrderedByReportedAtDesc() {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.create("t1", base)
	s.create("t3", base.Add(2*time.Hour))
	s.create("t2", base.Add(time.Hour))

	list, err := s.repo.List(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"t3", "t2", "t1"}, titles(list))
}

func (s *Suite) TestListTiesKeepInsertionOrder() {
	at := time.Date(2024, 5, 5, 5, 5, 5, 0, time.UTC)
	s.create("first", at)
	s.create("second", at)
	s.create("newest", at.Add(time.Second))
	s.create("third", at)

	list, err := s.repo.List(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"newest", "first", "second", "third"}, titles(list))
}

func (s *Suite) TestGetNotFound() {
	for _, id := range []string{uuid.New().String(), "not-a-uuid", "", "1"} {
		_, err := s.repo.Get(context.Background(), id)
		s.ErrorIs(err, incidents.ErrIncidentNotFound, "id %q", id)
	}
}

func (s *Suite) TestDelete() {
	keep := s.create("keep", time.Now())
	gone := s.create("gone", time.Now())

	s.Require().NoError(s.repo.Delete(context.Background(), gone.ID))

	_, err := s.repo.Get(context.Background(), gone.ID)
	s.ErrorIs(err, incidents.ErrIncidentNotFound)

	list, err := s.repo.List(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{keep.Title}, titles(list))

	s.ErrorIs(s.repo.Delete(context.Background(), gone.ID), incidents.ErrIncidentNotFound)
	s.ErrorIs(s.repo.Delete(context.Background(), "garbage"), incidents.ErrIncidentNotFound)
}

func (s *Suite) TestDeleteAll() {
	s.create("a", time.Now())
	s.create("b", time.Now())

	n, err := s.repo.DeleteAll(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	list, err := s.repo.List(context.Background())
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *Suite) TestConcurrentCreate() {
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.repo.Create(context.Background(), NewIncident("concurrent", time.Now().Add(time.Duration(i)*time.Millisecond)))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}

	list, err := s.repo.List(context.Background())
	s.Require().NoError(err)
	s.Len(list, workers)
}
