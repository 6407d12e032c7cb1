package refimpl

import (
	"context"
	"sync"

	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
	"github.com/google/uuid"
)

// MemoryMetadataStore is an in-memory MetadataStore reference
// implementation, used by tests and cmd/pipelinectl. It keeps every
// dataset version ever registered rather than overwriting in place, the
// way a real catalog would, so GetDataset's version parameter is
// meaningful.
type MemoryMetadataStore struct {
	mu        sync.RWMutex
	datasets  map[uuid.UUID]map[int]*model.Dataset
	projects  map[uuid.UUID]*model.Project
	resolvers map[string]*model.Resolver
	calendars map[uuid.UUID]*model.Calendar
	periods   map[uuid.UUID]*model.Period
	runStatus map[uuid.UUID]model.RunStatus
}

// NewMemoryMetadataStore constructs an empty store.
func NewMemoryMetadataStore() *MemoryMetadataStore {
	return &MemoryMetadataStore{
		datasets:  make(map[uuid.UUID]map[int]*model.Dataset),
		projects:  make(map[uuid.UUID]*model.Project),
		resolvers: make(map[string]*model.Resolver),
		calendars: make(map[uuid.UUID]*model.Calendar),
		periods:   make(map[uuid.UUID]*model.Period),
		runStatus: make(map[uuid.UUID]model.RunStatus),
	}
}

// PutDataset registers ds under its ID and Version.
func (s *MemoryMetadataStore) PutDataset(ds *model.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.datasets[ds.ID] == nil {
		s.datasets[ds.ID] = make(map[int]*model.Dataset)
	}
	s.datasets[ds.ID][ds.Version] = ds
}

// PutProject registers a project.
func (s *MemoryMetadataStore) PutProject(p *model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
}

// PutResolver registers a resolver.
func (s *MemoryMetadataStore) PutResolver(r *model.Resolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolvers[r.ID] = r
}

// PutCalendar registers a calendar.
func (s *MemoryMetadataStore) PutCalendar(c *model.Calendar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars[c.ID] = c
}

// PutPeriod registers a period.
func (s *MemoryMetadataStore) PutPeriod(p *model.Period) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periods[p.ID] = p
}

func (s *MemoryMetadataStore) GetDataset(ctx context.Context, id uuid.UUID, version *int) (*model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions, ok := s.datasets[id]
	if !ok {
		return nil, nil
	}
	if version == nil {
		var latest *model.Dataset
		for v, ds := range versions {
			if latest == nil || v > latest.Version {
				latest = ds
			}
		}
		return latest, nil
	}
	return versions[*version], nil
}

func (s *MemoryMetadataStore) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects[id], nil
}

func (s *MemoryMetadataStore) GetResolver(ctx context.Context, id string) (*model.Resolver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolvers[id], nil
}

func (s *MemoryMetadataStore) GetCalendar(ctx context.Context, id uuid.UUID) (*model.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calendars[id], nil
}

func (s *MemoryMetadataStore) GetPeriod(ctx context.Context, id uuid.UUID) (*model.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.periods[id], nil
}

func (s *MemoryMetadataStore) ListPeriods(ctx context.Context, calendarID uuid.UUID) ([]model.Period, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Period
	for _, p := range s.periods {
		if p.CalendarID == calendarID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *MemoryMetadataStore) UpdateRunStatus(ctx context.Context, runID uuid.UUID, status model.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runStatus[runID] = status
	return nil
}
