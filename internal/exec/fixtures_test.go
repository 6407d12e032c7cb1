package exec

import (
	"context"

	"github.com/google/uuid"

	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

// fakeMetadataStore is a minimal in-memory MetadataStore stand-in for
// exec-package unit tests, playing the role internal/refimpl's
// MemoryMetadataStore plays for the CLI and end-to-end tests.
type fakeMetadataStore struct {
	datasets map[uuid.UUID]*model.Dataset
}

func newFakeMetadataStore() *fakeMetadataStore {
	return &fakeMetadataStore{datasets: map[uuid.UUID]*model.Dataset{}}
}

func (s *fakeMetadataStore) GetDataset(ctx context.Context, id uuid.UUID, version *int) (*model.Dataset, error) {
	return s.datasets[id], nil
}
func (s *fakeMetadataStore) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return nil, nil
}
func (s *fakeMetadataStore) GetResolver(ctx context.Context, id string) (*model.Resolver, error) {
	return nil, nil
}
func (s *fakeMetadataStore) GetCalendar(ctx context.Context, id uuid.UUID) (*model.Calendar, error) {
	return nil, nil
}
func (s *fakeMetadataStore) GetPeriod(ctx context.Context, id uuid.UUID) (*model.Period, error) {
	return nil, nil
}
func (s *fakeMetadataStore) ListPeriods(ctx context.Context, calendarID uuid.UUID) ([]model.Period, error) {
	return nil, nil
}
func (s *fakeMetadataStore) UpdateRunStatus(ctx context.Context, runID uuid.UUID, status model.RunStatus) error {
	return nil
}

// fakeDataLoader serves a fixed Lazy frame for any load request, keyed by
// the resolved location's Identifier so tests can stand up a source frame
// plus zero or more join/append side frames.
type fakeDataLoader struct {
	byIdentifier map[string]frame.Lazy
}

func newFakeDataLoader() *fakeDataLoader {
	return &fakeDataLoader{byIdentifier: map[string]frame.Lazy{}}
}

func (l *fakeDataLoader) Load(ctx context.Context, loc model.ResolvedLocation, schema frame.Schema) (frame.Lazy, error) {
	if lazy, ok := l.byIdentifier[loc.Identifier]; ok {
		return lazy, nil
	}
	return frame.FromFrame(frame.NewFrame(schema, 0)), nil
}

// fakeOutputWriter records every frame written, keyed by destination
// resolver ID.
type fakeOutputWriter struct {
	written map[string][]*frame.Frame
}

func newFakeOutputWriter() *fakeOutputWriter {
	return &fakeOutputWriter{written: map[string][]*frame.Frame{}}
}

func (w *fakeOutputWriter) Write(ctx context.Context, f *frame.Frame, dest model.OutputDestination) error {
	w.written[dest.ResolverID] = append(w.written[dest.ResolverID], f)
	return nil
}

// fakeTraceWriter records every batch of trace events written.
type fakeTraceWriter struct {
	events []model.TraceEvent
}

func newFakeTraceWriter() *fakeTraceWriter {
	return &fakeTraceWriter{}
}

func (t *fakeTraceWriter) WriteEvents(ctx context.Context, runID uuid.UUID, events []model.TraceEvent) error {
	t.events = append(t.events, events...)
	return nil
}
