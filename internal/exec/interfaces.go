package exec

import (
	"context"

	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
	"github.com/google/uuid"
)

// DataLoader loads a dataset's rows for a resolved physical location into a
// lazy frame conforming to schema. Implemented outside this module in
// production (parquet/catalog readers); internal/refimpl supplies an
// in-memory reference implementation for tests and the CLI.
type DataLoader interface {
	Load(ctx context.Context, loc model.ResolvedLocation, schema frame.Schema) (frame.Lazy, error)
}

// OutputWriter persists a materialized frame to dest.
type OutputWriter interface {
	Write(ctx context.Context, f *frame.Frame, dest model.OutputDestination) error
}

// MetadataStore is the catalog of durable entities a pipeline run consults:
// datasets, projects, resolvers, calendars, periods, and run status.
type MetadataStore interface {
	GetDataset(ctx context.Context, id uuid.UUID, version *int) (*model.Dataset, error)
	GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error)
	GetResolver(ctx context.Context, id string) (*model.Resolver, error)
	GetCalendar(ctx context.Context, id uuid.UUID) (*model.Calendar, error)
	GetPeriod(ctx context.Context, id uuid.UUID) (*model.Period, error)
	ListPeriods(ctx context.Context, calendarID uuid.UUID) ([]model.Period, error)
	UpdateRunStatus(ctx context.Context, runID uuid.UUID, status model.RunStatus) error
}

// TraceWriter records diagnostic events emitted while executing a run.
type TraceWriter interface {
	WriteEvents(ctx context.Context, runID uuid.UUID, events []model.TraceEvent) error
}
