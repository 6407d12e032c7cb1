package refimpl

import (
	"context"
	"sync"

	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
	"github.com/google/uuid"
)

// MemoryOutputWriter captures every frame written to it, keyed by
// destination resolver ID, for assertions in tests and inspection from the
// reference CLI.
type MemoryOutputWriter struct {
	mu      sync.Mutex
	written map[string][]*frame.Frame
}

// NewMemoryOutputWriter constructs an empty writer.
func NewMemoryOutputWriter() *MemoryOutputWriter {
	return &MemoryOutputWriter{written: make(map[string][]*frame.Frame)}
}

func (w *MemoryOutputWriter) Write(ctx context.Context, f *frame.Frame, dest model.OutputDestination) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written[dest.ResolverID] = append(w.written[dest.ResolverID], f)
	return nil
}

// Written returns every frame written to the given resolver ID, in write
// order.
func (w *MemoryOutputWriter) Written(resolverID string) []*frame.Frame {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*frame.Frame{}, w.written[resolverID]...)
}

// MemoryTraceWriter accumulates every TraceEvent written to it, keyed by
// run ID.
type MemoryTraceWriter struct {
	mu     sync.Mutex
	events map[string][]model.TraceEvent
}

// NewMemoryTraceWriter constructs an empty trace writer.
func NewMemoryTraceWriter() *MemoryTraceWriter {
	return &MemoryTraceWriter{events: make(map[string][]model.TraceEvent)}
}

func (w *MemoryTraceWriter) WriteEvents(ctx context.Context, runID uuid.UUID, events []model.TraceEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events[runID.String()] = append(w.events[runID.String()], events...)
	return nil
}

// Events returns every event recorded for runID, in write order.
func (w *MemoryTraceWriter) Events(runID string) []model.TraceEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.TraceEvent{}, w.events[runID]...)
}
