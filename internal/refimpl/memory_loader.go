package refimpl

import (
	"context"
	"sync"

	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

// MemoryDataLoader serves rows registered ahead of time by location
// identifier, standing in for a parquet/catalog reader in tests and the
// reference CLI.
type MemoryDataLoader struct {
	mu    sync.RWMutex
	rows  map[string][]map[string]any
}

// NewMemoryDataLoader constructs an empty loader.
func NewMemoryDataLoader() *MemoryDataLoader {
	return &MemoryDataLoader{rows: make(map[string][]map[string]any)}
}

// Seed registers rows to be returned for the given location identifier.
func (l *MemoryDataLoader) Seed(identifier string, rows []map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows[identifier] = rows
}

func (l *MemoryDataLoader) Load(ctx context.Context, loc model.ResolvedLocation, schema frame.Schema) (frame.Lazy, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rows := l.rows[loc.Identifier]
	f := frame.NewFrame(schema, 0)
	for _, row := range rows {
		f.AppendRow(row)
	}
	return frame.FromFrame(f), nil
}
