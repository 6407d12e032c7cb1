// Package badgerstore provides a BadgerDB-backed MetadataStore, for hosts
// that want the run/dataset/resolver/calendar/period catalog to survive a
// process restart without standing up a separate database service.
//
// It follows the teacher's badger wiring (datalog/storage/badger_store.go):
// the same DefaultOptions-with-performance-overrides construction, the same
// db.View/db.Update transaction shape. Where the teacher encodes datoms into
// five index orderings per fact, this store has one entity per key and no
// secondary indices to maintain, so each entity is serialized as JSON under
// a single "<kind>:<id>[:<version>]" key.
package badgerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

// key prefixes, one per entity kind stored in the catalog.
const (
	prefixDataset  = "dataset"
	prefixProject  = "project"
	prefixResolver = "resolver"
	prefixCalendar = "calendar"
	prefixPeriod   = "period"
	prefixRunState = "runstate"
)

// Store implements exec.MetadataStore backed by a BadgerDB instance.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a BadgerDB database at path and wraps it as a
// Store. Options mirror the teacher's read-heavy tuning, since a metadata
// catalog is read on every run and written only when entities change.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	opts.MemTableSize = 64 << 20
	opts.BlockCacheSize = 64 << 20
	opts.IndexCacheSize = 32 << 20
	opts.ValueThreshold = 1 << 10

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func datasetKey(id uuid.UUID, version int) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", prefixDataset, id.String(), version))
}

func datasetPrefix(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s:%s:", prefixDataset, id.String()))
}

func simpleKey(prefix string, id fmt.Stringer) []byte {
	return []byte(prefix + ":" + id.String())
}

// PutDataset writes a dataset version to the store. Prior versions are
// never overwritten: each (ID, Version) pair gets its own key, exactly like
// MemoryMetadataStore's nested map.
func (s *Store) PutDataset(ctx context.Context, ds *model.Dataset) error {
	return s.putJSON(datasetKey(ds.ID, ds.Version), ds)
}

// PutProject writes a project record.
func (s *Store) PutProject(ctx context.Context, p *model.Project) error {
	return s.putJSON(simpleKey(prefixProject, p.ID), p)
}

// PutResolver writes a resolver record, keyed by its string ID.
func (s *Store) PutResolver(ctx context.Context, r *model.Resolver) error {
	return s.putJSON([]byte(prefixResolver+":"+r.ID), r)
}

// PutCalendar writes a calendar record.
func (s *Store) PutCalendar(ctx context.Context, c *model.Calendar) error {
	return s.putJSON(simpleKey(prefixCalendar, c.ID), c)
}

// PutPeriod writes a period record.
func (s *Store) PutPeriod(ctx context.Context, p *model.Period) error {
	return s.putJSON(simpleKey(prefixPeriod, p.ID), p)
}

func (s *Store) putJSON(key []byte, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *Store) getJSON(key []byte, out any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	return found, err
}

// GetDataset returns the requested dataset version, or the highest version
// on record when version is nil. Returns (nil, nil) when absent, matching
// MemoryMetadataStore's contract.
func (s *Store) GetDataset(ctx context.Context, id uuid.UUID, version *int) (*model.Dataset, error) {
	if version != nil {
		var ds model.Dataset
		found, err := s.getJSON(datasetKey(id, *version), &ds)
		if err != nil || !found {
			return nil, err
		}
		return &ds, nil
	}

	var latest *model.Dataset
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := datasetPrefix(id)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			versionStr := key[strings.LastIndex(key, ":")+1:]
			v, convErr := strconv.Atoi(versionStr)
			if convErr != nil {
				continue
			}
			if latest != nil && v <= latest.Version {
				continue
			}
			var ds model.Dataset
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ds)
			}); err != nil {
				return err
			}
			latest = &ds
		}
		return nil
	})
	return latest, err
}

// GetProject looks up a project by ID.
func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var p model.Project
	found, err := s.getJSON(simpleKey(prefixProject, id), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// GetResolver looks up a resolver by its string ID.
func (s *Store) GetResolver(ctx context.Context, id string) (*model.Resolver, error) {
	var r model.Resolver
	found, err := s.getJSON([]byte(prefixResolver+":"+id), &r)
	if err != nil || !found {
		return nil, err
	}
	return &r, nil
}

// GetCalendar looks up a calendar by ID.
func (s *Store) GetCalendar(ctx context.Context, id uuid.UUID) (*model.Calendar, error) {
	var c model.Calendar
	found, err := s.getJSON(simpleKey(prefixCalendar, id), &c)
	if err != nil || !found {
		return nil, err
	}
	return &c, nil
}

// GetPeriod looks up a period by ID.
func (s *Store) GetPeriod(ctx context.Context, id uuid.UUID) (*model.Period, error) {
	var p model.Period
	found, err := s.getJSON(simpleKey(prefixPeriod, id), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// ListPeriods scans every period belonging to calendarID. Unlike the other
// lookups this has to range over the whole period prefix and filter in
// application code, since periods aren't keyed by their owning calendar -
// the same tradeoff the teacher's ScanKeysOnly/CountKeys helpers exist to
// avoid for datoms, which a real deployment would address the same way:
// a secondary calendar-to-period index key, not built here.
func (s *Store) ListPeriods(ctx context.Context, calendarID uuid.UUID) ([]model.Period, error) {
	var out []model.Period
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixPeriod + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p model.Period
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			if p.CalendarID == calendarID {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

// UpdateRunStatus persists the current status of a run, keyed by run ID.
func (s *Store) UpdateRunStatus(ctx context.Context, runID uuid.UUID, status model.RunStatus) error {
	return s.putJSON(simpleKey(prefixRunState, runID), status)
}
