package model

import "github.com/google/uuid"

// DatasetStatus enumerates a Dataset's lifecycle state.
type DatasetStatus string

const (
	DatasetActive   DatasetStatus = "active"
	DatasetDisabled DatasetStatus = "disabled"
)

// MainTable describes the dataset's primary physical table/path, resolved
// per-period via the dataset's resolver.
type MainTable struct {
	ResolverID string `json:"resolver_id" yaml:"resolver_id"`
	Schema     []ColumnDef `json:"schema" yaml:"schema"`
}

// ColumnDef declares one column of a dataset's schema.
type ColumnDef struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
}

// Dataset is a versioned, resolver-backed logical table: its physical
// location for any given period is determined at run time by resolving
// MainTable.ResolverID against the active Calendar.
type Dataset struct {
	ID         uuid.UUID     `json:"id" yaml:"id"`
	ProjectID  uuid.UUID     `json:"project_id" yaml:"project_id"`
	Name       string        `json:"name" yaml:"name"`
	Version    int           `json:"version" yaml:"version"`
	Status     DatasetStatus `json:"status" yaml:"status"`
	MainTable  MainTable     `json:"main_table" yaml:"main_table"`
	CalendarID uuid.UUID     `json:"calendar_id" yaml:"calendar_id"`
}

// JoinDatasetSnapshot freezes the dataset ID, version and alias a runtime
// join was planned against, the join-side analogue of ResolverSnapshot. It
// records no resolver state.
type JoinDatasetSnapshot struct {
	DatasetID uuid.UUID `json:"dataset_id" yaml:"dataset_id"`
	Version   int       `json:"version" yaml:"version"`
	Alias     string    `json:"alias" yaml:"alias"`
}

// Project groups datasets and pipelines under a common namespace.
type Project struct {
	ID   uuid.UUID `json:"id" yaml:"id"`
	Name string    `json:"name" yaml:"name"`
}
