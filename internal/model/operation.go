package model

import "github.com/google/uuid"

// OperationKind identifies which executor a pipeline step runs through.
type OperationKind string

const (
	OperationDelete    OperationKind = "delete"
	OperationOutput    OperationKind = "output"
	OperationAppend    OperationKind = "append"
	OperationAggregate OperationKind = "aggregate"
	OperationUpdate    OperationKind = "update"
)

// TemporalMode selects how a Delete/Output operation filters rows by time
// (see exec.ApplyTemporalFilter, SPEC_FULL.md §4.9).
type TemporalMode string

const (
	TemporalPeriod     TemporalMode = "period"
	TemporalBitemporal TemporalMode = "bitemporal"
	TemporalSnapshot   TemporalMode = "snapshot"
)

// OperationParams is the sealed set of per-kind operation configuration,
// one variant per OperationKind.
type OperationParams interface {
	operationParams()
}

// DeleteOperationParams tombstones rows matching Condition (and, depending
// on Mode, a temporal bound) rather than physically removing them.
type DeleteOperationParams struct {
	Condition string       `json:"condition,omitempty" yaml:"condition,omitempty"`
	Mode      TemporalMode `json:"mode" yaml:"mode"`
}

// OutputOperationParams materializes the current working frame to
// Destination, applying Mode's temporal filter first.
type OutputOperationParams struct {
	Destination OutputDestination `json:"destination" yaml:"destination"`
	Mode        TemporalMode      `json:"mode" yaml:"mode"`
}

// AppendOperationParams appends SourceDatasetID's rows onto the working
// frame; column sets must match exactly (SPEC_FULL.md §9, open question 2).
type AppendOperationParams struct {
	SourceDatasetID uuid.UUID `json:"source_dataset_id" yaml:"source_dataset_id"`
	SourceVersion   *int      `json:"source_version,omitempty" yaml:"source_version,omitempty"`
}

// AggregateOperationParams groups the working frame by GroupBy and reduces
// each entry of Aggregates (parsed via dsl.ParseAggregateExpr) per group.
type AggregateOperationParams struct {
	GroupBy    []string `json:"group_by" yaml:"group_by"`
	Aggregates []string `json:"aggregates" yaml:"aggregates"`
}

// RuntimeJoin describes one join leg consulted while evaluating an Update
// operation's SET/WHERE expressions (SPEC_FULL.md §4.10).
type RuntimeJoin struct {
	DatasetID uuid.UUID `json:"dataset_id" yaml:"dataset_id"`
	Alias     string    `json:"alias" yaml:"alias"`
	On        string    `json:"on" yaml:"on"`
	Version   *int      `json:"version,omitempty" yaml:"version,omitempty"`
}

// UpdateOperationParams mutates columns of rows matching Where by evaluating
// Set's assignment expressions, optionally joining in other datasets.
type UpdateOperationParams struct {
	Joins []RuntimeJoin     `json:"joins,omitempty" yaml:"joins,omitempty"`
	Where string            `json:"where,omitempty" yaml:"where,omitempty"`
	Set   map[string]string `json:"set" yaml:"set"`
}

func (DeleteOperationParams) operationParams()    {}
func (OutputOperationParams) operationParams()    {}
func (AppendOperationParams) operationParams()    {}
func (AggregateOperationParams) operationParams() {}
func (UpdateOperationParams) operationParams()    {}

// OutputDestination names where an Output operation writes: the ID of the
// resolver whose location the OutputWriter targets.
type OutputDestination struct {
	ResolverID string `json:"resolver_id" yaml:"resolver_id"`
}

// OperationInstance is one ordered step of a pipeline run.
type OperationInstance struct {
	Order  uint32          `json:"order" yaml:"order"`
	Kind   OperationKind   `json:"kind" yaml:"kind"`
	Alias  *string         `json:"alias,omitempty" yaml:"alias,omitempty"`
	Params OperationParams `json:"params" yaml:"params"`
}
