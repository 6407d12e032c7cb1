package model

import "github.com/google/uuid"

// RunStatus enumerates a Run's lifecycle state.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// TriggerType distinguishes how a Run was started.
type TriggerType string

const (
	TriggerManual    TriggerType = "manual"
	TriggerScheduled TriggerType = "scheduled"
)

// ErrorDetail captures the failing operation and message of a failed Run.
type ErrorDetail struct {
	OperationOrder uint32 `json:"operation_order" yaml:"operation_order"`
	Message        string `json:"message" yaml:"message"`
	Detail         string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Run is one execution of a pipeline: an ordered OperationInstance list
// against a resolved period, snapshotted resolvers, and runtime joins.
type Run struct {
	ID                      uuid.UUID            `json:"id" yaml:"id"`
	ProjectID               uuid.UUID            `json:"project_id" yaml:"project_id"`
	DatasetID               uuid.UUID            `json:"dataset_id" yaml:"dataset_id"`
	PeriodID                uuid.UUID            `json:"period_id" yaml:"period_id"`
	Status                  RunStatus            `json:"status" yaml:"status"`
	Trigger                 TriggerType          `json:"trigger" yaml:"trigger"`
	TriggeredBy             string               `json:"triggered_by" yaml:"triggered_by"`
	Operations              []OperationInstance  `json:"operations" yaml:"operations"`
	ResolverSnapshot        ResolverSnapshot     `json:"resolver_snapshot" yaml:"resolver_snapshot"`
	JoinSnapshots           []JoinDatasetSnapshot `json:"join_snapshots,omitempty" yaml:"join_snapshots,omitempty"`
	LastCompletedOperation  *uint32              `json:"last_completed_operation,omitempty" yaml:"last_completed_operation,omitempty"`
	OutputDatasetID         *uuid.UUID           `json:"output_dataset_id,omitempty" yaml:"output_dataset_id,omitempty"`
	ParentRunID             *uuid.UUID           `json:"parent_run_id,omitempty" yaml:"parent_run_id,omitempty"`
	Error                   *ErrorDetail         `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt               *string              `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt             *string              `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	CreatedAt               *string              `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// TraceEvent is one diagnostic record emitted during a Run's execution,
// consumed by the TraceWriter collaborator interface.
type TraceEvent struct {
	RunID          uuid.UUID `json:"run_id" yaml:"run_id"`
	OperationOrder uint32    `json:"operation_order" yaml:"operation_order"`
	Level          string    `json:"level" yaml:"level"`
	Message        string    `json:"message" yaml:"message"`
	Timestamp      string    `json:"timestamp" yaml:"timestamp"`
}
