package exec

import (
	"fmt"

	"github.com/google/uuid"
)

// OperationError wraps any executor-stage error with the failing
// operation's order, attached once at the pipeline boundary, mirroring the
// original's with_context call sites in pipeline.rs.
type OperationError struct {
	Order uint32
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d failed: %s", e.Order, e.Err)
}
func (e *OperationError) Unwrap() error { return e.Err }

// DatasetNotFound is raised when a MetadataStore lookup finds no dataset
// with the given ID.
type DatasetNotFound struct{ DatasetID uuid.UUID }

func (e *DatasetNotFound) Error() string { return fmt.Sprintf("dataset not found: %s", e.DatasetID) }

// VersionNotFound is raised when a dataset exists but not at the requested
// version.
type VersionNotFound struct {
	DatasetID uuid.UUID
	Version   int
}

func (e *VersionNotFound) Error() string {
	return fmt.Sprintf("dataset %s has no version %d", e.DatasetID, e.Version)
}

// DatasetDisabled is raised when an operation targets a disabled dataset.
type DatasetDisabled struct{ DatasetID uuid.UUID }

func (e *DatasetDisabled) Error() string {
	return fmt.Sprintf("dataset %s is disabled", e.DatasetID)
}

// InvalidJoinCondition is raised when a runtime join's ON expression fails
// to parse, validate, or compile.
type InvalidJoinCondition struct {
	Alias string
	Err   error
}

func (e *InvalidJoinCondition) Error() string {
	return fmt.Sprintf("invalid join condition for alias %q: %s", e.Alias, e.Err)
}
func (e *InvalidJoinCondition) Unwrap() error { return e.Err }

// CrossJoinAliasConflict is raised when a runtime join's alias collides
// with an alias already registered in the symbol table (either the main
// table or an earlier join).
type CrossJoinAliasConflict struct{ Alias string }

func (e *CrossJoinAliasConflict) Error() string {
	return fmt.Sprintf("join alias %q is already in use", e.Alias)
}

// MissingTemporalColumns is raised when a Bitemporal filter finds neither
// the canonical nor legacy column pair in the frame's schema.
type MissingTemporalColumns struct{}

func (e *MissingTemporalColumns) Error() string {
	return "frame has neither _period_from/_period_to nor valid_from/valid_to columns"
}

// UnknownOperationKind is raised when the pipeline encounters an
// OperationInstance whose Kind has no registered executor.
type UnknownOperationKind struct{ Kind string }

func (e *UnknownOperationKind) Error() string {
	return fmt.Sprintf("unknown operation kind: %s", e.Kind)
}
