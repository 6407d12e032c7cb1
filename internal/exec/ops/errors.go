package ops

import "fmt"

// ColumnMismatch is raised by Append when the source frame's column set
// does not exactly match the working frame's column set (SPEC_FULL.md §9,
// open question 2 — always a hard error, never best-effort alignment).
type ColumnMismatch struct {
	Missing []string
	Extra   []string
}

func (e *ColumnMismatch) Error() string {
	return fmt.Sprintf("append column mismatch: missing %v, extra %v", e.Missing, e.Extra)
}

// InvalidUpdateArguments is raised when an Update operation's Set map is
// empty or assigns a column that is not in the working frame's schema.
type InvalidUpdateArguments struct{ Reason string }

func (e *InvalidUpdateArguments) Error() string {
	return fmt.Sprintf("invalid update arguments: %s", e.Reason)
}

// InvalidAggregateSpec is raised when an Aggregate operation's group-by or
// aggregate-expression list is malformed.
type InvalidAggregateSpec struct{ Reason string }

func (e *InvalidAggregateSpec) Error() string {
	return fmt.Sprintf("invalid aggregate specification: %s", e.Reason)
}
