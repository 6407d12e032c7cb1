package ops

import (
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
)

// ApplyAppend concatenates addition's rows onto base. Column sets must
// match exactly, per SPEC_FULL.md §9 open question 2: a source-only column
// (or a missing one) is always a hard ColumnMismatch — callers who want to
// append aggregate output must pre-align column names via the
// aggregation's alias, there is no best-effort column reconciliation here.
func ApplyAppend(base, addition frame.Lazy) (frame.Lazy, error) {
	if err := validateColumnMatch(base.Schema(), addition.Schema()); err != nil {
		return frame.Lazy{}, err
	}
	return base.Concat(addition), nil
}

func validateColumnMatch(base, addition frame.Schema) error {
	baseNames := schemaNameSet(base)
	addNames := schemaNameSet(addition)

	var missing, extra []string
	for name := range baseNames {
		if !addNames[name] {
			missing = append(missing, name)
		}
	}
	for name := range addNames {
		if !baseNames[name] {
			extra = append(extra, name)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return &ColumnMismatch{Missing: missing, Extra: extra}
	}
	return nil
}

func schemaNameSet(s frame.Schema) map[string]bool {
	out := make(map[string]bool, len(s))
	for _, c := range s {
		out[c.Name] = true
	}
	return out
}
