package ops

import (
	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
)

// FilterActiveOnly drops rows tombstoned by a prior Delete, unless the
// frame carries no _deleted column at all (nothing has ever been deleted),
// in which case it passes every row through unchanged. Output operations
// apply this before their own temporal filter so a run never materializes
// rows a prior step in the same pipeline marked deleted.
func FilterActiveOnly(l frame.Lazy) frame.Lazy {
	if !l.Schema().Has(columnDeleted) {
		return l
	}
	return l.Filter(func(row dsl.Row) (any, error) {
		deleted, _ := row[columnDeleted].(bool)
		return !deleted, nil
	})
}
