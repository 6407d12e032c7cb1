package exec

import (
	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

const (
	columnPeriod             = "_period"
	columnCanonicalPeriodFrom = "_period_from"
	columnCanonicalPeriodTo   = "_period_to"
	columnLegacyValidFrom     = "valid_from"
	columnLegacyValidTo       = "valid_to"
)

// ApplyTemporalFilter narrows l to the rows valid for periodIdentifier
// under mode, per spec.md §4.9:
//
//   - TemporalPeriod: keep rows whose _period column equals periodIdentifier
//     exactly.
//   - TemporalBitemporal: keep rows whose validity window contains asOf; a
//     NULL upper bound leaves the window open-ended.
//     Canonical columns (_period_from/_period_to) take precedence over
//     legacy columns (valid_from/valid_to) — legacy columns are only
//     consulted when the canonical pair is entirely absent from the
//     schema. Neither pair present is MissingTemporalColumns, naming both
//     column-name pairs.
//   - TemporalSnapshot: passthrough, no filter applied.
func ApplyTemporalFilter(l frame.Lazy, mode model.TemporalMode, periodIdentifier, asOf string) (frame.Lazy, error) {
	if mode == model.TemporalSnapshot {
		return l, nil
	}
	pred, err := TemporalPredicate(l.Schema(), mode, periodIdentifier, asOf)
	if err != nil {
		return frame.Lazy{}, err
	}
	return l.Filter(pred), nil
}

// TemporalPredicate builds the row predicate ApplyTemporalFilter applies,
// exposed separately so operation executors (e.g. Delete, which must
// combine a temporal bound with its own condition in a single pass rather
// than filtering first and losing the rows it needs to tombstone) can
// compose it with their own evaluators.
func TemporalPredicate(schema frame.Schema, mode model.TemporalMode, periodIdentifier, asOf string) (dsl.Evaluator, error) {
	switch mode {
	case model.TemporalSnapshot:
		return func(dsl.Row) (any, error) { return true, nil }, nil

	case model.TemporalPeriod:
		return func(row dsl.Row) (any, error) {
			v, ok := row[columnPeriod]
			if !ok || v == nil {
				return false, nil
			}
			s, ok := v.(string)
			if !ok {
				return false, nil
			}
			return s == periodIdentifier, nil
		}, nil

	case model.TemporalBitemporal:
		hasCanonical := schema.Has(columnCanonicalPeriodFrom) && schema.Has(columnCanonicalPeriodTo)
		hasLegacy := schema.Has(columnLegacyValidFrom) && schema.Has(columnLegacyValidTo)

		var fromCol, toCol string
		switch {
		case hasCanonical:
			fromCol, toCol = columnCanonicalPeriodFrom, columnCanonicalPeriodTo
		case hasLegacy:
			fromCol, toCol = columnLegacyValidFrom, columnLegacyValidTo
		default:
			return nil, &MissingTemporalColumns{}
		}

		return func(row dsl.Row) (any, error) {
			fromV, toV := row[fromCol], row[toCol]
			from, okFrom := fromV.(string)
			if !okFrom {
				return false, nil
			}
			if toV == nil {
				return asOf >= from, nil
			}
			to, okTo := toV.(string)
			if !okTo {
				return false, nil
			}
			return asOf >= from && asOf < to, nil
		}, nil

	default:
		return nil, &UnknownOperationKind{Kind: string(mode)}
	}
}
