package dsl

import "strings"

// CompareValues compares two runtime values of matching dynamic type,
// returning (comparison, ok) where comparison follows strings.Compare/cmp
// conventions (-1, 0, 1) and ok is false when the values are not
// comparable (distinct dynamic types with neither being a number pair).
// Grounded on the teacher's compare.go total-ordering comparator, trimmed
// to the runtime value set this engine's expressions produce: float64,
// string, bool, and nil (handled by callers before reaching here).
func CompareValues(a, b any) (int, bool) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av && bv {
			return -1, true
		}
		return 1, true
	default:
		return 0, false
	}
}
