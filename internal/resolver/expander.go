package resolver

import (
	"sort"

	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
	"github.com/google/uuid"
)

// PeriodExpander walks a period hierarchy from a root period down to every
// descendant at a target calendar level, matching
// original_source/resolver/expander.rs exactly: children are grouped by
// ParentID, sorted by (Sequence, Identifier), and visited via DFS with a
// per-call visited set keyed by period ID so a cycle in the parent links is
// an error rather than an infinite loop. A node is not descended into
// further once it matches the target level — first-level-match wins.
type PeriodExpander struct {
	matcher    *CalendarMatcher
	byParent   map[uuid.UUID][]model.Period
}

// NewPeriodExpander builds an expander over the full period set for one
// calendar.
func NewPeriodExpander(matcher *CalendarMatcher, periods []model.Period) *PeriodExpander {
	byParent := make(map[uuid.UUID][]model.Period)
	for _, p := range periods {
		if p.ParentID != nil {
			byParent[*p.ParentID] = append(byParent[*p.ParentID], p)
		}
	}
	for parent := range byParent {
		children := byParent[parent]
		sort.Slice(children, func(i, j int) bool {
			if children[i].Sequence != children[j].Sequence {
				return children[i].Sequence < children[j].Sequence
			}
			return children[i].Identifier < children[j].Identifier
		})
		byParent[parent] = children
	}
	return &PeriodExpander{matcher: matcher, byParent: byParent}
}

// Expand returns every descendant of root classified to targetLevel.
func (e *PeriodExpander) Expand(root model.Period, targetLevel string) ([]model.Period, error) {
	var out []model.Period
	visited := map[uuid.UUID]bool{}
	if err := e.walk(root, targetLevel, visited, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *PeriodExpander) walk(node model.Period, targetLevel string, visited map[uuid.UUID]bool, out *[]model.Period) error {
	if visited[node.ID] {
		return &PeriodCycleError{PeriodID: node.ID.String()}
	}
	visited[node.ID] = true

	if lvl, ok := e.matcher.FindLevelLenient(node.Identifier); ok && lvl.Name == targetLevel {
		*out = append(*out, node)
		return nil
	}

	for _, child := range e.byParent[node.ID] {
		if err := e.walk(child, targetLevel, visited, out); err != nil {
			return err
		}
	}
	return nil
}
