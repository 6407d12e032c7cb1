package resolver

import (
	"sort"

	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

// ResolverEngine resolves a Resolver's rules against a Calendar and period
// set, producing a ResolvedLocation per matched period plus a full
// diagnostic trail, per spec.md §4.8.
type ResolverEngine struct {
	matcher  *CalendarMatcher
	expander *PeriodExpander
}

// NewResolverEngine builds an engine over one calendar's period set.
func NewResolverEngine(calendar *model.Calendar, periods []model.Period) *ResolverEngine {
	matcher := NewCalendarMatcher(calendar)
	return &ResolverEngine{matcher: matcher, expander: NewPeriodExpander(matcher, periods)}
}

// Resolve walks res.Rules in priority order against every descendant of
// root, rendering a location for the first matching rule per candidate
// period. Rule priority is ascending: lower Priority values are tried
// first, and the first rule whose Level matches the candidate's inferred
// level and whose Condition evaluates true wins. Later rules that reach an
// already-resolved period are recorded as skipped.
func (e *ResolverEngine) Resolve(res *model.Resolver, root model.Period) ([]model.ResolvedLocation, *ResolutionDiagnostic, DiagnosticOutcome, error) {
	diag := &ResolutionDiagnostic{}
	rules := append([]model.ResolutionRule{}, res.Rules...)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })

	var locations []model.ResolvedLocation
	anyRuleMatched := false
	periodExpansionFailed := false
	templateRenderFailed := false

	resolved := map[string]bool{}
	for _, rule := range rules {
		candidates, err := e.expander.Expand(root, rule.Level)
		if err != nil {
			periodExpansionFailed = true
			diag.RecordSkipped(rule.ID.String(), err.Error())
			continue
		}

		for _, candidate := range candidates {
			if resolved[candidate.ID.String()] {
				diag.RecordSkipped(rule.ID.String(), "period already resolved by an earlier rule")
				continue
			}
			condExpr, err := ParseRule(rule.Condition)
			if err != nil {
				diag.RecordNoMatch(rule.ID.String(), err.Error())
				continue
			}
			ctx := periodAttributes(candidate, rule.Level)
			matched, err := Eval(condExpr, ctx)
			if err != nil {
				diag.RecordNoMatch(rule.ID.String(), err.Error())
				continue
			}
			if !matched {
				diag.RecordNoMatch(rule.ID.String(), "")
				continue
			}

			location, err := e.render(rule, candidate, res.Selectors)
			if err != nil {
				templateRenderFailed = true
				diag.RecordSkipped(rule.ID.String(), err.Error())
				continue
			}

			diag.RecordMatch(rule.ID.String())
			anyRuleMatched = true
			resolved[candidate.ID.String()] = true
			locations = append(locations, model.ResolvedLocation{
				PeriodID:   candidate.ID,
				Identifier: candidate.Identifier,
				Location:   location,
				RuleID:     rule.ID,
			})
		}
	}

	outcome := DetermineOutcome(anyRuleMatched, periodExpansionFailed, templateRenderFailed)
	return locations, diag, outcome, nil
}

func periodAttributes(p model.Period, level string) map[string]string {
	attrs := map[string]string{
		"identifier": p.Identifier,
		"name":       p.Name,
		"level":      level,
	}
	if p.ParentID != nil {
		attrs["parent_id"] = p.ParentID.String()
	}
	return attrs
}

func (e *ResolverEngine) render(rule model.ResolutionRule, period model.Period, selectors map[string]string) (string, error) {
	vars := map[string]string{
		"identifier": period.Identifier,
		"name":       period.Name,
		"level":      rule.Level,
	}
	for k, v := range selectors {
		vars[k] = v
	}

	switch strategy := rule.Strategy.(type) {
	case model.PathStrategy:
		return NewTemplateRenderer(ContextPath).Render(strategy.Template, vars)
	case model.TableStrategy:
		return NewTemplateRenderer(ContextGeneric).Render(strategy.Template, vars)
	case model.CatalogStrategy:
		return NewTemplateRenderer(ContextEndpoint).Render(strategy.Template, vars)
	default:
		return "", &RuleSyntaxError{Condition: rule.Condition, Message: "rule has no resolution strategy"}
	}
}
