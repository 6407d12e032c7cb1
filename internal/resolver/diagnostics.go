package resolver

import "fmt"

// DiagnosticOutcome is the sealed set of final outcomes a resolution attempt
// can reach, per original_source/resolver/diagnostics.rs's priority order:
// period-expansion failure beats template-render failure beats success/
// no-match.
type DiagnosticOutcome int

const (
	OutcomeSuccess DiagnosticOutcome = iota
	OutcomeNoMatchingRule
	OutcomePeriodExpansionFailure
	OutcomeTemplateRenderError
)

func (o DiagnosticOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "Success"
	case OutcomeNoMatchingRule:
		return "NoMatchingRule"
	case OutcomePeriodExpansionFailure:
		return "PeriodExpansionFailure"
	case OutcomeTemplateRenderError:
		return "TemplateRenderError"
	default:
		return "Unknown"
	}
}

// RuleDiagnostic records whether one rule matched, was skipped, or did not
// match, with a stable human-readable reason string.
type RuleDiagnostic struct {
	RuleID   string
	Matched  bool
	Skipped  bool
	Reason   string
}

// ResolutionDiagnostic accumulates one RuleDiagnostic per rule considered
// during a single dataset/period resolution attempt.
type ResolutionDiagnostic struct {
	Rules []RuleDiagnostic
}

// RecordMatch appends a matched-rule diagnostic.
func (d *ResolutionDiagnostic) RecordMatch(ruleID string) {
	d.Rules = append(d.Rules, RuleDiagnostic{RuleID: ruleID, Matched: true, Reason: formatRuleReason(true, false, "")})
}

// RecordNoMatch appends a not-matched-rule diagnostic.
func (d *ResolutionDiagnostic) RecordNoMatch(ruleID, reason string) {
	d.Rules = append(d.Rules, RuleDiagnostic{RuleID: ruleID, Matched: false, Reason: formatRuleReason(false, false, reason)})
}

// RecordSkipped appends a skipped-rule diagnostic (e.g. a period-expansion
// or template-render failure, or a period an earlier rule already resolved).
func (d *ResolutionDiagnostic) RecordSkipped(ruleID, reason string) {
	d.Rules = append(d.Rules, RuleDiagnostic{RuleID: ruleID, Matched: false, Skipped: true, Reason: formatRuleReason(false, true, reason)})
}

func formatRuleReason(matched, skipped bool, detail string) string {
	switch {
	case matched:
		return "condition matched"
	case skipped:
		return fmt.Sprintf("skipped: %s", detail)
	default:
		if detail == "" {
			return "condition did not match"
		}
		return fmt.Sprintf("condition did not match: %s", detail)
	}
}

// DetermineOutcome applies the outcome priority: a period-expansion failure
// always wins, then a template-render failure, then success (if any rule
// matched) or no-matching-rule otherwise. Matches
// original_source/resolver/diagnostics.rs's determine_outcome exactly.
func DetermineOutcome(ruleMatched, periodExpansionFailed, templateRenderFailed bool) DiagnosticOutcome {
	switch {
	case periodExpansionFailed:
		return OutcomePeriodExpansionFailure
	case templateRenderFailed:
		return OutcomeTemplateRenderError
	case ruleMatched:
		return OutcomeSuccess
	default:
		return OutcomeNoMatchingRule
	}
}
