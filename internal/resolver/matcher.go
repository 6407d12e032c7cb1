package resolver

import (
	"regexp"

	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

// CalendarMatcher classifies a period identifier string against a
// Calendar's ordered Levels. Each level's regex is compiled lazily, once,
// the first time that level is consulted by this matcher instance — not
// eagerly at construction and not globally cached across matchers — per
// original_source/resolver/calendar_matcher.rs.
type CalendarMatcher struct {
	calendar *model.Calendar
	compiled map[string]*regexp.Regexp
}

// NewCalendarMatcher constructs a matcher over calendar. No regexes are
// compiled until a match is requested.
func NewCalendarMatcher(calendar *model.Calendar) *CalendarMatcher {
	return &CalendarMatcher{calendar: calendar, compiled: make(map[string]*regexp.Regexp)}
}

func (m *CalendarMatcher) patternFor(level model.Level) (*regexp.Regexp, error) {
	if re, ok := m.compiled[level.Name]; ok {
		return re, nil
	}
	re, err := regexp.Compile(level.Pattern)
	if err != nil {
		return nil, &RuleSyntaxError{Condition: level.Pattern, Message: err.Error()}
	}
	m.compiled[level.Name] = re
	return re, nil
}

// FindLevelStrict returns the single level whose pattern matches identifier.
// More than one match is an error: level patterns are expected to be
// mutually exclusive within a calendar.
func (m *CalendarMatcher) FindLevelStrict(identifier string) (model.Level, error) {
	var found *model.Level
	for i := range m.calendar.Levels {
		lvl := m.calendar.Levels[i]
		re, err := m.patternFor(lvl)
		if err != nil {
			return model.Level{}, err
		}
		if re.MatchString(identifier) {
			if found != nil {
				return model.Level{}, &RuleSyntaxError{Condition: identifier, Message: "identifier matches more than one calendar level"}
			}
			l := lvl
			found = &l
		}
	}
	if found == nil {
		return model.Level{}, &NoMatchingCalendarLevel{Identifier: identifier}
	}
	return *found, nil
}

// FindLevelLenient returns the first level (in calendar sequence order)
// whose pattern matches identifier, tolerating ambiguous patterns. Used by
// the period expander, which only needs "close enough" level inference
// during descendant classification (original_source/resolver/expander.rs).
func (m *CalendarMatcher) FindLevelLenient(identifier string) (model.Level, bool) {
	for _, lvl := range m.calendar.Levels {
		re, err := m.patternFor(lvl)
		if err != nil {
			continue
		}
		if re.MatchString(identifier) {
			return lvl, true
		}
	}
	return model.Level{}, false
}
