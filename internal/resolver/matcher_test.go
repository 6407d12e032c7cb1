package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

func testCalendar() *model.Calendar {
	return &model.Calendar{
		Name: "fiscal",
		Levels: []model.Level{
			{Name: "Year", Sequence: 0, Pattern: `^\d{4}$`},
			{Name: "Quarter", Sequence: 1, Pattern: `^\d{4}-Q[1-4]$`},
			{Name: "Month", Sequence: 2, Pattern: `^\d{4}-\d{2}$`},
		},
	}
}

func TestCalendarMatcherFindLevelStrict(t *testing.T) {
	m := NewCalendarMatcher(testCalendar())

	lvl, err := m.FindLevelStrict("2026-01")
	require.NoError(t, err)
	assert.Equal(t, "Month", lvl.Name)

	lvl, err = m.FindLevelStrict("2026-Q1")
	require.NoError(t, err)
	assert.Equal(t, "Quarter", lvl.Name)

	lvl, err = m.FindLevelStrict("2026")
	require.NoError(t, err)
	assert.Equal(t, "Year", lvl.Name)
}

func TestCalendarMatcherNoMatch(t *testing.T) {
	m := NewCalendarMatcher(testCalendar())
	_, err := m.FindLevelStrict("not-a-period")
	require.Error(t, err)
	var noMatch *NoMatchingCalendarLevel
	require.ErrorAs(t, err, &noMatch)
}

func TestCalendarMatcherAmbiguousPatternsError(t *testing.T) {
	cal := &model.Calendar{
		Levels: []model.Level{
			{Name: "A", Sequence: 0, Pattern: `^\d+$`},
			{Name: "B", Sequence: 1, Pattern: `^\d{4}$`},
		},
	}
	m := NewCalendarMatcher(cal)
	_, err := m.FindLevelStrict("2026")
	require.Error(t, err)
	var syn *RuleSyntaxError
	require.ErrorAs(t, err, &syn)
}

func TestCalendarMatcherLazyCompilation(t *testing.T) {
	m := NewCalendarMatcher(testCalendar())
	assert.Empty(t, m.compiled)
	_, _ = m.FindLevelStrict("2026-01")
	assert.NotEmpty(t, m.compiled)
}

func TestCalendarMatcherFindLevelLenientFirstMatch(t *testing.T) {
	m := NewCalendarMatcher(testCalendar())
	lvl, ok := m.FindLevelLenient("2026-01")
	require.True(t, ok)
	assert.Equal(t, "Month", lvl.Name)

	_, ok = m.FindLevelLenient("garbage")
	assert.False(t, ok)
}
