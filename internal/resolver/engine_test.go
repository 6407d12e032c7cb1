package resolver

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

func TestDetermineOutcomePriority(t *testing.T) {
	assert.Equal(t, OutcomePeriodExpansionFailure, DetermineOutcome(true, true, true))
	assert.Equal(t, OutcomeTemplateRenderError, DetermineOutcome(true, false, true))
	assert.Equal(t, OutcomeSuccess, DetermineOutcome(true, false, false))
	assert.Equal(t, OutcomeNoMatchingRule, DetermineOutcome(false, false, false))
}

func TestResolverEngineResolvesFirstMatchingRuleInPriorityOrder(t *testing.T) {
	calendarID := uuid.New()
	calendar := &model.Calendar{
		ID: calendarID,
		Levels: []model.Level{
			{Name: "Year", Sequence: 0, Pattern: `^\d{4}$`},
			{Name: "Month", Sequence: 1, Pattern: `^\d{4}-\d{2}$`},
		},
	}
	year := model.Period{ID: uuid.New(), CalendarID: calendarID, Identifier: "2026", Name: "2026", Sequence: 0}
	jan := model.Period{ID: uuid.New(), CalendarID: calendarID, Identifier: "2026-01", Name: "2026-01", ParentID: &year.ID, Sequence: 0}
	periods := []model.Period{year, jan}

	res := &model.Resolver{
		ID:   "ledger",
		Name: "ledger resolver",
		Rules: []model.ResolutionRule{
			{ID: uuid.New(), Level: "Month", Condition: "name == 'nope'", Priority: 0, Strategy: model.PathStrategy{Template: "low/{identifier}"}},
			{ID: uuid.New(), Level: "Month", Condition: "level == 'Month'", Priority: 1, Strategy: model.PathStrategy{Template: "ledger/{identifier}.parquet"}},
		},
	}

	engine := NewResolverEngine(calendar, periods)
	locations, diag, outcome, err := engine.Resolve(res, year)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
	require.Len(t, locations, 1)
	assert.Equal(t, "ledger/2026-01.parquet", locations[0].Location)
	require.NotEmpty(t, diag.Rules)
}

func TestResolverEngineSuccessWithTrueCondition(t *testing.T) {
	calendarID := uuid.New()
	calendar := &model.Calendar{
		ID: calendarID,
		Levels: []model.Level{
			{Name: "Year", Sequence: 0, Pattern: `^\d{4}$`},
			{Name: "Month", Sequence: 1, Pattern: `^\d{4}-\d{2}$`},
		},
	}
	year := model.Period{ID: uuid.New(), CalendarID: calendarID, Identifier: "2026", Name: "2026", Sequence: 0}
	jan := model.Period{ID: uuid.New(), CalendarID: calendarID, Identifier: "2026-01", Name: "2026-01", ParentID: &year.ID, Sequence: 0}
	feb := model.Period{ID: uuid.New(), CalendarID: calendarID, Identifier: "2026-02", Name: "2026-02", ParentID: &year.ID, Sequence: 1}
	periods := []model.Period{year, jan, feb}

	res := &model.Resolver{
		ID:   "ledger",
		Name: "ledger resolver",
		Rules: []model.ResolutionRule{
			{ID: uuid.New(), Level: "Month", Condition: "level == 'Month'", Priority: 0, Strategy: model.PathStrategy{Template: "ledger/{identifier}.parquet"}},
		},
	}

	engine := NewResolverEngine(calendar, periods)
	locations, _, outcome, err := engine.Resolve(res, year)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, outcome)
	require.Len(t, locations, 2)
	assert.Equal(t, "ledger/2026-01.parquet", locations[0].Location)
	assert.Equal(t, "ledger/2026-02.parquet", locations[1].Location)
}

func TestResolverEngineLaterRuleAtSameLevelAppliesWhenEarlierFails(t *testing.T) {
	calendarID := uuid.New()
	calendar := &model.Calendar{
		ID: calendarID,
		Levels: []model.Level{
			{Name: "Month", Sequence: 0, Pattern: `^\d{4}-\d{2}$`},
		},
	}
	jan := model.Period{ID: uuid.New(), CalendarID: calendarID, Identifier: "2026-01", Name: "2026-01", Sequence: 0}
	periods := []model.Period{jan}

	res := &model.Resolver{
		ID: "ledger",
		Rules: []model.ResolutionRule{
			{ID: uuid.New(), Level: "Month", Condition: "name == 'nope'", Priority: 0, Strategy: model.PathStrategy{Template: "first/{identifier}"}},
			{ID: uuid.New(), Level: "Month", Condition: "level == 'Month'", Priority: 1, Strategy: model.PathStrategy{Template: "second/{identifier}"}},
		},
	}

	engine := NewResolverEngine(calendar, periods)
	locations, _, outcome, err := engine.Resolve(res, jan)
	require.NoError(t, err)
	// The first Month rule's condition does not match, so the next Month
	// rule in priority order is evaluated and its location is used.
	assert.Equal(t, OutcomeSuccess, outcome)
	require.Len(t, locations, 1)
	assert.Equal(t, "second/2026-01", locations[0].Location)
}
