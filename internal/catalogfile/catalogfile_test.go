package catalogfile

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

const sampleDocument = `
calendar:
  id: 11111111-1111-1111-1111-111111111111
  name: fiscal
  status: active
  is_default: true
  levels:
    - name: Year
      sequence: 0
      pattern: '^\d{4}$'
    - name: Month
      sequence: 1
      pattern: '^\d{4}-\d{2}$'
periods:
  - id: 22222222-2222-2222-2222-222222222222
    calendar_id: 11111111-1111-1111-1111-111111111111
    name: "2026-01"
    identifier: "2026-01"
    sequence: 0
    start_date: "2026-01-01"
    end_date: "2026-01-31"
resolver:
  id: ledger
  name: ledger resolver
  rules:
    - id: 33333333-3333-3333-3333-333333333333
      level: Month
      condition: "TRUE"
      priority: 0
      strategy:
        kind: path
        template: "ledger/{identifier}.parquet"
    - level: Month
      condition: "region == 'east'"
      priority: 1
      strategy:
        kind: table
        template: "ledger_{identifier}"
        schema: analytics
    - level: Month
      condition: "TRUE"
      priority: 2
      strategy:
        kind: catalog
        template: "ledger.{identifier}"
        catalog: glue
project:
  id: 44444444-4444-4444-4444-444444444444
  name: ledger-demo
dataset:
  id: 55555555-5555-5555-5555-555555555555
  project_id: 44444444-4444-4444-4444-444444444444
  name: ledger
  version: 1
  status: active
  calendar_id: 11111111-1111-1111-1111-111111111111
  main_table:
    resolver_id: ledger
    schema:
      - name: region
        type: string
      - name: amount
        type: number
`

func TestLoadDecodesFullDocument(t *testing.T) {
	doc, rules, err := Load(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, "fiscal", doc.Calendar.Name)
	require.Len(t, doc.Periods, 1)
	assert.Equal(t, "2026-01", doc.Periods[0].Identifier)
	assert.Equal(t, "ledger-demo", doc.Project.Name)
	assert.Equal(t, "ledger", doc.Dataset.MainTable.ResolverID)
	require.Len(t, rules, 3)

	assert.Equal(t, uuid.MustParse("33333333-3333-3333-3333-333333333333"), rules[0].ID)
	path, ok := rules[0].Strategy.(model.PathStrategy)
	require.True(t, ok)
	assert.Equal(t, "ledger/{identifier}.parquet", path.Template)

	table, ok := rules[1].Strategy.(model.TableStrategy)
	require.True(t, ok)
	require.NotNil(t, table.Schema)
	assert.Equal(t, "analytics", *table.Schema)
	assert.NotEqual(t, uuid.Nil, rules[1].ID, "an omitted rule id is generated rather than left nil")

	catalog, ok := rules[2].Strategy.(model.CatalogStrategy)
	require.True(t, ok)
	assert.Equal(t, "glue", catalog.Catalog)
}

func TestLoadGeneratesIDForRuleOmittingOne(t *testing.T) {
	_, rules, err := Load(strings.NewReader(sampleDocument))
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.NotEqual(t, rules[0].ID, rules[1].ID)
}

func TestLoadRejectsMalformedRuleID(t *testing.T) {
	doc := strings.Replace(sampleDocument, "id: 33333333-3333-3333-3333-333333333333", "id: not-a-uuid", 1)
	_, _, err := Load(strings.NewReader(doc))
	require.Error(t, err)
}

func TestLoadRejectsUnknownStrategyKind(t *testing.T) {
	doc := strings.Replace(sampleDocument, "kind: path", "kind: mystery", 1)
	_, _, err := Load(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resolution strategy kind")
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	_, _, err := Load(strings.NewReader("calendar: [unterminated"))
	require.Error(t, err)
}

func TestBuildResolverAssemblesSealedResolver(t *testing.T) {
	doc, rules, err := Load(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	res := doc.BuildResolver(rules)
	assert.Equal(t, "ledger", res.ID)
	assert.Equal(t, "ledger resolver", res.Name)
	assert.Len(t, res.Rules, 3)
	assert.Same(t, &rules[0], &res.Rules[0])
}
