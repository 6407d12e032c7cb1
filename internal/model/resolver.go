package model

import "github.com/google/uuid"

// ResolutionStrategy is the sealed set of ways a ResolutionRule can turn a
// resolved period + template into a physical location, mirroring the
// teacher's sealed-interface approach to tagged unions (see
// datalog/query/types.go's InputSpec).
type ResolutionStrategy interface {
	resolutionStrategy()
}

// PathStrategy renders a filesystem-style path template.
type PathStrategy struct {
	Template string `json:"template" yaml:"template"`
}

// TableStrategy renders a database table-name template.
type TableStrategy struct {
	Template string  `json:"template" yaml:"template"`
	Schema   *string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// CatalogStrategy renders a catalog/endpoint URI template.
type CatalogStrategy struct {
	Template string `json:"template" yaml:"template"`
	Catalog  string `json:"catalog" yaml:"catalog"`
}

func (PathStrategy) resolutionStrategy()    {}
func (TableStrategy) resolutionStrategy()   {}
func (CatalogStrategy) resolutionStrategy() {}

// ResolutionRule matches periods using a boolean mini-language condition
// (see resolver.ParseRule) against a target calendar Level, and supplies
// the strategy used to render a location once matched.
type ResolutionRule struct {
	ID         uuid.UUID          `json:"id" yaml:"id"`
	ResolverID string             `json:"resolver_id" yaml:"resolver_id"`
	Level      string             `json:"level" yaml:"level"`
	Condition  string             `json:"condition" yaml:"condition"`
	Priority   int                `json:"priority" yaml:"priority"`
	Strategy   ResolutionStrategy `json:"-" yaml:"-"`
}

// Resolver groups an ordered set of ResolutionRules under a name, resolved
// against a Calendar to produce ResolvedLocations for a dataset/run.
type Resolver struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Description *string           `json:"description,omitempty" yaml:"description,omitempty"`
	IsDefault   *bool             `json:"is_default,omitempty" yaml:"is_default,omitempty"`
	Rules       []ResolutionRule  `json:"rules" yaml:"rules"`
	CreatedAt   *string           `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   *string           `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Selectors   map[string]string `json:"selectors,omitempty" yaml:"selectors,omitempty"`
}

// ResolverSnapshot freezes the resolver and calendar state a Run was
// planned against, so replays are reproducible even if the catalog's live
// resolver/calendar definitions later change.
type ResolverSnapshot struct {
	Resolver Resolver `json:"resolver" yaml:"resolver"`
	Calendar Calendar `json:"calendar" yaml:"calendar"`
}

// ResolvedLocation is the output of resolver.ResolverEngine.Resolve: a
// concrete, rendered location for one period, plus the ID of the rule that
// produced it.
type ResolvedLocation struct {
	PeriodID   uuid.UUID `json:"period_id" yaml:"period_id"`
	Identifier string    `json:"identifier" yaml:"identifier"`
	Location   string    `json:"location" yaml:"location"`
	RuleID     uuid.UUID `json:"rule_id" yaml:"rule_id"`
}
