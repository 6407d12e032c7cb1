// Package catalogfile loads a calendar/resolver/dataset catalog definition
// from a YAML document, the on-disk counterpart to the JSON wire format
// spec.md §6 defines for these same model types. It exists because
// ResolutionRule.Strategy is a sealed interface (json:"-" yaml:"-" on the
// struct field) that yaml.v3 cannot unmarshal polymorphically on its own;
// this package carries the discriminated-union shape a catalog file uses
// on disk and converts it into the sealed model.ResolutionStrategy variants
// once decoded.
package catalogfile

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

// Document is the root shape of a catalog YAML file: one calendar, its
// periods, one resolver, the project and dataset the resolver serves.
type Document struct {
	Calendar model.Calendar `yaml:"calendar"`
	Periods  []model.Period `yaml:"periods"`
	Resolver resolverYAML   `yaml:"resolver"`
	Project  model.Project  `yaml:"project"`
	Dataset  model.Dataset  `yaml:"dataset"`
}

type resolverYAML struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description *string           `yaml:"description,omitempty"`
	Selectors   map[string]string `yaml:"selectors,omitempty"`
	Rules       []ruleYAML        `yaml:"rules"`
}

type ruleYAML struct {
	ID        string       `yaml:"id,omitempty"`
	Level     string       `yaml:"level"`
	Condition string       `yaml:"condition"`
	Priority  int          `yaml:"priority"`
	Strategy  strategyYAML `yaml:"strategy"`
}

// strategyYAML is the on-disk discriminated union for ResolutionStrategy:
// Kind selects which of Template/Schema/Catalog apply, mirroring the three
// sealed variants in internal/model/resolver.go.
type strategyYAML struct {
	Kind     string  `yaml:"kind"`
	Template string  `yaml:"template"`
	Schema   *string `yaml:"schema,omitempty"`
	Catalog  string  `yaml:"catalog,omitempty"`
}

func (s strategyYAML) toModel() (model.ResolutionStrategy, error) {
	switch s.Kind {
	case "path":
		return model.PathStrategy{Template: s.Template}, nil
	case "table":
		return model.TableStrategy{Template: s.Template, Schema: s.Schema}, nil
	case "catalog":
		return model.CatalogStrategy{Template: s.Template, Catalog: s.Catalog}, nil
	default:
		return nil, fmt.Errorf("catalogfile: unknown resolution strategy kind %q", s.Kind)
	}
}

// Load decodes a catalog document from r and converts it into the sealed
// model types, generating a fresh UUID for any rule that omits one.
func Load(r io.Reader) (*Document, []model.ResolutionRule, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("catalogfile: decoding document: %w", err)
	}

	rules := make([]model.ResolutionRule, 0, len(doc.Resolver.Rules))
	for _, r := range doc.Resolver.Rules {
		strategy, err := r.Strategy.toModel()
		if err != nil {
			return nil, nil, err
		}
		id := uuid.New()
		if r.ID != "" {
			parsed, err := uuid.Parse(r.ID)
			if err != nil {
				return nil, nil, fmt.Errorf("catalogfile: rule id %q: %w", r.ID, err)
			}
			id = parsed
		}
		rules = append(rules, model.ResolutionRule{
			ID:         id,
			ResolverID: doc.Resolver.ID,
			Level:      r.Level,
			Condition:  r.Condition,
			Priority:   r.Priority,
			Strategy:   strategy,
		})
	}
	return &doc, rules, nil
}

// BuildResolver assembles the sealed model.Resolver from a decoded Document and
// its converted rules, the form internal/resolver.ResolverEngine consumes.
func (d *Document) BuildResolver(rules []model.ResolutionRule) model.Resolver {
	return model.Resolver{
		ID:          d.Resolver.ID,
		Name:        d.Resolver.Name,
		Description: d.Resolver.Description,
		Rules:       rules,
		Selectors:   d.Resolver.Selectors,
	}
}
