package model

import "github.com/google/uuid"

// CalendarStatus enumerates a Calendar's lifecycle state.
type CalendarStatus string

const (
	CalendarActive   CalendarStatus = "active"
	CalendarDisabled CalendarStatus = "disabled"
)

// Level describes one level of a calendar's hierarchy (e.g. Year, Quarter,
// Month, Day), each carrying a regex used to classify a period identifier
// string into that level (see resolver.CalendarMatcher).
type Level struct {
	Name     string `json:"name" yaml:"name"`
	Sequence int    `json:"sequence" yaml:"sequence"`
	Pattern  string `json:"pattern" yaml:"pattern"`
}

// Calendar is a named hierarchy of Levels used to classify and expand
// Periods.
type Calendar struct {
	ID        uuid.UUID      `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Status    CalendarStatus `json:"status" yaml:"status"`
	IsDefault bool           `json:"is_default" yaml:"is_default"`
	Levels    []Level        `json:"levels" yaml:"levels"`
}

// LevelByName returns the Level with the given name, if present.
func (c *Calendar) LevelByName(name string) (Level, bool) {
	for _, l := range c.Levels {
		if l.Name == name {
			return l, true
		}
	}
	return Level{}, false
}
