package model

import "github.com/google/uuid"

// Period is a single node in a calendar's period hierarchy: a concrete span
// of time (e.g. "2026", "2026-Q1", "2026-01") classified to one Level and,
// except at the root, parented to a coarser period.
type Period struct {
	ID          uuid.UUID  `json:"id" yaml:"id"`
	CalendarID  uuid.UUID  `json:"calendar_id" yaml:"calendar_id"`
	Name        string     `json:"name" yaml:"name"`
	Description *string    `json:"description,omitempty" yaml:"description,omitempty"`
	Identifier  string     `json:"identifier" yaml:"identifier"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Sequence    int        `json:"sequence" yaml:"sequence"`
	StartDate   string     `json:"start_date" yaml:"start_date"`
	EndDate     string     `json:"end_date" yaml:"end_date"`
	CreatedAt   *string    `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   *string    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}
