package frame

import "github.com/bocacorazon/dobonomodo-sub001/internal/dsl"

// ColumnInfo names one column of a Schema and its inferred DSL type.
type ColumnInfo struct {
	Name string
	Type dsl.ExprType
}

// Schema is an ordered column list, the frame-level analogue of the
// teacher's tuple-attribute ordering in query.Relation.
type Schema []ColumnInfo

// Has reports whether name appears in the schema.
func (s Schema) Has(name string) bool {
	for _, c := range s {
		if c.Name == name {
			return true
		}
	}
	return false
}

// TypeOf returns the declared type of name, or dsl.TypeAny if absent.
func (s Schema) TypeOf(name string) dsl.ExprType {
	for _, c := range s {
		if c.Name == name {
			return c.Type
		}
	}
	return dsl.TypeAny
}

// With returns a new Schema with col appended, leaving the receiver
// untouched (Lazy transforms never mutate in place).
func (s Schema) With(col ColumnInfo) Schema {
	out := make(Schema, len(s), len(s)+1)
	copy(out, s)
	return append(out, col)
}

// Without returns a new Schema with name removed, if present.
func (s Schema) Without(name string) Schema {
	out := make(Schema, 0, len(s))
	for _, c := range s {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}
