package dsl

// IsCompatibleWith implements the Null/Any-absorbing compatibility rule from
// original_source/dsl/types.rs: Null and Any are compatible with every type,
// and a type is always compatible with itself.
func (t ExprType) IsCompatibleWith(other ExprType) bool {
	if t == TypeNull || t == TypeAny || other == TypeNull || other == TypeAny {
		return true
	}
	return t == other
}

// IsNumeric reports whether t can participate in arithmetic, treating
// Null/Any as passing per the original's is_numeric.
func (t ExprType) IsNumeric() bool {
	return t == TypeNumber || t == TypeNull || t == TypeAny
}

// IsBoolean reports whether t can participate in boolean logic, treating
// Null/Any as passing.
func (t ExprType) IsBoolean() bool {
	return t == TypeBoolean || t == TypeNull || t == TypeAny
}

// IsString reports whether t can participate in string operations, treating
// Null/Any as passing.
func (t ExprType) IsString() bool {
	return t == TypeString || t == TypeNull || t == TypeAny
}

// IsDate reports whether t can participate in date comparisons, treating
// Null/Any as passing.
func (t ExprType) IsDate() bool {
	return t == TypeDate || t == TypeNull || t == TypeAny
}

// FunctionSignature describes a scalar or aggregate function's arity and
// argument/return types for validator lookups (spec.md §4.2's function
// catalog table).
type FunctionSignature struct {
	Name       string
	MinArgs    int
	MaxArgs    int // -1 means unbounded
	ArgTypes   []ExprType
	ReturnType ExprType
	Aggregate  bool
}

// ScalarFunctions is the catalog of non-aggregate functions recognized by
// the validator, the fixed set spec.md §4.2 names.
var ScalarFunctions = map[string]FunctionSignature{
	"ABS":      {Name: "ABS", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeNumber}, ReturnType: TypeNumber},
	"ROUND":    {Name: "ROUND", MinArgs: 1, MaxArgs: 2, ArgTypes: []ExprType{TypeNumber, TypeNumber}, ReturnType: TypeNumber},
	"FLOOR":    {Name: "FLOOR", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeNumber}, ReturnType: TypeNumber},
	"CEIL":     {Name: "CEIL", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeNumber}, ReturnType: TypeNumber},
	"MOD":      {Name: "MOD", MinArgs: 2, MaxArgs: 2, ArgTypes: []ExprType{TypeNumber, TypeNumber}, ReturnType: TypeNumber},
	"MIN":      {Name: "MIN", MinArgs: 2, MaxArgs: 2, ArgTypes: []ExprType{TypeNumber, TypeNumber}, ReturnType: TypeNumber},
	"MAX":      {Name: "MAX", MinArgs: 2, MaxArgs: 2, ArgTypes: []ExprType{TypeNumber, TypeNumber}, ReturnType: TypeNumber},
	"CONCAT":   {Name: "CONCAT", MinArgs: 2, MaxArgs: -1, ArgTypes: []ExprType{TypeString}, ReturnType: TypeString},
	"UPPER":    {Name: "UPPER", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeString}, ReturnType: TypeString},
	"LOWER":    {Name: "LOWER", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeString}, ReturnType: TypeString},
	"TRIM":     {Name: "TRIM", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeString}, ReturnType: TypeString},
	"LEFT":     {Name: "LEFT", MinArgs: 2, MaxArgs: 2, ArgTypes: []ExprType{TypeString, TypeNumber}, ReturnType: TypeString},
	"RIGHT":    {Name: "RIGHT", MinArgs: 2, MaxArgs: 2, ArgTypes: []ExprType{TypeString, TypeNumber}, ReturnType: TypeString},
	"LEN":      {Name: "LEN", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeString}, ReturnType: TypeNumber},
	"CONTAINS": {Name: "CONTAINS", MinArgs: 2, MaxArgs: 2, ArgTypes: []ExprType{TypeString, TypeString}, ReturnType: TypeBoolean},
	"REPLACE":  {Name: "REPLACE", MinArgs: 3, MaxArgs: 3, ArgTypes: []ExprType{TypeString, TypeString, TypeString}, ReturnType: TypeString},
	"IF":       {Name: "IF", MinArgs: 3, MaxArgs: 3, ArgTypes: []ExprType{TypeBoolean, TypeAny, TypeAny}, ReturnType: TypeAny},
	"ISNULL":   {Name: "ISNULL", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeAny}, ReturnType: TypeBoolean},
	"COALESCE": {Name: "COALESCE", MinArgs: 1, MaxArgs: -1, ArgTypes: []ExprType{TypeAny}, ReturnType: TypeAny},
	"DATE":     {Name: "DATE", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeString}, ReturnType: TypeDate},
	"TODAY":    {Name: "TODAY", MinArgs: 0, MaxArgs: 0, ReturnType: TypeDate},
	"YEAR":     {Name: "YEAR", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeDate}, ReturnType: TypeNumber},
	"MONTH":    {Name: "MONTH", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeDate}, ReturnType: TypeNumber},
	"DAY":      {Name: "DAY", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeDate}, ReturnType: TypeNumber},
	"DATEDIFF": {Name: "DATEDIFF", MinArgs: 2, MaxArgs: 2, ArgTypes: []ExprType{TypeDate, TypeDate}, ReturnType: TypeNumber},
	"DATEADD":  {Name: "DATEADD", MinArgs: 2, MaxArgs: 2, ArgTypes: []ExprType{TypeDate, TypeNumber}, ReturnType: TypeDate},
}

// AggregateFunctions is the catalog of aggregate functions recognized by the
// aggregation-expression parser (spec.md §4.5). MIN_AGG/MAX_AGG are the
// aggregate forms, kept distinct from ScalarFunctions' two-argument scalar
// MIN/MAX.
var AggregateFunctions = map[string]FunctionSignature{
	"SUM":     {Name: "SUM", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeNumber}, ReturnType: TypeNumber, Aggregate: true},
	"AVG":     {Name: "AVG", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeNumber}, ReturnType: TypeNumber, Aggregate: true},
	"MIN_AGG": {Name: "MIN_AGG", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeAny}, ReturnType: TypeAny, Aggregate: true},
	"MAX_AGG": {Name: "MAX_AGG", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeAny}, ReturnType: TypeAny, Aggregate: true},
	"COUNT":   {Name: "COUNT", MinArgs: 1, MaxArgs: 1, ArgTypes: []ExprType{TypeAny}, ReturnType: TypeNumber, Aggregate: true},
}
