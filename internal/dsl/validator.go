package dsl

import "fmt"

// ColumnSchema describes one column available for resolution during
// validation: its owning table alias (empty for the unqualified main table)
// and its inferred type.
type ColumnSchema struct {
	Table  string
	Column string
	Type   ExprType
}

// CompilationContext carries the schema and aggregation-context flags a
// validation/compilation pass needs, mirroring the teacher's
// compiler/context pattern of a single struct threaded through recursive
// passes instead of package-level state.
type CompilationContext struct {
	Schema          []ColumnSchema
	AllowAggregates bool
	KnownAliases    map[string]bool

	// Today is the fixed, run-scoped date TODAY() resolves to (ISO-8601,
	// "2006-01-02"), per spec.md §4.2/§4.4/§9: TODAY() reads this field
	// rather than the system clock, so a run's result is reproducible no
	// matter when it is replayed.
	Today string
}

// NewCompilationContext builds a context from a flat column schema.
func NewCompilationContext(schema []ColumnSchema, allowAggregates bool) *CompilationContext {
	aliases := map[string]bool{}
	for _, c := range schema {
		if c.Table != "" {
			aliases[c.Table] = true
		}
	}
	return &CompilationContext{Schema: schema, AllowAggregates: allowAggregates, KnownAliases: aliases}
}

// WithToday returns a shallow copy of ctx with Today set, for call sites
// that build a context once for validation and want the same fixed date
// carried into compilation.
func (c *CompilationContext) WithToday(today string) *CompilationContext {
	cp := *c
	cp.Today = today
	return &cp
}

func (c *CompilationContext) lookup(table, column string) (ExprType, error) {
	if table != "" {
		for _, s := range c.Schema {
			if s.Table == table && s.Column == column {
				return s.Type, nil
			}
		}
		if !c.KnownAliases[table] {
			return TypeAny, &UnknownAlias{Alias: table}
		}
		return TypeAny, &UnknownAliasedColumn{Alias: table, Column: column}
	}

	var matches []ColumnSchema
	for _, s := range c.Schema {
		if s.Column == column {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return TypeAny, &UnresolvedColumnRef{Column: column}
	case 1:
		return matches[0].Type, nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			if m.Table == "" {
				names[i] = m.Column
			} else {
				names[i] = m.Table + "." + m.Column
			}
		}
		return TypeAny, &AmbiguousColumnRef{Column: column, Matches: names}
	}
}

// Validate type-checks expr against ctx, returning its inferred ExprType.
// It implements spec.md §4.2's validation pass: column resolution, operator
// type compatibility, and function-catalog arity/argument checking.
func Validate(expr Expr, ctx *CompilationContext) (ExprType, error) {
	t, err := validate(expr, ctx)
	if err != nil {
		return TypeAny, &ValidationFailure{Err: err}
	}
	return t, nil
}

func validate(expr Expr, ctx *CompilationContext) (ExprType, error) {
	switch n := expr.(type) {
	case *Literal:
		switch n.Value.(type) {
		case NumberLiteral:
			return TypeNumber, nil
		case StringLiteral:
			return TypeString, nil
		case BooleanLiteral:
			return TypeBoolean, nil
		case DateLiteral:
			return TypeDate, nil
		case NullLiteral:
			return TypeNull, nil
		}
		return TypeAny, nil

	case *ColumnRef:
		return ctx.lookup(n.Table, n.Column)

	case *SelectorRef:
		return TypeAny, &UnresolvedSelectorRef{Selector: n.Name}

	case *UnaryOp:
		t, err := validate(n.Operand, ctx)
		if err != nil {
			return TypeAny, err
		}
		switch n.Op {
		case OpNeg:
			if !t.IsNumeric() {
				return TypeAny, &TypeMismatch{Expected: "Number", Actual: t.String(), Context: String(n)}
			}
			return TypeNumber, nil
		case OpNot:
			if !t.IsBoolean() {
				return TypeAny, &TypeMismatch{Expected: "Boolean", Actual: t.String(), Context: String(n)}
			}
			return TypeBoolean, nil
		}
		return TypeAny, nil

	case *BinaryOp:
		return validateBinary(n, ctx)

	case *FunctionCall:
		return validateFunctionCall(n, ctx)
	}
	return TypeAny, fmt.Errorf("unhandled expression node %T", expr)
}

func validateBinary(n *BinaryOp, ctx *CompilationContext) (ExprType, error) {
	left, err := validate(n.Left, ctx)
	if err != nil {
		return TypeAny, err
	}
	right, err := validate(n.Right, ctx)
	if err != nil {
		return TypeAny, err
	}

	switch n.Op {
	case OpAdd, OpSub, OpMul, OpDiv:
		if !left.IsNumeric() {
			return TypeAny, &TypeMismatch{Expected: "Number", Actual: left.String(), Context: String(n)}
		}
		if !right.IsNumeric() {
			return TypeAny, &TypeMismatch{Expected: "Number", Actual: right.String(), Context: String(n)}
		}
		return TypeNumber, nil

	case OpAnd, OpOr:
		if !left.IsBoolean() {
			return TypeAny, &TypeMismatch{Expected: "Boolean", Actual: left.String(), Context: String(n)}
		}
		if !right.IsBoolean() {
			return TypeAny, &TypeMismatch{Expected: "Boolean", Actual: right.String(), Context: String(n)}
		}
		return TypeBoolean, nil

	case OpEq, OpNotEq, OpLt, OpLte, OpGt, OpGte:
		if !left.IsCompatibleWith(right) {
			return TypeAny, &TypeMismatch{Expected: left.String(), Actual: right.String(), Context: String(n)}
		}
		return TypeBoolean, nil
	}
	return TypeAny, nil
}

func validateFunctionCall(n *FunctionCall, ctx *CompilationContext) (ExprType, error) {
	if sig, ok := AggregateFunctions[n.Name]; ok {
		if !ctx.AllowAggregates {
			return TypeAny, &InvalidAggregateContext{Function: n.Name}
		}
		return validateAgainstSignature(n, sig, ctx)
	}

	sig, ok := ScalarFunctions[n.Name]
	if !ok {
		return TypeAny, &InvalidFunction{Function: n.Name, Reason: "unknown function"}
	}
	return validateAgainstSignature(n, sig, ctx)
}

func validateAgainstSignature(n *FunctionCall, sig FunctionSignature, ctx *CompilationContext) (ExprType, error) {
	if len(n.Args) < sig.MinArgs || (sig.MaxArgs >= 0 && len(n.Args) > sig.MaxArgs) {
		expected := fmt.Sprintf("%d", sig.MinArgs)
		if sig.MaxArgs < 0 {
			expected = fmt.Sprintf("at least %d", sig.MinArgs)
		} else if sig.MaxArgs != sig.MinArgs {
			expected = fmt.Sprintf("%d-%d", sig.MinArgs, sig.MaxArgs)
		}
		return TypeAny, &WrongArgumentCount{Function: n.Name, Expected: expected, Actual: len(n.Args)}
	}

	for i, arg := range n.Args {
		t, err := validate(arg, ctx)
		if err != nil {
			return TypeAny, err
		}
		want := sig.ReturnTypeForArg(i)
		if want == TypeAny {
			continue
		}
		if !typeAcceptedBy(want, t) {
			return TypeAny, &TypeMismatch{Expected: want.String(), Actual: t.String(), Context: String(n)}
		}
	}
	return sig.ReturnType, nil
}

// ReturnTypeForArg returns the declared type for argument i, clamping to
// the last declared entry for variadic signatures (e.g. CONCAT, COALESCE).
func (sig FunctionSignature) ReturnTypeForArg(i int) ExprType {
	if len(sig.ArgTypes) == 0 {
		return TypeAny
	}
	if i < len(sig.ArgTypes) {
		return sig.ArgTypes[i]
	}
	return sig.ArgTypes[len(sig.ArgTypes)-1]
}

func typeAcceptedBy(want, got ExprType) bool {
	switch want {
	case TypeNumber:
		return got.IsNumeric()
	case TypeBoolean:
		return got.IsBoolean()
	case TypeString:
		return got.IsString()
	case TypeDate:
		return got.IsDate()
	default:
		return true
	}
}
