package dsl

import "fmt"

// ExprType identifies the inferred type of an expression (see types.go for
// compatibility rules).
type ExprType int

const (
	TypeAny ExprType = iota
	TypeNull
	TypeNumber
	TypeString
	TypeBoolean
	TypeDate
)

func (t ExprType) String() string {
	switch t {
	case TypeAny:
		return "Any"
	case TypeNull:
		return "Null"
	case TypeNumber:
		return "Number"
	case TypeString:
		return "String"
	case TypeBoolean:
		return "Boolean"
	case TypeDate:
		return "Date"
	default:
		return "Unknown"
	}
}

// Span records the source location an AST node was parsed from, used for
// diagnostics raised during validation and compilation.
type Span struct {
	Line int
	Col  int
}

// Expr is the sealed set of DSL expression-tree node kinds. The private
// marker method keeps the union closed to this package, mirroring the
// teacher's PatternElement/Pattern sealed-interface style for tree-shaped
// unions.
type Expr interface {
	exprNode()
	Position() Span
}

// BinaryOperator enumerates the DSL's binary operators.
type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNotEq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

func (op BinaryOperator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "="
	case OpNotEq:
		return "<>"
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	default:
		return "?"
	}
}

// IsComparison reports whether op always yields a Boolean result.
func (op BinaryOperator) IsComparison() bool {
	switch op {
	case OpEq, OpNotEq, OpLt, OpLte, OpGt, OpGte, OpAnd, OpOr:
		return true
	default:
		return false
	}
}

// UnaryOperator enumerates the DSL's unary operators.
type UnaryOperator int

const (
	OpNeg UnaryOperator = iota
	OpNot
)

func (op UnaryOperator) String() string {
	switch op {
	case OpNeg:
		return "-"
	case OpNot:
		return "NOT"
	default:
		return "?"
	}
}

// LiteralValue is the sealed set of literal payload kinds a Literal node
// can carry.
type LiteralValue interface {
	literalValue()
}

// NumberLiteral is a parsed floating-point literal.
type NumberLiteral struct{ Value float64 }

// StringLiteral is a parsed, escape-resolved string literal.
type StringLiteral struct{ Value string }

// BooleanLiteral is TRUE or FALSE.
type BooleanLiteral struct{ Value bool }

// DateLiteral is a DATE("...") literal resolved to an ISO-8601 string at
// parse time; runtime representation stays a string until compared.
type DateLiteral struct{ Value string }

// NullLiteral is the NULL literal.
type NullLiteral struct{}

func (NumberLiteral) literalValue()  {}
func (StringLiteral) literalValue()  {}
func (BooleanLiteral) literalValue() {}
func (DateLiteral) literalValue()    {}
func (NullLiteral) literalValue()    {}

// Literal is a constant value appearing in expression source.
type Literal struct {
	Value LiteralValue
	Span  Span
}

func (*Literal) exprNode()        {}
func (l *Literal) Position() Span { return l.Span }

// ColumnRef references a column, optionally qualified by a table/join alias.
// An empty Table means the reference is bare and must be resolved against
// the single matching column in scope (see SPEC_FULL.md §9, open question 1).
type ColumnRef struct {
	Table  string
	Column string
	Span   Span
}

func (*ColumnRef) exprNode()        {}
func (c *ColumnRef) Position() Span { return c.Span }

// SelectorRef is a {{NAME}} interpolation placeholder. The lexer and parser
// never produce one: {{NAME}} references are expanded textually by
// InterpolateSelectors before parsing (see interpolate.go), and Validate
// rejects any SelectorRef it meets as an UnresolvedSelectorRef.
type SelectorRef struct {
	Name string
	Span Span
}

func (*SelectorRef) exprNode()        {}
func (s *SelectorRef) Position() Span { return s.Span }

// BinaryOp is a two-operand operator application.
type BinaryOp struct {
	Op    BinaryOperator
	Left  Expr
	Right Expr
	Span  Span
}

func (*BinaryOp) exprNode()        {}
func (b *BinaryOp) Position() Span { return b.Span }

// UnaryOp is a single-operand operator application.
type UnaryOp struct {
	Op      UnaryOperator
	Operand Expr
	Span    Span
}

func (*UnaryOp) exprNode()        {}
func (u *UnaryOp) Position() Span { return u.Span }

// FunctionCall is a NAME(args...) invocation, either a scalar function
// (UPPER, CONCAT, DATE, COALESCE, ...) or, in aggregation context, an
// aggregate function (SUM, COUNT, AVG, MIN_AGG, MAX_AGG).
type FunctionCall struct {
	Name string
	Args []Expr
	Span Span
}

func (*FunctionCall) exprNode()        {}
func (f *FunctionCall) Position() Span { return f.Span }

// String renders an Expr back to DSL source, used in error messages and
// by the aggregation parser's diagnostics.
func String(e Expr) string {
	switch n := e.(type) {
	case *Literal:
		switch v := n.Value.(type) {
		case NumberLiteral:
			return fmt.Sprintf("%g", v.Value)
		case StringLiteral:
			return fmt.Sprintf("%q", v.Value)
		case BooleanLiteral:
			if v.Value {
				return "TRUE"
			}
			return "FALSE"
		case DateLiteral:
			return fmt.Sprintf("DATE(%q)", v.Value)
		case NullLiteral:
			return "NULL"
		}
	case *ColumnRef:
		if n.Table == "" {
			return n.Column
		}
		return n.Table + "." + n.Column
	case *SelectorRef:
		return "{{" + n.Name + "}}"
	case *BinaryOp:
		return fmt.Sprintf("(%s %s %s)", String(n.Left), n.Op, String(n.Right))
	case *UnaryOp:
		return fmt.Sprintf("(%s%s)", n.Op, String(n.Operand))
	case *FunctionCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = String(a)
		}
		s := n.Name + "("
		for i, a := range args {
			if i > 0 {
				s += ", "
			}
			s += a
		}
		return s + ")"
	}
	return "<?>"
}
