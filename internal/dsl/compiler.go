package dsl

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Row is the row representation expression evaluators operate over: column
// name (or "alias.column" for joined scopes) to runtime value. NULL is
// represented as a nil any, matching the teacher's Value-or-nil handling in
// compare.go.
type Row map[string]any

// Evaluator is a compiled, column-at-a-time-free row evaluator: given one
// row it produces the expression's runtime value. The compiler lowers an
// Expr tree into one of these closures once, then the lazy frame layer
// calls it once per row during Collect.
type Evaluator func(row Row) (any, error)

// Compile lowers a validated Expr into an Evaluator, using ctx for anything
// compilation needs beyond the expression tree itself — currently only
// TODAY()'s fixed date (spec.md §4.2). ctx may be nil when the expression is
// known not to reference TODAY(); TODAY() lowers to a permanent nil in that
// case. Compile does not itself validate; callers should run Validate first
// so that type errors surface before any row is evaluated.
func Compile(expr Expr, ctx *CompilationContext) (Evaluator, error) {
	switch n := expr.(type) {
	case *Literal:
		v := literalRuntimeValue(n.Value)
		return func(Row) (any, error) { return v, nil }, nil

	case *ColumnRef:
		key := n.Column
		if n.Table != "" {
			key = n.Table + "." + n.Column
		}
		bare := n.Column
		qualified := n.Table != ""
		return func(row Row) (any, error) {
			if qualified {
				return row[key], nil
			}
			if v, ok := row[bare]; ok {
				return v, nil
			}
			return row[key], nil
		}, nil

	case *UnaryOp:
		return compileUnary(n, ctx)

	case *BinaryOp:
		return compileBinary(n, ctx)

	case *FunctionCall:
		return compileFunctionCall(n, ctx)
	}
	return nil, fmt.Errorf("unhandled expression node %T", expr)
}

func literalRuntimeValue(v LiteralValue) any {
	switch lit := v.(type) {
	case NumberLiteral:
		return lit.Value
	case StringLiteral:
		return lit.Value
	case BooleanLiteral:
		return lit.Value
	case DateLiteral:
		return lit.Value
	case NullLiteral:
		return nil
	}
	return nil
}

func compileUnary(n *UnaryOp, ctx *CompilationContext) (Evaluator, error) {
	operand, err := Compile(n.Operand, ctx)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case OpNeg:
		return func(row Row) (any, error) {
			v, err := operand(row)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, nil
			}
			f, ok := v.(float64)
			if !ok {
				return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", v), Context: String(n)}
			}
			return -f, nil
		}, nil
	case OpNot:
		return func(row Row) (any, error) {
			v, err := operand(row)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, nil
			}
			b, ok := v.(bool)
			if !ok {
				return nil, &TypeMismatch{Expected: "Boolean", Actual: fmt.Sprintf("%T", v), Context: String(n)}
			}
			return !b, nil
		}, nil
	}
	return nil, fmt.Errorf("unhandled unary operator %v", n.Op)
}

func compileBinary(n *BinaryOp, ctx *CompilationContext) (Evaluator, error) {
	left, err := Compile(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := Compile(n.Right, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return compileArithmetic(n.Op, left, right, n), nil
	case OpAnd:
		return func(row Row) (any, error) {
			lv, err := boolOperand(left, row, n)
			if err != nil {
				return nil, err
			}
			if lv != nil && !*lv {
				return false, nil
			}
			rv, err := boolOperand(right, row, n)
			if err != nil {
				return nil, err
			}
			if rv != nil && !*rv {
				return false, nil
			}
			if lv == nil || rv == nil {
				return nil, nil
			}
			return *lv && *rv, nil
		}, nil
	case OpOr:
		return func(row Row) (any, error) {
			lv, err := boolOperand(left, row, n)
			if err != nil {
				return nil, err
			}
			if lv != nil && *lv {
				return true, nil
			}
			rv, err := boolOperand(right, row, n)
			if err != nil {
				return nil, err
			}
			if rv != nil && *rv {
				return true, nil
			}
			if lv == nil || rv == nil {
				return nil, nil
			}
			return *lv || *rv, nil
		}, nil
	case OpEq, OpNotEq, OpLt, OpLte, OpGt, OpGte:
		return func(row Row) (any, error) {
			lv, err := left(row)
			if err != nil {
				return nil, err
			}
			rv, err := right(row)
			if err != nil {
				return nil, err
			}
			if lv == nil || rv == nil {
				return nil, nil
			}
			cmp, ok := CompareValues(lv, rv)
			if !ok {
				return nil, &TypeMismatch{Expected: fmt.Sprintf("%T", lv), Actual: fmt.Sprintf("%T", rv), Context: String(n)}
			}
			switch n.Op {
			case OpEq:
				return cmp == 0, nil
			case OpNotEq:
				return cmp != 0, nil
			case OpLt:
				return cmp < 0, nil
			case OpLte:
				return cmp <= 0, nil
			case OpGt:
				return cmp > 0, nil
			case OpGte:
				return cmp >= 0, nil
			}
			return nil, nil
		}, nil
	}
	return nil, fmt.Errorf("unhandled binary operator %v", n.Op)
}

func boolOperand(eval Evaluator, row Row, n *BinaryOp) (*bool, error) {
	v, err := eval(row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, &TypeMismatch{Expected: "Boolean", Actual: fmt.Sprintf("%T", v), Context: String(n)}
	}
	return &b, nil
}

func compileArithmetic(op BinaryOperator, left, right Evaluator, n *BinaryOp) Evaluator {
	return func(row Row) (any, error) {
		lv, err := left(row)
		if err != nil {
			return nil, err
		}
		rv, err := right(row)
		if err != nil {
			return nil, err
		}
		if lv == nil || rv == nil {
			return nil, nil
		}
		lf, ok := lv.(float64)
		if !ok {
			return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", lv), Context: String(n)}
		}
		rf, ok := rv.(float64)
		if !ok {
			return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", rv), Context: String(n)}
		}
		switch op {
		case OpAdd:
			return lf + rf, nil
		case OpSub:
			return lf - rf, nil
		case OpMul:
			return lf * rf, nil
		case OpDiv:
			// Runtime division by zero yields NULL per SPEC_FULL.md §9, open
			// question 3 — only a literal zero divisor is a compile error.
			if rf == 0 {
				return nil, nil
			}
			return lf / rf, nil
		}
		return nil, nil
	}
}

func compileFunctionCall(n *FunctionCall, ctx *CompilationContext) (Evaluator, error) {
	args := make([]Evaluator, len(n.Args))
	for i, a := range n.Args {
		ev, err := Compile(a, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = ev
	}

	switch n.Name {
	case "UPPER":
		return unaryStringFn(args[0], strings.ToUpper), nil
	case "LOWER":
		return unaryStringFn(args[0], strings.ToLower), nil
	case "TRIM":
		return unaryStringFn(args[0], strings.TrimSpace), nil
	case "LEN":
		return func(row Row) (any, error) {
			v, err := args[0](row)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, nil
			}
			s, ok := v.(string)
			if !ok {
				return nil, &TypeMismatch{Expected: "String", Actual: fmt.Sprintf("%T", v), Context: String(n)}
			}
			return float64(len([]rune(s))), nil
		}, nil
	case "CONCAT":
		return func(row Row) (any, error) {
			var sb strings.Builder
			for _, a := range args {
				v, err := a(row)
				if err != nil {
					return nil, err
				}
				if v == nil {
					return nil, nil
				}
				s, ok := v.(string)
				if !ok {
					return nil, &TypeMismatch{Expected: "String", Actual: fmt.Sprintf("%T", v), Context: String(n)}
				}
				sb.WriteString(s)
			}
			return sb.String(), nil
		}, nil
	case "LEFT":
		return compileLeftRight(args, n, true), nil
	case "RIGHT":
		return compileLeftRight(args, n, false), nil
	case "CONTAINS":
		return func(row Row) (any, error) {
			s, sOK, err := stringArg(args[0], row)
			if err != nil {
				return nil, err
			}
			sub, subOK, err := stringArg(args[1], row)
			if err != nil {
				return nil, err
			}
			if !sOK || !subOK {
				return nil, nil
			}
			return strings.Contains(s, sub), nil
		}, nil
	case "REPLACE":
		return func(row Row) (any, error) {
			s, sOK, err := stringArg(args[0], row)
			if err != nil {
				return nil, err
			}
			old, oldOK, err := stringArg(args[1], row)
			if err != nil {
				return nil, err
			}
			replacement, replOK, err := stringArg(args[2], row)
			if err != nil {
				return nil, err
			}
			if !sOK || !oldOK || !replOK {
				return nil, nil
			}
			return strings.ReplaceAll(s, old, replacement), nil
		}, nil
	case "DATE":
		return compileDate(args, n), nil
	case "TODAY":
		var today any
		if ctx != nil {
			today = ctx.Today
		}
		return func(Row) (any, error) { return today, nil }, nil
	case "YEAR":
		return compileDatePart(args[0], n, func(t time.Time) float64 { return float64(t.Year()) }), nil
	case "MONTH":
		return compileDatePart(args[0], n, func(t time.Time) float64 { return float64(t.Month()) }), nil
	case "DAY":
		return compileDatePart(args[0], n, func(t time.Time) float64 { return float64(t.Day()) }), nil
	case "DATEDIFF":
		return compileDateDiff(args, n), nil
	case "DATEADD":
		return compileDateAdd(args, n), nil
	case "ISNULL":
		return func(row Row) (any, error) {
			v, err := args[0](row)
			if err != nil {
				return nil, err
			}
			return v == nil, nil
		}, nil
	case "COALESCE":
		return func(row Row) (any, error) {
			for _, a := range args {
				v, err := a(row)
				if err != nil {
					return nil, err
				}
				if v != nil {
					return v, nil
				}
			}
			return nil, nil
		}, nil
	case "ABS":
		return func(row Row) (any, error) {
			v, err := args[0](row)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return nil, nil
			}
			f, ok := v.(float64)
			if !ok {
				return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", v), Context: String(n)}
			}
			if f < 0 {
				return -f, nil
			}
			return f, nil
		}, nil
	case "ROUND":
		return compileRound(args), nil
	case "FLOOR":
		return unaryNumberFn(args[0], n, math.Floor), nil
	case "CEIL":
		return unaryNumberFn(args[0], n, math.Ceil), nil
	case "MOD":
		return binaryNumberFn(args[0], args[1], n, math.Mod), nil
	case "MIN":
		return binaryNumberFn(args[0], args[1], n, math.Min), nil
	case "MAX":
		return binaryNumberFn(args[0], args[1], n, math.Max), nil
	case "IF":
		return func(row Row) (any, error) {
			cond, err := args[0](row)
			if err != nil {
				return nil, err
			}
			b, ok := cond.(bool)
			if cond != nil && !ok {
				return nil, &TypeMismatch{Expected: "Boolean", Actual: fmt.Sprintf("%T", cond), Context: String(n)}
			}
			if cond == nil {
				return nil, nil
			}
			if b {
				return args[1](row)
			}
			return args[2](row)
		}, nil
	}
	return nil, &UnsupportedFunction{Function: n.Name, Reason: "no lowering defined"}
}

func stringArg(eval Evaluator, row Row) (string, bool, error) {
	v, err := eval(row)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, &TypeMismatch{Expected: "String", Actual: fmt.Sprintf("%T", v)}
	}
	return s, true, nil
}

func unaryNumberFn(arg Evaluator, n *FunctionCall, fn func(float64) float64) Evaluator {
	return func(row Row) (any, error) {
		v, err := arg(row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		f, ok := v.(float64)
		if !ok {
			return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", v), Context: String(n)}
		}
		return fn(f), nil
	}
}

func binaryNumberFn(left, right Evaluator, n *FunctionCall, fn func(float64, float64) float64) Evaluator {
	return func(row Row) (any, error) {
		lv, err := left(row)
		if err != nil {
			return nil, err
		}
		rv, err := right(row)
		if err != nil {
			return nil, err
		}
		if lv == nil || rv == nil {
			return nil, nil
		}
		lf, ok := lv.(float64)
		if !ok {
			return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", lv), Context: String(n)}
		}
		rf, ok := rv.(float64)
		if !ok {
			return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", rv), Context: String(n)}
		}
		return fn(lf, rf), nil
	}
}

func compileLeftRight(args []Evaluator, n *FunctionCall, fromStart bool) Evaluator {
	return func(row Row) (any, error) {
		s, sOK, err := stringArg(args[0], row)
		if err != nil {
			return nil, err
		}
		cv, err := args[1](row)
		if err != nil {
			return nil, err
		}
		if !sOK || cv == nil {
			return nil, nil
		}
		count, ok := cv.(float64)
		if !ok {
			return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", cv), Context: String(n)}
		}
		runes := []rune(s)
		take := clampIndex(int(count), len(runes))
		if fromStart {
			return string(runes[:take]), nil
		}
		return string(runes[len(runes)-take:]), nil
	}
}

func compileDatePart(arg Evaluator, n *FunctionCall, part func(time.Time) float64) Evaluator {
	return func(row Row) (any, error) {
		t, ok, err := dateArg(arg, row, n)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return part(t), nil
	}
}

func compileDateDiff(args []Evaluator, n *FunctionCall) Evaluator {
	return func(row Row) (any, error) {
		a, aOK, err := dateArg(args[0], row, n)
		if err != nil {
			return nil, err
		}
		b, bOK, err := dateArg(args[1], row, n)
		if err != nil {
			return nil, err
		}
		if !aOK || !bOK {
			return nil, nil
		}
		return float64(int(a.Sub(b).Hours() / 24)), nil
	}
}

func compileDateAdd(args []Evaluator, n *FunctionCall) Evaluator {
	return func(row Row) (any, error) {
		t, ok, err := dateArg(args[0], row, n)
		if err != nil {
			return nil, err
		}
		dv, err := args[1](row)
		if err != nil {
			return nil, err
		}
		if !ok || dv == nil {
			return nil, nil
		}
		days, okNum := dv.(float64)
		if !okNum {
			return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", dv), Context: String(n)}
		}
		return t.AddDate(0, 0, int(days)).Format("2006-01-02"), nil
	}
}

// dateArg evaluates arg as a Date-typed value: NULL, or a string that fails
// to parse as ISO-8601, both report ok=false so the caller can propagate
// NULL rather than error, matching DATE()'s own parse-failure-to-NULL rule.
func dateArg(arg Evaluator, row Row, n *FunctionCall) (time.Time, bool, error) {
	v, err := arg(row)
	if err != nil {
		return time.Time{}, false, err
	}
	if v == nil {
		return time.Time{}, false, nil
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false, &TypeMismatch{Expected: "Date", Actual: fmt.Sprintf("%T", v), Context: String(n)}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

func unaryStringFn(arg Evaluator, fn func(string) string) Evaluator {
	return func(row Row) (any, error) {
		v, err := arg(row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, &TypeMismatch{Expected: "String", Actual: fmt.Sprintf("%T", v), Context: ""}
		}
		return fn(s), nil
	}
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}

func compileDate(args []Evaluator, n *FunctionCall) Evaluator {
	return func(row Row) (any, error) {
		v, err := args[0](row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, &TypeMismatch{Expected: "String", Actual: fmt.Sprintf("%T", v), Context: String(n)}
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return nil, nil
		}
		return s, nil
	}
}

func compileRound(args []Evaluator) Evaluator {
	return func(row Row) (any, error) {
		v, err := args[0](row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		f, ok := v.(float64)
		if !ok {
			return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", v), Context: ""}
		}
		precision := 0
		if len(args) == 2 {
			pv, err := args[1](row)
			if err != nil {
				return nil, err
			}
			if pv == nil {
				return nil, nil
			}
			pf, ok := pv.(float64)
			if !ok {
				return nil, &TypeMismatch{Expected: "Number", Actual: fmt.Sprintf("%T", pv), Context: ""}
			}
			precision = int(pf)
		}
		scale := 1.0
		for i := 0; i < precision; i++ {
			scale *= 10
		}
		rounded := float64(int64(f*scale+sign(f)*0.5)) / scale
		return rounded, nil
	}
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
