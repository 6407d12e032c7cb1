package dsl

// AggregateExpr is the parsed form of a flat aggregation expression:
// FUNC(column) or FUNC(*), as used by Aggregate operation specs (spec.md
// §4.5). Unlike general Expr trees, aggregation expressions are
// intentionally flat — the grammar does not allow nesting.
type AggregateExpr struct {
	Function string
	Column   string // empty when Star is true
	Star     bool
	Alias    string
}

// ParseAggregateExpr parses "FUNC(col)", "FUNC(*)", or "FUNC(col) AS alias"
// per spec.md §4.5's flat aggregation grammar.
func ParseAggregateExpr(source string) (*AggregateExpr, error) {
	tokens, err := NewLexer(source).Lex()
	if err != nil {
		return nil, &ParseFailure{Err: err}
	}
	p := &Parser{tokens: tokens}

	nameTok, err := p.expect(TokenUpperIdent)
	if err != nil {
		return nil, &ParseFailure{Err: &InvalidFunction{Function: "?", Reason: "expected an aggregate function name"}}
	}
	sig, ok := AggregateFunctions[nameTok.Value]
	if !ok {
		return nil, &ParseFailure{Err: &InvalidFunction{Function: nameTok.Value, Reason: "not a recognized aggregate function"}}
	}

	if _, err := p.expect(TokenLParen); err != nil {
		return nil, &ParseFailure{Err: err}
	}

	result := &AggregateExpr{Function: sig.Name}
	if p.check(TokenStar) {
		p.advance()
		result.Star = true
	} else {
		colTok, err := p.expect(TokenIdent)
		if err != nil {
			return nil, &ParseFailure{Err: &InvalidFunction{Function: sig.Name, Reason: "expected a column name or *"}}
		}
		result.Column = colTok.Value
	}
	if result.Star && sig.Name != "COUNT" {
		return nil, &ParseFailure{Err: &InvalidFunction{Function: sig.Name, Reason: "only COUNT(*) is permitted"}}
	}

	if _, err := p.expect(TokenRParen); err != nil {
		return nil, &ParseFailure{Err: &UnclosedParenthesis{Line: nameTok.Line, Col: nameTok.Col}}
	}

	if (p.check(TokenIdent) || p.check(TokenUpperIdent)) && p.current().Value == "AS" {
		p.advance()
		aliasTok, err := p.expect(TokenIdent)
		if err != nil {
			return nil, &ParseFailure{Err: err}
		}
		result.Alias = aliasTok.Value
	} else {
		result.Alias = defaultAggregateAlias(result)
	}

	if !p.atEOF() {
		return nil, &ParseFailure{Err: &UnexpectedToken{Token: p.current().String(), Line: p.current().Line, Col: p.current().Col}}
	}

	return result, nil
}

func defaultAggregateAlias(a *AggregateExpr) string {
	if a.Star {
		return a.Function + "_star"
	}
	return a.Function + "_" + a.Column
}
