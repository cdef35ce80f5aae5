package compiler

import "github.com/emberlang/ember/lang/token"

// precedence orders the binding strength of infix operators, lowest first,
// matching spec §4.3's expression grammar.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type (
	prefixFn func(p *parser, canAssign bool)
	infixFn  func(p *parser, canAssign bool)
)

type parseRule struct {
	prefix     prefixFn
	infix      infixFn
	precedence precedence
}

var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
		token.LEFT_PAREN:    {prefix: grouping, infix: call, precedence: precCall},
		token.DOT:           {infix: dot, precedence: precCall},
		token.MINUS:         {prefix: unary, infix: binary, precedence: precTerm},
		token.PLUS:          {infix: binary, precedence: precTerm},
		token.SLASH:         {infix: binary, precedence: precFactor},
		token.STAR:          {infix: binary, precedence: precFactor},
		token.BANG:          {prefix: unary},
		token.BANG_EQUAL:    {infix: binary, precedence: precEquality},
		token.EQUAL_EQUAL:   {infix: binary, precedence: precEquality},
		token.GREATER:       {infix: binary, precedence: precComparison},
		token.GREATER_EQUAL: {infix: binary, precedence: precComparison},
		token.LESS:          {infix: binary, precedence: precComparison},
		token.LESS_EQUAL:    {infix: binary, precedence: precComparison},
		token.IDENTIFIER:    {prefix: variable},
		token.STRING:        {prefix: stringLiteral},
		token.NUMBER:        {prefix: number},
		token.AND:           {infix: and_, precedence: precAnd},
		token.OR:            {infix: or_, precedence: precOr},
		token.FALSE:         {prefix: literal},
		token.NIL:           {prefix: literal},
		token.TRUE:          {prefix: literal},
		token.THIS:          {prefix: this_},
		token.SUPER:         {prefix: super_},
	}
}

func getRule(t token.Type) parseRule {
	if r, ok := rules[t]; ok {
		return r
	}
	return parseRule{}
}
