package compiler

import (
	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/scanner"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/value"
)

func (p *parser) expression() {
	p.parsePrecedence(precAssignment)
}

// parsePrecedence is the Pratt engine's core: consume one token, dispatch to
// its prefix rule, then keep consuming and dispatching to infix rules as
// long as the next token's precedence meets minPrec. canAssign is threaded
// down to the prefix parselet so only an expression actually in assignment
// position treats a trailing "=" as an assignment target.
func (p *parser) parsePrecedence(minPrec precedence) {
	p.advance()
	prefix := getRule(p.previous.Type).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := minPrec <= precAssignment
	prefix(p, canAssign)

	for minPrec <= getRule(p.current.Type).precedence {
		p.advance()
		infix := getRule(p.previous.Type).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.EQUAL) {
		p.error("Invalid assignment target.")
	}
}

func number(p *parser, _ bool) {
	f, err := scanner.ParseNumber(p.previous.Lexeme)
	if err != nil {
		p.error("Invalid number literal.")
		return
	}
	p.emitConstant(value.Number(f))
}

func stringLiteral(p *parser, _ bool) {
	s := scanner.StripQuotes(p.previous.Lexeme)
	p.emitConstant(p.heap.InternString(s))
}

func literal(p *parser, _ bool) {
	switch p.previous.Type {
	case token.FALSE:
		p.emitOp(chunk.OpFalse)
	case token.TRUE:
		p.emitOp(chunk.OpTrue)
	case token.NIL:
		p.emitOp(chunk.OpNil)
	}
}

func grouping(p *parser, _ bool) {
	p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func unary(p *parser, _ bool) {
	op := p.previous.Type
	p.parsePrecedence(precUnary)
	switch op {
	case token.BANG:
		p.emitOp(chunk.OpNot)
	case token.MINUS:
		p.emitOp(chunk.OpNegate)
	}
}

func binary(p *parser, _ bool) {
	op := p.previous.Type
	rule := getRule(op)
	p.parsePrecedence(rule.precedence + 1)

	switch op {
	case token.BANG_EQUAL:
		p.emitOps(chunk.OpEqual, chunk.OpNot)
	case token.EQUAL_EQUAL:
		p.emitOp(chunk.OpEqual)
	case token.GREATER:
		p.emitOp(chunk.OpGreater)
	case token.GREATER_EQUAL:
		p.emitOps(chunk.OpLess, chunk.OpNot)
	case token.LESS:
		p.emitOp(chunk.OpLess)
	case token.LESS_EQUAL:
		p.emitOps(chunk.OpGreater, chunk.OpNot)
	case token.PLUS:
		p.emitOp(chunk.OpAdd)
	case token.MINUS:
		p.emitOp(chunk.OpSubtract)
	case token.STAR:
		p.emitOp(chunk.OpMultiply)
	case token.SLASH:
		p.emitOp(chunk.OpDivide)
	}
}

// and_ and or_ implement short-circuiting entirely with jumps: the left
// operand is left on the stack as the expression's result whenever it
// already determines the outcome, so no OP_POP runs on that path.
func and_(p *parser, _ bool) {
	endJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitOp(chunk.OpPop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func or_(p *parser, _ bool) {
	elseJump := p.emitJump(chunk.OpJumpIfFalse)
	endJump := p.emitJump(chunk.OpJump)
	p.patchJump(elseJump)
	p.emitOp(chunk.OpPop)
	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func call(p *parser, _ bool) {
	argc := p.argumentList()
	p.emitOpByte(chunk.OpCall, argc)
}

// argumentList parses a parenthesized, comma-separated argument list whose
// opening "(" has already been consumed, and returns the argument count.
func (p *parser) argumentList() byte {
	var argc int
	if !p.check(token.RIGHT_PAREN) {
		for {
			p.expression()
			if argc == maxParams {
				p.error("Can't have more than 255 arguments.")
			}
			argc++
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return byte(argc)
}

// dot parses a property access or assignment, fusing a trailing call into a
// single OP_INVOKE so method calls skip materializing a bound method.
func dot(p *parser, canAssign bool) {
	p.consume(token.IDENTIFIER, "Expect property name after '.'.")
	name := p.identifierConstant(p.previous)

	switch {
	case canAssign && p.match(token.EQUAL):
		p.expression()
		p.emitOpByte(chunk.OpSetProperty, name)
	case p.match(token.LEFT_PAREN):
		argc := p.argumentList()
		p.emitOp(chunk.OpInvoke)
		p.emitByte(name)
		p.emitByte(argc)
	default:
		p.emitOpByte(chunk.OpGetProperty, name)
	}
}

func variable(p *parser, canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

// namedVariable resolves name as a local, an upvalue, or (failing both) a
// global, and emits the matching get or set opcode. Locals and upvalues
// address their slot directly; globals are looked up by their interned name
// at runtime.
func (p *parser) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp chunk.Opcode
	var arg byte

	if local := resolveLocal(p, p.cur, name); local != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
		arg = byte(local)
	} else if up := p.resolveUpvalue(p.cur, name); up != -1 {
		getOp, setOp = chunk.OpGetUpvalue, chunk.OpSetUpvalue
		arg = byte(up)
	} else {
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
		arg = p.identifierConstant(name)
	}

	if canAssign && p.match(token.EQUAL) {
		p.expression()
		p.emitOpByte(setOp, arg)
	} else {
		p.emitOpByte(getOp, arg)
	}
}

var thisToken = token.Token{Lexeme: "this"}
var superToken = token.Token{Lexeme: "super"}

func this_(p *parser, _ bool) {
	if p.class == nil {
		p.error("Can't use 'this' outside of a class.")
		return
	}
	p.namedVariable(thisToken, false)
}

// super_ parses "super.name", resolving the implicit "this" and "super"
// locals the enclosing method/initializer captured, then either emits a
// fused OP_SUPER_INVOKE for a call or OP_GET_SUPER otherwise.
func super_(p *parser, _ bool) {
	if p.class == nil {
		p.error("Can't use 'super' outside of a class.")
	} else if !p.class.hasSuperclass {
		p.error("Can't use 'super' in a class with no superclass.")
	}

	p.consume(token.DOT, "Expect '.' after 'super'.")
	p.consume(token.IDENTIFIER, "Expect superclass method name.")
	name := p.identifierConstant(p.previous)

	p.namedVariable(thisToken, false)
	if p.match(token.LEFT_PAREN) {
		argc := p.argumentList()
		p.namedVariable(superToken, false)
		p.emitOp(chunk.OpSuperInvoke)
		p.emitByte(name)
		p.emitByte(argc)
	} else {
		p.namedVariable(superToken, false)
		p.emitOpByte(chunk.OpGetSuper, name)
	}
}
