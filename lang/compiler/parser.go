package compiler

import "github.com/emberlang/ember/lang/token"

// advance pulls the next token from the scanner into p.current, shifting the
// previous p.current into p.previous. Scanner errors are recorded in the
// diagnostic list (unless panic mode is already suppressing diagnostics) and
// skipped over so the parser always sees a valid-or-EOF token in p.current.
func (p *parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanr.Scan()
		if p.current.Type != token.ERROR {
			break
		}
		if !p.panicMode {
			p.errors = append(p.errors, Error{Line: p.current.Line, Message: p.current.Lexeme, FromLex: true})
		}
		p.panicMode = true
	}
}

// check reports whether the current (not yet consumed) token has type t.
func (p *parser) check(t token.Type) bool { return p.current.Type == t }

// match consumes the current token and returns true if it has type t,
// otherwise leaves it in place and returns false.
func (p *parser) match(t token.Type) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

// consume requires the current token to have type t, advancing past it; any
// other token is reported as a compile error with msg.
func (p *parser) consume(t token.Type, msg string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *parser) error(msg string)          { p.errorAt(p.previous, msg) }

// errorAt records one diagnostic at tok. Panic mode suppresses every
// diagnostic after the first until synchronize() finds a statement boundary,
// so a single misparse doesn't cascade into a wall of misleading errors.
func (p *parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.errors = append(p.errors, Error{
		Line:    tok.Line,
		Lexeme:  tok.Lexeme,
		AtEnd:   tok.Type == token.EOF,
		Message: msg,
	})
}

// synchronize skips tokens until it reaches a plausible statement boundary,
// so compilation can recover from one error and keep looking for more rather
// than aborting on the first.
func (p *parser) synchronize() {
	p.panicMode = false

	for p.current.Type != token.EOF {
		if p.previous.Type == token.SEMICOLON {
			return
		}
		switch p.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}
