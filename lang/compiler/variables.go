package compiler

import (
	"golang.org/x/exp/slices"

	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/token"
)

func (p *parser) beginScope() { p.cur.scopeDepth++ }

// endScope pops every local declared in the scope being left. A captured
// local is closed over (OP_CLOSE_UPVALUE) instead of merely popped, so any
// closure holding its upvalue keeps a live cell after the stack slot goes
// away.
func (p *parser) endScope() {
	p.cur.scopeDepth--
	locals := p.cur.locals
	for len(locals) > 0 && locals[len(locals)-1].depth > p.cur.scopeDepth {
		if locals[len(locals)-1].isCaptured {
			p.emitOp(chunk.OpCloseUpvalue)
		} else {
			p.emitOp(chunk.OpPop)
		}
		locals = locals[:len(locals)-1]
	}
	p.cur.locals = locals
}

// declareVariable registers name as a new local in the current scope,
// rejecting a redeclaration of the same name within that same scope. It is a
// no-op at global scope, where variables are looked up by name at runtime
// instead of by slot.
func (p *parser) declareVariable(name token.Token) {
	if p.cur.scopeDepth == 0 {
		return
	}
	for i := len(p.cur.locals) - 1; i >= 0; i-- {
		local := p.cur.locals[i]
		if local.depth != -1 && local.depth < p.cur.scopeDepth {
			break
		}
		if local.name.Lexeme == name.Lexeme {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

func (p *parser) addLocal(name token.Token) {
	if len(p.cur.locals) >= maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.cur.locals = append(p.cur.locals, localVar{name: name, depth: -1})
}

// markInitialized marks the most recently declared local as usable, or does
// nothing at global scope (globals are "initialized" by OP_DEFINE_GLOBAL at
// runtime, not by this bookkeeping).
func (p *parser) markInitialized() {
	if p.cur.scopeDepth == 0 {
		return
	}
	p.cur.locals[len(p.cur.locals)-1].depth = p.cur.scopeDepth
}

// parseVariable consumes an identifier, declares it if we're in a local
// scope, and returns the constant-pool index for its name if it's a global
// (the return value is unused, but harmless, for locals).
func (p *parser) parseVariable(errMsg string) byte {
	p.consume(token.IDENTIFIER, errMsg)
	p.declareVariable(p.previous)
	if p.cur.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *parser) defineVariable(global byte) {
	if p.cur.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOpByte(chunk.OpDefineGlobal, global)
}

// resolveLocal searches cs's locals innermost-first for name, returning its
// slot index or -1 if cs declares no such local. A local found mid-way
// through its own initializer (depth still -1) is reported as an error here
// rather than left to the caller, since both call sites below (a plain
// variable reference and an upvalue capture) would otherwise happily resolve
// it and read the not-yet-initialized slot.
func resolveLocal(p *parser, cs *compilerState, name token.Token) int {
	for i := len(cs.locals) - 1; i >= 0; i-- {
		if cs.locals[i].name.Lexeme == name.Lexeme {
			if cs.locals[i].depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue searches cs's enclosing chain for name, registering an
// upvalue at every frame between the declaring function and cs so each
// intermediate closure forwards the capture. Returns the upvalue index in cs,
// or -1 if name is not found anywhere in the enclosing chain (i.e. it must be
// a global).
func (p *parser) resolveUpvalue(cs *compilerState, name token.Token) int {
	if cs.enclosing == nil {
		return -1
	}
	if local := resolveLocal(p, cs.enclosing, name); local != -1 {
		cs.enclosing.locals[local].isCaptured = true
		return p.addUpvalue(cs, byte(local), true)
	}
	if up := p.resolveUpvalue(cs.enclosing, name); up != -1 {
		return p.addUpvalue(cs, byte(up), false)
	}
	return -1
}

func (p *parser) addUpvalue(cs *compilerState, index byte, isLocal bool) int {
	if i := slices.IndexFunc(cs.upvalues, func(u upvalueRef) bool {
		return u.index == index && u.isLocal == isLocal
	}); i != -1 {
		return i
	}
	if len(cs.upvalues) >= maxUpvalues {
		p.error("Too many closure variables in function.")
		return 0
	}
	cs.upvalues = append(cs.upvalues, upvalueRef{index: index, isLocal: isLocal})
	cs.function.UpvalueCount = len(cs.upvalues)
	return len(cs.upvalues) - 1
}
