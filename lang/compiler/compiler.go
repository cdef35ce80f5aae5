// Package compiler implements the single-pass Pratt-parsing compiler: source
// text goes straight to bytecode with no intermediate AST, one token of
// lookahead at a time (spec §4.3). Each nested function, method or the
// top-level script gets its own compilerState, chained to its lexically
// enclosing state so that upvalue resolution can walk outward.
package compiler

import (
	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/scanner"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/value"
)

// Rooter lets the compiler keep a just-allocated value reachable while it is
// added to a chunk's constant pool. The VM's operand stack satisfies this:
// the compiler pushes the value before AddConstant and pops it right back
// off, exactly as clox's makeConstant pushes/pops the value around
// writeValueArray. AddConstant's own append is not accounted to the heap,
// so it does not itself run a collection.
type Rooter interface {
	Push(v value.Value)
	Pop() value.Value
}

type funcKind int

const (
	kindScript funcKind = iota
	kindFunction
	kindMethod
	kindInitializer
)

// maxLocals and maxUpvalues match the bytecode format's single-byte slot and
// index operands (spec §6): a function cannot address more than 256 of
// either.
const (
	maxLocals   = 256
	maxUpvalues = 256
	maxParams   = 255
)

type localVar struct {
	name       token.Token
	depth      int // -1 until the variable's initializer has fully evaluated
	isCaptured bool
}

type upvalueRef struct {
	index   byte
	isLocal bool
}

// compilerState is one function's compile-time frame: its emerging
// *object.Function, the locals currently in scope, and the upvalues it has
// had to capture from enclosing frames so far.
type compilerState struct {
	enclosing *compilerState
	function  *object.Function
	kind      funcKind

	locals     []localVar
	upvalues   []upvalueRef
	scopeDepth int
}

// classState tracks the class currently being compiled, chained to any
// enclosing class so "this" and "super" can be rejected outside of one and
// super-dispatch knows whether a superclass is in scope.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// parser drives the scanner one token ahead, reports diagnostics, and holds
// the chain of compilerStates and classStates active at the current point in
// the source.
type parser struct {
	scanr    scanner.Scanner
	heap     *gc.Heap
	rooter   Rooter
	current  token.Token
	previous token.Token

	errors    ErrorList
	panicMode bool

	cur   *compilerState
	class *classState
}

// Compile compiles source into the *object.Function representing the
// top-level script: an anonymous, zero-arity function whose body is the
// source's top-level declarations. It returns a non-nil error (an
// ErrorList) if any compile-time diagnostics were reported; the partially
// built function is not returned in that case, matching clox's compile()
// returning NULL on failure.
func Compile(source string, heap *gc.Heap, rooter Rooter) (*object.Function, error) {
	p := &parser{heap: heap, rooter: rooter}
	heap.RegisterRoot(p)
	defer heap.UnregisterRoot(p)
	p.scanr.Init(source)
	p.pushCompiler(kindScript)

	p.advance()
	for !p.match(token.EOF) {
		p.declaration()
	}

	fn, err := p.endCompiler()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return fn, err
}

func (p *parser) pushCompiler(kind funcKind) {
	cs := &compilerState{enclosing: p.cur, kind: kind, function: p.heap.NewFunction()}
	if kind != kindScript {
		cs.function.Name = p.heap.InternString(p.previous.Lexeme)
	}
	// Slot 0 is reserved: "this" for methods and initializers, unnamed (and
	// therefore unreachable by name) for plain functions and the script.
	if kind == kindMethod || kind == kindInitializer {
		cs.locals = append(cs.locals, localVar{name: token.Token{Lexeme: "this"}, depth: 0})
	} else {
		cs.locals = append(cs.locals, localVar{name: token.Token{Lexeme: ""}, depth: 0})
	}
	p.cur = cs
}

// endCompiler finishes the current function, emits its implicit return, and
// pops back to the enclosing compilerState (nil at the top-level script).
func (p *parser) endCompiler() (*object.Function, error) {
	p.emitReturn()
	fn := p.cur.function
	p.cur = p.cur.enclosing
	return fn, nil
}

func (p *parser) currentChunk() *chunk.Chunk { return &p.cur.function.Chunk }

// MarkRoots implements gc.RootMarker: every compilerState still on the
// enclosing chain holds an in-progress *object.Function (and, through its
// as-yet-unfinished chunk, the constants compiled into it so far) that is
// reachable from nowhere else, since it isn't wired into any closure or
// constant pool until its own endCompiler/makeConstant runs (spec §4.5).
func (p *parser) MarkRoots(h *gc.Heap) {
	for cs := p.cur; cs != nil; cs = cs.enclosing {
		h.Mark(cs.function)
	}
}

var _ gc.RootMarker = (*parser)(nil)
