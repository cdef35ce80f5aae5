// Package object implements the heap-allocated Value variants: strings,
// functions, natives, closures, upvalues, classes, instances and bound
// methods. Every type here embeds value.Obj, which is how each participates
// in the garbage collector's intrusive all-objects list and mark bit.
package object

import (
	"fmt"
	"strconv"

	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/value"
)

// String is an immutable, interned byte sequence. Two Strings with equal
// content are never allocated as distinct objects; the intern table (see
// package table) is the sole source of truth for that invariant.
type String struct {
	value.Obj
	Chars string
	Hash  uint32
}

func NewString(s string) *String {
	return &String{Obj: value.Obj{Kind: value.ObjString}, Chars: s, Hash: value.HashString(s)}
}

func (s *String) Type() string   { return "string" }
func (s *String) String() string { return s.Chars }

var (
	_ value.Object = (*String)(nil)
)

// Function is a compiled function: its arity, the number of upvalues its
// closures must allocate, its chunk, and an optional name (nil for the
// top-level script and for anonymous functions before binding).
type Function struct {
	value.Obj
	Arity        int
	UpvalueCount int
	Chunk        chunk.Chunk
	Name         *String
}

func NewFunction() *Function {
	return &Function{Obj: value.Obj{Kind: value.ObjFunction}}
}

func (f *Function) Type() string { return "function" }
func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// NativeFn is the signature every native (host) function must implement.
type NativeFn func(args []value.Value) (value.Value, error)

// Native wraps a host function so it can be called like any other callable.
type Native struct {
	value.Obj
	Name string
	Fn   NativeFn
}

func NewNative(name string, fn NativeFn) *Native {
	return &Native{Obj: value.Obj{Kind: value.ObjNative}, Name: name, Fn: fn}
}

func (n *Native) Type() string   { return "native function" }
func (n *Native) String() string { return "<native fn>" }

// Upvalue is a shared, heap-resident cell for a variable captured from an
// outer scope. While Open is true, Location aliases a live slot on the VM's
// operand stack; Close severs that alias by copying the current value into
// Closed and repointing Location at it, so that the cell outlives the stack
// slot it was born from.
type Upvalue struct {
	value.Obj
	Location *value.Value
	Closed   value.Value
	Open     bool
	Next     *Upvalue // next entry in the VM's open-upvalue list
}

func NewUpvalue(slot *value.Value) *Upvalue {
	u := &Upvalue{Obj: value.Obj{Kind: value.ObjUpvalue}, Location: slot, Open: true}
	return u
}

func (u *Upvalue) Type() string   { return "upvalue" }
func (u *Upvalue) String() string { return "upvalue" }

// Get returns the upvalue's current value, whether open or closed.
func (u *Upvalue) Get() value.Value { return *u.Location }

// Set assigns the upvalue's current value, whether open or closed.
func (u *Upvalue) Set(v value.Value) { *u.Location = v }

// Close severs the upvalue from the stack slot it was capturing, copying the
// slot's current value into the cell and redirecting Location at the cell
// itself. Every closure sharing this upvalue keeps the same identity.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
	u.Open = false
}

// Closure is the only form a Function is ever called through, including the
// wrapped top-level script: a Function plus the array of captured-variable
// cells it closed over.
type Closure struct {
	value.Obj
	Function *Function
	Upvalues []*Upvalue
}

func NewClosure(fn *Function) *Closure {
	return &Closure{
		Obj:      value.Obj{Kind: value.ObjClosure},
		Function: fn,
		Upvalues: make([]*Upvalue, fn.UpvalueCount),
	}
}

func (c *Closure) Type() string   { return "function" }
func (c *Closure) String() string { return c.Function.String() }

// Class is a single-inheritance class: a name and its own method table
// (methods inherited via OP_INHERIT are copied in at class-definition time,
// not looked up transitively at call time).
type Class struct {
	value.Obj
	Name    *String
	Methods map[*String]*Closure
}

func NewClass(name *String) *Class {
	return &Class{Obj: value.Obj{Kind: value.ObjClass}, Name: name, Methods: make(map[*String]*Closure)}
}

func (c *Class) Type() string   { return "class" }
func (c *Class) String() string { return c.Name.Chars }

// Instance is an instance of a Class with its own field table.
type Instance struct {
	value.Obj
	Class  *Class
	Fields map[*String]value.Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Obj: value.Obj{Kind: value.ObjInstance}, Class: class, Fields: make(map[*String]value.Value)}
}

func (i *Instance) Type() string   { return "instance" }
func (i *Instance) String() string { return i.Class.Name.Chars + " instance" }

// BoundMethod pairs a receiver with one of its class's methods, produced by
// OP_GET_PROPERTY when the property names a method rather than a field.
type BoundMethod struct {
	value.Obj
	Receiver value.Value
	Method   *Closure
}

func NewBoundMethod(receiver value.Value, method *Closure) *BoundMethod {
	return &BoundMethod{Obj: value.Obj{Kind: value.ObjBoundMethod}, Receiver: receiver, Method: method}
}

func (b *BoundMethod) Type() string   { return "function" }
func (b *BoundMethod) String() string { return b.Method.String() }

var (
	_ value.Object = (*Function)(nil)
	_ value.Object = (*Native)(nil)
	_ value.Object = (*Upvalue)(nil)
	_ value.Object = (*Closure)(nil)
	_ value.Object = (*Class)(nil)
	_ value.Object = (*Instance)(nil)
	_ value.Object = (*BoundMethod)(nil)
)

// QuoteForPrint renders s the way the disassembler quotes string constants,
// reusing strconv rather than hand-rolling escaping.
func QuoteForPrint(s string) string { return strconv.Quote(s) }
