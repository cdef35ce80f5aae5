// Package value defines the tagged value representation shared by the
// compiler and the virtual machine: the non-heap variants (Nil, Bool,
// Number) and the Object interface implemented by every heap-allocated
// variant (strings, functions, closures, classes, instances, ...).
package value

import "strconv"

// Value is the interface satisfied by every runtime value: the three
// unboxed variants defined in this file, plus every heap Object defined in
// the object package.
type Value interface {
	// Type returns a short, lowercase name for the value's dynamic type.
	Type() string
	// String returns the value as printed by the language's print statement.
	String() string
}

// Nil is the language's absence-of-a-value. There is exactly one Nil value;
// Value equality treats any two Nils as equal.
type Nil struct{}

func (Nil) Type() string   { return "nil" }
func (Nil) String() string { return "nil" }

// Bool is a boolean value.
type Bool bool

func (Bool) Type() string { return "bool" }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number is an IEEE-754 double, the language's only numeric type.
type Number float64

func (Number) Type() string { return "number" }

// String formats n the way the language's print statement does: the
// shortest decimal that round-trips, with no trailing ".0" on whole
// numbers (matching C's "%g").
func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }

// Truth reports whether v is truthy: everything except Nil and the boolean
// false is truthy, matching the source language's semantics.
func Truth(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal implements the language's == operator. Nil equals only Nil; Bool and
// Number compare componentwise; every other value (all of them heap Objects)
// compares by identity. Because the string table guarantees that two strings
// with equal content share the same *object.String, identity comparison also
// gives byte-content equality for strings.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	default:
		return a == b
	}
}
