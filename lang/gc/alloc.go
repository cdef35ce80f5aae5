package gc

import (
	"unsafe"

	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/value"
)

// InternString returns the canonical *object.String for s, allocating and
// tracking a new one only if an equal string is not already interned.
func (h *Heap) InternString(s string) *object.String {
	hash := value.HashString(s)
	return h.Strings.Intern(s, hash, func() *object.String {
		str := object.NewString(s)
		h.track(str, int64(unsafe.Sizeof(*str))+int64(len(s)))
		return str
	})
}

// Concat implements OP_ADD's string-concatenation form: the result is
// interned the same way any other string is, reusing the freshly built
// buffer if it turns out not to already be interned.
func (h *Heap) Concat(a, b *object.String) *object.String {
	return h.InternString(a.Chars + b.Chars)
}

// NewFunction allocates and tracks an empty *object.Function, ready for the
// compiler to fill in as it compiles the function's body.
func (h *Heap) NewFunction() *object.Function {
	fn := object.NewFunction()
	h.track(fn, int64(unsafe.Sizeof(*fn)))
	return fn
}

// NewNative allocates and tracks a native function wrapper.
func (h *Heap) NewNative(name string, fn object.NativeFn) *object.Native {
	n := object.NewNative(name, fn)
	h.track(n, int64(unsafe.Sizeof(*n)))
	return n
}

// NewClosure allocates and tracks a closure over fn, with freshly allocated
// (nil) upvalue slots for the caller (normally OP_CLOSURE's handler) to
// populate.
func (h *Heap) NewClosure(fn *object.Function) *object.Closure {
	c := object.NewClosure(fn)
	h.track(c, int64(unsafe.Sizeof(*c))+int64(cap(c.Upvalues))*int64(unsafe.Sizeof((*object.Upvalue)(nil))))
	return c
}

// NewUpvalue allocates and tracks an open upvalue pointing at slot.
func (h *Heap) NewUpvalue(slot *value.Value) *object.Upvalue {
	u := object.NewUpvalue(slot)
	h.track(u, int64(unsafe.Sizeof(*u)))
	return u
}

// NewClass allocates and tracks a class named by the already-interned name.
func (h *Heap) NewClass(name *object.String) *object.Class {
	c := object.NewClass(name)
	h.track(c, int64(unsafe.Sizeof(*c)))
	return c
}

// NewInstance allocates and tracks an instance of class.
func (h *Heap) NewInstance(class *object.Class) *object.Instance {
	i := object.NewInstance(class)
	h.track(i, int64(unsafe.Sizeof(*i)))
	return i
}

// NewBoundMethod allocates and tracks a bound method value.
func (h *Heap) NewBoundMethod(receiver value.Value, method *object.Closure) *object.BoundMethod {
	b := object.NewBoundMethod(receiver, method)
	h.track(b, int64(unsafe.Sizeof(*b)))
	return b
}
