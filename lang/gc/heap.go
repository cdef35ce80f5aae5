// Package gc implements the precise, non-moving mark-sweep collector
// described in spec §4.5: every heap object is threaded onto one intrusive
// linked list at allocation, an explicit gray worklist drives tracing so
// that marking never recurses through Go's own call stack, and the string
// intern table is pruned as a weak map between the mark and sweep phases.
package gc

import (
	"unsafe"

	"golang.org/x/exp/maps"

	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/table"
	"github.com/emberlang/ember/lang/value"
)

const initialNextGC = 1 << 20 // 1 MiB, per spec §4.5

// RootMarker is implemented by every long-lived component that holds
// references a collection cycle must not reclaim: the VM (operand stack,
// frames, open upvalues, globals) and the compiler chain (in-progress
// functions of every Compiler record still on the enclosing-link stack).
type RootMarker interface {
	MarkRoots(h *Heap)
}

// Stats summarizes one completed collection cycle, surfaced to callers that
// want to log or test GC behavior.
type Stats struct {
	Freed          int
	BytesBefore    int64
	BytesAfter     int64
	NextGC         int64
}

// Heap owns every heap object allocated by the compiler and VM, the string
// intern table, and the bookkeeping (bytes allocated, next threshold) that
// decides when a collection runs.
type Heap struct {
	allObjects     value.Object
	bytesAllocated int64
	nextGC         int64
	stress         bool // force a collection on every allocation, for stress-testing

	Strings    table.Table
	InitString *object.String

	// OnCollect, if set, is called with the stats of every completed
	// collection cycle — the hook internal/vmconfig's EMBER_LOG_GC wires up
	// to a stderr logger, left nil (no overhead) otherwise.
	OnCollect func(Stats)

	roots []RootMarker
	gray  []value.Object // explicit worklist; never routed through h.track
}

// New creates an empty heap. If stress is true, a collection is forced on
// every single allocation instead of only once bytesAllocated exceeds
// nextGC; this is the debug mode spec §4.5 calls out for stress-testing.
func New(stress bool) *Heap {
	h := &Heap{nextGC: initialNextGC, stress: stress}
	h.InitString = h.InternString("init")
	return h
}

// RegisterRoot adds r to the set of components consulted for roots at the
// start of every collection cycle.
func (h *Heap) RegisterRoot(r RootMarker) { h.roots = append(h.roots, r) }

// UnregisterRoot removes r from the root set, e.g. once a compiler chain
// that registered itself for the duration of a single Compile call has
// finished and its in-progress functions are reachable (or not) some other
// way.
func (h *Heap) UnregisterRoot(r RootMarker) {
	for i, root := range h.roots {
		if root == r {
			h.roots = append(h.roots[:i], h.roots[i+1:]...)
			return
		}
	}
}

// BytesAllocated reports the heap's current bookkeeping total. This is an
// approximation of each object's true memory footprint (computed from
// unsafe.Sizeof plus variable-length parts known at allocation time), not a
// byte-exact account of what the Go runtime itself allocates underneath —
// see DESIGN.md for why that precision isn't attainable (or useful) on top
// of a garbage-collected host language.
func (h *Heap) BytesAllocated() int64 { return h.bytesAllocated }

// NextGC reports the threshold that will trigger the next cycle.
func (h *Heap) NextGC() int64 { return h.nextGC }

// track links obj onto the all-objects list, accounts for its size, and
// triggers a collection first if doing so would be needed — mirroring
// clox's reallocate(), which checks the threshold before growing.
func (h *Heap) track(obj value.Object, size int64) {
	h.maybeCollect(size)
	obj.Header().Next = h.allObjects
	h.allObjects = obj
	h.bytesAllocated += size
}

// TrackBytes accounts for n bytes of growth that is not a new heap object
// against the same threshold, running a collection first if one is due.
func (h *Heap) TrackBytes(n int64) {
	h.maybeCollect(n)
	h.bytesAllocated += n
}

func (h *Heap) maybeCollect(incoming int64) {
	if h.stress || h.bytesAllocated+incoming > h.nextGC {
		h.Collect()
	}
}

// Collect runs one full mark-sweep cycle: mark every registered root, trace
// the gray worklist to blacken everything reachable, prune the weak intern
// table, then sweep the all-objects list.
func (h *Heap) Collect() Stats {
	before := h.bytesAllocated

	for _, r := range h.roots {
		r.MarkRoots(h)
	}
	// the cached "init" string is marked here as an extra root so it is never
	// pruned; every other intern-table key is weak and is pruned below unless
	// marking reached it through some other root.
	h.Mark(h.InitString)

	h.traceReferences()
	h.Strings.RemoveUnmarked()
	freed := h.sweep()

	h.nextGC = h.bytesAllocated * 2
	if h.nextGC < initialNextGC {
		h.nextGC = initialNextGC
	}

	stats := Stats{Freed: freed, BytesBefore: before, BytesAfter: h.bytesAllocated, NextGC: h.nextGC}
	if h.OnCollect != nil {
		h.OnCollect(stats)
	}
	return stats
}

// Mark marks obj reachable and pushes it onto the gray worklist if it was
// previously white. Callers must not pass a nil Object (check optional
// references, e.g. a Function's possibly-nil Name, before calling); Go's nil
// interface rules make an interface wrapping a nil pointer compare unequal
// to nil, so there is no general-purpose way to absorb that check here.
func (h *Heap) Mark(obj value.Object) {
	if obj == nil {
		return
	}
	hdr := obj.Header()
	if hdr.Marked {
		return
	}
	hdr.Marked = true
	h.gray = append(h.gray, obj)
}

// MarkValue marks v if it is a heap Object; Nil, Bool and Number carry no
// header and are ignored.
func (h *Heap) MarkValue(v value.Value) {
	if obj, ok := v.(value.Object); ok {
		h.Mark(obj)
	}
}

// traceReferences pops the gray worklist until empty, blackening each
// object by marking every reference it holds. The worklist itself grows
// with plain append (tracked outside of h.track) so that tracing never
// re-enters the allocation accounting it exists to drive.
func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		n := len(h.gray) - 1
		obj := h.gray[n]
		h.gray = h.gray[:n]
		h.blacken(obj)
	}
}

func (h *Heap) blacken(obj value.Object) {
	switch o := obj.(type) {
	case *object.String, *object.Native:
		// no outgoing references
	case *object.Function:
		if o.Name != nil {
			h.Mark(o.Name)
		}
		for _, c := range o.Chunk.Constants {
			h.MarkValue(c)
		}
	case *object.Closure:
		h.Mark(o.Function)
		for _, up := range o.Upvalues {
			if up != nil {
				h.Mark(up)
			}
		}
	case *object.Upvalue:
		h.MarkValue(o.Closed)
	case *object.Class:
		h.Mark(o.Name)
		for _, m := range maps.Values(o.Methods) {
			h.Mark(m)
		}
	case *object.Instance:
		h.Mark(o.Class)
		for _, fv := range maps.Values(o.Fields) {
			h.MarkValue(fv)
		}
	case *object.BoundMethod:
		h.MarkValue(o.Receiver)
		h.Mark(o.Method)
	}
}

// sweep walks the intrusive all-objects list, clearing the mark bit on
// every live object and unlinking/dropping every object left white.
func (h *Heap) sweep() int {
	var (
		prev  value.Object
		freed int
	)
	cur := h.allObjects
	for cur != nil {
		hdr := cur.Header()
		next := hdr.Next
		if hdr.Marked {
			hdr.Marked = false
			prev = cur
		} else {
			if prev == nil {
				h.allObjects = next
			} else {
				prev.Header().Next = next
			}
			h.bytesAllocated -= objectSize(cur)
			freed++
		}
		cur = next
	}
	return freed
}

func objectSize(obj value.Object) int64 {
	switch o := obj.(type) {
	case *object.String:
		return int64(unsafe.Sizeof(*o)) + int64(len(o.Chars))
	case *object.Function:
		return int64(unsafe.Sizeof(*o))
	case *object.Native:
		return int64(unsafe.Sizeof(*o))
	case *object.Closure:
		return int64(unsafe.Sizeof(*o)) + int64(len(o.Upvalues))*int64(unsafe.Sizeof((*object.Upvalue)(nil)))
	case *object.Upvalue:
		return int64(unsafe.Sizeof(*o))
	case *object.Class:
		return int64(unsafe.Sizeof(*o))
	case *object.Instance:
		return int64(unsafe.Sizeof(*o))
	case *object.BoundMethod:
		return int64(unsafe.Sizeof(*o))
	default:
		return 0
	}
}
