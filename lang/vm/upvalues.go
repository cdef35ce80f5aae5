package vm

import (
	"unsafe"

	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/value"
)

// addr orders two locations within vm.stack for the open-upvalue list, which
// clox keeps sorted by raw pointer value. Go disallows ordering
// comparisons on pointers directly, but uintptr conversions of pointers into
// the same contiguous, non-moving array compare consistently with their
// stack positions.
func addr(p *value.Value) uintptr { return uintptr(unsafe.Pointer(p)) }

// captureUpvalue returns the open upvalue for the stack slot at local,
// reusing an existing one if the list already has one for that exact slot,
// and otherwise splicing a new one in at the position that keeps the list
// sorted by descending address.
func (vm *VM) captureUpvalue(local *value.Value) *object.Upvalue {
	var prev *object.Upvalue
	up := vm.openUpvalues
	for up != nil && addr(up.Location) > addr(local) {
		prev = up
		up = up.Next
	}
	if up != nil && up.Location == local {
		return up
	}

	created := vm.heap.NewUpvalue(local)
	created.Next = up
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above last (i.e. every
// upvalue capturing a stack slot about to go out of scope), copying each
// one's current value into its own cell so closures sharing it keep a live
// reference after the stack slot disappears.
func (vm *VM) closeUpvalues(last *value.Value) {
	for vm.openUpvalues != nil && addr(vm.openUpvalues.Location) >= addr(last) {
		up := vm.openUpvalues
		up.Close()
		vm.openUpvalues = up.Next
	}
}
