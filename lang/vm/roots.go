package vm

import (
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/value"
)

// MarkRoots implements gc.RootMarker: the operand stack, every active call
// frame's closure, every open upvalue, and the globals table are the VM's
// contribution to the root set a collection cycle starts from (spec §4.5).
func (vm *VM) MarkRoots(h *gc.Heap) {
	for i := 0; i < vm.stackTop; i++ {
		h.MarkValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		h.Mark(vm.frames[i].closure)
	}
	for up := vm.openUpvalues; up != nil; up = up.Next {
		h.Mark(up)
	}
	vm.globals.Iter(func(k *object.String, v value.Value) bool {
		h.Mark(k)
		h.MarkValue(v)
		return true
	})
}
