package vm

import (
	"fmt"
	"time"

	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/value"
)

// defineNatives installs the handful of native functions the language
// exposes directly in global scope (spec §1 names clock() as the sole
// required one).
func defineNatives(vm *VM) {
	vm.defineNative("clock", clockNative)
}

func (vm *VM) defineNative(name string, fn object.NativeFn) {
	native := vm.heap.NewNative(name, fn)
	vm.globals.Put(vm.heap.InternString(name), native)
}

// clockNative returns the number of seconds since the Unix epoch as a
// fractional Number, the same shape as clox's clock() (seconds as a double),
// implemented on top of time.Now rather than C's clock() since Go has no
// direct equivalent of CPU-time-since-process-start.
func clockNative(args []value.Value) (value.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("clock() takes no arguments")
	}
	return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
}
