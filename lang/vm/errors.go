package vm

import (
	"fmt"
	"strings"
)

// RuntimeError is returned by Interpret when the running program faults:
// an unhandled type error, an undefined variable, a failed call, and so on.
// Error renders the message followed by a frame-by-frame stack trace,
// top-to-bottom, per spec §7.
type RuntimeError struct {
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, line := range e.Trace {
		b.WriteByte('\n')
		b.WriteString(line)
	}
	return b.String()
}

// runtimeError builds a *RuntimeError from the current call stack, then
// resets the VM's stack: per spec §7, a runtime fault aborts the whole
// program, so there is no partial state worth preserving across it.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	rerr := &RuntimeError{Message: fmt.Sprintf(format, args...)}

	for i := vm.frameCount - 1; i >= 0; i-- {
		frame := &vm.frames[i]
		fn := frame.closure.Function
		line := fn.Chunk.Lines[frame.ip-1]
		if fn.Name == nil {
			rerr.Trace = append(rerr.Trace, fmt.Sprintf("[line %d] in script", line))
		} else {
			rerr.Trace = append(rerr.Trace, fmt.Sprintf("[line %d] in %s()", line, fn.Name.Chars))
		}
	}

	vm.resetStack()
	return rerr
}
