// Package vm implements the stack-based bytecode interpreter: a tight
// dispatch loop over a fixed array of call frames and a fixed operand stack,
// method/closure/superclass call semantics, and the runtime side of the
// garbage collector's root set (spec §4.4).
package vm

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dolthub/swiss"

	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/value"
)

// maxFrames and framesStackSize together fix the operand stack at 16384
// slots (spec §4.4); both bounds are part of the public bytecode contract
// and must not be widened silently, matching the compiler's single-byte slot
// operands.
const (
	maxFrames       = 64
	framesStackSize = 256
	stackSize       = maxFrames * framesStackSize
)

// checkCancelEvery bounds how often the dispatch loop pays the cost of
// checking ctx.Err(); the language has no concurrency of its own (spec §5),
// this exists solely so a long-running script driven from the CLI responds
// to Ctrl-C promptly instead of needing to be killed.
const checkCancelEvery = 1 << 16

type callFrame struct {
	closure   *object.Closure
	ip        int
	slotsBase int // index into vm.stack where this frame's slot 0 lives
}

// VM is the interpreter for one program. It must always be used through a
// pointer: capture_upvalue's address-ordering scheme (spec §4.4) relies on
// &vm.stack[i] staying stable for the VM's entire lifetime, which a copy of
// the VM value would silently break.
type VM struct {
	heap    *gc.Heap
	globals *swiss.Map[*object.String, value.Value]

	// Stdout is where OP_PRINT writes; nil means os.Stdout, matching the
	// rest of this module's I/O-abstraction convention.
	Stdout io.Writer

	stack    [stackSize]value.Value
	stackTop int

	frames     [maxFrames]callFrame
	frameCount int

	openUpvalues *object.Upvalue // sorted by descending stack address
}

// New creates a VM backed by heap, registers it as a GC root, and defines
// the standard native functions (clock).
func New(heap *gc.Heap) *VM {
	vm := &VM{heap: heap, globals: swiss.NewMap[*object.String, value.Value](32)}
	heap.RegisterRoot(vm)
	defineNatives(vm)
	return vm
}

func (vm *VM) stdout() io.Writer {
	if vm.Stdout != nil {
		return vm.Stdout
	}
	return os.Stdout
}

// Push and Pop implement compiler.Rooter, letting the compiler keep a value
// reachable across an allocation that might collect by parking it on this
// same operand stack.
func (vm *VM) Push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) Pop() value.Value {
	vm.stackTop--
	v := vm.stack[vm.stackTop]
	vm.stack[vm.stackTop] = nil
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// Interpret runs fn (the compiled top-level script) as the body of an
// implicit zero-upvalue closure and returns the value of the script's
// implicit return, which is always nil: a program's only externally visible
// effect is whatever it printed. A *RuntimeError is returned on an
// unhandled runtime fault.
func (vm *VM) Interpret(ctx context.Context, fn *object.Function) (value.Value, error) {
	vm.Push(fn)
	closure := vm.heap.NewClosure(fn)
	vm.Pop()
	vm.Push(closure)
	if err := vm.callValue(closure, 0); err != nil {
		return nil, err
	}
	return vm.run(ctx)
}

func (vm *VM) run(ctx context.Context) (value.Value, error) {
	frame := &vm.frames[vm.frameCount-1]
	steps := 0

	readByte := func() byte {
		b := frame.closure.Function.Chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := readByte()
		lo := readByte()
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value {
		return frame.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *object.String {
		return readConstant().(*object.String)
	}

	for {
		steps++
		if steps%checkCancelEvery == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		op := chunk.Opcode(readByte())
		switch op {
		case chunk.OpConstant:
			vm.Push(readConstant())
		case chunk.OpNil:
			vm.Push(value.Nil{})
		case chunk.OpTrue:
			vm.Push(value.Bool(true))
		case chunk.OpFalse:
			vm.Push(value.Bool(false))
		case chunk.OpPop:
			vm.Pop()

		case chunk.OpGetLocal:
			slot := readByte()
			vm.Push(vm.stack[frame.slotsBase+int(slot)])
		case chunk.OpSetLocal:
			slot := readByte()
			vm.stack[frame.slotsBase+int(slot)] = vm.peek(0)

		case chunk.OpGetGlobal:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return nil, vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.Push(v)
		case chunk.OpDefineGlobal:
			name := readString()
			vm.globals.Put(name, vm.peek(0))
			vm.Pop()
		case chunk.OpSetGlobal:
			name := readString()
			if _, existed := vm.globals.Get(name); !existed {
				return nil, vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.globals.Put(name, vm.peek(0))

		case chunk.OpGetUpvalue:
			slot := readByte()
			vm.Push(frame.closure.Upvalues[slot].Get())
		case chunk.OpSetUpvalue:
			slot := readByte()
			frame.closure.Upvalues[slot].Set(vm.peek(0))

		case chunk.OpGetProperty:
			if err := vm.getProperty(readString()); err != nil {
				return nil, err
			}
		case chunk.OpSetProperty:
			if err := vm.setProperty(readString()); err != nil {
				return nil, err
			}
		case chunk.OpGetSuper:
			name := readString()
			superclass := vm.Pop().(*object.Class)
			receiver := vm.Pop()
			if err := vm.bindMethod(superclass, name, receiver); err != nil {
				return nil, err
			}

		case chunk.OpEqual:
			b := vm.Pop()
			a := vm.Pop()
			vm.Push(value.Bool(value.Equal(a, b)))
		case chunk.OpGreater:
			if err := vm.numericBinary(op); err != nil {
				return nil, err
			}
		case chunk.OpLess:
			if err := vm.numericBinary(op); err != nil {
				return nil, err
			}
		case chunk.OpAdd:
			if err := vm.add(); err != nil {
				return nil, err
			}
		case chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
			if err := vm.numericBinary(op); err != nil {
				return nil, err
			}

		case chunk.OpNot:
			vm.Push(value.Bool(!value.Truth(vm.Pop())))
		case chunk.OpNegate:
			n, ok := vm.peek(0).(value.Number)
			if !ok {
				return nil, vm.runtimeError("Operand must be a number.")
			}
			vm.Pop()
			vm.Push(-n)

		case chunk.OpPrint:
			fmt.Fprintln(vm.stdout(), vm.Pop().String())

		case chunk.OpJump:
			offset := readShort()
			frame.ip += offset
		case chunk.OpJumpIfFalse:
			offset := readShort()
			if !value.Truth(vm.peek(0)) {
				frame.ip += offset
			}
		case chunk.OpLoop:
			offset := readShort()
			frame.ip -= offset

		case chunk.OpCall:
			argc := int(readByte())
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return nil, err
			}
			frame = &vm.frames[vm.frameCount-1]
		case chunk.OpInvoke:
			name := readString()
			argc := int(readByte())
			if err := vm.invoke(name, argc); err != nil {
				return nil, err
			}
			frame = &vm.frames[vm.frameCount-1]
		case chunk.OpSuperInvoke:
			name := readString()
			argc := int(readByte())
			superclass := vm.Pop().(*object.Class)
			if err := vm.invokeFromClass(superclass, name, argc); err != nil {
				return nil, err
			}
			frame = &vm.frames[vm.frameCount-1]

		case chunk.OpClosure:
			fn := readConstant().(*object.Function)
			closure := vm.heap.NewClosure(fn)
			vm.Push(closure)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(&vm.stack[frame.slotsBase+int(index)])
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
		case chunk.OpCloseUpvalue:
			vm.closeUpvalues(&vm.stack[vm.stackTop-1])
			vm.Pop()
		case chunk.OpReturn:
			result := vm.Pop()
			vm.closeUpvalues(&vm.stack[frame.slotsBase])
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.Pop()
				return result, nil
			}
			vm.stackTop = frame.slotsBase
			vm.Push(result)
			frame = &vm.frames[vm.frameCount-1]

		case chunk.OpClass:
			vm.Push(vm.heap.NewClass(readString()))
		case chunk.OpInherit:
			super, ok := vm.peek(1).(*object.Class)
			if !ok {
				return nil, vm.runtimeError("Superclass must be a class.")
			}
			sub := vm.peek(0).(*object.Class)
			for name, method := range super.Methods {
				sub.Methods[name] = method
			}
			vm.Pop() // subclass
		case chunk.OpMethod:
			vm.defineMethod(readString())

		default:
			return nil, vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}
