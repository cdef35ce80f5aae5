package vm

import (
	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/value"
)

// numericBinary implements OP_GREATER, OP_LESS, OP_SUBTRACT, OP_MULTIPLY and
// OP_DIVIDE: both operands must be numbers, or the operation raises a
// runtime error rather than coercing.
func (vm *VM) numericBinary(op chunk.Opcode) error {
	b, bok := vm.peek(0).(value.Number)
	a, aok := vm.peek(1).(value.Number)
	if !aok || !bok {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.Pop()
	vm.Pop()
	switch op {
	case chunk.OpGreater:
		vm.Push(value.Bool(a > b))
	case chunk.OpLess:
		vm.Push(value.Bool(a < b))
	case chunk.OpSubtract:
		vm.Push(a - b)
	case chunk.OpMultiply:
		vm.Push(a * b)
	case chunk.OpDivide:
		vm.Push(a / b)
	}
	return nil
}

// add implements OP_ADD's two forms: numeric addition, or string
// concatenation when both operands are strings. Any other combination is a
// runtime error.
func (vm *VM) add() error {
	bs, bIsStr := vm.peek(0).(*object.String)
	as, aIsStr := vm.peek(1).(*object.String)
	if aIsStr && bIsStr {
		result := vm.heap.Concat(as, bs)
		vm.Pop()
		vm.Pop()
		vm.Push(result)
		return nil
	}

	bn, bIsNum := vm.peek(0).(value.Number)
	an, aIsNum := vm.peek(1).(value.Number)
	if aIsNum && bIsNum {
		vm.Pop()
		vm.Pop()
		vm.Push(an + bn)
		return nil
	}

	return vm.runtimeError("Operands must be two numbers or two strings.")
}
