package vm

import (
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/value"
)

// callValue dispatches OP_CALL's callee by its runtime kind (spec §4.4):
// closures push a new frame, classes instantiate (running "init" if the
// class defines one), bound methods rebind their receiver and call through,
// natives run immediately. argc values plus the callee itself occupy the
// top argc+1 stack slots.
func (vm *VM) callValue(callee value.Value, argc int) error {
	switch c := callee.(type) {
	case *object.Closure:
		return vm.call(c, argc)
	case *object.Class:
		vm.stack[vm.stackTop-argc-1] = vm.heap.NewInstance(c)
		if initializer, ok := c.Methods[vm.heap.InitString]; ok {
			return vm.call(initializer, argc)
		}
		if argc != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", argc)
		}
		return nil
	case *object.BoundMethod:
		vm.stack[vm.stackTop-argc-1] = c.Receiver
		return vm.call(c.Method, argc)
	case *object.Native:
		args := vm.stack[vm.stackTop-argc : vm.stackTop]
		result, err := c.Fn(args)
		if err != nil {
			return vm.runtimeError("%s", err.Error())
		}
		vm.stackTop -= argc + 1
		vm.Push(result)
		return nil
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

// call pushes a new call frame for closure, checking arity and frame-stack
// depth first.
func (vm *VM) call(closure *object.Closure, argc int) error {
	if argc != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
	}
	if vm.frameCount == maxFrames {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames[vm.frameCount] = callFrame{
		closure:   closure,
		slotsBase: vm.stackTop - argc - 1,
	}
	vm.frameCount++
	return nil
}

// invoke fuses OP_GET_PROPERTY and OP_CALL for the common receiver.m(args)
// pattern: an instance field that happens to be callable shadows a method of
// the same name, matching OP_GET_PROPERTY's own field-before-method lookup
// order.
func (vm *VM) invoke(name *object.String, argc int) error {
	receiver, ok := vm.peek(argc).(*object.Instance)
	if !ok {
		return vm.runtimeError("Only instances have methods.")
	}

	if field, ok := receiver.Fields[name]; ok {
		vm.stack[vm.stackTop-argc-1] = field
		return vm.callValue(field, argc)
	}

	return vm.invokeFromClass(receiver.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *object.Class, name *object.String, argc int) error {
	method, ok := class.Methods[name]
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	return vm.call(method, argc)
}

// bindMethod looks up name in class's method table and pushes a BoundMethod
// pairing it with receiver, for OP_GET_PROPERTY and OP_GET_SUPER when the
// property names a method rather than a field.
func (vm *VM) bindMethod(class *object.Class, name *object.String, receiver value.Value) error {
	method, ok := class.Methods[name]
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	vm.Push(vm.heap.NewBoundMethod(receiver, method))
	return nil
}

func (vm *VM) getProperty(name *object.String) error {
	instance, ok := vm.peek(0).(*object.Instance)
	if !ok {
		return vm.runtimeError("Only instances have properties.")
	}
	if field, ok := instance.Fields[name]; ok {
		vm.Pop()
		vm.Push(field)
		return nil
	}
	receiver := vm.Pop()
	return vm.bindMethod(instance.Class, name, receiver)
}

func (vm *VM) setProperty(name *object.String) error {
	instance, ok := vm.peek(1).(*object.Instance)
	if !ok {
		return vm.runtimeError("Only instances have fields.")
	}
	instance.Fields[name] = vm.peek(0)
	v := vm.Pop()
	vm.Pop()
	vm.Push(v)
	return nil
}

// defineMethod pops a just-compiled closure off the stack and binds it as a
// method on the class underneath it, which is left in place for the next
// OP_METHOD (or the final OP_POP at the end of the class body).
func (vm *VM) defineMethod(name *object.String) {
	method := vm.Pop().(*object.Closure)
	class := vm.peek(0).(*object.Class)
	class.Methods[name] = method
}
