package vm_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/compiler"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/vm"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	heap := gc.New(false)
	machine := vm.New(heap)
	var out bytes.Buffer
	machine.Stdout = &out

	fn, err := compiler.Compile(src, heap, machine)
	require.NoError(t, err)

	_, runErr := machine.Interpret(context.Background(), fn)
	return out.String(), runErr
}

func TestArithmeticAndPrint(t *testing.T) {
	out, err := run(t, "print 1 + 2 * 3;")
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	require.Equal(t, "foobar\n", out)
}

func TestGlobalsAndLocals(t *testing.T) {
	out, err := run(t, `
		var a = 1;
		{
			var b = 2;
			a = a + b;
		}
		print a;
	`)
	require.NoError(t, err)
	require.Equal(t, "3\n", out)
}

func TestControlFlow(t *testing.T) {
	out, err := run(t, `
		var total = 0;
		for (var i = 0; i < 5; i = i + 1) {
			if (i == 3) { print "three"; }
			total = total + i;
		}
		print total;
	`)
	require.NoError(t, err)
	require.Equal(t, "three\n10\n", out)
}

func TestClosuresCaptureByReference(t *testing.T) {
	out, err := run(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				print count;
			}
			return increment;
		}
		var counter = makeCounter();
		counter();
		counter();
		counter();
	`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestClassesFieldsAndMethods(t *testing.T) {
	out, err := run(t, `
		class Counter {
			init(start) {
				this.value = start;
			}
			increment() {
				this.value = this.value + 1;
				return this.value;
			}
		}
		var c = Counter(10);
		print c.increment();
		print c.increment();
	`)
	require.NoError(t, err)
	require.Equal(t, "11\n12\n", out)
}

func TestInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
		class Animal {
			speak() { print "..."; }
		}
		class Dog < Animal {
			speak() {
				super.speak();
				print "Woof";
			}
		}
		Dog().speak();
	`)
	require.NoError(t, err)
	require.Equal(t, "...\nWoof\n", out)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, err := run(t, "print undefined_thing;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Undefined variable 'undefined_thing'")
}

func TestTypeMismatchIsRuntimeError(t *testing.T) {
	_, err := run(t, `print 1 + "two";`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestRuntimeErrorIncludesStackTrace(t *testing.T) {
	_, err := run(t, `
		fun a() { return 1 + "x"; }
		fun b() { return a(); }
		b();
	`)
	require.Error(t, err)
	rerr, ok := err.(*vm.RuntimeError)
	require.True(t, ok)
	require.Len(t, rerr.Trace, 3)
	require.Contains(t, rerr.Trace[0], "in a()")
	require.Contains(t, rerr.Trace[1], "in b()")
	require.Contains(t, rerr.Trace[2], "in script")
}

func TestCallingNonFunctionIsRuntimeError(t *testing.T) {
	_, err := run(t, `
		var x = 1;
		x();
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Can only call functions and classes.")
}

func TestClockNativeReturnsNumber(t *testing.T) {
	out, err := run(t, `print clock() > 0;`)
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}
