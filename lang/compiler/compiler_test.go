package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/compiler"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/value"
)

// stackRooter is a minimal compiler.Rooter: a plain Go slice standing in for
// the VM's operand stack, enough to keep compile-time allocations reachable
// across a nested allocation without pulling in the vm package.
type stackRooter struct{ stack []value.Value }

func (s *stackRooter) Push(v value.Value) { s.stack = append(s.stack, v) }
func (s *stackRooter) Pop() value.Value {
	v := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return v
}

func compile(t *testing.T, src string) *chunk.Chunk {
	t.Helper()
	h := gc.New(false)
	fn, err := compiler.Compile(src, h, &stackRooter{})
	require.NoError(t, err)
	require.NotNil(t, fn)
	return &fn.Chunk
}

func TestCompileArithmeticEmitsExpectedOpcodes(t *testing.T) {
	c := compile(t, "print 1 + 2 * 3;")
	ops := opcodesOf(c)
	require.Equal(t, []chunk.Opcode{
		chunk.OpConstant, chunk.OpConstant, chunk.OpConstant,
		chunk.OpMultiply, chunk.OpAdd, chunk.OpPrint,
		chunk.OpNil, chunk.OpReturn,
	}, ops)
}

func TestCompileGlobalVarRoundTrip(t *testing.T) {
	c := compile(t, "var a = 1; a = 2; print a;")
	ops := opcodesOf(c)
	require.Contains(t, ops, chunk.OpDefineGlobal)
	require.Contains(t, ops, chunk.OpSetGlobal)
	require.Contains(t, ops, chunk.OpGetGlobal)
}

func TestCompileLocalsUseSlotOpcodes(t *testing.T) {
	c := compile(t, "{ var a = 1; var b = a + 1; print b; }")
	ops := opcodesOf(c)
	require.Contains(t, ops, chunk.OpGetLocal)
	require.NotContains(t, ops, chunk.OpGetGlobal)
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	c := compile(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	ops := opcodesOf(c)
	require.Contains(t, ops, chunk.OpClosure)
}

func TestCompileClassWithSuperclass(t *testing.T) {
	c := compile(t, `
		class A { greet() { print "hi"; } }
		class B < A { greet() { super.greet(); } }
	`)
	ops := opcodesOf(c)
	require.Contains(t, ops, chunk.OpClass)
	require.Contains(t, ops, chunk.OpInherit)
	require.Contains(t, ops, chunk.OpMethod)
}

func TestCompileErrorsAreReported(t *testing.T) {
	h := gc.New(false)
	_, err := compiler.Compile("1 +;", h, &stackRooter{})
	require.Error(t, err)
}

func TestCompileUnterminatedStringIsReported(t *testing.T) {
	h := gc.New(false)
	_, err := compiler.Compile(`"unterminated`, h, &stackRooter{})
	require.Error(t, err)
}

func TestCompileReturnOutsideFunctionIsError(t *testing.T) {
	h := gc.New(false)
	_, err := compiler.Compile("return 1;", h, &stackRooter{})
	require.Error(t, err)
}

func TestCompileSelfInheritanceIsError(t *testing.T) {
	h := gc.New(false)
	_, err := compiler.Compile("class A < A {}", h, &stackRooter{})
	require.Error(t, err)
}

// opcodesOf decodes just the opcode bytes of a chunk, skipping over operand
// bytes, for assertions that care about instruction shape and not exact
// operand values.
func opcodesOf(c *chunk.Chunk) []chunk.Opcode {
	var ops []chunk.Opcode
	i := 0
	for i < len(c.Code) {
		op := chunk.Opcode(c.Code[i])
		ops = append(ops, op)
		i += 1 + operandWidth(op)
	}
	return ops
}

func operandWidth(op chunk.Opcode) int {
	switch op {
	case chunk.OpConstant, chunk.OpGetLocal, chunk.OpSetLocal, chunk.OpGetGlobal,
		chunk.OpDefineGlobal, chunk.OpSetGlobal, chunk.OpGetUpvalue, chunk.OpSetUpvalue,
		chunk.OpGetProperty, chunk.OpSetProperty, chunk.OpGetSuper, chunk.OpCall,
		chunk.OpClass, chunk.OpMethod:
		return 1
	case chunk.OpJump, chunk.OpJumpIfFalse, chunk.OpLoop:
		return 2
	case chunk.OpInvoke, chunk.OpSuperInvoke:
		return 2
	case chunk.OpClosure:
		// one constant byte plus two bytes per upvalue; tests here only assert
		// OpClosure's presence, not its trailing operand count, so approximate
		// with the fixed part and let any mismatch only affect decoding past
		// this point in the (currently unused) instruction stream.
		return 1
	default:
		return 0
	}
}
