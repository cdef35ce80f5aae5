package disasm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/disasm"
	"github.com/emberlang/ember/lang/compiler"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/vm"
)

func compile(t *testing.T, src string) *gc.Heap {
	t.Helper()
	heap := gc.New(false)
	machine := vm.New(heap)
	_, err := compiler.Compile(src, heap, machine)
	require.NoError(t, err)
	return heap
}

func TestChunkHeaderAndOpcodes(t *testing.T) {
	heap := gc.New(false)
	machine := vm.New(heap)
	fn, err := compiler.Compile("print 1 + 2;", heap, machine)
	require.NoError(t, err)

	var buf bytes.Buffer
	disasm.Chunk(&buf, &fn.Chunk, "<script>")

	out := buf.String()
	require.Contains(t, out, "== <script> ==")
	require.Contains(t, out, "OP_CONSTANT")
	require.Contains(t, out, "OP_ADD")
	require.Contains(t, out, "OP_PRINT")
	require.Contains(t, out, "OP_RETURN")
}

func TestJumpInstructionShowsTarget(t *testing.T) {
	heap := gc.New(false)
	machine := vm.New(heap)
	fn, err := compiler.Compile(`if (true) { print 1; } else { print 2; }`, heap, machine)
	require.NoError(t, err)

	var buf bytes.Buffer
	disasm.Chunk(&buf, &fn.Chunk, "<script>")
	require.Contains(t, buf.String(), "OP_JUMP_IF_FALSE")
	require.Contains(t, buf.String(), "->")
}

func TestClosureInstructionDecodesUpvalues(t *testing.T) {
	heap := gc.New(false)
	machine := vm.New(heap)
	fn, err := compiler.Compile(`
		fun makeCounter() {
			var count = 0;
			fun increment() { count = count + 1; }
			return increment;
		}
	`, heap, machine)
	require.NoError(t, err)

	var buf bytes.Buffer
	disasm.Chunk(&buf, &fn.Chunk, "<script>")
	require.Contains(t, buf.String(), "OP_CLOSURE")

	var makeCounter *object.Function
	for _, c := range fn.Chunk.Constants {
		if f, ok := c.(*object.Function); ok {
			makeCounter = f
		}
	}
	require.NotNil(t, makeCounter)

	buf.Reset()
	disasm.Chunk(&buf, &makeCounter.Chunk, "makeCounter")
	require.Contains(t, buf.String(), "local 1")
}
