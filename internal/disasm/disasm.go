// Package disasm renders a compiled chunk back into human-readable text:
// one line per instruction, offset, source line and decoded operands. It
// exists purely as a development/CLI aid — spec §1 explicitly keeps the
// disassembler out of the compiler/VM's own scope.
package disasm

import (
	"fmt"
	"io"

	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/value"
)

// Chunk writes a full disassembly of c to w, labeled with name (typically
// the enclosing function's name, or "<script>").
func Chunk(w io.Writer, c *chunk.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = Instruction(w, c, offset)
	}
}

// Instruction writes one decoded instruction at offset and returns the
// offset of the instruction that follows it.
func Instruction(w io.Writer, c *chunk.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := chunk.Opcode(c.Code[offset])
	switch op {
	case chunk.OpConstant, chunk.OpGetGlobal, chunk.OpDefineGlobal, chunk.OpSetGlobal,
		chunk.OpGetProperty, chunk.OpSetProperty, chunk.OpGetSuper, chunk.OpClass, chunk.OpMethod:
		return constantInstruction(w, op, c, offset)
	case chunk.OpGetLocal, chunk.OpSetLocal, chunk.OpGetUpvalue, chunk.OpSetUpvalue, chunk.OpCall:
		return byteInstruction(w, op, c, offset)
	case chunk.OpJump, chunk.OpJumpIfFalse:
		return jumpInstruction(w, op, c, offset, 1)
	case chunk.OpLoop:
		return jumpInstruction(w, op, c, offset, -1)
	case chunk.OpInvoke, chunk.OpSuperInvoke:
		return invokeInstruction(w, op, c, offset)
	case chunk.OpClosure:
		return closureInstruction(w, c, offset)
	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}

func constantInstruction(w io.Writer, op chunk.Opcode, c *chunk.Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, constantText(c.Constants[idx]))
	return offset + 2
}

// constantText renders a constant for disassembly, quoting string constants
// the way source string literals are written.
func constantText(v value.Value) string {
	if s, ok := v.(*object.String); ok {
		return object.QuoteForPrint(s.Chars)
	}
	return v.String()
}

func byteInstruction(w io.Writer, op chunk.Opcode, c *chunk.Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(w io.Writer, op chunk.Opcode, c *chunk.Chunk, offset int, sign int) int {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}

func invokeInstruction(w io.Writer, op chunk.Opcode, c *chunk.Chunk, offset int) int {
	idx := c.Code[offset+1]
	argc := c.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op, argc, idx, constantText(c.Constants[idx]))
	return offset + 3
}

func closureInstruction(w io.Writer, c *chunk.Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", chunk.OpClosure, idx, constantText(c.Constants[idx]))
	offset += 2

	fn, ok := c.Constants[idx].(*object.Function)
	if !ok {
		return offset
	}
	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := c.Code[offset]
		index := c.Code[offset+1]
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset, kind, index)
		offset += 2
	}
	return offset
}
