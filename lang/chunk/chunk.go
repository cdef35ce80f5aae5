// Package chunk implements the compiled byte buffer that backs every
// function: an append-only stream of opcodes and inline operands, a
// parallel per-byte source-line table, and the function's constant pool.
package chunk

import (
	"fmt"

	"github.com/emberlang/ember/lang/value"
)

// maxConstants bounds the constant pool: a single-byte operand addresses it,
// so an index cannot exceed 255. This, like the other fixed sizes in this
// module, is part of the public bytecode contract and must not be widened
// silently.
const maxConstants = 256

// Chunk is the compiled form of one function: bytecode, a parallel
// source-line entry per byte (for runtime error reporting), and the pool of
// constant values the bytecode indexes into.
type Chunk struct {
	Code      []byte
	Lines     []int32
	Constants []value.Value
}

// Write appends one byte to the chunk, recording line as its source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, int32(line))
}

// AddConstant appends v to the constant pool and returns its index. Growing
// the pool is a plain Go append: it is not accounted to the heap and does
// not run the collector. The compiler still roots v across this call (see
// the compiler's Rooter).
func (c *Chunk) AddConstant(v value.Value) (int, error) {
	if len(c.Constants) >= maxConstants {
		return 0, fmt.Errorf("too many constants in one chunk")
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1, nil
}
