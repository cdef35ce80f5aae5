package compiler

import (
	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/token"
	"github.com/emberlang/ember/lang/value"
)

func (p *parser) emitByte(b byte) {
	p.currentChunk().Write(b, p.previous.Line)
}

func (p *parser) emitOp(op chunk.Opcode) { p.emitByte(byte(op)) }

func (p *parser) emitOpByte(op chunk.Opcode, b byte) {
	p.emitOp(op)
	p.emitByte(b)
}

func (p *parser) emitOps(op1, op2 chunk.Opcode) {
	p.emitOp(op1)
	p.emitOp(op2)
}

// emitReturn emits the implicit return every function falls through to: an
// initializer always returns its own instance (slot 0, "this"), every other
// function returns nil.
func (p *parser) emitReturn() {
	if p.cur.kind == kindInitializer {
		p.emitOpByte(chunk.OpGetLocal, 0)
	} else {
		p.emitOp(chunk.OpNil)
	}
	p.emitOp(chunk.OpReturn)
}

// makeConstant adds v to the current function's constant pool, rooting it
// on the Rooter across the AddConstant call.
func (p *parser) makeConstant(v value.Value) byte {
	p.rooter.Push(v)
	idx, err := p.currentChunk().AddConstant(v)
	p.rooter.Pop()
	if err != nil {
		p.error(err.Error())
		return 0
	}
	return byte(idx)
}

func (p *parser) emitConstant(v value.Value) {
	p.emitOpByte(chunk.OpConstant, p.makeConstant(v))
}

// identifierConstant interns name's lexeme as a string and adds it to the
// constant pool, for every opcode that names a variable, property or method
// by an interned string rather than a numeric slot.
func (p *parser) identifierConstant(name token.Token) byte {
	return p.makeConstant(p.heap.InternString(name.Lexeme))
}

// emitJump emits a two-operand-byte jump placeholder and returns the offset
// of its first operand byte, to be back-patched once the jump target is
// known.
func (p *parser) emitJump(op chunk.Opcode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.currentChunk().Code) - 2
}

// patchJump rewrites the jump placeholder at offset to land on the chunk's
// current end, encoded big-endian per the bytecode format.
func (p *parser) patchJump(offset int) {
	jump := len(p.currentChunk().Code) - offset - 2
	if jump > 0xffff {
		p.error("Too much code to jump over.")
		return
	}
	code := p.currentChunk().Code
	code[offset] = byte((jump >> 8) & 0xff)
	code[offset+1] = byte(jump & 0xff)
}

// emitLoop emits OP_LOOP with the back-offset to loopStart, encoded
// big-endian the same way forward jumps are.
func (p *parser) emitLoop(loopStart int) {
	p.emitOp(chunk.OpLoop)
	offset := len(p.currentChunk().Code) - loopStart + 2
	if offset > 0xffff {
		p.error("Loop body too large.")
		return
	}
	p.emitByte(byte((offset >> 8) & 0xff))
	p.emitByte(byte(offset & 0xff))
}
