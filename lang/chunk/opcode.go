package chunk

// Opcode is a single bytecode instruction tag. Operand widths and encodings
// are fixed by the bytecode format in spec §6 and must not change without
// updating the compiler, the VM dispatch loop and the disassembler in
// lockstep.
type Opcode byte

//nolint:revive
const (
	OpConstant Opcode = iota // CONSTANT<const-idx u8>       -> value
	OpNil                    // NIL                          -> nil
	OpTrue                   // TRUE                         -> true
	OpFalse                  // FALSE                        -> false
	OpPop                    // POP              value ->

	OpGetLocal    // GET_LOCAL<slot u8>       -> value
	OpSetLocal    // SET_LOCAL<slot u8> value -> value
	OpGetGlobal   // GET_GLOBAL<name-const u8>        -> value
	OpDefineGlobal // DEFINE_GLOBAL<name-const u8> value ->
	OpSetGlobal   // SET_GLOBAL<name-const u8> value -> value
	OpGetUpvalue  // GET_UPVALUE<slot u8>       -> value
	OpSetUpvalue  // SET_UPVALUE<slot u8> value -> value
	OpGetProperty // GET_PROPERTY<name-const u8> receiver -> value
	OpSetProperty // SET_PROPERTY<name-const u8> receiver value -> value
	OpGetSuper    // GET_SUPER<name-const u8> receiver super -> value

	OpEqual   // EQUAL    a b -> bool
	OpGreater // GREATER  a b -> bool
	OpLess    // LESS     a b -> bool
	OpAdd     // ADD      a b -> value
	OpSubtract
	OpMultiply
	OpDivide

	OpNot    // NOT    value -> bool
	OpNegate // NEGATE value -> value

	OpPrint // PRINT value ->

	OpJump         // JUMP<offset u16>          -
	OpJumpIfFalse  // JUMP_IF_FALSE<offset u16> cond (peeked, not popped)
	OpLoop         // LOOP<offset u16> (subtracted from ip)

	OpCall        // CALL<argc u8> callee arg1..argn -> result
	OpInvoke      // INVOKE<name-const u8><argc u8> receiver arg1..argn -> result
	OpSuperInvoke // SUPER_INVOKE<name-const u8><argc u8> receiver arg1..argn super -> result

	OpClosure      // CLOSURE<fn-const u8> (2*upvalueCount bytes: is_local, index) -> closure
	OpCloseUpvalue // CLOSE_UPVALUE value ->
	OpReturn       // RETURN value -> (tears down frame)

	OpClass   // CLASS<name-const u8> -> class
	OpInherit // INHERIT super subclass -> super
	OpMethod  // METHOD<name-const u8> class closure -> class

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpGetSuper:     "OP_GET_SUPER",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpInvoke:       "OP_INVOKE",
	OpSuperInvoke:  "OP_SUPER_INVOKE",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
	OpInherit:      "OP_INHERIT",
	OpMethod:       "OP_METHOD",
}

func (op Opcode) String() string {
	if op >= opcodeCount {
		return "OP_UNKNOWN"
	}
	return opcodeNames[op]
}
