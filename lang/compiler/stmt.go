package compiler

import (
	"github.com/emberlang/ember/lang/chunk"
	"github.com/emberlang/ember/lang/token"
)

// declaration parses one top-level-or-block item: a var/fun/class
// declaration, or any statement. A panic-mode error during any of these
// resynchronizes at the next statement boundary before returning, so one bad
// declaration doesn't poison the rest of the block.
func (p *parser) declaration() {
	switch {
	case p.match(token.CLASS):
		p.classDeclaration()
	case p.match(token.FUN):
		p.funDeclaration()
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *parser) statement() {
	switch {
	case p.match(token.PRINT):
		p.printStatement()
	case p.match(token.IF):
		p.ifStatement()
	case p.match(token.WHILE):
		p.whileStatement()
	case p.match(token.FOR):
		p.forStatement()
	case p.match(token.RETURN):
		p.returnStatement()
	case p.match(token.LEFT_BRACE):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *parser) printStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	p.emitOp(chunk.OpPrint)
}

// expressionStatement evaluates an expression purely for effect. Per the
// open question in spec's design notes, OP_SET_LOCAL (and every other
// assignment form) leaves its value on the stack; this is exactly why an
// expression statement's trailing OP_POP exists, consuming whatever the
// expression (assignment or not) left behind.
func (p *parser) expressionStatement() {
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	p.emitOp(chunk.OpPop)
}

func (p *parser) block() {
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		p.declaration()
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after block.")
}

func (p *parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.EQUAL) {
		p.expression()
	} else {
		p.emitOp(chunk.OpNil)
	}
	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	p.defineVariable(global)
}

func (p *parser) ifStatement() {
	p.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	thenJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitOp(chunk.OpPop)
	p.statement()

	elseJump := p.emitJump(chunk.OpJump)
	p.patchJump(thenJump)
	p.emitOp(chunk.OpPop)

	if p.match(token.ELSE) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *parser) whileStatement() {
	loopStart := len(p.currentChunk().Code)
	p.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	exitJump := p.emitJump(chunk.OpJumpIfFalse)
	p.emitOp(chunk.OpPop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(chunk.OpPop)
}

// forStatement desugars the three-clause C-style for loop entirely into
// while-loop machinery (condition test + jump, increment spliced in before
// the loop-back), rather than giving the VM a dedicated opcode for it.
func (p *parser) forStatement() {
	p.beginScope()
	p.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	switch {
	case p.match(token.SEMICOLON):
		// no initializer
	case p.match(token.VAR):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.currentChunk().Code)
	exitJump := -1
	if !p.match(token.SEMICOLON) {
		p.expression()
		p.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = p.emitJump(chunk.OpJumpIfFalse)
		p.emitOp(chunk.OpPop)
	}

	if !p.match(token.RIGHT_PAREN) {
		bodyJump := p.emitJump(chunk.OpJump)
		incrementStart := len(p.currentChunk().Code)
		p.expression()
		p.emitOp(chunk.OpPop)
		p.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrementStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(chunk.OpPop)
	}

	p.endScope()
}

func (p *parser) returnStatement() {
	if p.cur.kind == kindScript {
		p.error("Can't return from top-level code.")
	}

	if p.match(token.SEMICOLON) {
		p.emitReturn()
		return
	}

	if p.cur.kind == kindInitializer {
		p.error("Can't return a value from an initializer.")
	}
	p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	p.emitOp(chunk.OpReturn)
}

// funDeclaration compiles a named function and binds it as a variable, so
// "fun" is sugar for declaring a variable and assigning it a closure.
func (p *parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(kindFunction)
	p.defineVariable(global)
}

// function compiles a function's parameter list and body in a fresh
// compilerState, then emits OP_CLOSURE in the enclosing chunk with one
// (is_local, index) pair per upvalue the body captured — the runtime
// counterpart that lets the VM build the right closure over the right cells.
func (p *parser) function(kind funcKind) {
	p.pushCompiler(kind)
	p.beginScope()

	p.consume(token.LEFT_PAREN, "Expect '(' after function name.")
	if !p.check(token.RIGHT_PAREN) {
		for {
			p.cur.function.Arity++
			if p.cur.function.Arity > maxParams {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	p.consume(token.LEFT_BRACE, "Expect '{' before function body.")
	p.block()

	cs := p.cur
	fn, _ := p.endCompiler()

	p.emitOpByte(chunk.OpClosure, p.makeConstant(fn))
	for _, up := range cs.upvalues {
		if up.isLocal {
			p.emitByte(1)
		} else {
			p.emitByte(0)
		}
		p.emitByte(up.index)
	}
}

// classDeclaration compiles a class and its methods. The class's own name is
// bound as a variable before its body so methods can refer to it
// recursively, and a superclass (if any) is re-loaded as a synthetic local
// named "super" for the duration of the body so every method's "super.x"
// resolves it as an upvalue.
func (p *parser) classDeclaration() {
	p.consume(token.IDENTIFIER, "Expect class name.")
	nameTok := p.previous
	nameConst := p.identifierConstant(nameTok)
	p.declareVariable(nameTok)

	p.emitOpByte(chunk.OpClass, nameConst)
	p.defineVariable(nameConst)

	cls := &classState{enclosing: p.class}
	p.class = cls

	if p.match(token.LESS) {
		p.consume(token.IDENTIFIER, "Expect superclass name.")
		p.namedVariable(p.previous, false)
		if p.previous.Lexeme == nameTok.Lexeme {
			p.error("A class can't inherit from itself.")
		}

		p.beginScope()
		p.addLocal(superToken)
		p.defineVariable(0)

		p.namedVariable(nameTok, false)
		p.emitOp(chunk.OpInherit)
		cls.hasSuperclass = true
	}

	p.namedVariable(nameTok, false)
	p.consume(token.LEFT_BRACE, "Expect '{' before class body.")
	for !p.check(token.RIGHT_BRACE) && !p.check(token.EOF) {
		p.method()
	}
	p.consume(token.RIGHT_BRACE, "Expect '}' after class body.")
	p.emitOp(chunk.OpPop) // pop the class itself, left by OP_CLASS/namedVariable above

	if cls.hasSuperclass {
		p.endScope()
	}
	p.class = cls.enclosing
}

func (p *parser) method() {
	p.consume(token.IDENTIFIER, "Expect method name.")
	name := p.previous
	nameConst := p.identifierConstant(name)

	kind := kindMethod
	if name.Lexeme == "init" {
		kind = kindInitializer
	}
	p.function(kind)
	p.emitOpByte(chunk.OpMethod, nameConst)
}
