package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/emberlang/ember/internal/vmconfig"
	"github.com/emberlang/ember/lang/compiler"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/vm"
)

// exitCompileError and exitRuntimeError mirror the sysexits.h codes a Lox
// driver conventionally returns (65 EX_DATAERR, 70 EX_SOFTWARE), so scripts
// invoked from a shell can distinguish "my program doesn't compile" from
// "my program crashed" without scraping stderr.
const (
	exitCompileError = mainer.ExitCode(65)
	exitRuntimeError = mainer.ExitCode(70)
)

// commandError lets a command return both an error (for the default Failure
// exit code) and a specific mainer.ExitCode, without widening every other
// command's signature to carry one.
type commandError struct {
	err  error
	code mainer.ExitCode
}

func (e *commandError) Error() string             { return e.err.Error() }
func (e *commandError) Unwrap() error             { return e.err }
func (e *commandError) ExitCode() mainer.ExitCode { return e.code }

// Run compiles and executes each file in args in turn, stopping at the
// first one that fails to compile or that raises an unhandled runtime
// error.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		return printError(stdio, fmt.Errorf("run: at least one file must be provided"))
	}

	cfg, err := vmconfig.Load()
	if err != nil {
		return printError(stdio, err)
	}

	for _, file := range args {
		if err := runFile(ctx, stdio, cfg, file); err != nil {
			return err
		}
	}
	return nil
}

func runFile(ctx context.Context, stdio mainer.Stdio, cfg vmconfig.Config, file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return printError(stdio, err)
	}

	heap := newHeap(stdio, cfg)
	machine := vm.New(heap)
	machine.Stdout = stdio.Stdout

	fn, err := compiler.Compile(string(src), heap, machine)
	if err != nil {
		printError(stdio, err)
		return &commandError{err: err, code: exitCompileError}
	}

	if _, err := machine.Interpret(ctx, fn); err != nil {
		printError(stdio, err)
		return &commandError{err: err, code: exitRuntimeError}
	}
	return nil
}

func newHeap(stdio mainer.Stdio, cfg vmconfig.Config) *gc.Heap {
	heap := gc.New(cfg.GCStress)
	if cfg.LogGC {
		heap.OnCollect = func(s gc.Stats) {
			fmt.Fprintf(stdio.Stderr, "gc: freed %d objects, %d -> %d bytes, next at %d\n",
				s.Freed, s.BytesBefore, s.BytesAfter, s.NextGC)
		}
	}
	return heap
}
