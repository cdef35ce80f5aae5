package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/emberlang/ember/internal/vmconfig"
	"github.com/emberlang/ember/lang/compiler"
	"github.com/emberlang/ember/lang/vm"
)

// Repl reads one line at a time from stdio.Stdin, compiling and running each
// against a single VM and heap that persist for the whole session — globals
// and classes defined on one line are visible to the next, the way the REPL
// described for this tool is meant to work.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg, err := vmconfig.Load()
	if err != nil {
		return printError(stdio, err)
	}

	heap := newHeap(stdio, cfg)
	machine := vm.New(heap)
	machine.Stdout = stdio.Stdout

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(stdio.Stdout)
			return scanner.Err()
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		fn, err := compiler.Compile(line, heap, machine)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			continue
		}
		if _, err := machine.Interpret(ctx, fn); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
		}
	}
}
