package maincmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/emberlang/ember/internal/disasm"
	"github.com/emberlang/ember/lang/compiler"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/object"
	"github.com/emberlang/ember/lang/vm"
)

// Disasm compiles each file in args without running it and prints the
// disassembly of the top-level script and every function nested inside it.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) == 0 {
		return printError(stdio, fmt.Errorf("disasm: at least one file must be provided"))
	}

	heap := gc.New(false)
	machine := vm.New(heap)

	for _, file := range args {
		src, err := os.ReadFile(file)
		if err != nil {
			return printError(stdio, err)
		}

		fn, err := compiler.Compile(string(src), heap, machine)
		if err != nil {
			return printError(stdio, err)
		}
		disasmFunction(stdio.Stdout, fn, "<script>")
	}
	return nil
}

func disasmFunction(w io.Writer, fn *object.Function, name string) {
	disasm.Chunk(w, &fn.Chunk, name)
	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.(*object.Function); ok {
			n := "<anonymous fn>"
			if nested.Name != nil {
				n = nested.Name.Chars
			}
			disasmFunction(w, nested, n)
		}
	}
}
