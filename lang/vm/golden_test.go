package vm_test

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/filetest"
	"github.com/emberlang/ember/lang/compiler"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/vm"
)

var testUpdateVMTests = flag.Bool("test.update-vm-tests", false, "If set, replace expected VM test results with actual results.")

// TestGoldenScripts runs every script in testdata/in against a fresh VM and
// compares its printed output to the matching golden file in testdata/out.
func TestGoldenScripts(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".ember") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)

			heap := gc.New(false)
			machine := vm.New(heap)
			var buf bytes.Buffer
			machine.Stdout = &buf

			fn, err := compiler.Compile(string(src), heap, machine)
			require.NoError(t, err)
			_, err = machine.Interpret(context.Background(), fn)
			require.NoError(t, err)

			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateVMTests)
		})
	}
}
