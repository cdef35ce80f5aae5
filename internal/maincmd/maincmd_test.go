package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/maincmd"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "script.ember")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func runCmd(args []string) (mainer.ExitCode, string, string) {
	var out, errOut bytes.Buffer
	c := maincmd.Cmd{BuildVersion: "test", BuildDate: "2026-07-30"}
	stdio := mainer.Stdio{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &errOut}
	code := c.Main(args, stdio)
	return code, out.String(), errOut.String()
}

func TestHelpPrintsUsage(t *testing.T) {
	code, out, _ := runCmd([]string{"ember", "--help"})
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out, "usage:")
}

func TestNoCommandIsInvalidArgs(t *testing.T) {
	code, _, _ := runCmd([]string{"ember"})
	require.Equal(t, mainer.InvalidArgs, code)
}

func TestUnknownCommandIsInvalidArgs(t *testing.T) {
	code, _, _ := runCmd([]string{"ember", "bogus"})
	require.Equal(t, mainer.InvalidArgs, code)
}

func TestRunMissingFileIsInvalidArgs(t *testing.T) {
	code, _, _ := runCmd([]string{"ember", "run"})
	require.Equal(t, mainer.InvalidArgs, code)
}

func TestRunExecutesScript(t *testing.T) {
	path := writeScript(t, `print 1 + 2;`)
	code, out, _ := runCmd([]string{"ember", "run", path})
	require.Equal(t, mainer.Success, code)
	require.Equal(t, "3\n", out)
}

func TestRunCompileErrorExitsNonSuccess(t *testing.T) {
	path := writeScript(t, `var = ;`)
	code, _, errOut := runCmd([]string{"ember", "run", path})
	require.NotEqual(t, mainer.Success, code)
	require.NotEmpty(t, errOut)
}

func TestRunRuntimeErrorExitsNonSuccess(t *testing.T) {
	path := writeScript(t, `print 1 + "two";`)
	code, _, errOut := runCmd([]string{"ember", "run", path})
	require.NotEqual(t, mainer.Success, code)
	require.Contains(t, errOut, "Operands must be two numbers or two strings.")
}

func TestTokenizeReportsTokens(t *testing.T) {
	path := writeScript(t, `print 1;`)
	code, out, _ := runCmd([]string{"ember", "tokenize", path})
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out, "print")
	require.Contains(t, out, "end of file")
}

func TestDisasmPrintsBytecode(t *testing.T) {
	path := writeScript(t, `print 1 + 2;`)
	code, out, _ := runCmd([]string{"ember", "disasm", path})
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out, "OP_ADD")
}
