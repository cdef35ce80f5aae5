package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/emberlang/ember/lang/scanner"
	"github.com/emberlang/ember/lang/token"
)

// Tokenize runs only the scanner phase over each file in args and prints one
// line per token: its source line, type and lexeme.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, file := range args {
		if err := tokenizeFile(stdio, file); err != nil {
			return printError(stdio, err)
		}
	}
	return nil
}

func tokenizeFile(stdio mainer.Stdio, file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	var s scanner.Scanner
	s.Init(string(src))
	for {
		tok := s.Scan()
		fmt.Fprintf(stdio.Stdout, "%4d %-12s %q\n", tok.Line, tok.Type, tok.Lexeme)
		if tok.Type == token.EOF {
			return nil
		}
		if tok.Type == token.ERROR {
			return fmt.Errorf("%s:%d: %s", file, tok.Line, tok.Lexeme)
		}
	}
}
