package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/scanner"
	"github.com/emberlang/ember/lang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	var s scanner.Scanner
	s.Init(src)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndKeywords(t *testing.T) {
	toks := scanAll(t, "var a = (1 + 2) * 3;\nprint a;")
	types := make([]token.Type, len(toks))
	for i, tk := range toks {
		types[i] = tk.Type
	}
	require.Equal(t, []token.Type{
		token.VAR, token.IDENTIFIER, token.EQUAL, token.LEFT_PAREN, token.NUMBER,
		token.PLUS, token.NUMBER, token.RIGHT_PAREN, token.STAR, token.NUMBER,
		token.SEMICOLON, token.PRINT, token.IDENTIFIER, token.SEMICOLON, token.EOF,
	}, types)
}

func TestScanTwoCharOperators(t *testing.T) {
	toks := scanAll(t, "a != b == c <= d >= e")
	require.Equal(t, token.BANG_EQUAL, toks[1].Type)
	require.Equal(t, token.EQUAL_EQUAL, toks[3].Type)
	require.Equal(t, token.LESS_EQUAL, toks[5].Type)
	require.Equal(t, token.GREATER_EQUAL, toks[7].Type)
}

func TestScanStringLiteralKeepsQuotes(t *testing.T) {
	toks := scanAll(t, `"hello"`)
	require.Equal(t, token.STRING, toks[0].Type)
	require.Equal(t, `"hello"`, toks[0].Lexeme)
	require.Equal(t, "hello", scanner.StripQuotes(toks[0].Lexeme))
}

func TestScanUnterminatedStringIsError(t *testing.T) {
	toks := scanAll(t, `"hello`)
	require.Equal(t, token.ERROR, toks[0].Type)
}

func TestScanLineComments(t *testing.T) {
	toks := scanAll(t, "var a = 1; // a comment\nvar b = 2;")
	require.Equal(t, 1, toks[0].Line)
	// find the second "var"
	var secondVarLine int
	count := 0
	for _, tk := range toks {
		if tk.Type == token.VAR {
			count++
			if count == 2 {
				secondVarLine = tk.Line
			}
		}
	}
	require.Equal(t, 2, secondVarLine)
}

func TestScanNumber(t *testing.T) {
	toks := scanAll(t, "1.5 10")
	f, err := scanner.ParseNumber(toks[0].Lexeme)
	require.NoError(t, err)
	require.Equal(t, 1.5, f)
}

func TestScanEOFIsSticky(t *testing.T) {
	var s scanner.Scanner
	s.Init("")
	require.Equal(t, token.EOF, s.Scan().Type)
	require.Equal(t, token.EOF, s.Scan().Type)
}
