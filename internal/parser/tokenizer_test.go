package parser

import (
	"strings"
	"testing"
)

func TestTokenize_SplitsSpecialCharacters(t *testing.T) {
	got := Tokenize("Example of @emph{inline markup}.\n")
	want := []Token{
		{TokenText, "Example of "},
		{TokenAt, "@"},
		{TokenText, "emph"},
		{TokenLBrace, "{"},
		{TokenText, "inline markup"},
		{TokenRBrace, "}"},
		{TokenText, "."},
		{TokenNewline, "\n"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token[%d]: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestTokenize_EmptyInput(t *testing.T) {
	if got := Tokenize(""); len(got) != 0 {
		t.Errorf("expected no tokens for empty input, got %v", got)
	}
}

func TestTokenize_AdjacentSpecials(t *testing.T) {
	got := Tokenize("@@{}\n\n")
	kinds := []TokenKind{TokenAt, TokenAt, TokenLBrace, TokenRBrace, TokenNewline, TokenNewline}
	if len(got) != len(kinds) {
		t.Fatalf("expected %d tokens, got %d: %v", len(kinds), len(got), got)
	}
	for i, k := range kinds {
		if got[i].Kind != k {
			t.Errorf("token[%d]: expected kind %s, got %s", i, k, got[i].Kind)
		}
	}
}

func TestTokenize_NoEmptyUnitsAndLossless(t *testing.T) {
	inputs := []string{
		"plain text without specials",
		"@chapter Intro\nBody @code{x}\n\n",
		"}{@\n",
		"unicode é @dfn{ünïcödé}\n",
		"trailing text",
	}
	for _, in := range inputs {
		var sb strings.Builder
		for _, tok := range Tokenize(in) {
			if tok.Value == "" {
				t.Errorf("input %q: empty token", in)
			}
			if tok.Kind != TokenText && len(tok.Value) != 1 {
				t.Errorf("input %q: special token %q longer than one character", in, tok.Value)
			}
			sb.WriteString(tok.Value)
		}
		if sb.String() != in {
			t.Errorf("expected tokens to rebuild %q, got %q", in, sb.String())
		}
	}
}

func TestTokens_Restartable(t *testing.T) {
	seq := Tokens("a@b\n")
	var first, second int
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	if first != 4 || second != 4 {
		t.Errorf("expected 4 tokens on both passes, got %d and %d", first, second)
	}
}

func TestTokens_EarlyBreak(t *testing.T) {
	n := 0
	for range Tokens("a@b@c@d") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("expected to stop after 2 tokens, got %d", n)
	}
}
