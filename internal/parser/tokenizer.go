package parser

import (
	"iter"
	"slices"
)

// TokenKind identifies a lexical unit of Texinfo source.
type TokenKind int

const (
	TokenText    TokenKind = iota // Maximal run of non-special characters
	TokenAt                       // '@'
	TokenLBrace                   // '{'
	TokenRBrace                   // '}'
	TokenNewline                  // '\n'
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenAt:
		return "at"
	case TokenLBrace:
		return "lbrace"
	case TokenRBrace:
		return "rbrace"
	case TokenNewline:
		return "newline"
	}
	return "unknown"
}

// Token is one lexical unit. Value is never empty.
type Token struct {
	Kind  TokenKind
	Value string
}

func specialKind(c byte) (TokenKind, bool) {
	switch c {
	case '@':
		return TokenAt, true
	case '{':
		return TokenLBrace, true
	case '}':
		return TokenRBrace, true
	case '\n':
		return TokenNewline, true
	}
	return TokenText, false
}

// Tokens splits text into '@', '{', '}', '\n' and runs of everything else.
// The returned sequence can be iterated any number of times.
func Tokens(text string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		start := 0
		for i := 0; i < len(text); i++ {
			kind, ok := specialKind(text[i])
			if !ok {
				continue
			}
			if i > start {
				if !yield(Token{Kind: TokenText, Value: text[start:i]}) {
					return
				}
			}
			if !yield(Token{Kind: kind, Value: text[i : i+1]}) {
				return
			}
			start = i + 1
		}
		if start < len(text) {
			yield(Token{Kind: TokenText, Value: text[start:]})
		}
	}
}

// Tokenize returns every token of text in order.
func Tokenize(text string) []Token {
	return slices.Collect(Tokens(text))
}
