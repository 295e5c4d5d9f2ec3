// Package token defines the immutable lexical primitives the semantic
// front-end consumes from an external lexer/parser: tokens, fully
// qualified module names, and source positions.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	KindUnknown Kind = iota
	KindIdentifier
	KindKeyword
	KindTypeName
	KindInteger
	KindFloat
	KindString
	KindBits
	KindPunct
)

func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindKeyword:
		return "keyword"
	case KindTypeName:
		return "type-name"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBits:
		return "bits"
	case KindPunct:
		return "punctuation"
	default:
		return "unknown"
	}
}

// Token is a single lexical unit produced by the external lexer.
// Equality is (Kind, Lexeme); ordering is lexicographic on Lexeme so a
// Token can serve as a deterministic map key.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
	Source string
}

// New builds a Token at the given source position.
func New(kind Kind, lexeme string, line, column int, source string) Token {
	return Token{Kind: kind, Lexeme: lexeme, Line: line, Column: column, Source: source}
}

// Equal implements the (kind, lexeme) equality rule. Position and
// source path never participate in equality: two tokens naming the
// same identifier at different call sites must compare equal.
func (t Token) Equal(other Token) bool {
	return t.Kind == other.Kind && t.Lexeme == other.Lexeme
}

// Less orders tokens lexicographically on Lexeme, breaking ties on
// Kind so that Less is a strict total order suitable for sorted output.
func (t Token) Less(other Token) bool {
	if t.Lexeme != other.Lexeme {
		return t.Lexeme < other.Lexeme
	}
	return t.Kind < other.Kind
}

func (t Token) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", t.Source, t.Line, t.Column, t.Lexeme)
}

// Number is a Token subclass carrying a parsed numeric literal: base,
// integral and fractional parts, and an optional exponent and
// data-type suffix (e.g. `1.5e-3f32`).
type Number struct {
	Token
	Base         int
	Integral     string
	Fractional   string
	ExponentBase int
	ExponentSign int
	Exponent     string
	Suffix       string
}

// String is a Token subclass carrying the already-decoded text of a
// string literal (escapes resolved, quotes stripped).
type String struct {
	Token
	Decoded string
}

// FQN is a fully qualified module name: a file-system-like locator
// paired with the dotted module name it resolves to.
type FQN struct {
	Path string
	Name string
}

// NewFQN builds an FQN from a search path and dotted module name.
func NewFQN(path, name string) FQN {
	return FQN{Path: path, Name: name}
}

// Key serializes the FQN into the unique string used as a program's
// key across the global table and the import graph.
func (f FQN) Key() string {
	return f.Path + "#" + f.Name
}

func (f FQN) String() string {
	return f.Key()
}

// Equal compares two FQNs for identity.
func (f FQN) Equal(other FQN) bool {
	return f.Path == other.Path && f.Name == other.Name
}
