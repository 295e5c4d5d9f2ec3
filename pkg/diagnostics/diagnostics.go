// Package diagnostics defines the typed errors the semantic front-end
// raises across its external boundary, and a per-run Session that logs
// each one once and aggregates the non-fatal ones for a final report.
package diagnostics

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/avalon-lang/semantic/pkg/token"
)

// Kind identifies one of the error taxonomies from the checker/resolver
// boundary. Lexical/parse errors are produced by the external parser
// and are passed through unchanged; they have no Kind of their own here.
type Kind int

const (
	KindInvalidType Kind = iota
	KindInvalidConstructor
	KindInvalidFunction
	KindSymbolNotFound
	KindSymbolAlreadyDeclared
	KindSymbolCanCollide
	KindImportError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidType:
		return "invalid_type"
	case KindInvalidConstructor:
		return "invalid_constructor"
	case KindInvalidFunction:
		return "invalid_function"
	case KindSymbolNotFound:
		return "symbol_not_found"
	case KindSymbolAlreadyDeclared:
		return "symbol_already_declared"
	case KindSymbolCanCollide:
		return "symbol_can_collide"
	case KindImportError:
		return "import_error"
	default:
		return "unknown"
	}
}

// Error is the single error type returned across the checker/resolver
// boundary. Token is the offending token for caret-style reporting;
// it is the zero Token when no single token applies.
type Error struct {
	Kind    Kind
	Token   token.Token
	Message string
	Fatal   bool // only meaningful for KindImportError
}

func (e *Error) Error() string {
	if e.Token.Lexeme == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Token, e.Message)
}

func newErr(kind Kind, tok token.Token, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Token: tok, Message: fmt.Sprintf(format, args...)}
}

// InvalidType reports a type instance with no builder, an arity
// mismatch on a built-in category, a namespaced stand-in, or a
// constructor depending on an invalid type.
func InvalidType(tok token.Token, format string, args ...interface{}) *Error {
	return newErr(KindInvalidType, tok, format, args...)
}

// InvalidConstructor reports a constructor that could not be
// validated, including a visibility mismatch between a private
// builder and a public owning type.
func InvalidConstructor(tok token.Token, format string, args ...interface{}) *Error {
	return newErr(KindInvalidConstructor, tok, format, args...)
}

// InvalidFunction reports a signature resolution failure during
// header checking.
func InvalidFunction(tok token.Token, format string, args ...interface{}) *Error {
	return newErr(KindInvalidFunction, tok, format, args...)
}

// SymbolNotFound reports an unresolved reference during checking.
func SymbolNotFound(tok token.Token, format string, args ...interface{}) *Error {
	return newErr(KindSymbolNotFound, tok, format, args...)
}

// SymbolAlreadyDeclared reports a name collision at insertion time.
func SymbolAlreadyDeclared(tok token.Token, format string, args ...interface{}) *Error {
	return newErr(KindSymbolAlreadyDeclared, tok, format, args...)
}

// SymbolCanCollide reports an ambiguous function overload.
func SymbolCanCollide(tok token.Token, format string, args ...interface{}) *Error {
	return newErr(KindSymbolCanCollide, tok, format, args...)
}

// ImportError reports a resolver-stage failure. fatal marks cyclic
// imports and loader failures that abort the whole compilation; a
// non-fatal import error (reserved for future collaborators) would
// leave the importing program's declarations partially populated.
func ImportError(tok token.Token, fatal bool, format string, args ...interface{}) *Error {
	e := newErr(KindImportError, tok, format, args...)
	e.Fatal = fatal
	return e
}

// Sink receives diagnostics as they are produced, e.g. to render them
// with source context. It is supplied by the driver; this module never
// formats diagnostics for a terminal itself.
type Sink interface {
	Report(err *Error)
}

// DiscardSink drops every diagnostic. Useful in tests that only care
// about the returned error value.
type DiscardSink struct{}

func (DiscardSink) Report(*Error) {}

// CollectSink appends every diagnostic it receives, in report order.
type CollectSink struct {
	Errors []*Error
}

func (c *CollectSink) Report(err *Error) {
	c.Errors = append(c.Errors, err)
}

// Session aggregates the diagnostics of a single compilation run under
// a correlation ID, so a driver logging across many runs (e.g. a long
// lived service fronted by the gRPC loader) can tell them apart.
type Session struct {
	ID   uuid.UUID
	Sink Sink

	aggregate *multierror.Error
}

// NewSession creates a Session stamped with a fresh correlation ID. A
// nil sink is equivalent to DiscardSink.
func NewSession(sink Sink) *Session {
	if sink == nil {
		sink = DiscardSink{}
	}
	return &Session{ID: uuid.New(), Sink: sink}
}

// Report logs err exactly once via the Sink and, unless it is a fatal
// import error, folds it into the run's aggregate so the driver can
// report every failed declaration at the end without re-raising the
// original error at its point of failure.
func (s *Session) Report(err *Error) {
	s.Sink.Report(err)
	if !err.Fatal {
		s.aggregate = multierror.Append(s.aggregate, err)
	}
}

// Fatal reports err and returns it so the caller can propagate it
// immediately and abort the run, matching the fail-fast policy for
// resolver-stage failures.
func (s *Session) Fatal(err *Error) error {
	err.Fatal = true
	s.Report(err)
	return err
}

// Aggregate returns every non-fatal diagnostic reported this run as a
// single error, or nil if none were reported.
func (s *Session) Aggregate() error {
	if s.aggregate == nil {
		return nil
	}
	return s.aggregate.ErrorOrNil()
}
