// Package loader abstracts the external parser the resolver calls
// during generate_deps: something that turns a module's FQN plus a
// list of search paths into a parsed *ast.Program. The core never
// parses source itself; it only consumes this boundary.
package loader

import (
	"context"
	"fmt"

	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/token"
)

// ErrNotFound is returned when no search path yields a module for fqn.
type ErrNotFound struct {
	FQN token.FQN
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("no source found for module %q on any search path", e.FQN.Name)
}

// Loader parses a module, or reports ErrNotFound / a parse error.
// Implementations are the resolver's only synchronous, blocking call.
type Loader interface {
	Load(ctx context.Context, fqn token.FQN, searchPaths []string) (*ast.Program, error)
}

// Static is a map-backed Loader over programs already held in memory:
// the resolver's own unit tests, and any driver that parses everything
// up front and only wants generate_deps to walk the import graph.
type Static struct {
	Programs map[string]*ast.Program // keyed by FQN.Key()
}

// NewStatic builds a Static loader over an initially empty program set.
func NewStatic() *Static {
	return &Static{Programs: make(map[string]*ast.Program)}
}

// Add registers prog under its own FQN, for later Load calls.
func (s *Static) Add(prog *ast.Program) {
	s.Programs[prog.FQN.Key()] = prog
}

func (s *Static) Load(_ context.Context, fqn token.FQN, _ []string) (*ast.Program, error) {
	if prog, ok := s.Programs[fqn.Key()]; ok {
		return prog, nil
	}
	return nil, &ErrNotFound{FQN: fqn}
}
