// Package resolver drives the dependency-resolution pass: it turns an
// entry module's FQN into a global table of every transitively imported
// program, ordered so each program's dependencies finish importing
// before it does, with public declarations woven into each importing
// program's scope along the way.
package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/diagnostics"
	"github.com/avalon-lang/semantic/pkg/loader"
	"github.com/avalon-lang/semantic/pkg/token"
	"github.com/avalon-lang/semantic/pkg/typecheck"
)

// BuiltinSeedOrder is the fixed order sort_deps seeds its topological
// queue with, before any user-declared program is considered. This
// order is load-bearing: later built-ins (e.g. int) may legally refer
// to earlier ones (e.g. bool) in their operator signatures.
var BuiltinSeedOrder = []string{
	"string", "maybe", "void", "bool", "float", "gate", "trig",
	"bit", "bit2", "bit4", "bit8",
	"qubit", "qubit2", "qubit4", "qubit8",
	"int", "io",
}

// BuiltinFQN is the fixed locator convention built-in programs are
// registered under: no search path, a name bracketed with the
// `__bifqn_..__` marker so it can never collide with a user module
// (user FQNs never begin with two underscores).
func BuiltinFQN(name string) token.FQN {
	return token.NewFQN("", "__bifqn_"+name+"__")
}

// Table is the resolver's output: every program reachable from the
// entry module, plus the topological order run_imports processed them
// in (built-ins first, each program after everything it imports).
type Table struct {
	Programs map[string]*ast.Program // keyed by FQN.Key()
	Order    []string
}

// Resolve runs generate_deps, sort_deps and run_imports in sequence.
// builtins are pre-registered into the table before generate_deps walks
// entry's import graph, so a user program importing a built-in never
// reaches the loader for it. Any failure is fatal and aborts the run;
// sess still receives every diagnostic exactly once via Report/Fatal.
func Resolve(ctx context.Context, ld loader.Loader, entry token.FQN, searchPaths []string, builtins []*ast.Program, sess *diagnostics.Session) (*Table, error) {
	table := make(map[string]*ast.Program)
	deps := make(map[string][]token.FQN)

	for _, b := range builtins {
		table[b.FQN.Key()] = b
		deps[b.FQN.Key()] = nil
	}

	if err := generateDeps(ctx, ld, entry, searchPaths, table, deps, sess); err != nil {
		return nil, err
	}

	order, err := sortDeps(table, deps)
	if err != nil {
		return nil, sess.Fatal(diagnostics.ImportError(token.Token{}, true, "%v", err))
	}

	if err := runImports(table, order, sess); err != nil {
		return nil, err
	}

	return &Table{Programs: table, Order: order}, nil
}

// generateDeps registers prog (loading it if not already present) and
// recurses into its explicit imports. A program already registered is a
// no-op: there is no re-entry once an FQN has been seen.
func generateDeps(ctx context.Context, ld loader.Loader, fqn token.FQN, searchPaths []string, table map[string]*ast.Program, deps map[string][]token.FQN, sess *diagnostics.Session) error {
	key := fqn.Key()
	if _, ok := table[key]; ok {
		return nil
	}

	prog, err := ld.Load(ctx, fqn, searchPaths)
	if err != nil {
		return sess.Fatal(diagnostics.ImportError(token.Token{}, true, "loading module %q: %v", fqn.Name, err))
	}

	table[key] = prog
	deps[key] = nil

	for _, imp := range prog.Imports {
		deps[key] = append(deps[key], imp.FQN)
		if err := generateDeps(ctx, ld, imp.FQN, searchPaths, table, deps, sess); err != nil {
			return err
		}
	}
	return nil
}

type color int

const (
	white color = iota
	gray
	black
)

// sortDeps performs a post-order DFS over every registered program,
// visiting the fixed built-in seed order first, producing a list where
// each program appears only after everything it (transitively) depends
// on. A back-edge to a gray (open) node is an import cycle.
func sortDeps(table map[string]*ast.Program, deps map[string][]token.FQN) ([]string, error) {
	colors := make(map[string]color, len(table))
	order := make([]string, 0, len(table))

	var visit func(key string) error
	visit = func(key string) error {
		switch colors[key] {
		case black:
			return nil
		case gray:
			name := key
			if prog, ok := table[key]; ok {
				name = prog.FQN.Name
			}
			return fmt.Errorf("import cycle detected: %s imports back to itself", name)
		}
		colors[key] = gray
		for _, dep := range deps[key] {
			if err := visit(dep.Key()); err != nil {
				return err
			}
		}
		colors[key] = black
		order = append(order, key)
		return nil
	}

	for _, name := range BuiltinSeedOrder {
		key := BuiltinFQN(name).Key()
		if _, ok := table[key]; ok {
			if err := visit(key); err != nil {
				return nil, err
			}
		}
	}

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := visit(k); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// runImports walks order and, for each program, synthesizes its
// implicit built-in imports, then its explicit ones. It runs no
// separate self-import: a program's own declarations (including
// private ones) are already in its scope, as noted at the end of the
// loop.
func runImports(table map[string]*ast.Program, order []string, sess *diagnostics.Session) error {
	for _, key := range order {
		prog := table[key]

		if !prog.IsBuiltin {
			for _, name := range BuiltinSeedOrder {
				bKey := BuiltinFQN(name).Key()
				if bKey == key {
					continue
				}
				if builtin, ok := table[bKey]; ok {
					if err := importDeclarations(prog, builtin, nil, false, sess); err != nil {
						return err
					}
				}
			}
		}

		for _, imp := range prog.Imports {
			src, ok := table[imp.FQN.Key()]
			if !ok {
				return sess.Fatal(diagnostics.ImportError(imp.Token, true, "import of %q could not be resolved", imp.FQN.Name))
			}
			if err := importDeclarations(prog, src, imp.Names, false, sess); err != nil {
				return err
			}
		}

		// Self-import of P's own declarations ("including private
		// ones") is a no-op by construction here:
		// Program.AddType/AddFunction/AddVariable already insert into
		// p.Scope at build time, so a program's own declarations are
		// already visible to its own body before run_imports ever
		// looks at it. Re-running importDeclarations(prog, prog, ...)
		// would just raise "already declared" on every local name.
	}
	return nil
}

// importDeclarations copies types, functions and variables from every
// namespace of src into dst's scope, restricted to names (nil means
// "every visible declaration") and to public declarations unless
// includePrivate is set (runImports always passes false).
// Importing a function first runs the header checker against dst's
// scope, so its signature's type instances are resolved and overloads
// can be compared immediately on insertion.
func importDeclarations(dst, src *ast.Program, names []string, includePrivate bool, sess *diagnostics.Session) error {
	for nsName, ns := range src.Namespaces {
		dst.Scope.AddNamespace(nsName)

		for _, t := range ns.Types {
			if !includePrivate && !t.Public {
				continue
			}
			if names != nil && !contains(names, t.Name) {
				continue
			}
			if err := dst.Scope.InsertType(nsName, t); err != nil {
				return sess.Fatal(diagnostics.ImportError(t.Token, true, "importing type %s/%d: %v", t.Name, t.Arity(), err))
			}
		}

		for _, fn := range ns.Functions {
			if !includePrivate && !fn.Public {
				continue
			}
			if names != nil && !contains(names, fn.Name) {
				continue
			}
			if err := headerCheck(fn, dst.Scope, nsName); err != nil {
				return sess.Fatal(diagnostics.ImportError(fn.Token, true, "importing function %s/%d: %v", fn.Name, fn.Arity(), err))
			}
			if err := dst.Scope.InsertFunction(nsName, fn); err != nil {
				return sess.Fatal(diagnostics.ImportError(fn.Token, true, "importing function %s/%d: %v", fn.Name, fn.Arity(), err))
			}
		}

		for _, v := range ns.Variables {
			if !includePrivate && !v.Public {
				continue
			}
			if names != nil && !contains(names, v.Name) {
				continue
			}
			if err := dst.Scope.InsertVariable(nsName, v); err != nil {
				return sess.Fatal(diagnostics.ImportError(v.Token, true, "importing variable %s: %v", v.Name, err))
			}
		}
	}
	return nil
}

// headerCheck resolves fn's parameter and return type instances against
// scope, treating fn's own type parameters as permissible stand-ins.
// It mutates fn's declared instances in place (attaching builders), the
// same way any other type-instance resolution does.
func headerCheck(fn *ast.Function, scope *ast.Scope, ns string) error {
	for i := range fn.Params {
		if _, _, err := typecheck.ComplexCheck(&fn.Params[i].Declared, scope, ns, fn.TypeParams); err != nil {
			return diagnostics.InvalidFunction(fn.Token, "parameter %q: %v", fn.Params[i].Name.Lexeme, err)
		}
	}
	if _, _, err := typecheck.ComplexCheck(&fn.Return, scope, ns, fn.TypeParams); err != nil {
		return diagnostics.InvalidFunction(fn.Token, "return type: %v", err)
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
