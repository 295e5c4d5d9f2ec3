// avaloncheck is a minimal wiring example for the semantic front-end:
// resolve an entry module against a parsing service, type-check every
// declaration it pulls in, and report diagnostics. It is not a
// compiler driver — no evaluator, no codegen, just example glue showing
// the pieces wired together end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/builtin"
	"github.com/avalon-lang/semantic/pkg/diagnostics"
	"github.com/avalon-lang/semantic/pkg/loader"
	"github.com/avalon-lang/semantic/pkg/render"
	"github.com/avalon-lang/semantic/pkg/resolver"
	"github.com/avalon-lang/semantic/pkg/token"
	"github.com/avalon-lang/semantic/pkg/typecheck"
)

var (
	addr                = flag.String("addr", "", "ParserService address (host:port); required")
	plaintext           = flag.Bool("plaintext", true, "dial the parser service without TLS")
	entryPath           = flag.String("path", "", "entry module's FQN path")
	entryName           = flag.String("name", "main", "entry module's FQN name")
	searchPaths         = flag.String("search", "", "comma-separated loader search paths")
	nativeBuiltinPath   = flag.String("native-builtins", "", "optional native builtin plugin (.so/.dll); empty disables it")
	dumpSpecializations = flag.Bool("dump-specializations", false, "print every type specialization produced while checking")
)

func main() {
	flag.Parse()

	if *addr == "" {
		fmt.Fprintln(os.Stderr, "avaloncheck: -addr is required")
		os.Exit(1)
	}

	registry, err := builtin.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "avaloncheck: building builtin registry: %v\n", err)
		os.Exit(1)
	}
	if err := registry.LoadNative(*nativeBuiltinPath); err != nil {
		fmt.Fprintf(os.Stderr, "avaloncheck: loading native builtins: %v\n", err)
		os.Exit(1)
	}

	sess := diagnostics.NewSession(stderrSink{})
	ld := loader.NewGRPC(*addr, *plaintext)
	entry := token.NewFQN(*entryPath, *entryName)

	var paths []string
	if *searchPaths != "" {
		paths = strings.Split(*searchPaths, ",")
	}

	table, err := resolver.Resolve(context.Background(), ld, entry, paths, registry.All(), sess)
	if err != nil {
		fmt.Fprintf(os.Stderr, "avaloncheck: resolving %s: %v\n", entry.Name, err)
		os.Exit(1)
	}

	checkTable(table, sess)

	if *dumpSpecializations {
		dumpTable(table)
	}

	if err := sess.Aggregate(); err != nil {
		fmt.Fprintf(os.Stderr, "avaloncheck: %d declaration(s) failed to validate:\n%v\n", declarationFailures(err), err)
		os.Exit(1)
	}
}

// checkTable type-checks every type and every function/variable header
// in every program the resolver pulled in, reporting each failure
// through sess rather than aborting on the first one. This mirrors the
// resolver's own headerCheck but is applied to the whole table rather
// than just the imported subset, so a driver sees every local failure
// too.
func checkTable(table *resolver.Table, sess *diagnostics.Session) {
	for _, key := range table.Order {
		prog := table.Programs[key]
		for nsName, ns := range prog.Namespaces {
			for _, t := range ns.Types {
				if t.State != ast.Unknown {
					continue
				}
				if err := typecheck.TypeChecker(t, prog.Scope, nsName); err != nil {
					reportDiagnostic(sess, err)
				}
			}
			for _, fn := range ns.Functions {
				for i := range fn.Params {
					if _, _, err := typecheck.ComplexCheck(&fn.Params[i].Declared, prog.Scope, nsName, fn.TypeParams); err != nil {
						reportDiagnostic(sess, err)
					}
				}
				if _, _, err := typecheck.ComplexCheck(&fn.Return, prog.Scope, nsName, fn.TypeParams); err != nil {
					reportDiagnostic(sess, err)
				}
			}
			for _, v := range ns.Variables {
				if _, _, err := typecheck.ComplexCheck(&v.Declared, prog.Scope, nsName, nil); err != nil {
					reportDiagnostic(sess, err)
				}
			}
		}
	}
}

func reportDiagnostic(sess *diagnostics.Session, err error) {
	if diagErr, ok := err.(*diagnostics.Error); ok {
		sess.Report(diagErr)
	}
}

func dumpTable(table *resolver.Table) {
	for _, key := range table.Order {
		prog := table.Programs[key]
		for _, ns := range prog.Namespaces {
			for _, t := range ns.Types {
				for _, spec := range t.Specializations {
					out, err := render.Specialization(spec)
					if err != nil {
						continue
					}
					fmt.Println(out)
				}
			}
		}
	}
}

func declarationFailures(err error) int {
	type unwrapper interface{ WrappedErrors() []error }
	if u, ok := err.(unwrapper); ok {
		return len(u.WrappedErrors())
	}
	return 1
}
