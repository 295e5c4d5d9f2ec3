package resolver

import (
	"context"
	"testing"

	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/diagnostics"
	"github.com/avalon-lang/semantic/pkg/loader"
	"github.com/avalon-lang/semantic/pkg/token"
)

func tok(lexeme string) token.Token {
	return token.New(token.KindIdentifier, lexeme, 1, 0, "t.av")
}

func newConcreteType(name string) *ast.Type {
	ty := ast.NewType(name, tok(name), token.FQN{}, "global", nil)
	ty.State = ast.Valid
	ty.Public = true
	return ty
}

func TestResolveOrdersDependenciesBeforeDependents(t *testing.T) {
	libFQN := token.NewFQN("/lib", "geometry")
	lib := ast.NewProgram(libFQN, false)
	point := newConcreteType("Point")
	if err := lib.AddType("global", point); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	appFQN := token.NewFQN("/app", "main")
	app := ast.NewProgram(appFQN, false)
	app.Imports = []*ast.Import{{Token: tok("import"), FQN: libFQN}}

	ld := loader.NewStatic()
	ld.Add(lib)
	ld.Add(app)

	sess := diagnostics.NewSession(nil)
	table, err := Resolve(context.Background(), ld, appFQN, nil, nil, sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	libIdx, appIdx := -1, -1
	for i, key := range table.Order {
		if key == libFQN.Key() {
			libIdx = i
		}
		if key == appFQN.Key() {
			appIdx = i
		}
	}
	if libIdx == -1 || appIdx == -1 {
		t.Fatalf("expected both programs in the order, got %v", table.Order)
	}
	if libIdx > appIdx {
		t.Fatalf("expected geometry before main in topological order, got %v", table.Order)
	}

	if _, ok := app.Scope.GetType("global", "Point", 0); !ok {
		t.Fatal("expected main's scope to have geometry's public type Point imported")
	}
}

func TestResolveImplicitlyImportsBuiltins(t *testing.T) {
	boolFQN := BuiltinFQN("bool")
	boolProg := ast.NewProgram(boolFQN, true)
	boolType := newConcreteType("bool")
	if err := boolProg.AddType("global", boolType); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	appFQN := token.NewFQN("/app", "main")
	app := ast.NewProgram(appFQN, false)

	ld := loader.NewStatic()
	ld.Add(app)

	sess := diagnostics.NewSession(nil)
	_, err := Resolve(context.Background(), ld, appFQN, nil, []*ast.Program{boolProg}, sess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := app.Scope.GetType("global", "bool", 0); !ok {
		t.Fatal("expected a non-builtin program to implicitly import the builtin bool type")
	}
}

func TestResolveDetectsImportCycle(t *testing.T) {
	aFQN := token.NewFQN("/p", "a")
	bFQN := token.NewFQN("/p", "b")
	a := ast.NewProgram(aFQN, false)
	a.Imports = []*ast.Import{{Token: tok("import"), FQN: bFQN}}
	b := ast.NewProgram(bFQN, false)
	b.Imports = []*ast.Import{{Token: tok("import"), FQN: aFQN}}

	ld := loader.NewStatic()
	ld.Add(a)
	ld.Add(b)

	sess := diagnostics.NewSession(nil)
	if _, err := Resolve(context.Background(), ld, aFQN, nil, nil, sess); err == nil {
		t.Fatal("expected a cyclic import to be reported as a fatal error")
	}
}

func TestResolveFiltersExplicitImportToPublicNamesOnly(t *testing.T) {
	libFQN := token.NewFQN("/lib", "util")
	lib := ast.NewProgram(libFQN, false)
	pub := newConcreteType("Visible")
	priv := newConcreteType("Hidden")
	priv.Public = false
	if err := lib.AddType("global", pub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := lib.AddType("global", priv); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	appFQN := token.NewFQN("/app", "main")
	app := ast.NewProgram(appFQN, false)
	app.Imports = []*ast.Import{{Token: tok("import"), FQN: libFQN}}

	ld := loader.NewStatic()
	ld.Add(lib)
	ld.Add(app)

	sess := diagnostics.NewSession(nil)
	if _, err := Resolve(context.Background(), ld, appFQN, nil, nil, sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := app.Scope.GetType("global", "Visible", 0); !ok {
		t.Fatal("expected the public type to be imported")
	}
	if _, ok := app.Scope.GetType("global", "Hidden", 0); ok {
		t.Fatal("expected the private type to stay out of the importing scope")
	}
}

func TestResolveHeaderChecksImportedFunctionSignature(t *testing.T) {
	libFQN := token.NewFQN("/lib", "broken")
	lib := ast.NewProgram(libFQN, false)
	fn := &ast.Function{
		Name:   "oops",
		Token:  tok("oops"),
		Public: true,
		Return: ast.TypeInstance{Name: "Nonexistent", Token: tok("Nonexistent")},
	}
	if err := lib.AddFunction("global", fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	appFQN := token.NewFQN("/app", "main")
	app := ast.NewProgram(appFQN, false)
	app.Imports = []*ast.Import{{Token: tok("import"), FQN: libFQN}}

	ld := loader.NewStatic()
	ld.Add(lib)
	ld.Add(app)

	sess := diagnostics.NewSession(nil)
	if _, err := Resolve(context.Background(), ld, appFQN, nil, nil, sess); err == nil {
		t.Fatal("expected importing a function with an unresolvable return type to fail header checking")
	}
}
