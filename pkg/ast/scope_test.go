package ast

import (
	"testing"

	"github.com/avalon-lang/semantic/pkg/token"
)

func tok(lexeme string) token.Token {
	return token.New(token.KindIdentifier, lexeme, 1, 0, "test.av")
}

func TestInsertTypeRejectsDuplicateArity(t *testing.T) {
	s := NewScope(nil, "root")
	boxA := NewType("Box", tok("Box"), token.FQN{}, "global", []token.Token{tok("a")})
	if err := s.InsertType("global", boxA); err != nil {
		t.Fatalf("unexpected error inserting Box/1: %v", err)
	}
	boxADup := NewType("Box", tok("Box"), token.FQN{}, "global", []token.Token{tok("a")})
	if err := s.InsertType("global", boxADup); err == nil {
		t.Fatal("expected duplicate (Box, 1) to be rejected")
	}

	boxNullary := NewType("Box", tok("Box"), token.FQN{}, "global", nil)
	if err := s.InsertType("global", boxNullary); err != nil {
		t.Fatalf("expected Box/0 to coexist with Box/1, got %v", err)
	}
}

func TestInsertTypeRejectsVariableCollision(t *testing.T) {
	s := NewScope(nil, "root")
	v := &Variable{Name: "Thing", Token: tok("Thing")}
	if err := s.InsertVariable("global", v); err != nil {
		t.Fatalf("unexpected error inserting variable: %v", err)
	}
	thingType := NewType("Thing", tok("Thing"), token.FQN{}, "global", nil)
	if err := s.InsertType("global", thingType); err == nil {
		t.Fatal("expected type collision with existing variable to be rejected")
	}
}

func TestConstructorMayShareTypeName(t *testing.T) {
	s := NewScope(nil, "root")
	box := NewType("Box", tok("Box"), token.FQN{}, "global", []token.Token{tok("a")})
	ctor := &DefaultConstructor{NameToken: tok("Box"), Owner: box, Params: []TypeInstance{{Name: "a", Token: tok("a")}}}
	box.AddDefaultConstructor(ctor)

	if err := s.InsertType("global", box); err != nil {
		t.Fatalf("expected constructor named after its own type to be accepted, got %v", err)
	}
	if !s.DefaultConstructorExists("global", "Box", 1) {
		t.Fatal("expected the cascaded constructor to be registered")
	}
}

func TestInsertFunctionOverloadsRequireNoCollision(t *testing.T) {
	s := NewScope(nil, "root")
	abstractParam := TypeInstance{Name: "a", Token: tok("a")}
	intParam := TypeInstance{Name: "int", Category: CategoryUser, Type: &Type{Name: "int"}}

	generic := &Function{Name: "f", Token: tok("f"), Params: []Parameter{{Name: tok("x"), Declared: abstractParam}, {Name: tok("y"), Declared: abstractParam}}}
	concrete := &Function{Name: "f", Token: tok("f"), Params: []Parameter{{Name: tok("x"), Declared: intParam}, {Name: tok("y"), Declared: intParam}}}

	if err := s.InsertFunction("global", generic); err != nil {
		t.Fatalf("unexpected error inserting f(a, a): %v", err)
	}
	if err := s.InsertFunction("global", concrete); err != nil {
		t.Fatalf("expected f(int, int) to coexist with f(a, a), got %v", err)
	}

	fns, ok := s.GetFunctions("global", "f", 2)
	if !ok || len(fns) != 2 {
		t.Fatalf("expected 2 overloads of f/2, got %d (ok=%v)", len(fns), ok)
	}

	duplicate := &Function{Name: "f", Token: tok("f"), Params: []Parameter{{Name: tok("x"), Declared: intParam}, {Name: tok("y"), Declared: intParam}}}
	if err := s.InsertFunction("global", duplicate); err == nil {
		t.Fatal("expected a second f(int, int) to collide with the existing one")
	}
}

func TestLookupFallsBackToParentButInsertDoesNot(t *testing.T) {
	parent := NewScope(nil, "root")
	child := NewScope(parent, "block")

	v := &Variable{Name: "x", Token: tok("x")}
	if err := parent.InsertVariable("global", v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !child.VariableExists("global", "x") {
		t.Fatal("expected child scope lookup to fall back to parent")
	}
	if _, ok := parent.Decls.namespaces["global"].variables["x"]; !ok {
		t.Fatal("sanity: variable should live in parent's table")
	}

	// Inserting from the child must not reach into the parent.
	w := &Variable{Name: "y", Token: tok("y")}
	if err := child.InsertVariable("global", w); err != nil {
		t.Fatalf("unexpected error inserting into child: %v", err)
	}
	if parent.VariableExists("global", "y") {
		t.Fatal("insertion into child scope must not be visible from the parent")
	}
}

func TestTypeExistsAnyNamespace(t *testing.T) {
	s := NewScope(nil, "root")
	box := NewType("Box", tok("Box"), token.FQN{}, "mylib", nil)
	if err := s.InsertType("mylib", box); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.TypeExistsAnyNamespace("Box", 0) {
		t.Fatal("expected Box/0 to be found across namespaces")
	}
	if s.TypeExistsAnyNamespace("Box", 1) {
		t.Fatal("did not expect Box/1 to exist")
	}
}
