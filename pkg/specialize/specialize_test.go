package specialize

import (
	"testing"

	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/token"
)

func tok(lexeme string) token.Token {
	return token.New(token.KindIdentifier, lexeme, 1, 0, "t.av")
}

func TestGenerateRejectsIncompleteInstance(t *testing.T) {
	box := ast.NewType("Box", tok("Box"), token.FQN{}, "global", []token.Token{tok("a")})
	abstractA := ast.TypeInstance{Name: "a", Token: tok("a")}
	instance := ast.TypeInstance{Name: "Box", Token: tok("Box"), Type: box, Params: []ast.TypeInstance{abstractA}}

	if _, err := Generate(instance); err == nil {
		t.Fatal("expected an incomplete instance (still carrying an abstract parameter) to be rejected")
	}
}

func TestGenerateSubstitutesDefaultConstructorParams(t *testing.T) {
	aTok := tok("a")
	box := ast.NewType("Box", tok("Box"), token.FQN{}, "global", []token.Token{aTok})
	box.Public = true

	abstractA := ast.TypeInstance{Name: "a", Token: aTok}
	ctor := &ast.DefaultConstructor{NameToken: tok("Box"), Owner: box, Params: []ast.TypeInstance{abstractA}}
	box.AddDefaultConstructor(ctor)

	intType := ast.NewType("int", tok("int"), token.FQN{}, "global", nil)
	intIns := ast.TypeInstance{Name: "int", Token: tok("int"), Type: intType}
	intIns.OldToken = &aTok

	instance := ast.TypeInstance{Name: "Box", Token: tok("Box"), Type: box, Params: []ast.TypeInstance{intIns}}

	got, err := Generate(instance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Box(int)" {
		t.Fatalf("expected the specialization's name to be the mangled instance 'Box(int)', got %q", got.Name)
	}
	if got.State != ast.Valid {
		t.Fatalf("expected the specialization to be VALID, got %v", got.State)
	}
	if !got.Specialization() {
		t.Fatal("expected Specialization() to report true once builder_instance is set")
	}
	if len(got.DefaultConstructors) != 1 {
		t.Fatalf("expected exactly one generated default constructor, got %d", len(got.DefaultConstructors))
	}
	for _, c := range got.DefaultConstructors {
		if len(c.Params) != 1 || c.Params[0].Name != "int" {
			t.Fatalf("expected the substituted constructor parameter to be 'int', got %+v", c.Params)
		}
	}
}

func TestGenerateCachesOnOwnerByMangledName(t *testing.T) {
	aTok := tok("a")
	box := ast.NewType("Box", tok("Box"), token.FQN{}, "global", []token.Token{aTok})

	intType := ast.NewType("int", tok("int"), token.FQN{}, "global", nil)
	intIns := ast.TypeInstance{Name: "int", Token: tok("int"), Type: intType}
	intIns.OldToken = &aTok
	instance := ast.TypeInstance{Name: "Box", Token: tok("Box"), Type: box, Params: []ast.TypeInstance{intIns}}

	first, err := Generate(instance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Generate(instance)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected generating from two equal complete instances to return the cached specialization")
	}
	if len(box.Specializations) != 1 {
		t.Fatalf("expected exactly one cached specialization on the owner, got %d", len(box.Specializations))
	}
}

func TestGenerateReferenceRecursesIntoPayload(t *testing.T) {
	intType := ast.NewType("int", tok("int"), token.FQN{}, "global", nil)
	intIns := ast.TypeInstance{Name: "int", Token: tok("int"), Type: intType}
	ref := ast.NewReference(intIns)

	got, err := Generate(ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "int" {
		t.Fatalf("expected a reference instance to generate from its payload, got %q", got.Name)
	}
}
