package mangle

import (
	"testing"

	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/token"
)

func mkTok(lexeme string) token.Token {
	return token.New(token.KindIdentifier, lexeme, 1, 0, "t.av")
}

func TestInstanceStarIsBare(t *testing.T) {
	if got := Instance(ast.NewStar()); got != "*" {
		t.Fatalf("expected bare '*' for the star instance, got %q", got)
	}
}

func TestInstanceAbstractIsSuffixed(t *testing.T) {
	a := ast.TypeInstance{Name: "a", Token: mkTok("a")}
	if got := Instance(a); got != "a*" {
		t.Fatalf("expected 'a*' for an abstract instance, got %q", got)
	}
}

func TestInstanceUserConcreteWithParams(t *testing.T) {
	intType := &ast.Type{Name: "int"}
	intIns := ast.TypeInstance{Name: "int", Token: mkTok("int"), Type: intType}
	boxType := &ast.Type{Name: "Box"}
	box := ast.TypeInstance{Name: "Box", Token: mkTok("Box"), Type: boxType, Params: []ast.TypeInstance{intIns}}

	if got := Instance(box); got != "Box(int)" {
		t.Fatalf("expected 'Box(int)', got %q", got)
	}
	if got := Instance(intIns); got != "int" {
		t.Fatalf("expected nullary concrete instance to omit parens, got %q", got)
	}
}

func TestInstanceReference(t *testing.T) {
	intType := &ast.Type{Name: "int"}
	intIns := ast.TypeInstance{Name: "int", Token: mkTok("int"), Type: intType}
	ref := ast.NewReference(intIns)
	if got := Instance(ref); got != "ref'int" {
		t.Fatalf("expected \"ref'int\", got %q", got)
	}
}

func TestInstanceListAndMap(t *testing.T) {
	intType := &ast.Type{Name: "int"}
	intIns := ast.TypeInstance{Name: "int", Token: mkTok("int"), Type: intType}
	list := ast.TypeInstance{Category: ast.CategoryList, Type: &ast.Type{Category: ast.CategoryList}, Params: []ast.TypeInstance{intIns}}
	if got := Instance(list); got != "[int]" {
		t.Fatalf("expected '[int]', got %q", got)
	}

	boolType := &ast.Type{Name: "bool"}
	boolIns := ast.TypeInstance{Name: "bool", Token: mkTok("bool"), Type: boolType}
	m := ast.TypeInstance{Category: ast.CategoryMap, Type: &ast.Type{Category: ast.CategoryMap}, Params: []ast.TypeInstance{intIns, boolIns}}
	if got := Instance(m); got != "{int:bool}" {
		t.Fatalf("expected '{int:bool}', got %q", got)
	}
}

func TestDefaultConstructorMangleNullaryAndParametric(t *testing.T) {
	owner := ast.NewType("Box", mkTok("Box"), token.FQN{}, "global", []token.Token{mkTok("a")})
	nullary := &ast.DefaultConstructor{NameToken: mkTok("Empty"), Owner: owner}
	if got := DefaultConstructor(nullary); got != "Empty" {
		t.Fatalf("expected bare 'Empty' for a nullary constructor, got %q", got)
	}

	a := ast.TypeInstance{Name: "a", Token: mkTok("a")}
	withParam := &ast.DefaultConstructor{NameToken: mkTok("Box"), Owner: owner, Params: []ast.TypeInstance{a}}
	if got := DefaultConstructor(withParam); got != "Box(a*)" {
		t.Fatalf("expected 'Box(a*)', got %q", got)
	}
}

func TestDefaultConstructorMangleSuffixesSpecialization(t *testing.T) {
	owner := ast.NewType("Box", mkTok("Box"), token.FQN{}, "global", nil)
	intType := &ast.Type{Name: "int"}
	intIns := ast.TypeInstance{Name: "int", Token: mkTok("int"), Type: intType}
	builderInstance := ast.TypeInstance{Name: "Box", Token: mkTok("Box"), Type: owner, Params: []ast.TypeInstance{intIns}}
	owner.BuilderInstance = &builderInstance

	ctor := &ast.DefaultConstructor{NameToken: mkTok("Box"), Owner: owner, Params: []ast.TypeInstance{intIns}}
	if got := DefaultConstructor(ctor); got != "Box(int):Box(int)" {
		t.Fatalf("expected 'Box(int):Box(int)', got %q", got)
	}
}

func TestTypeDeclMangleOmitsParensWhenNullary(t *testing.T) {
	nullary := ast.NewType("Unit", mkTok("Unit"), token.FQN{}, "global", nil)
	if got := TypeDecl(nullary); got != "Unit" {
		t.Fatalf("expected bare 'Unit', got %q", got)
	}

	generic := ast.NewType("Pair", mkTok("Pair"), token.FQN{}, "global", []token.Token{mkTok("a"), mkTok("b")})
	if got := TypeDecl(generic); got != "Pair(a,b)" {
		t.Fatalf("expected 'Pair(a,b)', got %q", got)
	}
}

func TestMangleDeterministic(t *testing.T) {
	intType := &ast.Type{Name: "int"}
	intIns := ast.TypeInstance{Name: "int", Token: mkTok("int"), Type: intType}
	boxType := &ast.Type{Name: "Box"}
	box := ast.TypeInstance{Name: "Box", Token: mkTok("Box"), Type: boxType, Params: []ast.TypeInstance{intIns}}

	if Instance(box) != Instance(box) {
		t.Fatal("expected mangling the same instance twice to produce the same string")
	}
}
