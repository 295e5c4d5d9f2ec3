package ast

import "testing"

func abstractInstance(name string) TypeInstance {
	return TypeInstance{Name: name, Token: tok(name)}
}

func concreteInstance(t *Type, params ...TypeInstance) TypeInstance {
	return TypeInstance{Name: t.Name, Token: tok(t.Name), Type: t, Params: params}
}

func TestStrongEqualAbstractNeverMatchesConcrete(t *testing.T) {
	intType := &Type{Name: "int"}
	a := abstractInstance("a")
	concreteInt := concreteInstance(intType)

	if StrongEqual(a, concreteInt) {
		t.Fatal("expected abstract and concrete instances to never strong-equal")
	}
	if !StrongEqual(a, abstractInstance("b")) {
		t.Fatal("expected two abstract instances to strong-equal regardless of token")
	}
}

func TestWeakEqualAllowsAbstractToMatchConcrete(t *testing.T) {
	intType := &Type{Name: "int"}
	a := abstractInstance("a")
	concreteInt := concreteInstance(intType)
	if !WeakEqual(a, concreteInt) {
		t.Fatal("expected abstract to weak-equal concrete")
	}
}

func TestWeightZeroWhenWeakEqualFails(t *testing.T) {
	intType := &Type{Name: "int"}
	boolType := &Type{Name: "bool"}
	ci := concreteInstance(intType)
	cb := concreteInstance(boolType)
	if Weight(ci, cb) != 0 {
		t.Fatal("expected weight 0 for incompatible concrete types")
	}
}

func TestWeightPrefersConcreteOverAbstract(t *testing.T) {
	intType := &Type{Name: "int"}
	template := concreteInstance(intType)
	candidateConcrete := concreteInstance(intType)
	candidateAbstract := abstractInstance("x")

	wConcrete := Weight(candidateConcrete, template)
	wAbstract := Weight(candidateAbstract, template)
	if wConcrete <= wAbstract {
		t.Fatalf("expected concrete candidate weight (%d) > abstract candidate weight (%d)", wConcrete, wAbstract)
	}
}

func TestFunctionCollidesWithSameShapeOnly(t *testing.T) {
	intType := &Type{Name: "int"}
	a := Parameter{Name: tok("x"), Declared: abstractInstance("a")}
	ci := Parameter{Name: tok("x"), Declared: concreteInstance(intType)}

	generic := &Function{Name: "f", Params: []Parameter{a, a}}
	concrete := &Function{Name: "f", Params: []Parameter{ci, ci}}
	concrete2 := &Function{Name: "f", Params: []Parameter{ci, ci}}

	if generic.CollidesWith(concrete) {
		t.Fatal("f(a, a) must not collide with f(int, int): Weight disambiguates them at call time")
	}
	if !concrete.CollidesWith(concrete2) {
		t.Fatal("two f(int, int) overloads must collide")
	}
}
