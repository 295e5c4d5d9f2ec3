package typecheck

import (
	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/diagnostics"
)

// TypeChecker drives t from UNKNOWN through VALIDATING to VALID or
// INVALID: it rejects duplicate or shadowing parameter tokens, then
// checks every constructor in turn. A constructor failure marks t
// INVALID and re-raises immediately (fail-fast); VALIDATING is left
// observable for the whole pass so a recursive type instance reaching
// t mid-validation attaches it without re-entering this function.
func TypeChecker(t *ast.Type, scope *ast.Scope, ns string) error {
	t.State = ast.Validating

	for i, p := range t.Params {
		for _, other := range t.Params[i+1:] {
			if p.Lexeme == other.Lexeme {
				t.State = ast.Invalid
				return diagnostics.InvalidType(p, "duplicate type parameter %q in declaration of %s", p.Lexeme, t.Name)
			}
		}
		if scope.TypeExistsAnyNamespace(p.Lexeme, 0) {
			t.State = ast.Invalid
			return diagnostics.InvalidType(p, "type parameter %q shadows a visible concrete type", p.Lexeme)
		}
	}

	for _, c := range t.DefaultConstructors {
		if err := constructorCheckerDefault(c, t, scope, ns); err != nil {
			t.State = ast.Invalid
			return err
		}
		t.AddDefaultConstructor(c)
	}
	for _, c := range t.RecordConstructors {
		if err := constructorCheckerRecord(c, t, scope, ns); err != nil {
			t.State = ast.Invalid
			return err
		}
		t.AddRecordConstructor(c)
	}

	t.State = ast.Valid
	return nil
}

// checkConstructorParam runs the shared constructor-parameter logic:
// resolve p against scope, falling back to the self-recursion escape
// hatch (p.is_builtby(owner)) on failure, then enforce visibility and
// invalid-builder propagation. p is mutated in place (builder
// attached, old_token recorded on nested parameters).
func checkConstructorParam(p *ast.TypeInstance, owner *ast.Type, scope *ast.Scope, ns string) error {
	formals := owner.Params
	_, _, err := ComplexCheck(p, scope, ns, formals)
	if err != nil {
		if p.IsBuiltBy(owner) {
			p.Type = owner
		} else {
			return diagnostics.InvalidConstructor(p.Token, "%v", err)
		}
	}

	if p.Type == nil {
		return nil
	}
	if !p.Type.Public && owner.Public {
		return diagnostics.InvalidConstructor(p.Token, "constructor parameter %q builds on private type %q but %q is public", p.Token.Lexeme, p.Type.Name, owner.Name)
	}
	if p.Type.State == ast.Invalid {
		return diagnostics.InvalidConstructor(p.Token, "constructor parameter %q depends on invalid type %q", p.Token.Lexeme, p.Type.Name)
	}
	return nil
}

func constructorCheckerDefault(c *ast.DefaultConstructor, owner *ast.Type, scope *ast.Scope, ns string) error {
	for i := range c.Params {
		if err := checkConstructorParam(&c.Params[i], owner, scope, ns); err != nil {
			return err
		}
	}
	return nil
}

func constructorCheckerRecord(c *ast.RecordConstructor, owner *ast.Type, scope *ast.Scope, ns string) error {
	for i := range c.Fields {
		if err := checkConstructorParam(&c.Fields[i].Type, owner, scope, ns); err != nil {
			return err
		}
	}
	return nil
}
