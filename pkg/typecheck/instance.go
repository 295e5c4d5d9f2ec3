// Package typecheck validates type declarations, constructors, and
// type instances against their declaring scope: the type-instance
// checker (simple_check/complex_check) and the type/constructor
// checker that together drive a Type from UNKNOWN to VALID or INVALID.
package typecheck

import (
	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/diagnostics"
	"github.com/avalon-lang/semantic/pkg/mangle"
	"github.com/avalon-lang/semantic/pkg/specialize"
	"github.com/avalon-lang/semantic/pkg/token"
)

const globalNamespace = "global"

func isStandinToken(name string, standins []token.Token) bool {
	for _, s := range standins {
		if s.Lexeme == name {
			return true
		}
	}
	return false
}

// SimpleCheck validates one type instance within namespace ns,
// mutating instance in place: attaching its builder type, recording
// old_token on substituted parameters, and flagging parametrization.
// standins lists the formal parameter tokens the enclosing declaration
// permits this instance to stand in for.
func SimpleCheck(instance *ast.TypeInstance, scope *ast.Scope, ns string, standins []token.Token) (isStandin, isParametrized bool, err error) {
	if instance.IsStar {
		return true, true, nil
	}

	if instance.IsReference {
		payload := &instance.Params[0]
		return ComplexCheck(payload, scope, ns, standins)
	}

	if instance.Category != ast.CategoryUser {
		return checkBuiltinShape(instance, scope, ns, standins)
	}

	arity := len(instance.Params)
	builder, found := scope.GetType(ns, instance.Name, arity)

	if found {
		if builder.State == ast.Unknown {
			if err := TypeChecker(builder, scope, ns); err != nil {
				return false, false, err
			}
		}
		if builder.State == ast.Invalid {
			return false, false, diagnostics.InvalidType(instance.Token, "%s is not a valid type", instance.Name)
		}

		parametrized := false
		for i := range instance.Params {
			formal := builder.Params[i]
			paramStandin, paramParametrized, err := ComplexCheck(&instance.Params[i], scope, ns, standins)
			if err != nil {
				return false, false, err
			}
			if paramStandin || paramParametrized {
				parametrized = true
			}
			instance.Params[i].OldToken = &formal
		}

		instance.Type = builder
		instance.IsParametrized = parametrized

		if instance.Complete() {
			if _, err := specialize.Generate(*instance); err != nil {
				return false, false, err
			}
			builder.Used = true
		}
		return false, parametrized, nil
	}

	// No builder found: the instance can still be legal as a bare
	// stand-in name (a formal type parameter), never as a parametrized
	// one — a stand-in by definition has no parameters of its own.
	if arity == 0 && isStandinToken(instance.Name, standins) {
		return true, false, nil
	}
	return false, false, diagnostics.InvalidType(instance.Token, "%s is not a declared type in namespace %q", instance.Name, ns)
}

func checkBuiltinShape(instance *ast.TypeInstance, scope *ast.Scope, ns string, standins []token.Token) (isStandin, isParametrized bool, err error) {
	switch instance.Category {
	case ast.CategoryList:
		if len(instance.Params) != 1 {
			return false, false, diagnostics.InvalidType(instance.Token, "a list type instance must have exactly one parameter, got %d", len(instance.Params))
		}
	case ast.CategoryMap:
		if len(instance.Params) != 2 {
			return false, false, diagnostics.InvalidType(instance.Token, "a map type instance must have exactly two parameters, got %d", len(instance.Params))
		}
	}

	parametrized := false
	for i := range instance.Params {
		paramStandin, paramParametrized, err := ComplexCheck(&instance.Params[i], scope, ns, standins)
		if err != nil {
			return false, false, err
		}
		if paramStandin || paramParametrized {
			parametrized = true
		}
	}

	instance.IsParametrized = parametrized
	instance.Type = &ast.Type{
		Name:            mangle.Instance(*instance),
		Token:           instance.Token,
		Category:        instance.Category,
		State:           ast.Valid,
		Public:          true,
		Specializations: make(map[string]*ast.Type),
	}
	return false, parametrized, nil
}

// ComplexCheck resolves the namespace search order around SimpleCheck.
// A wildcard namespace ("*") tries the holder's namespace first, then
// falls back to the global namespace, keeping the second attempt's
// result (error or success) on double failure. An explicit namespace
// is searched alone; a stand-in resolved under an explicit namespace
// is rejected, since stand-ins cannot be namespaced.
func ComplexCheck(instance *ast.TypeInstance, scope *ast.Scope, holderNS string, standins []token.Token) (isStandin, isParametrized bool, err error) {
	if instance.Namespace == "" || instance.Namespace == "*" {
		isStandin, isParametrized, err = SimpleCheck(instance, scope, holderNS, standins)
		if err == nil {
			return isStandin, isParametrized, nil
		}
		return SimpleCheck(instance, scope, globalNamespace, standins)
	}

	isStandin, isParametrized, err = SimpleCheck(instance, scope, instance.Namespace, standins)
	if err != nil {
		return false, false, err
	}
	if isStandin {
		return false, false, diagnostics.InvalidType(instance.Token, "%s is a stand-in and cannot be namespaced", instance.Name)
	}
	return isStandin, isParametrized, nil
}
