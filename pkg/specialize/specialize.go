// Package specialize materializes a concrete Type from a complete
// TypeInstance: substituting every formal parameter through a type's
// constructors to produce a fresh, fully concrete type declaration.
package specialize

import (
	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/diagnostics"
	"github.com/avalon-lang/semantic/pkg/mangle"
)

// Generate builds the concrete type a complete instance resolves to.
// A reference instance generates from its payload instead — references
// never materialize as distinct types. The result is cached on the
// owning type under its mangled name, so generating from the same
// complete instance twice returns the identical *ast.Type.
func Generate(instance ast.TypeInstance) (*ast.Type, error) {
	if instance.IsReference {
		return Generate(instance.Payload())
	}
	if !instance.Complete() {
		return nil, diagnostics.InvalidType(instance.Token, "the type instance <%s> must be complete before generating a type declaration from it", mangle.Instance(instance))
	}

	owner := instance.Type
	key := mangle.Instance(instance)
	if cached, ok := owner.Specializations[key]; ok {
		return cached, nil
	}

	fresh := &ast.Type{
		Name:            key,
		Token:           instance.Token,
		FQN:             owner.FQN,
		Namespace:       owner.Namespace,
		Category:        owner.Category,
		Public:          owner.Public,
		State:           ast.Valid,
		BuilderInstance: &instance,
		DefaultConstructors: make(map[ast.CtorKey]*ast.DefaultConstructor),
		RecordConstructors:  make(map[ast.CtorKey]*ast.RecordConstructor),
		Specializations:     make(map[string]*ast.Type),
	}

	for _, c := range owner.DefaultConstructors {
		newCons := generateDefaultConstructor(c, instance, fresh)
		fresh.AddDefaultConstructor(newCons)
	}
	for _, c := range owner.RecordConstructors {
		newCons := generateRecordConstructor(c, instance, fresh)
		fresh.AddRecordConstructor(newCons)
	}

	owner.Specializations[key] = fresh
	return fresh, nil
}

func substituteParam(p ast.TypeInstance, insParams []ast.TypeInstance) ast.TypeInstance {
	if !p.Abstract() {
		return p
	}
	for _, ip := range insParams {
		if ip.OldToken != nil && ip.OldToken.Equal(p.Token) {
			return ip
		}
	}
	return p
}

func generateDefaultConstructor(c *ast.DefaultConstructor, instance ast.TypeInstance, owner *ast.Type) *ast.DefaultConstructor {
	params := make([]ast.TypeInstance, 0, len(c.Params))
	for _, p := range c.Params {
		params = append(params, substituteParam(p, instance.Params))
	}
	newCons := &ast.DefaultConstructor{
		NameToken: c.NameToken,
		Owner:     owner,
		Params:    params,
	}
	newCons.NameToken.Lexeme = mangle.DefaultConstructor(newCons)
	return newCons
}

func generateRecordConstructor(c *ast.RecordConstructor, instance ast.TypeInstance, owner *ast.Type) *ast.RecordConstructor {
	fields := make([]ast.RecordField, 0, len(c.Fields))
	for _, f := range c.Fields {
		fields = append(fields, ast.RecordField{Label: f.Label, Type: substituteParam(f.Type, instance.Params)})
	}
	newCons := &ast.RecordConstructor{
		NameToken: c.NameToken,
		Owner:     owner,
		Fields:    fields,
	}
	newCons.NameToken.Lexeme = mangle.RecordConstructor(newCons)
	return newCons
}
