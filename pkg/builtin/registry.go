// Package builtin constructs the fixed set of built-in primitive
// programs: for each primitive, an FQN, one outer namespace, one type
// declaration, and the fixed set of operator function declarations the
// checker and (eventually) the evaluator dispatch against by old_name.
// No function carries a body: dispatch happens downstream of this
// module.
package builtin

import (
	"fmt"

	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/builtin/native"
	"github.com/avalon-lang/semantic/pkg/builtin/schema"
	"github.com/avalon-lang/semantic/pkg/resolver"
	"github.com/avalon-lang/semantic/pkg/token"
)

// Registry holds every constructed built-in program, keyed by its bare
// primitive name ("int", "bool", ...).
type Registry struct {
	Programs map[string]*ast.Program
}

// Build constructs the full built-in registry: the schema-driven,
// self-typed operator families (bool, int, float, string, gate, the
// bit/qubit family) plus the four primitives whose function sets are
// not operator-family shaped (maybe, void, trig, io), built directly.
func Build() (*Registry, error) {
	reg := &Registry{Programs: make(map[string]*ast.Program)}

	shapes, err := schema.Load()
	if err != nil {
		return nil, fmt.Errorf("builtin: %w", err)
	}
	for _, shape := range shapes {
		prog, err := buildOperatorProgram(shape)
		if err != nil {
			return nil, fmt.Errorf("builtin: building %s: %w", shape.Name, err)
		}
		reg.Programs[shape.Name] = prog
	}

	for name, build := range map[string]func() (*ast.Program, error){
		"maybe": buildMaybeProgram,
		"void":  buildVoidProgram,
		"trig":  buildTrigProgram,
		"io":    buildIOProgram,
	} {
		prog, err := build()
		if err != nil {
			return nil, fmt.Errorf("builtin: building %s: %w", name, err)
		}
		reg.Programs[name] = prog
	}

	return reg, nil
}

// LoadNative optionally augments the registry with additional built-in
// programs contributed by a native shared-library plugin. A blank path
// is a no-op: native builtins are off by default. Loaded programs are
// built via the same self-typed operator-family construction as the
// schema-driven builtins and stored in Programs by name. A loaded
// program whose name is in resolver.BuiltinSeedOrder replaces the
// in-tree one; All returns only seed-order names, so a program under
// any other name is not passed to the resolver.
func (r *Registry) LoadNative(path string) error {
	if path == "" {
		return nil
	}
	plugin, err := native.Load(path)
	if err != nil {
		return fmt.Errorf("builtin: %w", err)
	}
	shapes, err := plugin.Describe()
	if err != nil {
		return fmt.Errorf("builtin: %w", err)
	}
	for _, shape := range shapes {
		prog, err := buildOperatorProgram(shape)
		if err != nil {
			return fmt.Errorf("builtin: building native %s: %w", shape.Name, err)
		}
		r.Programs[shape.Name] = prog
	}
	return nil
}

// All returns every built-in program in resolver.BuiltinSeedOrder,
// ready to be passed as resolver.Resolve's builtins argument.
func (r *Registry) All() []*ast.Program {
	out := make([]*ast.Program, 0, len(resolver.BuiltinSeedOrder))
	for _, name := range resolver.BuiltinSeedOrder {
		if prog, ok := r.Programs[name]; ok {
			out = append(out, prog)
		}
	}
	return out
}

func instanceOf(name string) ast.TypeInstance {
	return ast.TypeInstance{Name: name, Token: token.New(token.KindTypeName, name, 0, 0, "")}
}

func newBuiltinProgram(name string) (*ast.Program, *ast.Type, error) {
	fqn := resolver.BuiltinFQN(name)
	prog := ast.NewProgram(fqn, true)

	tok := token.New(token.KindTypeName, name, 0, 0, "")
	self := ast.NewType(name, tok, fqn, "global", nil)
	self.State = ast.Valid
	self.Public = true
	if err := prog.AddType("global", self); err != nil {
		return nil, nil, err
	}
	return prog, self, nil
}

func addFunction(prog *ast.Program, fqn token.FQN, name string, params []ast.TypeInstance, ret ast.TypeInstance) error {
	fn := &ast.Function{
		Name:      name,
		Token:     token.New(token.KindIdentifier, name, 0, 0, ""),
		FQN:       fqn,
		Namespace: "global",
		Public:    true,
		Return:    ret,
	}
	for i, p := range params {
		fn.Params = append(fn.Params, ast.Parameter{
			Name:     token.New(token.KindIdentifier, fmt.Sprintf("arg%d", i), 0, 0, ""),
			Declared: p,
		})
	}
	return prog.AddFunction("global", fn)
}

// buildOperatorProgram builds one self-typed built-in primitive's
// program from its compiled OperatorShape: every operator takes and/or
// returns instances of the type itself, except comparators (-> bool),
// string/float/int casts (-> the named target type), measure (-> bit),
// and the subscript helper of the sized bit/qubit types, which takes an
// int index and returns the primitive itself, not a separate element
// type.
func buildOperatorProgram(shape schema.OperatorShape) (*ast.Program, error) {
	prog, self, err := newBuiltinProgram(shape.Name)
	if err != nil {
		return nil, err
	}
	fqn := self.FQN
	selfI := func() ast.TypeInstance { return instanceOf(shape.Name) }

	for _, name := range shape.Unary {
		if err := addFunction(prog, fqn, name, []ast.TypeInstance{selfI()}, selfI()); err != nil {
			return nil, err
		}
	}
	for _, name := range shape.Binary {
		if err := addFunction(prog, fqn, name, []ast.TypeInstance{selfI(), selfI()}, selfI()); err != nil {
			return nil, err
		}
	}
	for _, name := range shape.Comparison {
		if err := addFunction(prog, fqn, name, []ast.TypeInstance{selfI(), selfI()}, instanceOf("bool")); err != nil {
			return nil, err
		}
	}
	for _, name := range shape.Bitwise {
		arity := 2
		if name == "__bnot__" {
			arity = 1
		}
		params := []ast.TypeInstance{selfI()}
		if arity == 2 {
			params = append(params, selfI())
		}
		if err := addFunction(prog, fqn, name, params, selfI()); err != nil {
			return nil, err
		}
	}
	for _, name := range shape.Casts {
		ret := selfI()
		switch name {
		case "string":
			ret = instanceOf("string")
		case "float":
			ret = instanceOf("float")
		case "int":
			ret = instanceOf("int")
		}
		if err := addFunction(prog, fqn, name, []ast.TypeInstance{selfI()}, ret); err != nil {
			return nil, err
		}
	}
	for _, name := range shape.Quantum {
		switch name {
		case "measure":
			if err := addFunction(prog, fqn, name, []ast.TypeInstance{selfI()}, instanceOf("bit")); err != nil {
				return nil, err
			}
		default: // apply
			if err := addFunction(prog, fqn, name, []ast.TypeInstance{selfI(), instanceOf("gate")}, selfI()); err != nil {
				return nil, err
			}
		}
	}
	for _, name := range shape.Subscript {
		if err := addFunction(prog, fqn, name, []ast.TypeInstance{selfI(), instanceOf("int")}, selfI()); err != nil {
			return nil, err
		}
	}

	return prog, nil
}

// buildMaybeProgram builds the single-parameter option type: Just(a) |
// Nothing, with no operator set of its own (equality over a maybe
// would need to recurse into the payload's own equality, which the
// evaluator — not this registry — is responsible for).
func buildMaybeProgram() (*ast.Program, error) {
	fqn := resolver.BuiltinFQN("maybe")
	prog := ast.NewProgram(fqn, true)

	aTok := token.New(token.KindIdentifier, "a", 0, 0, "")
	self := ast.NewType("maybe", token.New(token.KindTypeName, "maybe", 0, 0, ""), fqn, "global", []token.Token{aTok})
	self.State = ast.Valid
	self.Public = true

	payload := ast.TypeInstance{Name: "a", Token: aTok, OldToken: &aTok}
	self.AddDefaultConstructor(&ast.DefaultConstructor{
		NameToken: token.New(token.KindIdentifier, "Just", 0, 0, ""),
		Owner:     self,
		Params:    []ast.TypeInstance{payload},
	})
	self.AddDefaultConstructor(&ast.DefaultConstructor{
		NameToken: token.New(token.KindIdentifier, "Nothing", 0, 0, ""),
		Owner:     self,
		Params:    nil,
	})

	if err := prog.AddType("global", self); err != nil {
		return nil, err
	}
	return prog, nil
}

// buildVoidProgram builds the unit type: one nullary constructor,
// no operators.
func buildVoidProgram() (*ast.Program, error) {
	prog, self, err := newBuiltinProgram("void")
	if err != nil {
		return nil, err
	}
	self.AddDefaultConstructor(&ast.DefaultConstructor{
		NameToken: token.New(token.KindIdentifier, "void", 0, 0, ""),
		Owner:     self,
	})
	return prog, nil
}

// buildTrigProgram builds the trigonometric function module: free
// functions over float, not methods of a self-type, so it sits outside
// the operator-shape schema entirely.
func buildTrigProgram() (*ast.Program, error) {
	fqn := resolver.BuiltinFQN("trig")
	prog := ast.NewProgram(fqn, true)
	floatI := func() ast.TypeInstance { return instanceOf("float") }

	for _, name := range []string{"sin", "cos", "tan", "asin", "acos", "atan"} {
		if err := addFunction(prog, fqn, name, []ast.TypeInstance{floatI()}, floatI()); err != nil {
			return nil, err
		}
	}
	if err := addFunction(prog, fqn, "atan2", []ast.TypeInstance{floatI(), floatI()}, floatI()); err != nil {
		return nil, err
	}
	return prog, nil
}

// buildIOProgram builds the I/O module: print/read free functions, the
// only place in the built-in registry that touches string and void
// together.
func buildIOProgram() (*ast.Program, error) {
	fqn := resolver.BuiltinFQN("io")
	prog := ast.NewProgram(fqn, true)

	if err := addFunction(prog, fqn, "print", []ast.TypeInstance{instanceOf("string")}, instanceOf("void")); err != nil {
		return nil, err
	}
	if err := addFunction(prog, fqn, "read", nil, instanceOf("string")); err != nil {
		return nil, err
	}
	return prog, nil
}
