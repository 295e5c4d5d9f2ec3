package ast

import "github.com/avalon-lang/semantic/pkg/token"

// Variable is a named, possibly mutable binding: a local, a
// parameter, an instance/global variable, or a record field binding.
type Variable struct {
	Name     string
	Token    token.Token
	Mutable  bool
	FQN      token.FQN
	Namespace string
	Parent   *Scope

	Declared    TypeInstance
	Initializer Expression

	State ValidationState

	Public    bool
	Global    bool
	Used      bool
	Reference bool
	Temporary bool

	Reachable bool
	Terminates bool
}

// Parameter binds a function's formal parameter name to its declared
// type instance.
type Parameter struct {
	Name     token.Token
	Declared TypeInstance
}

// Function is a named, possibly type-parametric callable. Overload
// sets share (Name, len(Params)) and are disambiguated by
// CollidesWith/Weight rather than by a mangled signature hash.
type Function struct {
	Name      string
	Token     token.Token
	FQN       token.FQN
	Namespace string
	Parent    *Scope

	TypeParams []token.Token
	Params     []Parameter
	Return     TypeInstance
	Body       []Statement

	Public bool
	Used   bool
}

func (f *Function) Arity() int { return len(f.Params) }

// Statement is any node appearing in a function body. The core
// validates and specializes declarations; it does not evaluate
// statements, so this interface exists only to let Function.Body hold
// a typed node without importing a downstream evaluator package.
type Statement interface {
	astStmt()
}

// Expression is any node appearing where a value is expected
// (initializers, statement expressions, call arguments).
type Expression interface {
	astExpr()
}

// Import is a single import declaration naming another module's FQN,
// optionally restricted to a subset of names (nil means "all public
// declarations").
type Import struct {
	Token token.Token
	FQN   token.FQN
	Names []string
}

// Namespace aggregates the declarations introduced under one
// namespace name within a program: types, functions, variables, and
// nested imports.
type Namespace struct {
	Name      string
	Types     []*Type
	Functions []*Function
	Variables []*Variable
	Imports   []*Import
}

// Program aggregates one compilation unit: its FQN, populated scope,
// top-level declarations in source order, and whether it is one of
// the built-in modules synthesized by the registry rather than parsed
// from user source.
type Program struct {
	FQN       token.FQN
	Scope     *Scope
	Namespaces map[string]*Namespace
	IsBuiltin bool

	// Imports lists this program's own explicit import declarations,
	// in source order, as found by generate_deps.
	Imports []*Import
}

// NewProgram creates an empty program rooted at a fresh top-level
// scope.
func NewProgram(fqn token.FQN, isBuiltin bool) *Program {
	return &Program{
		FQN:        fqn,
		Scope:      NewScope(nil, fqn.String()),
		Namespaces: make(map[string]*Namespace),
		IsBuiltin:  isBuiltin,
	}
}

// Namespace returns (creating if necessary) the named aggregate
// namespace bucket for this program.
func (p *Program) Namespace(name string) *Namespace {
	ns, ok := p.Namespaces[name]
	if !ok {
		ns = &Namespace{Name: name}
		p.Namespaces[name] = ns
	}
	return ns
}

// AddType records decl under both the program's namespace aggregate
// and its scope's declaration table.
func (p *Program) AddType(nsName string, decl *Type) error {
	p.Namespace(nsName).Types = append(p.Namespace(nsName).Types, decl)
	return p.Scope.InsertType(nsName, decl)
}

// AddFunction records decl under both the program's namespace
// aggregate and its scope's declaration table.
func (p *Program) AddFunction(nsName string, decl *Function) error {
	if err := p.Scope.InsertFunction(nsName, decl); err != nil {
		return err
	}
	p.Namespace(nsName).Functions = append(p.Namespace(nsName).Functions, decl)
	return nil
}

// AddVariable records decl under both the program's namespace
// aggregate and its scope's declaration table.
func (p *Program) AddVariable(nsName string, decl *Variable) error {
	if err := p.Scope.InsertVariable(nsName, decl); err != nil {
		return err
	}
	p.Namespace(nsName).Variables = append(p.Namespace(nsName).Variables, decl)
	return nil
}
