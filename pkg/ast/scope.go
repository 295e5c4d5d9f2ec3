package ast

import (
	"github.com/avalon-lang/semantic/pkg/diagnostics"
	"github.com/avalon-lang/semantic/pkg/token"
)

// DeclKind distinguishes the four disjoint name spaces a bare name can
// occupy within one namespace: at most one of type, function-overload
// set, variable, or namespace. Constructors deliberately do not
// participate in this index — they live in the orthogonal
// ConstructorTable and may share a name with their own owning type
// (e.g. the constructor `Box` of the type `Box`).
type DeclKind int

const (
	DeclNone DeclKind = iota
	DeclType
	DeclFunction
	DeclVariable
)

type declNamespace struct {
	types     map[CtorKey]*Type
	functions map[CtorKey][]*Function
	variables map[string]*Variable
	kindOf    map[string]DeclKind
}

func newDeclNamespace() *declNamespace {
	return &declNamespace{
		types:     make(map[CtorKey]*Type),
		functions: make(map[CtorKey][]*Function),
		variables: make(map[string]*Variable),
		kindOf:    make(map[string]DeclKind),
	}
}

func (n *declNamespace) hasTypeNamed(name string) bool {
	for k := range n.types {
		if k.Name == name {
			return true
		}
	}
	return false
}

// DeclarationTable is the per-namespace index of types, functions and
// variables for one Scope.
type DeclarationTable struct {
	namespaces map[string]*declNamespace
}

func newDeclarationTable() *DeclarationTable {
	return &DeclarationTable{namespaces: make(map[string]*declNamespace)}
}

func (d *DeclarationTable) ns(name string) *declNamespace {
	n, ok := d.namespaces[name]
	if !ok {
		n = newDeclNamespace()
		d.namespaces[name] = n
	}
	return n
}

type ctorNamespace struct {
	defaults map[CtorKey]*DefaultConstructor
	records  map[CtorKey]*RecordConstructor
	names    map[string]bool // bare-name membership, irrespective of arity or kind
}

func newCtorNamespace() *ctorNamespace {
	return &ctorNamespace{
		defaults: make(map[CtorKey]*DefaultConstructor),
		records:  make(map[CtorKey]*RecordConstructor),
		names:    make(map[string]bool),
	}
}

// ConstructorTable is the per-namespace index of default and record
// constructors for one Scope. Default and record constructors occupy
// separate (name, arity) keyspaces.
type ConstructorTable struct {
	namespaces map[string]*ctorNamespace
}

func newConstructorTable() *ConstructorTable {
	return &ConstructorTable{namespaces: make(map[string]*ctorNamespace)}
}

func (c *ConstructorTable) ns(name string) *ctorNamespace {
	n, ok := c.namespaces[name]
	if !ok {
		n = newCtorNamespace()
		c.namespaces[name] = n
	}
	return n
}

// Scope is a node in the lexical scope tree. Lookups (get/exists) walk
// up to the parent on miss; insertions never do — they apply only to
// the scope they were called on.
type Scope struct {
	Parent     *Scope
	StartLine  int
	EndLine    int
	Origin     string
	Namespaces map[string]bool

	Decls *DeclarationTable
	Ctors *ConstructorTable
}

// NewScope creates a scope chained to parent (nil for a root/program
// scope) with the given origin label (used for diagnostics/tracing).
func NewScope(parent *Scope, origin string) *Scope {
	return &Scope{
		Parent:     parent,
		Origin:     origin,
		Namespaces: make(map[string]bool),
		Decls:      newDeclarationTable(),
		Ctors:      newConstructorTable(),
	}
}

// AddNamespace registers name as a namespace recognized by this scope.
func (s *Scope) AddNamespace(name string) {
	s.Namespaces[name] = true
}

// HasNamespace reports whether name is recognized by this scope or any
// of its ancestors.
func (s *Scope) HasNamespace(name string) bool {
	if s.Namespaces[name] {
		return true
	}
	if s.Parent != nil {
		return s.Parent.HasNamespace(name)
	}
	return false
}

// --- insertion ---

// InsertType adds decl under namespace ns. It fails if the namespace
// already contains a type with the identical (name, arity), or if a
// variable of that name already exists there. On success every
// constructor already attached to decl is cascaded into the
// constructor table.
func (s *Scope) InsertType(ns string, decl *Type) error {
	n := s.Decls.ns(ns)
	key := CtorKey{Name: decl.Name, Arity: decl.Arity()}

	if _, exists := n.types[key]; exists {
		return diagnostics.SymbolAlreadyDeclared(decl.Token, "type %s/%d already declared in namespace %q", decl.Name, decl.Arity(), ns)
	}
	if _, exists := n.variables[decl.Name]; exists {
		return diagnostics.SymbolAlreadyDeclared(decl.Token, "%s already declared as a variable in namespace %q", decl.Name, ns)
	}

	n.types[key] = decl
	n.kindOf[decl.Name] = DeclType

	for _, c := range decl.DefaultConstructors {
		if err := s.InsertDefaultConstructor(ns, c); err != nil {
			return err
		}
	}
	for _, c := range decl.RecordConstructors {
		if err := s.InsertRecordConstructor(ns, c); err != nil {
			return err
		}
	}
	return nil
}

// InsertDefaultConstructor adds c under namespace ns. It fails if the
// name coincides with any namespace, function, or variable visible in
// ns (but never with a type: a constructor may share its owning
// type's name).
func (s *Scope) InsertDefaultConstructor(ns string, c *DefaultConstructor) error {
	if err := s.checkConstructorName(ns, c.NameToken); err != nil {
		return err
	}
	table := s.Ctors.ns(ns)
	key := CtorKey{Name: c.Name(), Arity: c.Arity()}
	if _, exists := table.defaults[key]; exists {
		return diagnostics.SymbolAlreadyDeclared(c.NameToken, "default constructor %s/%d already declared in namespace %q", c.Name(), c.Arity(), ns)
	}
	table.defaults[key] = c
	table.names[c.Name()] = true
	return nil
}

// InsertRecordConstructor adds c under namespace ns, subject to the
// same collision rules as InsertDefaultConstructor.
func (s *Scope) InsertRecordConstructor(ns string, c *RecordConstructor) error {
	if err := s.checkConstructorName(ns, c.NameToken); err != nil {
		return err
	}
	table := s.Ctors.ns(ns)
	key := CtorKey{Name: c.Name(), Arity: c.Arity()}
	if _, exists := table.records[key]; exists {
		return diagnostics.SymbolAlreadyDeclared(c.NameToken, "record constructor %s/%d already declared in namespace %q", c.Name(), c.Arity(), ns)
	}
	table.records[key] = c
	table.names[c.Name()] = true
	return nil
}

func (s *Scope) checkConstructorName(ns string, tok token.Token) error {
	name := tok.Lexeme
	if s.HasNamespace(name) {
		return diagnostics.SymbolCanCollide(tok, "%s coincides with a namespace name", name)
	}
	n := s.Decls.ns(ns)
	switch n.kindOf[name] {
	case DeclFunction:
		return diagnostics.SymbolCanCollide(tok, "%s coincides with a function declared in namespace %q", name, ns)
	case DeclVariable:
		return diagnostics.SymbolCanCollide(tok, "%s coincides with a variable declared in namespace %q", name, ns)
	}
	return nil
}

// InsertFunction adds fn under namespace ns. It fails if the name
// coincides with a type, variable, namespace, or constructor in ns.
// An overload is added only if it does not CollidesWith any existing
// overload sharing (name, arity).
func (s *Scope) InsertFunction(ns string, fn *Function) error {
	if s.HasNamespace(fn.Name) {
		return diagnostics.SymbolCanCollide(fn.Token, "%s coincides with a namespace name", fn.Name)
	}
	n := s.Decls.ns(ns)
	if n.hasTypeNamed(fn.Name) {
		return diagnostics.SymbolCanCollide(fn.Token, "%s coincides with a type declared in namespace %q", fn.Name, ns)
	}
	if n.kindOf[fn.Name] == DeclVariable {
		return diagnostics.SymbolCanCollide(fn.Token, "%s coincides with a variable declared in namespace %q", fn.Name, ns)
	}
	if s.Ctors.ns(ns).names[fn.Name] {
		return diagnostics.SymbolCanCollide(fn.Token, "%s coincides with a constructor declared in namespace %q", fn.Name, ns)
	}

	key := CtorKey{Name: fn.Name, Arity: fn.Arity()}
	for _, existing := range n.functions[key] {
		if existing.CollidesWith(fn) {
			return diagnostics.SymbolCanCollide(fn.Token, "%s/%d collides with a previous overload", fn.Name, fn.Arity())
		}
	}
	n.functions[key] = append(n.functions[key], fn)
	n.kindOf[fn.Name] = DeclFunction
	return nil
}

// InsertVariable adds v under namespace ns. It fails on collision with
// any other declaration kind (type, function, namespace, constructor)
// in ns, and succeeds only once per name within this scope.
func (s *Scope) InsertVariable(ns string, v *Variable) error {
	if s.HasNamespace(v.Name) {
		return diagnostics.SymbolAlreadyDeclared(v.Token, "%s coincides with a namespace name", v.Name)
	}
	n := s.Decls.ns(ns)
	if n.hasTypeNamed(v.Name) {
		return diagnostics.SymbolAlreadyDeclared(v.Token, "%s coincides with a type declared in namespace %q", v.Name, ns)
	}
	if n.kindOf[v.Name] == DeclFunction {
		return diagnostics.SymbolAlreadyDeclared(v.Token, "%s coincides with a function declared in namespace %q", v.Name, ns)
	}
	if s.Ctors.ns(ns).names[v.Name] {
		return diagnostics.SymbolAlreadyDeclared(v.Token, "%s coincides with a constructor declared in namespace %q", v.Name, ns)
	}
	if _, exists := n.variables[v.Name]; exists {
		return diagnostics.SymbolAlreadyDeclared(v.Token, "%s already declared in namespace %q", v.Name, ns)
	}
	n.variables[v.Name] = v
	n.kindOf[v.Name] = DeclVariable
	return nil
}

// --- lookup ---

// TypeExists reports whether namespace ns (searching up to the
// parent on miss) contains a type with the exact (name, arity).
func (s *Scope) TypeExists(ns, name string, arity int) bool {
	_, ok := s.GetType(ns, name, arity)
	return ok
}

// GetType looks up a type by (name, arity) in namespace ns, falling
// back to the parent scope.
func (s *Scope) GetType(ns, name string, arity int) (*Type, bool) {
	if n, ok := s.Decls.namespaces[ns]; ok {
		if t, ok := n.types[CtorKey{Name: name, Arity: arity}]; ok {
			return t, true
		}
	}
	if s.Parent != nil {
		return s.Parent.GetType(ns, name, arity)
	}
	return nil, false
}

// TypeExistsAnyNamespace reports whether any namespace visible from
// this scope (searching the whole parent chain) contains a type with
// the exact (name, arity). Used to prevent a type-parameter name from
// shadowing an already-visible concrete type.
func (s *Scope) TypeExistsAnyNamespace(name string, arity int) bool {
	key := CtorKey{Name: name, Arity: arity}
	for cur := s; cur != nil; cur = cur.Parent {
		for _, n := range cur.Decls.namespaces {
			if _, ok := n.types[key]; ok {
				return true
			}
		}
	}
	return false
}

// FunctionExists reports whether namespace ns contains at least one
// overload with the exact (name, arity).
func (s *Scope) FunctionExists(ns, name string, arity int) bool {
	_, ok := s.GetFunctions(ns, name, arity)
	return ok
}

// GetFunctions returns every overload sharing (name, arity) in
// namespace ns, falling back to the parent scope.
func (s *Scope) GetFunctions(ns, name string, arity int) ([]*Function, bool) {
	if n, ok := s.Decls.namespaces[ns]; ok {
		if fns, ok := n.functions[CtorKey{Name: name, Arity: arity}]; ok && len(fns) > 0 {
			return fns, true
		}
	}
	if s.Parent != nil {
		return s.Parent.GetFunctions(ns, name, arity)
	}
	return nil, false
}

// VariableExists reports whether namespace ns contains a variable
// named name, falling back to the parent scope.
func (s *Scope) VariableExists(ns, name string) bool {
	_, ok := s.GetVariable(ns, name)
	return ok
}

// GetVariable looks up a variable by name in namespace ns, falling
// back to the parent scope.
func (s *Scope) GetVariable(ns, name string) (*Variable, bool) {
	if n, ok := s.Decls.namespaces[ns]; ok {
		if v, ok := n.variables[name]; ok {
			return v, true
		}
	}
	if s.Parent != nil {
		return s.Parent.GetVariable(ns, name)
	}
	return nil, false
}

// DefaultConstructorExists reports whether namespace ns contains a
// default constructor with the exact (name, arity).
func (s *Scope) DefaultConstructorExists(ns, name string, arity int) bool {
	_, ok := s.GetDefaultConstructor(ns, name, arity)
	return ok
}

// GetDefaultConstructor looks up a default constructor by (name,
// arity) in namespace ns, falling back to the parent scope.
func (s *Scope) GetDefaultConstructor(ns, name string, arity int) (*DefaultConstructor, bool) {
	if n, ok := s.Ctors.namespaces[ns]; ok {
		if c, ok := n.defaults[CtorKey{Name: name, Arity: arity}]; ok {
			return c, true
		}
	}
	if s.Parent != nil {
		return s.Parent.GetDefaultConstructor(ns, name, arity)
	}
	return nil, false
}

// RecordConstructorExists reports whether namespace ns contains a
// record constructor with the exact (name, arity).
func (s *Scope) RecordConstructorExists(ns, name string, arity int) bool {
	_, ok := s.GetRecordConstructor(ns, name, arity)
	return ok
}

// GetRecordConstructor looks up a record constructor by (name, arity)
// in namespace ns, falling back to the parent scope.
func (s *Scope) GetRecordConstructor(ns, name string, arity int) (*RecordConstructor, bool) {
	if n, ok := s.Ctors.namespaces[ns]; ok {
		if c, ok := n.records[CtorKey{Name: name, Arity: arity}]; ok {
			return c, true
		}
	}
	if s.Parent != nil {
		return s.Parent.GetRecordConstructor(ns, name, arity)
	}
	return nil, false
}
