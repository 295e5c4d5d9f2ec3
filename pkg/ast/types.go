// Package ast is the in-memory program representation the semantic
// front-end checks and specializes: type declarations, type
// instances, constructors, variables, functions, namespaces and
// programs, plus the scope tree that indexes them.
package ast

import (
	"github.com/avalon-lang/semantic/pkg/token"
)

// ValidationState tracks how far a type declaration has progressed
// through the checker. Transitions are monotone: Unknown ->
// Validating -> (Valid | Invalid). Validating is a transient guard
// observable by recursive entry, used to detect cycles through
// mutually recursive constructors.
type ValidationState int

const (
	Unknown ValidationState = iota
	Validating
	Valid
	Invalid
)

func (s ValidationState) String() string {
	switch s {
	case Validating:
		return "validating"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Category distinguishes the built-in shapes a TypeInstance may take
// from an ordinary user-defined type.
type Category int

const (
	CategoryUser Category = iota
	CategoryTuple
	CategoryList
	CategoryMap
)

func (c Category) String() string {
	switch c {
	case CategoryTuple:
		return "tuple"
	case CategoryList:
		return "list"
	case CategoryMap:
		return "map"
	default:
		return "user"
	}
}

// CtorKey is the (name, arity) pair used as a map key for both types
// and constructors, kept as an explicit struct rather than a hashed
// signature so collision diagnostics can name the exact arity at fault.
type CtorKey struct {
	Name  string
	Arity int
}

// Star is the wildcard type instance: it matches any type and is used
// as a placeholder. It is a single shared value; NewStar returns a
// copy rather than allocating a fresh stand-in per call site.
var Star = TypeInstance{Name: "*", IsStar: true}

// NewStar returns a copy of the shared star instance.
func NewStar() TypeInstance {
	return Star
}

// TypeInstance is the use-site occurrence of a type: either a stand-in
// (abstract, Type == nil) or a concrete binding to a Type plus
// concrete parameters. It is a value type: copied freely on
// assignment, compared structurally.
type TypeInstance struct {
	Name      string
	Token     token.Token
	OldToken  *token.Token // the formal parameter token this was substituted for, once known
	Tag       string       // disambiguating nominal marker, e.g. for named tuples
	Category  Category
	Namespace string // may be "*" meaning "search current then global"

	Type *Type // owning/builder type; nil means abstract (a stand-in)

	Params []TypeInstance // ordered nested parameter instances

	IsParametrized bool // transitively depends on a stand-in
	IsReference    bool // single-parameter pseudo-type representing indirection
	IsStar         bool // the wildcard placeholder

	HasCount bool
	Count    int
}

// Abstract reports whether this instance is a stand-in: a parameter
// name rather than a constructed type.
func (ti TypeInstance) Abstract() bool {
	return !ti.IsStar && ti.Type == nil
}

// Complete reports whether this instance is neither abstract nor
// parametrized: every nested parameter is itself complete, or (for a
// reference) its payload is complete.
func (ti TypeInstance) Complete() bool {
	if ti.IsStar {
		return false
	}
	if ti.IsReference {
		if len(ti.Params) != 1 {
			return false
		}
		return ti.Params[0].Complete()
	}
	if ti.Abstract() || ti.IsParametrized {
		return false
	}
	for _, p := range ti.Params {
		if !p.Complete() {
			return false
		}
	}
	return true
}

// Payload returns the single nested instance a reference wraps. It
// panics if called on a non-reference instance; callers must check
// IsReference first.
func (ti TypeInstance) Payload() TypeInstance {
	return ti.Params[0]
}

// NewReference wraps payload as a single-parameter indirection
// instance.
func NewReference(payload TypeInstance) TypeInstance {
	return TypeInstance{
		Name:        "ref",
		Category:    CategoryUser,
		IsReference: true,
		Params:      []TypeInstance{payload},
	}
}

// Type is a named declaration with zero or more formal type
// parameters and a set of constructors. Parameter tokens within one
// Type are pairwise distinct (enforced by the type checker, not here).
type Type struct {
	Name      string
	Token     token.Token
	FQN       token.FQN
	Namespace string

	// Category is CategoryUser for every user-declared type. The
	// type-instance checker synthesizes a Type with Category
	// Tuple/List/Map for each TUPLE/LIST/MAP instance it encounters so
	// downstream code can treat every instance's builder uniformly.
	Category Category

	Params []token.Token // ordered formal type-parameter tokens

	DefaultConstructors map[CtorKey]*DefaultConstructor
	RecordConstructors  map[CtorKey]*RecordConstructor

	State  ValidationState
	Public bool
	Used   bool

	Specializations map[string]*Type // keyed by mangled name

	// BuilderInstance is set only on a specialization: the complete
	// type instance that generated this concrete type.
	BuilderInstance *TypeInstance
}

// NewType creates an empty, Unknown-state type declaration ready for
// constructors to be attached.
func NewType(name string, tok token.Token, fqn token.FQN, namespace string, params []token.Token) *Type {
	return &Type{
		Name:                name,
		Token:               tok,
		FQN:                 fqn,
		Namespace:           namespace,
		Params:              params,
		DefaultConstructors: make(map[CtorKey]*DefaultConstructor),
		RecordConstructors:  make(map[CtorKey]*RecordConstructor),
		Specializations:     make(map[string]*Type),
	}
}

// Specialization reports whether this Type was generated by the
// specialization engine: its builder instance is set and its name
// equals that instance's mangled form.
func (t *Type) Specialization() bool {
	return t.BuilderInstance != nil
}

// Parametric reports whether this type declares at least one formal
// type parameter.
func (t *Type) Parametric() bool {
	return len(t.Params) > 0
}

// Arity is the number of formal type parameters.
func (t *Type) Arity() int {
	return len(t.Params)
}

// AddDefaultConstructor attaches c, keyed by (name, arity), overwriting
// any previous entry at that key. Callers (the scope/type checker) are
// responsible for rejecting duplicate keys before calling this.
func (t *Type) AddDefaultConstructor(c *DefaultConstructor) {
	t.DefaultConstructors[CtorKey{Name: c.Name(), Arity: c.Arity()}] = c
}

// AddRecordConstructor attaches c, keyed by (name, arity).
func (t *Type) AddRecordConstructor(c *RecordConstructor) {
	t.RecordConstructors[CtorKey{Name: c.Name(), Arity: c.Arity()}] = c
}

// AllConstructorKeys returns every (name, arity) key across both
// constructor maps, in map iteration order (pkg/render sorts them
// before printing).
func (t *Type) AllConstructorKeys() []CtorKey {
	keys := make([]CtorKey, 0, len(t.DefaultConstructors)+len(t.RecordConstructors))
	for k := range t.DefaultConstructors {
		keys = append(keys, k)
	}
	for k := range t.RecordConstructors {
		keys = append(keys, k)
	}
	return keys
}

// DefaultConstructor is a constructor whose fields are positional.
type DefaultConstructor struct {
	NameToken      token.Token
	Owner          *Type
	Params         []TypeInstance
	IsParametrized bool
}

func (c *DefaultConstructor) Name() string { return c.NameToken.Lexeme }
func (c *DefaultConstructor) Arity() int   { return len(c.Params) }

// RecordConstructor is a constructor whose fields are labeled and
// insertion-ordered.
type RecordConstructor struct {
	NameToken      token.Token
	Owner          *Type
	Fields         []RecordField
	IsParametrized bool
}

// RecordField is one labeled field of a record constructor, held in
// declaration order.
type RecordField struct {
	Label token.Token
	Type  TypeInstance
}

func (c *RecordConstructor) Name() string { return c.NameToken.Lexeme }
func (c *RecordConstructor) Arity() int   { return len(c.Fields) }

// Params returns the vector view of the record constructor's field
// types, in declaration order, mirroring DefaultConstructor.Params.
func (c *RecordConstructor) Params() []TypeInstance {
	out := make([]TypeInstance, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Type
	}
	return out
}

// FieldIndex returns the position of label within the record, or -1.
func (c *RecordConstructor) FieldIndex(label string) int {
	for i, f := range c.Fields {
		if f.Label.Lexeme == label {
			return i
		}
	}
	return -1
}

// IsBuiltBy reports whether t is the type currently being validated —
// the self-recursion escape hatch a constructor parameter uses to
// refer back to its own owning type (e.g. Node(Tree(a), Tree(a))
// inside the declaration of Tree).
func (ti TypeInstance) IsBuiltBy(t *Type) bool {
	return ti.Category == CategoryUser && ti.Type == nil && t != nil && ti.Name == t.Name && len(ti.Params) == t.Arity()
}

