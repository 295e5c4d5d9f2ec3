// Package mangle converts types, type instances, and constructors to
// their deterministic string form: the stable key used as map key
// throughout the scope and specialization caches. Mangling is purely
// structural — it never inspects a type's validation state and never
// allocates identifiers — so the same input always produces the same
// output, in this run or any other.
package mangle

import (
	"strconv"
	"strings"

	"github.com/avalon-lang/semantic/pkg/ast"
)

// Instance mangles a type instance per the category-dependent shape:
// a reference is `ref'<payload>`, the star instance is a bare `*`, an
// abstract instance is `Name*`, and a concrete instance is shaped by
// its category (USER: `Name` or `Name(p1,p2,…)`; TUPLE: `(p1,p2,…)`;
// LIST: `[p]`; MAP: `{k:v}`).
func Instance(ti ast.TypeInstance) string {
	var b strings.Builder
	writeInstance(&b, ti)
	return b.String()
}

func writeInstance(b *strings.Builder, ti ast.TypeInstance) {
	if ti.IsStar {
		b.WriteByte('*')
		return
	}
	if ti.IsReference {
		b.WriteString("ref'")
		writeInstance(b, ti.Payload())
		return
	}
	if ti.Abstract() {
		b.WriteString(ti.Name)
		b.WriteByte('*')
		return
	}

	switch ti.Category {
	case ast.CategoryTuple:
		b.WriteByte('(')
		writeParamList(b, ti.Params, ",")
		b.WriteByte(')')
	case ast.CategoryList:
		b.WriteByte('[')
		if len(ti.Params) > 0 {
			writeInstance(b, ti.Params[0])
		}
		b.WriteByte(']')
	case ast.CategoryMap:
		b.WriteByte('{')
		if len(ti.Params) >= 2 {
			writeInstance(b, ti.Params[0])
			b.WriteByte(':')
			writeInstance(b, ti.Params[1])
		}
		b.WriteByte('}')
	default: // CategoryUser
		b.WriteString(ti.Name)
		if len(ti.Params) > 0 {
			b.WriteByte('(')
			writeParamList(b, ti.Params, ",")
			b.WriteByte(')')
		}
	}
}

func writeParamList(b *strings.Builder, params []ast.TypeInstance, sep string) {
	for i, p := range params {
		if i > 0 {
			b.WriteString(sep)
		}
		writeInstance(b, p)
	}
}

// TypeDecl mangles a type declaration: `Name(param1,param2,…)` for a
// user type, or the bracket form with the name omitted for a
// synthesized tuple/list/map builder.
func TypeDecl(t *ast.Type) string {
	names := make([]string, len(t.Params))
	for i, p := range t.Params {
		names[i] = p.Lexeme
	}
	joined := strings.Join(names, ",")

	switch t.Category {
	case ast.CategoryTuple:
		return "(" + joined + ")"
	case ast.CategoryList:
		return "[" + joined + "]"
	case ast.CategoryMap:
		return "{" + joined + "}"
	default:
		if len(t.Params) == 0 {
			return t.Name
		}
		return t.Name + "(" + joined + ")"
	}
}

// DefaultConstructor mangles a default constructor: `Name(p1,p2,…)`
// for a non-nullary constructor, bare `Name` for nullary, suffixed
// with `:<builder-instance>` when the owning type is itself a
// specialization.
func DefaultConstructor(c *ast.DefaultConstructor) string {
	return constructorName(c.Name(), c.Params, c.Owner)
}

// RecordConstructor mangles a record constructor the same way,
// reading its fields through the positional vector view.
func RecordConstructor(c *ast.RecordConstructor) string {
	return constructorName(c.Name(), c.Params(), c.Owner)
}

func constructorName(name string, params []ast.TypeInstance, owner *ast.Type) string {
	var b strings.Builder
	b.WriteString(name)
	if len(params) > 0 {
		b.WriteByte('(')
		writeParamList(&b, params, ",")
		b.WriteByte(')')
	}
	if owner != nil && owner.Specialization() {
		b.WriteByte(':')
		writeInstance(&b, *owner.BuilderInstance)
	}
	return b.String()
}

// Count renders the optional fixed-size annotation carried by a sized
// list/map instance (e.g. the `8` in `bit8`), for callers assembling
// a built-in name rather than mangling a full instance.
func Count(n int) string {
	return strconv.Itoa(n)
}
