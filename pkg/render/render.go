// Package render pretty-prints a specialized type for debugging. It is a
// read-only dump, never a code generation target: nothing it produces is
// meant to compile, link, or feed a downstream tool, and it never mutates
// the type, its Specializations cache entry, or any TypeInstance it walks.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/avalon-lang/semantic/pkg/ast"
	"github.com/avalon-lang/semantic/pkg/mangle"
)

// Specialization renders t, a concrete type produced by specialize.Generate,
// as a human-readable Go-shaped declaration: a struct per default
// constructor, a comment naming the builder instance it came from. It
// returns an error if t was not itself produced by specialization, since a
// declared (non-specialized) type has nothing distinguishing to render here.
func Specialization(t *ast.Type) (string, error) {
	if !t.Specialization() {
		return "", fmt.Errorf("render: %s is not a specialization", t.Name)
	}

	f := jen.NewFile("debug")
	f.Comment(fmt.Sprintf("// specialization of %s", mangle.Instance(*t.BuilderInstance)))

	for _, key := range sortedCtorKeys(t) {
		if c, ok := t.DefaultConstructors[key]; ok {
			f.Add(renderDefaultConstructor(t.Name, c))
			continue
		}
		if c, ok := t.RecordConstructors[key]; ok {
			f.Add(renderRecordConstructor(t.Name, c))
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Render(buf); err != nil {
		return "", fmt.Errorf("render: %s: %w", t.Name, err)
	}
	return buf.String(), nil
}

// sortedCtorKeys orders a specialization's constructor keys by name then
// arity, so two renders of the same type always print identically.
func sortedCtorKeys(t *ast.Type) []ast.CtorKey {
	keys := t.AllConstructorKeys()
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0; j-- {
			a, b := keys[j-1], keys[j]
			if a.Name > b.Name || (a.Name == b.Name && a.Arity > b.Arity) {
				keys[j-1], keys[j] = keys[j], keys[j-1]
				continue
			}
			break
		}
	}
	return keys
}

func renderDefaultConstructor(ownerName string, c *ast.DefaultConstructor) jen.Code {
	return jen.Type().Id(debugIdent(ownerName, c.Name())).StructFunc(func(g *jen.Group) {
		for i, p := range c.Params {
			g.Id(fmt.Sprintf("field%d", i)).Id(debugTypeLabel(p))
		}
	})
}

func renderRecordConstructor(ownerName string, c *ast.RecordConstructor) jen.Code {
	return jen.Type().Id(debugIdent(ownerName, c.Name())).StructFunc(func(g *jen.Group) {
		for _, field := range c.Fields {
			g.Id(field.Label.Lexeme).Id(debugTypeLabel(field.Type))
		}
	})
}

// debugIdent builds a display-only identifier from the unmangled owner
// and constructor names (the text before any '(' or ':'). jen.File.Render
// runs the output through gofmt, so the mangled punctuation in a
// specialization's name (parentheses, commas, colons) cannot appear here.
func debugIdent(ownerName, ctorName string) string {
	base := func(s string) string {
		if i := strings.IndexAny(s, "(:"); i >= 0 {
			return s[:i]
		}
		return s
	}
	return debugName(base(ownerName)) + "_" + debugName(base(ctorName))
}

// debugName replaces every rune that cannot appear in a Go identifier
// with '_'.
func debugName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, s)
}

func debugTypeLabel(ti ast.TypeInstance) string {
	return debugName(mangle.Instance(ti))
}
