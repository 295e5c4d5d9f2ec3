// Package native optionally loads additional built-in modules
// contributed by a native shared library, off by default. It resolves
// two exported symbols against the shared library via
// goinvoke.Unmarshal: DescribeBuiltins (a JSON description of the
// operator shapes the plugin contributes) and BuiltinOldNames (the flat
// list of old_names it dispatches, for a driver to sanity-check against
// the evaluator's own dispatch table).
package native

import (
	"encoding/json"
	"fmt"
	"unsafe"

	"github.com/jamesits/goinvoke"

	"github.com/avalon-lang/semantic/pkg/builtin/schema"
)

// Funcs holds the two exported functions a native builtin plugin must
// provide, resolved by goinvoke.Unmarshal against the shared library's
// exported symbol table.
type Funcs struct {
	DescribeBuiltins *goinvoke.Proc `func:"DescribeBuiltins"`
	BuiltinOldNames  *goinvoke.Proc `func:"BuiltinOldNames"`
}

// Plugin is a loaded native builtin shared library.
type Plugin struct {
	funcs *Funcs
	path  string
}

// Load resolves path (a .so/.dll built separately) and binds its two
// required symbols. It fails if either is missing.
func Load(path string) (*Plugin, error) {
	if path == "" {
		return nil, fmt.Errorf("native: empty plugin path")
	}

	funcs := &Funcs{}
	if err := goinvoke.Unmarshal(path, funcs); err != nil {
		return nil, fmt.Errorf("native: loading %s: %w", path, err)
	}
	if funcs.DescribeBuiltins == nil {
		return nil, fmt.Errorf("native: %s missing DescribeBuiltins", path)
	}
	if funcs.BuiltinOldNames == nil {
		return nil, fmt.Errorf("native: %s missing BuiltinOldNames", path)
	}

	return &Plugin{funcs: funcs, path: path}, nil
}

// Describe calls DescribeBuiltins and decodes its JSON result into the
// same OperatorShape shape the compiled .proto schema produces, so the
// registry can build ast.Function/ast.Type declarations for native
// built-ins exactly the way it does for the schema-driven ones.
func (p *Plugin) Describe() ([]schema.OperatorShape, error) {
	raw, err := p.call(p.funcs.DescribeBuiltins)
	if err != nil {
		return nil, err
	}
	var shapes []schema.OperatorShape
	if err := json.Unmarshal(raw, &shapes); err != nil {
		return nil, fmt.Errorf("native: %s: decoding DescribeBuiltins JSON: %w", p.path, err)
	}
	return shapes, nil
}

// OldNames calls BuiltinOldNames and decodes its JSON result into the
// flat list of old_names this plugin's functions dispatch against.
func (p *Plugin) OldNames() ([]string, error) {
	raw, err := p.call(p.funcs.BuiltinOldNames)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, fmt.Errorf("native: %s: decoding BuiltinOldNames JSON: %w", p.path, err)
	}
	return names, nil
}

func (p *Plugin) call(proc *goinvoke.Proc) ([]byte, error) {
	ret, _, _ := proc.Call()
	if ret == 0 {
		return nil, fmt.Errorf("native: %s: plugin function returned a null pointer", p.path)
	}
	return cBytes(unsafe.Pointer(ret)), nil
}

// cBytes reads a null-terminated C string returned by a plugin function
// into a Go byte slice.
func cBytes(p unsafe.Pointer) []byte {
	if p == nil {
		return nil
	}
	var length int
	for {
		if *(*byte)(unsafe.Pointer(uintptr(p) + uintptr(length))) == 0 {
			break
		}
		length++
		if length > 16*1024*1024 {
			break
		}
	}
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = *(*byte)(unsafe.Pointer(uintptr(p) + uintptr(i)))
	}
	return out
}
