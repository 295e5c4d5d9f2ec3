// Package schema compiles the embedded built-in operator-shape
// description and walks it with protoreflect, rather than hand-writing
// every built-in function's shape as Go struct literals. The registry
// turns each OperatorShape into real ast.Function/ast.Type declarations;
// this package only ever produces plain Go values.
package schema

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

//go:embed builtins.proto
var protoSource string

//go:embed builtins.textpb
var shapeData []byte

const protoFilename = "builtins.proto"

// OperatorShape is one self-typed built-in primitive's fixed operator
// old_names, grouped by family, already unwrapped from protoreflect
// values into plain Go strings.
type OperatorShape struct {
	Name string

	Unary      []string
	Binary     []string
	Comparison []string
	Bitwise    []string
	Casts      []string
	Quantum    []string
	Subscript  []string
}

// Load compiles builtins.proto, parses builtins.textpb against the
// compiled BuiltinShapes descriptor, and walks the resulting dynamic
// message into a slice of OperatorShape in file order.
func Load() ([]OperatorShape, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(map[string]string{
				protoFilename: protoSource,
			}),
		}),
	}

	files, err := compiler.Compile(context.Background(), protoFilename)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", protoFilename, err)
	}
	fd := files[0]

	shapesDesc := fd.Messages().ByName("BuiltinShapes")
	if shapesDesc == nil {
		return nil, fmt.Errorf("message BuiltinShapes not found in %s", protoFilename)
	}

	root := dynamicpb.NewMessage(shapesDesc)
	if err := prototext.Unmarshal(shapeData, root); err != nil {
		return nil, fmt.Errorf("parsing builtins.textpb: %w", err)
	}

	builtinsField := shapesDesc.Fields().ByName("builtins")
	if builtinsField == nil {
		return nil, fmt.Errorf("field 'builtins' not found on BuiltinShapes")
	}
	shapeDesc := builtinsField.Message()

	fields := struct {
		name, unary, binary, cmp, bitwise, casts, quantum, subscript protoreflect.FieldDescriptor
	}{
		name:      shapeDesc.Fields().ByName("name"),
		unary:     shapeDesc.Fields().ByName("unary_ops"),
		binary:    shapeDesc.Fields().ByName("binary_ops"),
		cmp:       shapeDesc.Fields().ByName("comparison_ops"),
		bitwise:   shapeDesc.Fields().ByName("bitwise_ops"),
		casts:     shapeDesc.Fields().ByName("cast_ops"),
		quantum:   shapeDesc.Fields().ByName("quantum_ops"),
		subscript: shapeDesc.Fields().ByName("subscript_ops"),
	}

	list := root.Get(builtinsField).List()
	out := make([]OperatorShape, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		msg := list.Get(i).Message()
		out = append(out, OperatorShape{
			Name:       msg.Get(fields.name).String(),
			Unary:      stringList(msg, fields.unary),
			Binary:     stringList(msg, fields.binary),
			Comparison: stringList(msg, fields.cmp),
			Bitwise:    stringList(msg, fields.bitwise),
			Casts:      stringList(msg, fields.casts),
			Quantum:    stringList(msg, fields.quantum),
			Subscript:  stringList(msg, fields.subscript),
		})
	}
	return out, nil
}

func stringList(msg protoreflect.Message, fd protoreflect.FieldDescriptor) []string {
	lv := msg.Get(fd).List()
	out := make([]string, lv.Len())
	for i := range out {
		out[i] = lv.Get(i).String()
	}
	return out
}
