package schema

import "testing"

func TestLoadParsesEveryBuiltinShape(t *testing.T) {
	shapes, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shapes) == 0 {
		t.Fatal("expected at least one builtin shape")
	}

	byName := make(map[string]OperatorShape, len(shapes))
	for _, s := range shapes {
		byName[s.Name] = s
	}

	intShape, ok := byName["int"]
	if !ok {
		t.Fatal("expected an 'int' shape")
	}
	if len(intShape.Unary) != 2 {
		t.Fatalf("expected 2 unary ops for int, got %v", intShape.Unary)
	}
	if len(intShape.Binary) != 6 {
		t.Fatalf("expected 6 binary ops for int, got %v", intShape.Binary)
	}
	found := false
	for _, name := range intShape.Bitwise {
		if name == "__band__" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected int's bitwise ops to include __band__, got %v", intShape.Bitwise)
	}

	qubitShape, ok := byName["qubit"]
	if !ok {
		t.Fatal("expected a 'qubit' shape")
	}
	if len(qubitShape.Quantum) != 2 {
		t.Fatalf("expected apply/measure for qubit, got %v", qubitShape.Quantum)
	}
}

func TestLoadIsDeterministic(t *testing.T) {
	first, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected stable shape count across loads, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("expected stable shape order, got %q at %d then %q", first[i].Name, i, second[i].Name)
		}
	}
}
