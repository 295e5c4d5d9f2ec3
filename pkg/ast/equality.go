package ast

// StrongEqual compares two type instances under strong equality: both
// must agree on category, reference-ness, and concreteness. Two
// abstract instances compare equal; an abstract and a concrete one
// never do. Concrete pairs compare equal iff their owning types are
// equal and every nested parameter compares strong-equal.
func StrongEqual(a, b TypeInstance) bool {
	return equal(a, b, false)
}

// WeakEqual is StrongEqual except that an abstract instance matches
// any concrete instance of the opposite side — used by checker
// look-ups where a stand-in represents "any".
func WeakEqual(a, b TypeInstance) bool {
	return equal(a, b, true)
}

func equal(a, b TypeInstance, weak bool) bool {
	if a.IsStar || b.IsStar {
		return true
	}
	if a.Category != b.Category {
		return false
	}
	if a.IsReference != b.IsReference {
		return false
	}
	if a.IsReference {
		return equal(a.Payload(), b.Payload(), weak)
	}

	aAbstract, bAbstract := a.Abstract(), b.Abstract()
	if aAbstract && bAbstract {
		return true
	}
	if aAbstract != bAbstract {
		return weak
	}

	// Both concrete.
	if a.Name != b.Name {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !equal(a.Params[i], b.Params[i], weak) {
			return false
		}
	}
	return true
}

// Weight measures how much information a candidate instance binds
// relative to a template instance. It is 0 when WeakEqual fails.
// Otherwise it accumulates recursively: a fully-concrete nullary match
// contributes 2, an abstract-vs-anything match contributes 1, and a
// parametric pair contributes 1 at each layer plus the sum of its
// children's weights. Used by overload resolution to prefer the most
// specific candidate.
func Weight(candidate, template TypeInstance) int {
	if !WeakEqual(candidate, template) {
		return 0
	}
	if candidate.IsReference && template.IsReference {
		return Weight(candidate.Payload(), template.Payload())
	}

	candidateAbstract, templateAbstract := candidate.Abstract(), template.Abstract()
	if candidateAbstract || templateAbstract {
		return 1
	}

	if len(candidate.Params) == 0 {
		return 2
	}

	sum := 1
	for i := range candidate.Params {
		if i >= len(template.Params) {
			break
		}
		sum += Weight(candidate.Params[i], template.Params[i])
	}
	return sum
}

// CollidesWith reports whether fn and other would be ambiguous
// overloads of the same (name, arity): true iff every parameter
// compares StrongEqual pairwise, meaning the two signatures are
// structurally identical (both abstract in the same shape, or
// identical concrete types) so no call site could ever disambiguate
// between them. A concrete overload never collides with a template
// one (StrongEqual never holds between abstract and concrete), which
// is what lets `f(a, a)` and `f(int, int)` coexist and be resolved
// later by Weight.
func (fn *Function) CollidesWith(other *Function) bool {
	if fn.Name != other.Name || len(fn.Params) != len(other.Params) {
		return false
	}
	for i := range fn.Params {
		if !StrongEqual(fn.Params[i].Declared, other.Params[i].Declared) {
			return false
		}
	}
	return true
}
