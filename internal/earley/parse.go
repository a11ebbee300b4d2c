package earley

// Result is a completed recognition: the chart built during the run, the
// input length, and the accepted start items (one per alternative of the
// start rule that matched the whole input). Any accepted item can serve
// as an SPPF root.
type Result[T comparable] struct {
	grammar  *Grammar[T]
	chart    *chart[T]
	input    []T
	accepted []itemKey[T]
}

// Parse runs the recognizer over input and reports whether the grammar
// accepts it. On acceptance, the returned Result exposes the SPPF via
// SPPF, Ambiguity, and Tree.
func Parse[T comparable](g *Grammar[T], input []T) (*Result[T], bool) {
	n := len(input)
	c := newChart[T](n + 1)

	startRule, ok := g.ruleFor(g.Start)
	if !ok {
		return nil, false
	}

	var queue []itemKey[T]
	for alt, rhs := range startRule.Alternatives {
		key := itemKey[T]{LHS: g.Start, Alt: alt, Origin: 0, End: 0, Dot: 0}
		c.getOrCreate(0, key, rhs)
		queue = append(queue, key)
	}

	for k := 0; k <= n; k++ {
		local := queue
		queue = nil
		processed := make(map[itemKey[T]]bool)

		for len(local) > 0 {
			key := local[0]
			local = local[1:]
			if processed[key] {
				continue
			}
			processed[key] = true

			e := c.states[k][key]
			sym, hasDot := e.dotSymbol()

			if !hasDot {
				// Complete: feed this finished item back into every item
				// at its origin that was waiting on its LHS.
				for callerKey, caller := range c.states[key.Origin] {
					csym, ok := caller.dotSymbol()
					if !ok || csym != key.LHS {
						continue
					}
					newKey := itemKey[T]{LHS: callerKey.LHS, Alt: callerKey.Alt, Origin: callerKey.Origin, End: k, Dot: callerKey.Dot + 1}
					ne, isNew := c.getOrCreate(k, newKey, caller.rhs)
					ne.addPacked(completePacked(caller, key))
					if isNew || !processed[newKey] {
						local = append(local, newKey)
					}
				}
				continue
			}

			if g.IsNonterminal(sym) {
				rule, _ := g.ruleFor(sym)
				for alt, rhs := range rule.Alternatives {
					pkey := itemKey[T]{LHS: sym, Alt: alt, Origin: k, End: k, Dot: 0}
					_, isNew := c.getOrCreate(k, pkey, rhs)
					if isNew {
						local = append(local, pkey)
					}
				}
				continue
			}

			// Scan.
			if k < n && input[k] == sym {
				newKey := itemKey[T]{LHS: key.LHS, Alt: key.Alt, Origin: key.Origin, End: k + 1, Dot: key.Dot + 1}
				ne, _ := c.getOrCreate(k+1, newKey, e.rhs)
				ne.addPacked(scanPacked(e, sym, k+1))
				queue = append(queue, newKey)
			}
		}
	}

	var accepted []itemKey[T]
	for alt, rhs := range startRule.Alternatives {
		key := itemKey[T]{LHS: g.Start, Alt: alt, Origin: 0, End: n, Dot: len(rhs)}
		if _, ok := c.states[n][key]; ok {
			accepted = append(accepted, key)
		}
	}

	res := &Result[T]{grammar: g, chart: c, input: input, accepted: accepted}
	return res, len(accepted) > 0
}

// completePacked builds the packed node recording that caller was
// advanced past its dot by the just-finished item completed. When caller
// had already matched at least one symbol (Dot > 0), the new node
// binarizes: left is a reference to caller itself (the partial match so
// far), right is a reference to completed. When caller's dot was still
// at 0, completed is the node's only child.
func completePacked[T comparable](caller *entry[T], completed itemKey[T]) PackedNode[T] {
	completedDeriv := &Derivation[T]{kind: derivItem, item: completed}
	if caller.key.Dot > 0 {
		return PackedNode[T]{
			Left:  &Derivation[T]{kind: derivItem, item: caller.key},
			Right: completedDeriv,
		}
	}
	return PackedNode[T]{Left: completedDeriv}
}

// scanPacked mirrors completePacked for the terminal case: old is the
// item being stepped, sym/pos is the token just consumed.
func scanPacked[T comparable](old *entry[T], sym T, pos int) PackedNode[T] {
	scanned := &Derivation[T]{kind: derivScanned, sym: sym, pos: pos}
	if old.key.Dot > 0 {
		return PackedNode[T]{
			Left:  &Derivation[T]{kind: derivItem, item: old.key},
			Right: scanned,
		}
	}
	return PackedNode[T]{Left: scanned}
}
