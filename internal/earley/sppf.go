package earley

// ItemRef is an exported handle on one Earley item, letting callers
// outside this package inspect an SPPF node without reaching into the
// chart's internal bookkeeping.
type ItemRef[T comparable] struct{ key itemKey[T] }

func (r ItemRef[T]) LHS() T    { return r.key.LHS }
func (r ItemRef[T]) Origin() int { return r.key.Origin }
func (r ItemRef[T]) End() int    { return r.key.End }
func (r ItemRef[T]) Dot() int    { return r.key.Dot }

// DerivationRef is an exported view of one child of a packed node: either
// a scanned terminal (IsTerminal true) or a reference to another item.
type DerivationRef[T comparable] struct {
	IsTerminal bool
	Symbol     T
	Pos        int
	Item       ItemRef[T]
}

func wrapDeriv[T comparable](d *Derivation[T]) *DerivationRef[T] {
	if d == nil {
		return nil
	}
	if d.kind == derivScanned {
		return &DerivationRef[T]{IsTerminal: true, Symbol: d.sym, Pos: d.pos}
	}
	return &DerivationRef[T]{Item: ItemRef[T]{key: d.item}}
}

// PackedNodeRef is an exported packed node: up to two children.
type PackedNodeRef[T comparable] struct {
	Left  *DerivationRef[T]
	Right *DerivationRef[T]
}

// SPPF is the reachable subset of the chart rooted at one accepted item:
// the shared packed parse forest proper, as opposed to the full chart
// (which also holds every item tried and abandoned during recognition).
type SPPF[T comparable] struct {
	root  ItemRef[T]
	nodes map[itemKey[T]]*entry[T]
	order []itemKey[T]
}

// SPPF extracts the forest reachable from res's first accepted item. When
// more than one start alternative accepted, Roots lists them all, but the
// forest is always rooted at the first; no exported call roots it elsewhere.
func (res *Result[T]) SPPF() (*SPPF[T], bool) {
	if len(res.accepted) == 0 {
		return nil, false
	}
	return res.sppfFrom(res.accepted[0]), true
}

// Roots lists every accepted start item, for grammars whose start rule
// has more than one alternative.
func (res *Result[T]) Roots() []ItemRef[T] {
	out := make([]ItemRef[T], len(res.accepted))
	for i, k := range res.accepted {
		out[i] = ItemRef[T]{key: k}
	}
	return out
}

func (res *Result[T]) sppfFrom(root itemKey[T]) *SPPF[T] {
	nodes := make(map[itemKey[T]]*entry[T])
	var order []itemKey[T]
	queue := []itemKey[T]{root}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		if _, ok := nodes[k]; ok {
			continue
		}
		e := res.chart.states[k.End][k]
		if e == nil {
			continue
		}
		nodes[k] = e
		order = append(order, k)
		for _, pn := range e.packed {
			for _, d := range []*Derivation[T]{pn.Left, pn.Right} {
				if d != nil && d.kind == derivItem {
					queue = append(queue, d.item)
				}
			}
		}
	}
	return &SPPF[T]{root: ItemRef[T]{key: root}, nodes: nodes, order: order}
}

// Root returns the forest's root item.
func (f *SPPF[T]) Root() ItemRef[T] { return f.root }

// Nodes lists every item reachable in this forest, in the order
// discovered from the root.
func (f *SPPF[T]) Nodes() []ItemRef[T] {
	out := make([]ItemRef[T], len(f.order))
	for i, k := range f.order {
		out[i] = ItemRef[T]{key: k}
	}
	return out
}

// PackedNodes returns every packed node recorded for item.
func (f *SPPF[T]) PackedNodes(item ItemRef[T]) []PackedNodeRef[T] {
	e, ok := f.nodes[item.key]
	if !ok {
		return nil
	}
	out := make([]PackedNodeRef[T], len(e.packed))
	for i, pn := range e.packed {
		out[i] = PackedNodeRef[T]{Left: wrapDeriv(pn.Left), Right: wrapDeriv(pn.Right)}
	}
	return out
}

// Ambiguity walks the forest from the root via each item's first packed
// node and reports the first item reached that has more than one packed
// node: the earliest point the grammar allowed more than one derivation.
// A false second result means unambiguous.
func (f *SPPF[T]) Ambiguity() (ItemRef[T], bool) {
	visited := make(map[itemKey[T]]bool)
	queue := []itemKey[T]{f.root.key}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		if visited[k] {
			continue
		}
		visited[k] = true
		e, ok := f.nodes[k]
		if !ok || len(e.packed) == 0 {
			continue
		}
		if len(e.packed) > 1 {
			return ItemRef[T]{key: k}, true
		}
		first := e.packed[0]
		for _, d := range []*Derivation[T]{first.Left, first.Right} {
			if d != nil && d.kind == derivItem {
				queue = append(queue, d.item)
			}
		}
	}
	var zero ItemRef[T]
	return zero, false
}

// TreeEdge is one parent-child edge of the derivation tree Tree projects.
type TreeEdge[T comparable] struct {
	Parent ItemRef[T]
	Child  DerivationRef[T]
}

// Tree projects one concrete derivation tree from the forest by always
// choosing an item's first packed node. Items whose dot is still at 0
// (nothing matched yet) are elided, since they never contribute a real
// child edge.
func (f *SPPF[T]) Tree() []TreeEdge[T] {
	var edges []TreeEdge[T]
	visited := make(map[itemKey[T]]bool)
	var walk func(k itemKey[T])
	walk = func(k itemKey[T]) {
		if visited[k] || k.Dot == 0 {
			return
		}
		visited[k] = true
		e, ok := f.nodes[k]
		if !ok || len(e.packed) == 0 {
			return
		}
		first := e.packed[0]
		for _, d := range []*Derivation[T]{first.Left, first.Right} {
			if d == nil {
				continue
			}
			edges = append(edges, TreeEdge[T]{Parent: ItemRef[T]{key: k}, Child: *wrapDeriv(d)})
			if d.kind == derivItem {
				walk(d.item)
			}
		}
	}
	walk(f.root.key)
	return edges
}
