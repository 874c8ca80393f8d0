// Package mocus computes minimal cut sets from a preprocessed working
// graph using MOCUS-style top-down Boolean expansion: AND substitutes its
// arguments into the same row, OR forks one row per argument, and
// ATLEAST(k) forks one row per k-subset of its arguments. Rows are pruned
// as soon as they exceed the order cutoff or contain a complementary
// literal pair, and the raw candidates that survive expansion are reduced
// to a minimal set by subsumption.
package mocus

import (
	"sort"

	"github.com/handanlinzhang/scram/pkg/preprocess"
)

// Literal is a signed reference to a working-graph leaf, by its index into
// Graph.Leaves.
type Literal struct {
	Leaf    int32
	Negated bool
}

// CutSet is one minimal cut set: a conjunction of literals.
type CutSet struct {
	Lits []Literal
}

// Order is the number of literals in the cut set.
func (c CutSet) Order() int { return len(c.Lits) }

// CutSets is the result of Compute: every minimal cut set for one target,
// deterministically ordered (spec.md §4.3: sorted by order, then by
// literal ids within a row).
type CutSets struct {
	Sets []CutSet
}

// Compute finds every minimal cut set of g's top event with order at most
// limitOrder. limitOrder <= 0 means unbounded.
func Compute(g *preprocess.Graph, limitOrder int) (*CutSets, error) {
	cache := make(map[preprocess.NodeID]*CutSets)
	cs, err := computeFrom(g, g.Top, limitOrder, cache)
	if err != nil {
		return nil, err
	}
	sortCutSets(cs)
	return cs, nil
}

// row is a working set of signed working-graph node references: some
// leaves (already resolved literals), some pending gates awaiting
// expansion, some module references awaiting substitution.
type row []preprocess.Lit

func computeFrom(g *preprocess.Graph, top preprocess.Lit, limitOrder int, moduleCache map[preprocess.NodeID]*CutSets) (*CutSets, error) {
	n := g.Nodes[top.Node]

	if n.Kind == preprocess.NodeConstant {
		val := n.Const != top.Negated
		if val {
			return &CutSets{Sets: []CutSet{{}}}, nil // unconditionally true: one empty cut set
		}
		return &CutSets{}, nil // unconditionally false: no cut sets
	}
	if n.Kind == preprocess.NodeBasicEvent {
		return &CutSets{Sets: []CutSet{{Lits: []Literal{{Leaf: n.Basic, Negated: top.Negated}}}}}, nil
	}

	// A module's own top node is itself IsModule (that's how its caller
	// found it), so it must be expanded once unconditionally here before
	// the generic isPending check — which treats IsModule nodes as
	// terminal — takes over for its descendants.
	var phase1 []row
	for _, r := range expandLiteral(g, top, nil, limitOrder) {
		expandRow(g, r, limitOrder, &phase1)
	}

	var raw []row
	for _, r := range phase1 {
		resolved, err := resolveModules(g, r, limitOrder, moduleCache)
		if err != nil {
			return nil, err
		}
		raw = append(raw, resolved...)
	}

	sets := make([]CutSet, 0, len(raw))
	for _, r := range raw {
		sets = append(sets, toCutSet(g, r))
	}
	return &CutSets{Sets: minimize(sets)}, nil
}

// expandRow substitutes every non-module gate reference in r, appending
// each fully expanded (leaf- and module-only) row to out.
func expandRow(g *preprocess.Graph, r row, limitOrder int, out *[]row) {
	idx := -1
	for i, l := range r {
		if isPending(g, l) {
			idx = i
			break
		}
	}
	if idx < 0 {
		*out = append(*out, r)
		return
	}

	l := r[idx]
	rest := removeAt(r, idx)
	for _, newRow := range expandLiteral(g, l, rest, limitOrder) {
		expandRow(g, newRow, limitOrder, out)
	}
}

// expandLiteral applies one step of AND/OR/ATLEAST substitution to l,
// unioning each result with rest. Used both for a computeFrom call's own
// top node (which must expand once even when it is itself a module, since
// that is precisely how its caller identified it) and, via expandRow, for
// ordinary pending literals encountered deeper in a row.
func expandLiteral(g *preprocess.Graph, l preprocess.Lit, rest row, limitOrder int) []row {
	n := g.Nodes[l.Node]
	var out []row
	switch n.Kind {
	case preprocess.NodeAND:
		if newRow, pruned := appendDedup(rest, n.Args, limitOrder); !pruned {
			out = append(out, newRow)
		}
	case preprocess.NodeOR:
		for _, arg := range n.Args {
			if newRow, pruned := appendDedup(rest, []preprocess.Lit{arg}, limitOrder); !pruned {
				out = append(out, newRow)
			}
		}
	case preprocess.NodeATLEAST:
		for _, subset := range chooseSubsets(n.Args, n.K) {
			if newRow, pruned := appendDedup(rest, subset, limitOrder); !pruned {
				out = append(out, newRow)
			}
		}
	}
	return out
}

// isPending reports whether l still needs expanding: an AND/OR/ATLEAST
// node that hasn't been promoted to a module.
func isPending(g *preprocess.Graph, l preprocess.Lit) bool {
	n := g.Nodes[l.Node]
	return !n.IsModule && (n.Kind == preprocess.NodeAND || n.Kind == preprocess.NodeOR || n.Kind == preprocess.NodeATLEAST)
}

func isModuleLit(g *preprocess.Graph, l preprocess.Lit) bool {
	return g.Nodes[l.Node].IsModule
}

// resolveModules substitutes every module reference in r with each of the
// module's own minimal cut sets in turn, forking the row like an OR.
func resolveModules(g *preprocess.Graph, r row, limitOrder int, moduleCache map[preprocess.NodeID]*CutSets) ([]row, error) {
	idx := -1
	for i, l := range r {
		if isModuleLit(g, l) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return []row{r}, nil
	}

	l := r[idx]
	rest := removeAt(r, idx)
	cs, err := solveModule(g, l.Node, limitOrder, moduleCache)
	if err != nil {
		return nil, err
	}

	var out []row
	for _, cutset := range cs.Sets {
		lits := literalsToLits(g, cutset.Lits)
		newRow, pruned := appendDedup(rest, lits, limitOrder)
		if pruned {
			continue
		}
		sub, err := resolveModules(g, newRow, limitOrder, moduleCache)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func solveModule(g *preprocess.Graph, id preprocess.NodeID, limitOrder int, cache map[preprocess.NodeID]*CutSets) (*CutSets, error) {
	if cs, ok := cache[id]; ok {
		return cs, nil
	}
	cs, err := computeFrom(g, preprocess.Lit{Node: id}, limitOrder, cache)
	if err != nil {
		return nil, err
	}
	cache[id] = cs
	return cs, nil
}

func literalsToLits(g *preprocess.Graph, lits []Literal) []preprocess.Lit {
	out := make([]preprocess.Lit, len(lits))
	for i, l := range lits {
		out[i] = preprocess.Lit{Node: g.LeafNode(l.Leaf), Negated: l.Negated}
	}
	return out
}

// appendDedup unions newLits into rest, treating the row as a set: a
// repeated literal is dropped, a complementary pair (or an order-cutoff
// overflow) invalidates the whole row.
func appendDedup(rest row, newLits []preprocess.Lit, limitOrder int) (row, bool) {
	seen := make(map[preprocess.Lit]bool, len(rest)+len(newLits))
	for _, l := range rest {
		seen[l] = true
	}
	result := append(row(nil), rest...)
	for _, nl := range newLits {
		complement := preprocess.Lit{Node: nl.Node, Negated: !nl.Negated}
		if seen[complement] {
			return nil, true
		}
		if seen[nl] {
			continue
		}
		seen[nl] = true
		result = append(result, nl)
	}
	if limitOrder > 0 && countLeaves(result) > limitOrder {
		return nil, true
	}
	return result, false
}

// countLeaves lower-bounds a row's eventual cut-set order: pending gate
// and module references still expand to at least one literal, so they
// count too.
func countLeaves(r row) int { return len(r) }

func removeAt(r row, idx int) row {
	out := make(row, 0, len(r)-1)
	out = append(out, r[:idx]...)
	out = append(out, r[idx+1:]...)
	return out
}

func toCutSet(g *preprocess.Graph, r row) CutSet {
	lits := make([]Literal, len(r))
	for i, l := range r {
		n := g.Nodes[l.Node]
		lits[i] = Literal{Leaf: n.Basic, Negated: l.Negated}
	}
	sort.Slice(lits, func(i, j int) bool {
		if lits[i].Leaf != lits[j].Leaf {
			return lits[i].Leaf < lits[j].Leaf
		}
		return !lits[i].Negated && lits[j].Negated
	})
	return CutSet{Lits: lits}
}

// minimize drops every set that is a superset of another surviving set
// (spec.md §4.3's subsumption-based minimality) and any exact duplicate.
func minimize(sets []CutSet) []CutSet {
	sort.Slice(sets, func(i, j int) bool { return len(sets[i].Lits) < len(sets[j].Lits) })

	seenKey := make(map[string]bool, len(sets))
	var kept []CutSet
	for _, s := range sets {
		key := cutSetKey(s)
		if seenKey[key] {
			continue
		}
		subsumed := false
		for _, k := range kept {
			if isSubset(k, s) {
				subsumed = true
				break
			}
		}
		if subsumed {
			continue
		}
		seenKey[key] = true
		kept = append(kept, s)
	}
	return kept
}

func cutSetKey(c CutSet) string {
	key := make([]byte, 0, 8*len(c.Lits))
	for _, l := range c.Lits {
		key = append(key, byte(l.Leaf), byte(l.Leaf>>8), byte(l.Leaf>>16), byte(l.Leaf>>24))
		if l.Negated {
			key = append(key, 1)
		} else {
			key = append(key, 0)
		}
	}
	return string(key)
}

// isSubset reports whether every literal of a also appears in b.
func isSubset(a, b CutSet) bool {
	if len(a.Lits) > len(b.Lits) {
		return false
	}
	bSet := make(map[Literal]bool, len(b.Lits))
	for _, l := range b.Lits {
		bSet[l] = true
	}
	for _, l := range a.Lits {
		if !bSet[l] {
			return false
		}
	}
	return true
}

// chooseSubsets returns every k-element subset of args, preserving order.
func chooseSubsets(args []preprocess.Lit, k int) [][]preprocess.Lit {
	var out [][]preprocess.Lit
	n := len(args)
	var combo func(start int, chosen []preprocess.Lit)
	combo = func(start int, chosen []preprocess.Lit) {
		if len(chosen) == k {
			out = append(out, append([]preprocess.Lit(nil), chosen...))
			return
		}
		remaining := k - len(chosen)
		for i := start; i <= n-remaining; i++ {
			combo(i+1, append(chosen, args[i]))
		}
	}
	combo(0, nil)
	return out
}

func sortCutSets(cs *CutSets) {
	sort.Slice(cs.Sets, func(i, j int) bool {
		a, b := cs.Sets[i], cs.Sets[j]
		if len(a.Lits) != len(b.Lits) {
			return len(a.Lits) < len(b.Lits)
		}
		for k := range a.Lits {
			if a.Lits[k].Leaf != b.Lits[k].Leaf {
				return a.Lits[k].Leaf < b.Lits[k].Leaf
			}
			if a.Lits[k].Negated != b.Lits[k].Negated {
				return !a.Lits[k].Negated
			}
		}
		return false
	})
}
