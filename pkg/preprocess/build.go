package preprocess

import (
	"fmt"

	"github.com/handanlinzhang/scram/pkg/mef"
)

// Preprocess builds the working graph for one analysis target. It walks
// target's Formula (and everything it transitively references) exactly
// once per (gate, polarity) pair — memoized in buildMemo — normalizing
// NAND/NOR/XOR/NULL/NOT away, folding constants, coalescing same-polarity
// gates, and hash-consing structurally identical nodes as it goes (spec.md
// §4.2 steps 1-4, folded into a single recursive pass since each depends
// only on already-normalized children). Module detection (step 5) runs as
// a post-pass once the graph is complete; CCF expansion (step 6), when
// ccf is true, substitutes a basic event's leaf with the disjunction of
// its group's CCF basic events at the point the leaf is first built.
func Preprocess(m *mef.Model, target mef.EventRef, ccf bool) (*Graph, error) {
	if target.Kind != mef.GateKind {
		return nil, &mef.ValidationError{Where: target.String(), Msg: "preprocess target must be a gate"}
	}
	b := newBuilder(m, ccf, nil)
	top, err := b.buildNode(target, false)
	if err != nil {
		return nil, err
	}
	b.g.Top = top
	DetectModules(b.g)
	return b.g, nil
}

// PreprocessFormula builds a working graph for an ad-hoc formula that is
// not itself a named gate in m — the event-tree analyzer's conjunctive
// composition of the functional events collected along one path (spec.md
// §9). overrides, when non-nil, takes precedence over a referenced house
// event's own State, letting a path temporarily pin a house event without
// mutating the (frozen) Model.
func PreprocessFormula(m *mef.Model, f mef.Formula, ccf bool, overrides map[mef.EventRef]bool) (*Graph, error) {
	b := newBuilder(m, ccf, overrides)
	top, err := b.buildFormula(f, false)
	if err != nil {
		return nil, err
	}
	b.g.Top = top
	DetectModules(b.g)
	return b.g, nil
}

type buildKey struct {
	Ref    mef.EventRef
	Negate bool
}

type builder struct {
	m         *mef.Model
	g         *Graph
	ccf       bool
	overrides map[mef.EventRef]bool
	buildMemo map[buildKey]Lit
}

func newBuilder(m *mef.Model, ccf bool, overrides map[mef.EventRef]bool) *builder {
	return &builder{m: m, g: newGraph(), ccf: ccf, overrides: overrides, buildMemo: make(map[buildKey]Lit)}
}

// buildNode returns a Lit whose Boolean value equals ref's value XOR negate.
func (b *builder) buildNode(ref mef.EventRef, negate bool) (Lit, error) {
	switch ref.Kind {
	case mef.HouseEventKind:
		state := b.m.HouseEvent(ref).State
		if v, ok := b.overrides[ref]; ok {
			state = v
		}
		return b.g.constLit(state != negate), nil

	case mef.BasicEventKind:
		be := b.m.BasicEvent(ref)
		if b.ccf && be.CCFGroup >= 0 {
			lit, err := b.buildCCFExpansion(ref, be)
			if err != nil {
				return Lit{}, err
			}
			if n := b.g.Nodes[lit.Node]; negate && n.Kind == NodeOR {
				// De Morgan: NOT(OR of CCF events) is AND of their complements.
				neg := make([]Lit, len(n.Args))
				for i, a := range n.Args {
					neg[i] = flip(a)
				}
				return b.g.makeGate(NodeAND, 0, neg), nil
			}
			return Lit{Node: lit.Node, Negated: lit.Negated != negate}, nil
		}
		leaf := b.g.internLeaf(fmt.Sprintf("be:%d", ref.Index), be.Name, be.Expr)
		return Lit{Node: b.g.basicNode(leaf), Negated: negate}, nil

	case mef.GateKind:
		key := buildKey{Ref: ref, Negate: negate}
		if lit, ok := b.buildMemo[key]; ok {
			return lit, nil
		}
		lit, err := b.buildFormula(b.m.Gate(ref).Formula, negate)
		if err != nil {
			return Lit{}, err
		}
		b.buildMemo[key] = lit
		return lit, nil

	default:
		return Lit{}, &mef.ValidationError{Where: ref.String(), Msg: "invalid event reference"}
	}
}

// buildLiteralArg returns a Lit for lit's value XOR outerNegate.
func (b *builder) buildLiteralArg(lit mef.Literal, outerNegate bool) (Lit, error) {
	return b.buildNode(lit.Ref, lit.Negated != outerNegate)
}

func (b *builder) buildLiteralArgs(args []mef.Literal, outerNegate bool) ([]Lit, error) {
	out := make([]Lit, len(args))
	for i, a := range args {
		lit, err := b.buildLiteralArg(a, outerNegate)
		if err != nil {
			return nil, err
		}
		out[i] = lit
	}
	return out, nil
}

func (b *builder) buildFormula(f mef.Formula, negate bool) (Lit, error) {
	switch f.Op {
	case mef.NULL:
		return b.buildLiteralArg(f.Args[0], negate)

	case mef.NOT:
		return b.buildLiteralArg(f.Args[0], !negate)

	case mef.AND:
		if !negate {
			args, err := b.buildLiteralArgs(f.Args, false)
			if err != nil {
				return Lit{}, err
			}
			return b.g.makeGate(NodeAND, 0, args), nil
		}
		args, err := b.buildLiteralArgs(f.Args, true)
		if err != nil {
			return Lit{}, err
		}
		return b.g.makeGate(NodeOR, 0, args), nil

	case mef.OR:
		if !negate {
			args, err := b.buildLiteralArgs(f.Args, false)
			if err != nil {
				return Lit{}, err
			}
			return b.g.makeGate(NodeOR, 0, args), nil
		}
		args, err := b.buildLiteralArgs(f.Args, true)
		if err != nil {
			return Lit{}, err
		}
		return b.g.makeGate(NodeAND, 0, args), nil

	case mef.NAND:
		return b.buildFormula(mef.Formula{Op: mef.AND, Args: f.Args}, !negate)

	case mef.NOR:
		return b.buildFormula(mef.Formula{Op: mef.OR, Args: f.Args}, !negate)

	case mef.ATLEAST:
		if !negate {
			args, err := b.buildLiteralArgs(f.Args, false)
			if err != nil {
				return Lit{}, err
			}
			return b.g.makeAtLeast(f.K, args), nil
		}
		// NOT(atleast k of n) == atleast(n-k+1) of the negated args: fewer
		// than k true means at least n-k+1 are false.
		args, err := b.buildLiteralArgs(f.Args, true)
		if err != nil {
			return Lit{}, err
		}
		return b.g.makeAtLeast(len(f.Args)-f.K+1, args), nil

	case mef.XOR:
		return b.buildXOR(f.Args, negate)

	default:
		return Lit{}, &mef.ValidationError{Where: "formula", Msg: "unknown operator"}
	}
}

// buildXOR folds pairwise, carrying both polarities of the running result
// so no gate is ever referenced negated: for each further arg,
// acc = (acc AND NOT next) OR (NOT acc AND next) and
// NOT acc = (acc AND next) OR (NOT acc AND NOT next), where every NOT of
// an argument is built through De Morgan like any other negated argument.
func (b *builder) buildXOR(args []mef.Literal, negate bool) (Lit, error) {
	acc, err := b.buildLiteralArg(args[0], false)
	if err != nil {
		return Lit{}, err
	}
	accNeg, err := b.buildLiteralArg(args[0], true)
	if err != nil {
		return Lit{}, err
	}
	for _, next := range args[1:] {
		nextLit, err := b.buildLiteralArg(next, false)
		if err != nil {
			return Lit{}, err
		}
		nextNeg, err := b.buildLiteralArg(next, true)
		if err != nil {
			return Lit{}, err
		}
		left := b.g.makeGate(NodeAND, 0, []Lit{acc, nextNeg})
		right := b.g.makeGate(NodeAND, 0, []Lit{accNeg, nextLit})
		same := b.g.makeGate(NodeOR, 0, []Lit{b.g.makeGate(NodeAND, 0, []Lit{acc, nextLit}), b.g.makeGate(NodeAND, 0, []Lit{accNeg, nextNeg})})
		acc, accNeg = b.g.makeGate(NodeOR, 0, []Lit{left, right}), same
	}
	if negate {
		return accNeg, nil
	}
	return acc, nil
}

func flip(l Lit) Lit { return Lit{Node: l.Node, Negated: !l.Negated} }

func flipIf(l Lit, negate bool) Lit {
	if !negate {
		return l
	}
	return flip(l)
}

// makeGate applies gate coalescing (splicing same-op, non-negated
// children), constant absorption, complementary/duplicate literal
// reduction, and hash-consing (spec.md §4.2 steps 2-4), then returns the
// resulting node's positive literal.
func (g *Graph) makeGate(kind NodeKind, k int, args []Lit) Lit {
	flat := make([]Lit, 0, len(args))
	for _, a := range args {
		n := g.Nodes[a.Node]
		if !a.Negated && n.Kind == kind {
			flat = append(flat, n.Args...)
		} else {
			flat = append(flat, a)
		}
	}

	seen := make(map[Lit]bool, len(flat))
	deduped := flat[:0]
	for _, a := range flat {
		n := g.Nodes[a.Node]
		if n.Kind == NodeConstant {
			val := n.Const != a.Negated
			if kind == NodeAND {
				if !val {
					return g.constLit(false)
				}
				continue // true is AND-neutral
			}
			if val {
				return g.constLit(true)
			}
			continue // false is OR-neutral
		}
		if seen[flip(a)] {
			// complementary literal: AND(x, not x) = false, OR(x, not x) = true
			return g.constLit(kind == NodeOR)
		}
		if seen[a] {
			continue // duplicate literal
		}
		seen[a] = true
		deduped = append(deduped, a)
	}

	switch len(deduped) {
	case 0:
		return g.constLit(kind == NodeAND) // empty AND = true, empty OR = false
	case 1:
		return deduped[0]
	}

	key := canonicalKey(kind, k, deduped)
	if id, ok := g.nodeMemo[key]; ok {
		return Lit{Node: id}
	}
	id := g.newNode(Node{Kind: kind, Args: deduped, K: k})
	g.nodeMemo[key] = id
	return Lit{Node: id}
}

// makeAtLeast folds constant arguments (a true one already counts toward
// k, a false one never can), then degenerates ATLEAST(k) of the remaining
// n args to AND (k==n) or OR (k==1) and otherwise hash-conses a new
// ATLEAST node.
func (g *Graph) makeAtLeast(k int, args []Lit) Lit {
	kept := make([]Lit, 0, len(args))
	for _, a := range args {
		if n := g.Nodes[a.Node]; n.Kind == NodeConstant {
			if n.Const != a.Negated {
				k--
			}
			continue
		}
		kept = append(kept, a)
	}
	args = kept
	if k <= 0 {
		return g.constLit(true)
	}
	if k > len(args) {
		return g.constLit(false)
	}
	if k == len(args) {
		return g.makeGate(NodeAND, 0, args)
	}
	if k == 1 {
		return g.makeGate(NodeOR, 0, args)
	}
	key := canonicalKey(NodeATLEAST, k, args)
	if id, ok := g.nodeMemo[key]; ok {
		return Lit{Node: id}
	}
	sorted := append([]Lit(nil), args...)
	id := g.newNode(Node{Kind: NodeATLEAST, Args: sorted, K: k})
	g.nodeMemo[key] = id
	return Lit{Node: id}
}
