package preprocess

import (
	"fmt"

	"github.com/handanlinzhang/scram/pkg/mef"
)

// buildCCFExpansion replaces a CCF-group member's plain basic-event leaf
// with the disjunction of every CCF basic event that can cause it to fail:
// its own independent failure, plus every common-cause combination that
// includes it (spec.md §4.2 step 6, §3's CCF models).
func (b *builder) buildCCFExpansion(ref mef.EventRef, be *mef.BasicEvent) (Lit, error) {
	group := b.m.CCFGroups()[be.CCFGroup]
	memberIdx := indexOfMember(group, ref)
	if memberIdx < 0 {
		return Lit{}, &mef.ValidationError{Where: be.Name, Msg: "basic event not found in its own CCF group"}
	}
	n := len(group.Members)

	var terms []Lit
	for k := 1; k <= n; k++ {
		for _, subset := range subsetsContaining(n, memberIdx, k) {
			expr, ok := ccfSubsetExpr(group, subset, be.Expr)
			if !ok {
				continue // model assigns no probability to this subset size
			}
			name := group.CCFBasicEventName(subset)
			leaf := b.g.internLeaf(fmt.Sprintf("ccf:%s:%v", group.Name, subset), name, expr)
			terms = append(terms, Lit{Node: b.g.basicNode(leaf)})
		}
	}
	if len(terms) == 0 {
		return Lit{}, &mef.ValidationError{Where: group.Name, Msg: "CCF model produced no failure modes"}
	}
	return b.g.makeGate(NodeOR, 0, terms), nil
}

func indexOfMember(g *mef.CCFGroup, ref mef.EventRef) int {
	for i, m := range g.Members {
		if m == ref {
			return i
		}
	}
	return -1
}

// subsetsContaining enumerates every k-subset (by index into the group's
// Members) of {0,...,n-1} that includes member, in ascending order.
func subsetsContaining(n, member, k int) [][]int {
	var out [][]int
	rest := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != member {
			rest = append(rest, i)
		}
	}
	var combo func(start int, chosen []int)
	combo = func(start int, chosen []int) {
		if len(chosen) == k-1 {
			subset := append(append([]int{}, chosen...), member)
			sortInts(subset)
			out = append(out, subset)
			return
		}
		for i := start; i < len(rest); i++ {
			combo(i+1, append(chosen, rest[i]))
		}
	}
	combo(0, nil)
	return out
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}

// ccfSubsetExpr derives the probability expression for a subset of size
// k = len(subset) failing together, scaling the member's own base
// probability by a constant factor so Monte-Carlo uncertainty on the base
// event still propagates. Beta-factor only defines independent (k=1) and
// full-group common-cause (k=n) failure modes; MGL, alpha-factor, and
// phi-factor spread their higher-order factors evenly across every
// same-size subset containing the member, an even split standing in for
// the models' staggered-testing refinements.
func ccfSubsetExpr(g *mef.CCFGroup, subset []int, baseProb mef.Expression) (mef.Expression, bool) {
	n := len(g.Members)
	k := len(subset)

	switch g.Model {
	case mef.BetaFactor:
		beta := factorOrZero(g.Factors, 0)
		switch {
		case k == 1:
			return scaled(1-beta, baseProb), true
		case k == n && n > 1:
			return scaled(beta, baseProb), true
		default:
			return nil, false
		}
	default: // MGL, AlphaFactor, PhiFactor
		if k == 1 {
			sum := 0.0
			for _, f := range g.Factors {
				sum += f
			}
			return scaled(1-sum, baseProb), true
		}
		if k-2 >= len(g.Factors) {
			return nil, false
		}
		factor := g.Factors[k-2]
		combos := choose(n-1, k-1)
		if combos == 0 {
			return nil, false
		}
		return scaled(factor/float64(combos), baseProb), true
	}
}

func factorOrZero(factors []float64, i int) float64 {
	if i < 0 || i >= len(factors) {
		return 0
	}
	return factors[i]
}

func scaled(factor float64, base mef.Expression) mef.Expression {
	return &mef.Product{Args: []mef.Expression{&mef.Constant{Value: factor}, base}}
}

func choose(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	result := 1
	for i := 0; i < k; i++ {
		result = result * (n - i) / (i + 1)
	}
	return result
}
