// Package quant turns a set of minimal cut sets into numbers: the top
// event's probability (by one of three approximations), each basic
// event's importance, and, via Monte Carlo sampling, the distribution of
// the top probability under the model's parameter uncertainty.
package quant

import (
	"github.com/handanlinzhang/scram/pkg/mef"
	"github.com/handanlinzhang/scram/pkg/mocus"
	"github.com/handanlinzhang/scram/pkg/preprocess"
)

// Mode selects the top-event probability approximation (spec.md §4.4).
type Mode uint8

const (
	// RareEvent sums each cut set's probability, ignoring intersections
	// between cut sets. Overestimates when cut sets overlap or are large.
	RareEvent Mode = iota
	// MCUB (min-cut upper bound) treats cut sets as independent events and
	// computes 1 - product(1 - P(cutset)); always an upper bound, tighter
	// than RareEvent.
	MCUB
	// InclusionExclusion computes the exact probability via a signed sum
	// over cut-set intersections, truncated to NumSums terms.
	InclusionExclusion
)

// Probability computes the top event's probability from cs using mode.
// env is reused across cut sets: its memo table caches by leaf, not by
// literal polarity, which is safe because point-value leaf probabilities
// don't depend on the polarity a cut set uses them at.
func Probability(cs *mocus.CutSets, g *preprocess.Graph, env *mef.Env, mode Mode, numSums int) (float64, error) {
	switch mode {
	case RareEvent:
		return rareEvent(cs, g, env)
	case MCUB:
		return mcub(cs, g, env)
	case InclusionExclusion:
		return inclusionExclusion(cs, g, env, numSums)
	default:
		return 0, &mef.NumericalError{Op: "probability", Msg: "unknown mode"}
	}
}

// CutSetProbability evaluates the conjunctive probability of one cut set:
// the product of each literal's probability (P(event) if positive,
// 1-P(event) if negated). Exported for the driver's cut-off filter
// (spec.md §9: cut-off is a post-minimization probability filter).
func CutSetProbability(cs mocus.CutSet, g *preprocess.Graph, env *mef.Env) (float64, error) {
	return cutSetProbability(cs, g, env)
}

func cutSetProbability(cs mocus.CutSet, g *preprocess.Graph, env *mef.Env) (float64, error) {
	p := 1.0
	for _, lit := range cs.Lits {
		v, err := env.Eval(g.Leaves[lit.Leaf].Expr)
		if err != nil {
			return 0, err
		}
		if lit.Negated {
			v = 1 - v
		}
		p *= v
	}
	return p, nil
}

func rareEvent(cs *mocus.CutSets, g *preprocess.Graph, env *mef.Env) (float64, error) {
	total := 0.0
	for _, s := range cs.Sets {
		p, err := cutSetProbability(s, g, env)
		if err != nil {
			return 0, err
		}
		total += p
	}
	return total, nil
}

func mcub(cs *mocus.CutSets, g *preprocess.Graph, env *mef.Env) (float64, error) {
	complement := 1.0
	for _, s := range cs.Sets {
		p, err := cutSetProbability(s, g, env)
		if err != nil {
			return 0, err
		}
		complement *= 1 - p
	}
	return 1 - complement, nil
}

// inclusionExclusion computes P(union of cut sets) exactly via a signed
// sum over every subset of cut sets up to size numSums (spec.md §4.4);
// numSums <= 0 or numSums >= len(cs.Sets) requests the full exact sum.
func inclusionExclusion(cs *mocus.CutSets, g *preprocess.Graph, env *mef.Env, numSums int) (float64, error) {
	n := len(cs.Sets)
	if n == 0 {
		return 0, nil
	}
	limit := numSums
	if limit <= 0 || limit > n {
		limit = n
	}

	total := 0.0
	combo := make([]int, 0, limit)
	var recurse func(start, depth int) error
	recurse = func(start, depth int) error {
		if depth > 0 {
			p, err := intersectionProbability(cs, combo, g, env)
			if err != nil {
				return err
			}
			if depth%2 == 1 {
				total += p
			} else {
				total -= p
			}
		}
		if depth == limit {
			return nil
		}
		for i := start; i < n; i++ {
			combo = append(combo, i)
			if err := recurse(i+1, depth+1); err != nil {
				return err
			}
			combo = combo[:len(combo)-1]
		}
		return nil
	}
	if err := recurse(0, 0); err != nil {
		return 0, err
	}
	if total < 0 {
		total = 0
	}
	if total > 1 {
		total = 1
	}
	return total, nil
}

// intersectionProbability computes P(cutset_i1 AND cutset_i2 AND ...): the
// literals of every named cut set unioned into one conjunction, with a
// contradictory union (the same leaf both positive and negative) yielding
// probability 0.
func intersectionProbability(cs *mocus.CutSets, indices []int, g *preprocess.Graph, env *mef.Env) (float64, error) {
	union := make(map[int32]bool)
	p := 1.0
	for _, idx := range indices {
		for _, lit := range cs.Sets[idx].Lits {
			key := lit.Leaf
			if lit.Negated {
				key = -lit.Leaf - 1
			}
			if union[key] {
				continue
			}
			if union[oppositeKey(key)] {
				return 0, nil
			}
			union[key] = true
			v, err := env.Eval(g.Leaves[lit.Leaf].Expr)
			if err != nil {
				return 0, err
			}
			if lit.Negated {
				v = 1 - v
			}
			p *= v
		}
	}
	return p, nil
}

// oppositeKey maps a leaf's positive encoding to its negative encoding and
// back: -key-1 is its own inverse for this encoding (L <-> -L-1).
func oppositeKey(key int32) int32 { return -key - 1 }
