package quant

import (
	"math"

	"github.com/handanlinzhang/scram/pkg/mef"
	"github.com/handanlinzhang/scram/pkg/mocus"
	"github.com/handanlinzhang/scram/pkg/preprocess"
)

// Importance holds the five measures spec.md §4.5 names for one basic
// event. RRW and RAW are +Inf when the corresponding denominator is zero
// (forcing the event to false makes the top event impossible, or the top
// probability itself is zero) rather than an error — spec.md §4.5 treats this as a
// valid, if degenerate, result.
type Importance struct {
	Leaf         int32
	Name         string
	FusselVesely float64
	Birnbaum     float64
	Criticality  float64
	RRW          float64
	RAW          float64
}

// AnalyzeImportance computes Importance for every leaf that appears in at
// least one cut set. topProb must already have been computed (by
// Probability) at the same mode/env settings.
func AnalyzeImportance(cs *mocus.CutSets, g *preprocess.Graph, env *mef.Env, mode Mode, numSums int, topProb float64) ([]Importance, error) {
	appearing := leavesIn(cs)
	results := make([]Importance, 0, len(appearing))

	for _, leaf := range appearing {
		p, err := env.Eval(g.Leaves[leaf].Expr)
		if err != nil {
			return nil, err
		}

		pTrue, err := probabilityForced(cs, g, env, mode, numSums, leaf, true)
		if err != nil {
			return nil, err
		}
		pFalse, err := probabilityForced(cs, g, env, mode, numSums, leaf, false)
		if err != nil {
			return nil, err
		}
		birnbaum := pTrue - pFalse

		results = append(results, Importance{
			Leaf:         leaf,
			Name:         g.Leaves[leaf].Name,
			FusselVesely: fusselVesely(topProb, pFalse),
			Birnbaum:     birnbaum,
			Criticality:  birnbaum * p / safe(topProb),
			RRW:          ratio(topProb, pFalse),
			RAW:          ratio(pTrue, topProb),
		})
	}
	return results, nil
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return math.Inf(1)
	}
	return num / den
}

func safe(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func leavesIn(cs *mocus.CutSets) []int32 {
	seen := make(map[int32]bool)
	var out []int32
	for _, s := range cs.Sets {
		for _, l := range s.Lits {
			if !seen[l.Leaf] {
				seen[l.Leaf] = true
				out = append(out, l.Leaf)
			}
		}
	}
	return out
}

// fusselVesely is (P - P0)/P: the fraction of the top probability P that
// disappears when leaf is forced to false (P0 = pFalse). It is 0 when P
// is 0.
func fusselVesely(topProb, pFalse float64) float64 {
	if topProb == 0 {
		return 0
	}
	return (topProb - pFalse) / topProb
}

func containsLeaf(s mocus.CutSet, leaf int32) bool {
	for _, l := range s.Lits {
		if l.Leaf == leaf {
			return true
		}
	}
	return false
}

// probabilityForced computes the top probability with leaf's own
// probability pinned to 1 (forced=true) or 0 (forced=false), the standard
// Birnbaum/RAW/RRW construction. A cut set requiring the leaf at the
// opposite polarity from forced becomes unreachable (probability 0); a
// cut set that no longer needs leaf at all is evaluated unchanged; a cut
// set needing leaf at the forced polarity drops that literal from the
// product (its probability is pinned to 1).
func probabilityForced(cs *mocus.CutSets, g *preprocess.Graph, env *mef.Env, mode Mode, numSums int, leaf int32, forced bool) (float64, error) {
	filtered := &mocus.CutSets{}
	for _, s := range cs.Sets {
		reachable := true
		lits := make([]mocus.Literal, 0, len(s.Lits))
		for _, l := range s.Lits {
			if l.Leaf != leaf {
				lits = append(lits, l)
				continue
			}
			needsTrue := !l.Negated
			if needsTrue != forced {
				reachable = false
				break
			}
			// literal pinned to certain: drop it from the product
		}
		if reachable {
			filtered.Sets = append(filtered.Sets, mocus.CutSet{Lits: lits})
		}
	}
	return Probability(filtered, g, env, mode, numSums)
}
