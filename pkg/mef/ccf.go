package mef

import "fmt"

// CCFModel identifies which common-cause-failure parameterization a
// CCFGroup uses (spec.md §3).
type CCFModel uint8

const (
	BetaFactor CCFModel = iota
	MGL
	AlphaFactor
	PhiFactor
)

func (m CCFModel) String() string {
	switch m {
	case BetaFactor:
		return "beta-factor"
	case MGL:
		return "MGL"
	case AlphaFactor:
		return "alpha-factor"
	case PhiFactor:
		return "phi-factor"
	default:
		return "unknown"
	}
}

// CCFGroup is a set of basic events sharing a common-cause model. Factors
// holds the model's alpha-k (or equivalent) factors, indexed from k=2.
type CCFGroup struct {
	Name    string
	Model   CCFModel
	Members []EventRef // must all be BasicEventKind
	Factors []float64
}

// CCFBasicEventName derives the name of the CCF basic event standing for
// the failure of exactly the members in subset (by index into Members),
// e.g. "PUMP-CCF-[0 2]".
func (g *CCFGroup) CCFBasicEventName(subset []int) string {
	return fmt.Sprintf("%s-CCF-%v", g.Name, subset)
}
