package config

import (
	"github.com/handanlinzhang/scram/pkg/analysis"
	"github.com/handanlinzhang/scram/pkg/quant"
)

// AnalysisOptions translates Settings into the pkg/analysis.Driver's
// Options, resolving the string Approximation setting to a quant.Mode.
func (s *Settings) AnalysisOptions() analysis.Options {
	return analysis.Options{
		ProbabilityAnalysis: s.ProbabilityAnalysis,
		ImportanceAnalysis:  s.ImportanceAnalysis,
		UncertaintyAnalysis: s.UncertaintyAnalysis,
		CCFAnalysis:         s.CCFAnalysis,
		LimitOrder:          s.LimitOrder,
		NumSums:             s.NumSums,
		CutOff:              s.CutOff,
		MissionTime:         s.MissionTime,
		NumTrials:           s.NumTrials,
		Seed:                s.Seed,
		Mode:                s.mode(),
		Workers:             s.Workers,
	}
}

func (s *Settings) mode() quant.Mode {
	switch s.Approximation {
	case "rare-event":
		return quant.RareEvent
	case "none":
		return quant.InclusionExclusion
	default:
		return quant.MCUB
	}
}
