package root

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handanlinzhang/scram/internal/examples"
	"github.com/handanlinzhang/scram/pkg/analysis"
	"github.com/handanlinzhang/scram/pkg/mef"
	"github.com/handanlinzhang/scram/pkg/mocus"
	"github.com/handanlinzhang/scram/pkg/preprocess"
	"github.com/handanlinzhang/scram/pkg/quant"
	"github.com/handanlinzhang/scram/pkg/report"
)

var (
	flagProbability bool
	flagImportance  bool
	flagUncertainty bool
	flagCCF         bool
	flagLimitOrder  int
	flagNumSums     int
	flagCutOff      float64
	flagDot         bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <example>",
	Short: "Run fault-tree analysis against a built-in example model",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	flags := analyzeCmd.Flags()
	flags.BoolVar(&flagProbability, "probability", true, "compute top-event probability")
	flags.BoolVar(&flagImportance, "importance", false, "compute per-event importance measures (requires --probability)")
	flags.BoolVar(&flagUncertainty, "uncertainty", false, "run Monte Carlo uncertainty propagation (requires --probability)")
	flags.BoolVar(&flagCCF, "ccf", false, "expand common-cause-failure groups")
	flags.IntVar(&flagLimitOrder, "limit-order", 0, "discard cut sets above this order (0 uses the config/default limit)")
	flags.IntVar(&flagNumSums, "num-sums", 0, "inclusion-exclusion truncation order (0 uses the config/default)")
	flags.Float64Var(&flagCutOff, "cut-off", -1, "post-minimization probability cut-off (negative uses the config/default)")
	flags.BoolVar(&flagDot, "dot", false, "also write <example>-tree.dot and <example>-cutsets.dot")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	name := args[0]
	build, ok := examples.FaultTreeExamples()[name]
	var ex *examples.Example
	if ok {
		ex = build()
	} else if name == "random-200" {
		ex = examples.Random200Example()
	} else {
		return &mef.ValidationError{Where: "analyze", Msg: fmt.Sprintf("unknown example %q", name)}
	}

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(settings)

	opts := settings.AnalysisOptions()
	opts.ProbabilityAnalysis = flagProbability
	opts.ImportanceAnalysis = flagImportance
	opts.UncertaintyAnalysis = flagUncertainty
	opts.CCFAnalysis = flagCCF
	if flagLimitOrder > 0 {
		opts.LimitOrder = flagLimitOrder
	}
	if flagNumSums > 0 {
		opts.NumSums = flagNumSums
	}
	if flagCutOff >= 0 {
		opts.CutOff = flagCutOff
	}

	driver := analysis.NewDriver(ex.Model, opts)
	logger.Info("starting analysis", "example", name)
	if err := driver.Analyze(cmd.Context()); err != nil {
		return err
	}
	logger.Info("analysis complete", "example", name)

	printResults(cmd, driver.Results())

	if flagDot {
		if err := writeDot(ex, opts.CCFAnalysis, driver.Results()); err != nil {
			return err
		}
	}
	return nil
}

func printResults(cmd *cobra.Command, results []analysis.Result) {
	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "%s: ERROR %v\n", r.GateName, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s: %d minimal cut sets\n", r.GateName, len(r.CutSets.Sets))
		if r.HasProbability {
			fmt.Fprintf(out, "  P = %.6g\n", r.Probability)
		}
		if len(r.Importance) > 0 {
			sorted := append([]quant.Importance(nil), r.Importance...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].FusselVesely > sorted[j].FusselVesely })
			for _, imp := range sorted {
				fmt.Fprintf(out, "    %-24s FV=%.4g Birnbaum=%.4g Criticality=%.4g RRW=%.4g RAW=%.4g\n",
					imp.Name, imp.FusselVesely, imp.Birnbaum, imp.Criticality, imp.RRW, imp.RAW)
			}
		}
		if r.Uncertainty != nil {
			u := r.Uncertainty
			fmt.Fprintf(out, "  uncertainty: mean=%.6g stddev=%.6g trials=%d\n", u.Mean, u.StdDev, u.Trials)
		}
	}
}

func writeDot(ex *examples.Example, ccf bool, results []analysis.Result) error {
	treePath := ex.Name + "-tree.dot"
	if err := os.WriteFile(treePath, []byte(report.FaultTreeDOT(ex.Model, ex.Top)), 0o644); err != nil {
		return err
	}

	g, err := preprocess.Preprocess(ex.Model, ex.Top, ccf)
	if err != nil {
		return err
	}
	var cs *mocus.CutSets
	for _, r := range results {
		if r.GateRef == ex.Top && r.CutSets != nil {
			cs = r.CutSets
			break
		}
	}
	if cs == nil {
		cs, err = mocus.Compute(g, 0)
		if err != nil {
			return err
		}
	}
	cutsPath := ex.Name + "-cutsets.dot"
	if err := os.WriteFile(cutsPath, []byte(report.CutSetsDOT(cs, g)), 0o644); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "wrote", strings.Join([]string{treePath, cutsPath}, ", "))
	return nil
}
