package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handanlinzhang/scram/internal/examples"
	"github.com/handanlinzhang/scram/pkg/eventtree"
	"github.com/handanlinzhang/scram/pkg/mef"
)

var eventTreeCCF bool

var eventTreeCmd = &cobra.Command{
	Use:   "event-tree <example>",
	Short: "Run event-tree sequence analysis against a built-in example model",
	Args:  cobra.ExactArgs(1),
	RunE:  runEventTree,
}

func init() {
	eventTreeCmd.Flags().BoolVar(&eventTreeCCF, "ccf", false, "expand common-cause-failure groups")
}

func runEventTree(cmd *cobra.Command, args []string) error {
	name := args[0]
	build, ok := examples.EventTreeExamples()[name]
	if !ok {
		return &mef.ValidationError{Where: "event-tree", Msg: fmt.Sprintf("unknown example %q", name)}
	}
	ex := build()

	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(settings)

	opts := eventtree.Options{
		Mode:        settings.AnalysisOptions().Mode,
		NumSums:     settings.NumSums,
		CCF:         eventTreeCCF,
		MissionTime: settings.MissionTime,
	}

	logger.Info("starting event-tree analysis", "example", name)
	res, err := eventtree.Analyze(ex.Model, ex.IE, opts)
	if err != nil {
		return err
	}
	logger.Info("event-tree analysis complete", "example", name)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s:\n", res.InitiatingEvent)
	for _, sp := range res.Sequences() {
		fmt.Fprintf(out, "  %-24s P = %.6g\n", sp.Name, sp.Probability)
	}
	return nil
}
