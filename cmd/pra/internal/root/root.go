// Package root wires the pra command tree: global flags shared by every
// subcommand, config loading, and logger setup, following
// yairfalse-tapio's cmd/tapio/root package shape.
package root

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/handanlinzhang/scram/internal/config"
	"github.com/handanlinzhang/scram/internal/obslog"
)

var (
	cfgFile     string
	seed        int64
	numTrials   int
	missionTime float64
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "pra",
	Short:         "Fault-tree and event-tree probabilistic risk analysis",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.pra.yaml)")
	flags.Int64Var(&seed, "seed", 0, "Monte Carlo seed (0 uses the config/default seed)")
	flags.IntVar(&numTrials, "num-trials", 0, "uncertainty analysis trial count (0 uses the config/default count)")
	flags.Float64Var(&missionTime, "mission-time", 0, "mission time for time-dependent expressions (0 uses the config/default time)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(analyzeCmd, eventTreeCmd)
}

// loadSettings resolves this invocation's Settings, overlaying any
// non-zero global flags on top of what internal/config.Load already
// resolved from file/env/flags.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	s, err := config.Load(cmd.Flags(), cfgFile)
	if err != nil {
		return nil, err
	}
	if seed != 0 {
		s.Seed = seed
	}
	if numTrials != 0 {
		s.NumTrials = numTrials
	}
	if missionTime != 0 {
		s.MissionTime = missionTime
	}
	if verbose {
		s.Verbose = true
	}
	return s, nil
}

func newLogger(s *config.Settings) *slog.Logger {
	level := slog.LevelInfo
	if s.Verbose {
		level = slog.LevelDebug
	}
	return obslog.New(level, os.Stderr)
}
