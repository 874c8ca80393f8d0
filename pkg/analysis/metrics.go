package analysis

import (
	"fmt"
	"strings"
	"time"
)

// TargetMetric records one analysis target's cost, for the CLI's
// --verbose output and the 200-event performance scenario (spec.md §8).
type TargetMetric struct {
	Gate       string
	Duration   time.Duration
	NumCutSets int
}

// FormatMetricsTable renders metrics as a markdown table, in the spirit
// of the teacher's MetricsCollector.GenerateMetricsTable.
func FormatMetricsTable(metrics []TargetMetric) string {
	var sb strings.Builder
	sb.WriteString("| Gate | Duration | Cut Sets |\n")
	sb.WriteString("|------|----------|----------|\n")
	for _, m := range metrics {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d |\n", m.Gate, m.Duration, m.NumCutSets))
	}
	return sb.String()
}
