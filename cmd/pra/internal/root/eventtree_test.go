package root

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunEventTree_SmallSetBenchmarkPrintsSequences(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"event-tree", "small-set-benchmark"})

	require.NoError(t, rootCmd.Execute())
	got := out.String()
	assert.Contains(t, got, "success")
	assert.Contains(t, got, "degraded")
	assert.Contains(t, got, "core-damage")
}
