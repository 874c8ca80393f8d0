package root

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAnalyze_ABCPrintsProbability(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"analyze", "abc"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "P = 0.496")
}

func TestRunAnalyze_UnknownExampleIsValidationError(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"analyze", "no-such-example"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown example"))
}
