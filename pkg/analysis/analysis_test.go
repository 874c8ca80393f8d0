package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handanlinzhang/scram/pkg/mef"
	"github.com/handanlinzhang/scram/pkg/quant"
)

// buildABC reproduces spec.md §8 row 1: OR(a,b,c), P = 0.496.
func buildABC(t *testing.T) *mef.Model {
	t.Helper()
	m := mef.NewModel("abc")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	c, _ := m.AddBasicEvent("c", &mef.Constant{Value: 0.3})
	top, _ := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(a), mef.Pos(b), mef.Pos(c)}})
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "abc", Tops: []mef.EventRef{top}}))
	require.Empty(t, m.Validate())
	return m
}

func defaultOptions() Options {
	return Options{
		ProbabilityAnalysis: true,
		LimitOrder:          20,
		NumSums:             7,
		MissionTime:         1.0,
		NumTrials:           100,
		Seed:                1,
		Mode:                quant.MCUB,
	}
}

func TestDriver_AnalyzeComputesProbability(t *testing.T) {
	m := buildABC(t)
	d := NewDriver(m, defaultOptions())
	require.NoError(t, d.Analyze(context.Background()))

	results := d.Results()
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.True(t, results[0].HasProbability)
	assert.InDelta(t, 0.496, results[0].Probability, 1e-9)
	assert.Len(t, results[0].CutSets.Sets, 3)
}

func TestDriver_SecondAnalyzeReturnsLogicError(t *testing.T) {
	m := buildABC(t)
	d := NewDriver(m, defaultOptions())
	require.NoError(t, d.Analyze(context.Background()))

	err := d.Analyze(context.Background())
	require.Error(t, err)
	kinded, ok := err.(mef.Kinded)
	require.True(t, ok)
	assert.Equal(t, "logic", kinded.Kind())
}

func TestDriver_ImportanceWithoutProbabilityIsLogicError(t *testing.T) {
	m := buildABC(t)
	opts := defaultOptions()
	opts.ProbabilityAnalysis = false
	opts.ImportanceAnalysis = true
	d := NewDriver(m, opts)

	err := d.Analyze(context.Background())
	require.Error(t, err)
	kinded, ok := err.(mef.Kinded)
	require.True(t, ok)
	assert.Equal(t, "logic", kinded.Kind())
}

func TestDriver_ImportanceAndUncertaintyRun(t *testing.T) {
	m := buildABC(t)
	opts := defaultOptions()
	opts.ImportanceAnalysis = true
	opts.UncertaintyAnalysis = true
	d := NewDriver(m, opts)
	require.NoError(t, d.Analyze(context.Background()))

	results := d.Results()
	require.Len(t, results, 1)
	require.Len(t, results[0].Importance, 3)
	require.NotNil(t, results[0].Uncertainty)
	assert.Equal(t, 100, results[0].Uncertainty.Trials)
}

func TestDriver_CutOffFiltersLowProbabilityCutSets(t *testing.T) {
	m := buildABC(t)
	opts := defaultOptions()
	opts.CutOff = 0.25 // drops {a}=0.1 and {b}=0.2, keeps {c}=0.3
	d := NewDriver(m, opts)
	require.NoError(t, d.Analyze(context.Background()))

	results := d.Results()
	require.Len(t, results, 1)
	require.Len(t, results[0].CutSets.Sets, 1)
	assert.InDelta(t, 0.3, results[0].Probability, 1e-9)
}

func TestDriver_MetricsRecordedPerTarget(t *testing.T) {
	m := buildABC(t)
	d := NewDriver(m, defaultOptions())
	require.NoError(t, d.Analyze(context.Background()))

	metrics := d.Metrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, "top", metrics[0].Gate)
	assert.Equal(t, 3, metrics[0].NumCutSets)
}
