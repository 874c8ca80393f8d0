package quant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handanlinzhang/scram/pkg/mef"
	"github.com/handanlinzhang/scram/pkg/mocus"
	"github.com/handanlinzhang/scram/pkg/preprocess"
)

// buildABC reproduces spec.md §8's first row: OR(a,b,c), p=0.1/0.2/0.3,
// exact P = 1 - (1-0.1)(1-0.2)(1-0.3) = 0.496.
func buildABC(t *testing.T) (*mocus.CutSets, *preprocess.Graph) {
	t.Helper()
	m := mef.NewModel("abc")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	c, _ := m.AddBasicEvent("c", &mef.Constant{Value: 0.3})
	top, _ := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(a), mef.Pos(b), mef.Pos(c)}})
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "abc", Tops: []mef.EventRef{top}}))
	require.Empty(t, m.Validate())

	g, err := preprocess.Preprocess(m, top, false)
	require.NoError(t, err)
	cs, err := mocus.Compute(g, 0)
	require.NoError(t, err)
	return cs, g
}

func TestProbability_MCUBIsExactForDisjointCutSets(t *testing.T) {
	cs, g := buildABC(t)
	env := mef.NewEnv(1.0)
	p, err := Probability(cs, g, env, MCUB, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.496, p, 1e-9)
}

func TestProbability_InclusionExclusionMatchesMCUBWhenDisjoint(t *testing.T) {
	cs, g := buildABC(t)
	env := mef.NewEnv(1.0)
	p, err := Probability(cs, g, env, InclusionExclusion, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.496, p, 1e-9)
}

func TestProbability_RareEventOverestimates(t *testing.T) {
	cs, g := buildABC(t)
	env := mef.NewEnv(1.0)
	p, err := Probability(cs, g, env, RareEvent, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, p, 1e-9) // 0.1+0.2+0.3, ignores overlap
	assert.Greater(t, p, 0.496)
}

// Fussell-Vesely is (P - P0)/P. Under MCUB, P = 0.496 and forcing a, b, c
// to false leaves P0 = 0.44, 0.37, 0.28, so the three measures sum to
// (0.056 + 0.126 + 0.216) / 0.496 = 0.398 / 0.496.
func TestAnalyzeImportance_FusselVeselySumsRelativeDrops(t *testing.T) {
	cs, g := buildABC(t)
	env := mef.NewEnv(1.0)
	top, err := Probability(cs, g, env, MCUB, 0)
	require.NoError(t, err)

	imps, err := AnalyzeImportance(cs, g, env, MCUB, 0, top)
	require.NoError(t, err)
	require.Len(t, imps, 3)

	total := 0.0
	for _, imp := range imps {
		total += imp.FusselVesely
		assert.Greater(t, imp.Birnbaum, 0.0)
		assert.Greater(t, imp.RAW, 1.0)
	}
	assert.InDelta(t, 0.398/0.496, total, 1e-9)
}

func TestUncertainty_PointDistributionCollapsesToConstant(t *testing.T) {
	cs, g := buildABC(t)
	result, err := Uncertainty(context.Background(), cs, g, 1.0, MCUB, 0, 200, 42)
	require.NoError(t, err)
	assert.Equal(t, 200, result.Trials)
	assert.InDelta(t, 0.496, result.Mean, 1e-9)
	assert.InDelta(t, 0.0, result.StdDev, 1e-9) // all basic events are point constants
}

func TestUncertainty_ReproducibleAcrossRuns(t *testing.T) {
	cs, g := buildABC(t)
	r1, err := Uncertainty(context.Background(), cs, g, 1.0, MCUB, 0, 500, 7)
	require.NoError(t, err)
	r2, err := Uncertainty(context.Background(), cs, g, 1.0, MCUB, 0, 500, 7)
	require.NoError(t, err)
	assert.Equal(t, r1.Mean, r2.Mean)
	assert.Equal(t, r1.Quantiles, r2.Quantiles)
}

// buildAlwaysFailing wires a and b's failure probability so evaluating b's
// expression under sampling always returns a NumericalError (Gamma with a
// non-positive shape), letting every uncertainty trial that reaches it
// fail deterministically. Skips Model.Validate() on purpose: validation
// would already reject this expression, which is exactly the point — this
// exercises Uncertainty's own discard/threshold path, not construction.
func buildAlwaysFailing(t *testing.T) (*mocus.CutSets, *preprocess.Graph) {
	t.Helper()
	m := mef.NewModel("always-failing")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Gamma{Shape: &mef.Constant{Value: -1}, Scale: &mef.Constant{Value: 1}})
	top, _ := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(a), mef.Pos(b)}})
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "always-failing", Tops: []mef.EventRef{top}}))

	g, err := preprocess.Preprocess(m, top, false)
	require.NoError(t, err)
	cs, err := mocus.Compute(g, 0)
	require.NoError(t, err)
	return cs, g
}

func TestUncertainty_DiscardsFailedTrialsUntilThresholdExceeded(t *testing.T) {
	cs, g := buildAlwaysFailing(t)
	_, err := Uncertainty(context.Background(), cs, g, 1.0, MCUB, 0, 50, 1)
	require.Error(t, err)
	var numErr *mef.NumericalError
	require.ErrorAs(t, err, &numErr)
}
