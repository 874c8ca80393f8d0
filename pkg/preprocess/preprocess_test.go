package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handanlinzhang/scram/pkg/mef"
)

func leafNames(g *Graph) []string {
	names := make([]string, len(g.Leaves))
	for i, l := range g.Leaves {
		names[i] = l.Name
	}
	return names
}

func TestPreprocess_ABC(t *testing.T) {
	m := mef.NewModel("abc")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	c, _ := m.AddBasicEvent("c", &mef.Constant{Value: 0.3})
	top, err := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(a), mef.Pos(b), mef.Pos(c)}})
	require.NoError(t, err)
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "abc", Tops: []mef.EventRef{top}}))
	require.Empty(t, m.Validate())

	g, err := Preprocess(m, top, false)
	require.NoError(t, err)
	assert.Len(t, g.Leaves, 3)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, leafNames(g))
	assert.Equal(t, NodeOR, g.Nodes[g.Top.Node].Kind)
}

func TestPreprocess_NANDRewritesToOR(t *testing.T) {
	m := mef.NewModel("nand")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	top, err := m.AddGate("top", mef.Formula{Op: mef.NAND, Args: []mef.Literal{mef.Pos(a), mef.Pos(b)}})
	require.NoError(t, err)
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "ft", Tops: []mef.EventRef{top}}))
	require.Empty(t, m.Validate())

	g, err := Preprocess(m, top, false)
	require.NoError(t, err)
	// NOT(AND(a,b)) == OR(NOT a, NOT b)
	assert.Equal(t, NodeOR, g.Nodes[g.Top.Node].Kind)
	for _, lit := range g.Nodes[g.Top.Node].Args {
		assert.True(t, lit.Negated)
	}
}

func TestPreprocess_UnityFoldsToConstantTrue(t *testing.T) {
	m := mef.NewModel("unity")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	top, err := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(a), mef.Neg(a)}})
	require.NoError(t, err)
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "ft", Tops: []mef.EventRef{top}}))
	require.Empty(t, m.Validate())

	g, err := Preprocess(m, top, false)
	require.NoError(t, err)
	topNode := g.Nodes[g.Top.Node]
	require.Equal(t, NodeConstant, topNode.Kind)
	assert.True(t, topNode.Const != g.Top.Negated)
}

func TestPreprocess_NullFoldsToConstantFalse(t *testing.T) {
	m := mef.NewModel("null")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	top, err := m.AddGate("top", mef.Formula{Op: mef.AND, Args: []mef.Literal{mef.Pos(a), mef.Neg(a)}})
	require.NoError(t, err)
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "ft", Tops: []mef.EventRef{top}}))
	require.Empty(t, m.Validate())

	g, err := Preprocess(m, top, false)
	require.NoError(t, err)
	topNode := g.Nodes[g.Top.Node]
	require.Equal(t, NodeConstant, topNode.Kind)
	assert.False(t, topNode.Const != g.Top.Negated)
}

func TestPreprocess_HashConsSharesIdenticalSubgraphs(t *testing.T) {
	m := mef.NewModel("share")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	inner1, err := m.AddGate("inner1", mef.Formula{Op: mef.AND, Args: []mef.Literal{mef.Pos(a), mef.Pos(b)}})
	require.NoError(t, err)
	inner2, err := m.AddGate("inner2", mef.Formula{Op: mef.AND, Args: []mef.Literal{mef.Pos(b), mef.Pos(a)}})
	require.NoError(t, err)
	top, err := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(inner1), mef.Pos(inner2)}})
	require.NoError(t, err)
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "ft", Tops: []mef.EventRef{top}}))
	require.Empty(t, m.Validate())

	g, err := Preprocess(m, top, false)
	require.NoError(t, err)
	topNode := g.Nodes[g.Top.Node]
	// both gates hash-cons to one x = AND(a, b), so OR(x, x) collapses to x
	require.Equal(t, NodeAND, topNode.Kind)
	require.Len(t, topNode.Args, 2)
}

func TestPreprocess_AtLeastNegationFlipsK(t *testing.T) {
	m := mef.NewModel("atleast")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	c, _ := m.AddBasicEvent("c", &mef.Constant{Value: 0.3})
	inner, err := m.AddGate("inner", mef.Formula{Op: mef.ATLEAST, K: 2, Args: []mef.Literal{mef.Pos(a), mef.Pos(b), mef.Pos(c)}})
	require.NoError(t, err)
	top, err := m.AddGate("top", mef.Formula{Op: mef.NOT, Args: []mef.Literal{mef.Pos(inner)}})
	require.NoError(t, err)
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "ft", Tops: []mef.EventRef{top}}))
	require.Empty(t, m.Validate())

	g, err := Preprocess(m, top, false)
	require.NoError(t, err)
	topNode := g.Nodes[g.Top.Node]
	require.Equal(t, NodeATLEAST, topNode.Kind)
	assert.Equal(t, 2, topNode.K) // atleast(2 of 3) negated is atleast(3-2+1=2) of negated args
	for _, lit := range topNode.Args {
		assert.True(t, lit.Negated)
	}
}

func TestPreprocess_CCFExpansionAddsLeaves(t *testing.T) {
	m := mef.NewModel("ccf")
	p1, _ := m.AddBasicEvent("pump-1", &mef.Constant{Value: 0.01})
	p2, _ := m.AddBasicEvent("pump-2", &mef.Constant{Value: 0.01})
	top, err := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(p1), mef.Pos(p2)}})
	require.NoError(t, err)
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "ft", Tops: []mef.EventRef{top}}))
	require.NoError(t, m.AddCCFGroup(&mef.CCFGroup{
		Name:    "pumps",
		Model:   mef.BetaFactor,
		Members: []mef.EventRef{p1, p2},
		Factors: []float64{0.05},
	}))
	require.Empty(t, m.Validate())

	withoutCCF, err := Preprocess(m, top, false)
	require.NoError(t, err)
	assert.Len(t, withoutCCF.Leaves, 2)

	withCCF, err := Preprocess(m, top, true)
	require.NoError(t, err)
	// each member gets an independent leaf, plus one shared common-cause leaf
	assert.Len(t, withCCF.Leaves, 3)
}

func TestPreprocess_ModuleDetection(t *testing.T) {
	m := mef.NewModel("modular")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	c, _ := m.AddBasicEvent("c", &mef.Constant{Value: 0.3})
	d, _ := m.AddBasicEvent("d", &mef.Constant{Value: 0.4})
	sub, err := m.AddGate("sub", mef.Formula{Op: mef.AND, Args: []mef.Literal{mef.Pos(a), mef.Pos(b)}})
	require.NoError(t, err)
	top, err := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(sub), mef.Pos(c), mef.Pos(d)}})
	require.NoError(t, err)
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "ft", Tops: []mef.EventRef{top}}))
	require.Empty(t, m.Validate())

	g, err := Preprocess(m, top, false)
	require.NoError(t, err)

	var found bool
	for _, n := range g.Nodes {
		if n.IsModule && n.Kind == NodeAND {
			found = true
		}
	}
	assert.True(t, found, "expected the AND(a,b) subgraph to be detected as a module")
}
