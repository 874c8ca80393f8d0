package mocus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handanlinzhang/scram/pkg/mef"
	"github.com/handanlinzhang/scram/pkg/preprocess"
)

func mustCompute(t *testing.T, m *mef.Model, top mef.EventRef, limitOrder int) *CutSets {
	t.Helper()
	require.Empty(t, m.Validate())
	g, err := preprocess.Preprocess(m, top, false)
	require.NoError(t, err)
	cs, err := Compute(g, limitOrder)
	require.NoError(t, err)
	return cs
}

func names(cs CutSet, leaves []preprocess.LeafInfo) []string {
	out := make([]string, len(cs.Lits))
	for i, l := range cs.Lits {
		out[i] = leaves[l.Leaf].Name
	}
	return out
}

// abc: top = OR(a, b, c) -> three singleton cut sets, matching spec.md §8.
func TestCompute_ABC(t *testing.T) {
	m := mef.NewModel("abc")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	c, _ := m.AddBasicEvent("c", &mef.Constant{Value: 0.3})
	top, _ := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(a), mef.Pos(b), mef.Pos(c)}})
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "abc", Tops: []mef.EventRef{top}}))

	cs := mustCompute(t, m, top, 0)
	require.Len(t, cs.Sets, 3)
	for _, s := range cs.Sets {
		assert.Equal(t, 1, s.Order())
	}
}

// ab_bc: top = OR(AND(a,b), AND(b,c)) -> two cut sets {a,b} and {b,c}.
func TestCompute_AB_BC(t *testing.T) {
	m := mef.NewModel("ab_bc")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	c, _ := m.AddBasicEvent("c", &mef.Constant{Value: 0.3})
	g1, _ := m.AddGate("g1", mef.Formula{Op: mef.AND, Args: []mef.Literal{mef.Pos(a), mef.Pos(b)}})
	g2, _ := m.AddGate("g2", mef.Formula{Op: mef.AND, Args: []mef.Literal{mef.Pos(b), mef.Pos(c)}})
	top, _ := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(g1), mef.Pos(g2)}})
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "ab_bc", Tops: []mef.EventRef{top}}))

	cs := mustCompute(t, m, top, 0)
	require.Len(t, cs.Sets, 2)
	for _, s := range cs.Sets {
		assert.Equal(t, 2, s.Order())
	}
}

// atleast: top = ATLEAST(2, a, b, c) -> three cut sets of order 2:
// {a,b}, {a,c}, {b,c}.
func TestCompute_AtLeast(t *testing.T) {
	m := mef.NewModel("atleast")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	c, _ := m.AddBasicEvent("c", &mef.Constant{Value: 0.3})
	top, _ := m.AddGate("top", mef.Formula{Op: mef.ATLEAST, K: 2, Args: []mef.Literal{mef.Pos(a), mef.Pos(b), mef.Pos(c)}})
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "atleast", Tops: []mef.EventRef{top}}))

	cs := mustCompute(t, m, top, 0)
	require.Len(t, cs.Sets, 3)
	for _, s := range cs.Sets {
		assert.Equal(t, 2, s.Order())
	}
}

// xor: top = XOR(a, b) -> {a, not b} and {not a, b}.
func TestCompute_XOR(t *testing.T) {
	m := mef.NewModel("xor")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	top, _ := m.AddGate("top", mef.Formula{Op: mef.XOR, Args: []mef.Literal{mef.Pos(a), mef.Pos(b)}})
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "xor", Tops: []mef.EventRef{top}}))

	cs := mustCompute(t, m, top, 0)
	require.Len(t, cs.Sets, 2)
	for _, s := range cs.Sets {
		require.Len(t, s.Lits, 2)
		assert.NotEqual(t, s.Lits[0].Negated, s.Lits[1].Negated)
	}
}

// unity: top = OR(a, not a) -> always true: one unconditional (empty)
// cut set.
func TestCompute_Unity(t *testing.T) {
	m := mef.NewModel("unity")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	top, _ := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(a), mef.Neg(a)}})
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "unity", Tops: []mef.EventRef{top}}))

	cs := mustCompute(t, m, top, 0)
	require.Len(t, cs.Sets, 1)
	assert.Empty(t, cs.Sets[0].Lits)
}

// null: top = AND(a, not a) -> never true: no cut sets.
func TestCompute_Null(t *testing.T) {
	m := mef.NewModel("null")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	top, _ := m.AddGate("top", mef.Formula{Op: mef.AND, Args: []mef.Literal{mef.Pos(a), mef.Neg(a)}})
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "null", Tops: []mef.EventRef{top}}))

	cs := mustCompute(t, m, top, 0)
	assert.Empty(t, cs.Sets)
}

// A limitOrder cutoff drops higher-order cut sets but never a lower one.
func TestCompute_LimitOrderCutoff(t *testing.T) {
	m := mef.NewModel("cutoff")
	a, _ := m.AddBasicEvent("a", &mef.Constant{Value: 0.1})
	b, _ := m.AddBasicEvent("b", &mef.Constant{Value: 0.2})
	c, _ := m.AddBasicEvent("c", &mef.Constant{Value: 0.3})
	d, _ := m.AddBasicEvent("d", &mef.Constant{Value: 0.4})
	triple, _ := m.AddGate("triple", mef.Formula{Op: mef.AND, Args: []mef.Literal{mef.Pos(b), mef.Pos(c), mef.Pos(d)}})
	top, _ := m.AddGate("top", mef.Formula{Op: mef.OR, Args: []mef.Literal{mef.Pos(a), mef.Pos(triple)}})
	require.NoError(t, m.AddFaultTree(&mef.FaultTree{Name: "cutoff", Tops: []mef.EventRef{top}}))

	cs := mustCompute(t, m, top, 2)
	require.Len(t, cs.Sets, 1)
	assert.Equal(t, 1, cs.Sets[0].Order())
}

func TestMinimize_DropsSupersets(t *testing.T) {
	small := CutSet{Lits: []Literal{{Leaf: 0}}}
	big := CutSet{Lits: []Literal{{Leaf: 0}, {Leaf: 1}}}
	kept := minimize([]CutSet{big, small})
	require.Len(t, kept, 1)
	assert.Equal(t, small, kept[0])
}
