// Package preprocess rewrites a mef.Model's fault tree into the normalized
// working graph spec.md §4.2 describes: NOT pushed to leaves, NAND/NOR/XOR/
// NULL rewritten away, constants folded, same-polarity gates coalesced,
// structurally identical subgraphs hash-consed, independent subgraphs
// promoted to modules, and (optionally) CCF groups expanded.
package preprocess

import (
	"fmt"
	"sort"

	"github.com/handanlinzhang/scram/pkg/mef"
)

// NodeKind tags a working-graph node. Only AND, OR, and ATLEAST gates
// survive normalization; NodeConstant appears only transiently (or as the
// whole graph, for a tautological or contradictory top) and NodeBasicEvent
// is the only leaf kind — house events are folded away before a node is
// ever created for them.
type NodeKind uint8

const (
	NodeConstant NodeKind = iota
	NodeBasicEvent
	NodeAND
	NodeOR
	NodeATLEAST
)

// NodeID indexes Graph.Nodes. Because every node is created only after all
// of its arguments exist, NodeIDs increase from leaves toward the top,
// which lets module detection compute leaf-sets and descendant sets by a
// single forward pass instead of recursion.
type NodeID int32

// Lit is a signed reference to a working-graph node — spec.md §4.2's "two
// polarities of node references".
type Lit struct {
	Node    NodeID
	Negated bool
}

// Node is one working-graph gate or leaf.
type Node struct {
	Kind NodeKind
	Args []Lit // AND, OR, ATLEAST
	K    int   // ATLEAST only

	Basic int32 // NodeBasicEvent only: index into Graph.Leaves
	Const bool  // NodeConstant only

	// IsModule marks a node whose basic-event leaf set is disjoint from
	// the rest of the graph (spec.md §4.2 step 5). Set by DetectModules.
	IsModule bool
}

// LeafInfo names a working-graph leaf and its probability expression.
// Leaf ids are assigned in discovery order during preprocessing (spec.md
// §4.3: "basic events are numbered at preprocessing"); CCF expansion
// appends new leaves for synthesized CCF basic events.
type LeafInfo struct {
	Name string
	Expr mef.Expression
}

// Graph is the working graph produced by Preprocess for one analysis
// target. It outlives the mef.Model it was built from only long enough to
// be consumed by the MCS engine and quantification; nothing here holds a
// live back-pointer into the Model beyond the copied LeafInfo.
type Graph struct {
	Nodes  []Node
	Top    Lit
	Leaves []LeafInfo

	leafIndex map[string]int32
	leafNode  []NodeID
	nodeMemo  map[string]NodeID

	trueNode  NodeID
	falseNode NodeID
	haveConst bool
}

func newGraph() *Graph {
	return &Graph{
		leafIndex: make(map[string]int32),
		nodeMemo:  make(map[string]NodeID),
	}
}

func (g *Graph) newNode(n Node) NodeID {
	id := NodeID(len(g.Nodes))
	g.Nodes = append(g.Nodes, n)
	return id
}

// constLit returns the (memoized) literal for the Boolean constant v.
func (g *Graph) constLit(v bool) Lit {
	if !g.haveConst {
		g.trueNode = g.newNode(Node{Kind: NodeConstant, Const: true})
		g.falseNode = g.newNode(Node{Kind: NodeConstant, Const: false})
		g.haveConst = true
	}
	if v {
		return Lit{Node: g.trueNode}
	}
	return Lit{Node: g.falseNode}
}

// internLeaf returns the graph-local leaf id for a leaf named by key,
// creating it (with name/expr) on first use.
func (g *Graph) internLeaf(key, name string, expr mef.Expression) int32 {
	if id, ok := g.leafIndex[key]; ok {
		return id
	}
	id := int32(len(g.Leaves))
	g.Leaves = append(g.Leaves, LeafInfo{Name: name, Expr: expr})
	g.leafIndex[key] = id
	return id
}

func (g *Graph) basicNode(leaf int32) NodeID {
	key := fmt.Sprintf("leaf:%d", leaf)
	if id, ok := g.nodeMemo[key]; ok {
		return id
	}
	id := g.newNode(Node{Kind: NodeBasicEvent, Basic: leaf})
	g.nodeMemo[key] = id
	for int32(len(g.leafNode)) <= leaf {
		g.leafNode = append(g.leafNode, -1)
	}
	g.leafNode[leaf] = id
	return id
}

// LeafNode returns the NodeID of the NodeBasicEvent node standing for the
// given Leaves index.
func (g *Graph) LeafNode(leaf int32) NodeID { return g.leafNode[leaf] }

// canonicalKey builds the hash-cons key for an AND/OR/ATLEAST node: the
// operator (and K, for ATLEAST) plus the sorted argument literal ids
// (spec.md §4.2 step 4).
func canonicalKey(kind NodeKind, k int, args []Lit) string {
	sorted := append([]Lit(nil), args...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Node != sorted[j].Node {
			return sorted[i].Node < sorted[j].Node
		}
		return !sorted[i].Negated && sorted[j].Negated
	})
	key := fmt.Sprintf("%d/%d", kind, k)
	for _, l := range sorted {
		key += fmt.Sprintf("/%d:%v", l.Node, l.Negated)
	}
	return key
}
