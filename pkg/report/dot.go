// Package report renders analysis artifacts as Graphviz DOT — the fault
// tree's gate hierarchy and its minimal cut sets — for the CLI's --dot
// flag. FaultTreeDOT draws from the long-lived Model; CutSetsDOT reads
// leaf names from whatever working graph its caller passes in (the CLI
// builds a fresh one for it with preprocess.Preprocess).
package report

import (
	"fmt"
	"strings"

	"github.com/handanlinzhang/scram/pkg/mef"
	"github.com/handanlinzhang/scram/pkg/mocus"
	"github.com/handanlinzhang/scram/pkg/preprocess"
)

// FaultTreeDOT renders target's gate hierarchy as a Graphviz digraph:
// gates as boxes labeled with their operator, basic/house events as
// ellipses, negated arguments drawn with a dashed edge.
func FaultTreeDOT(m *mef.Model, target mef.EventRef) string {
	var sb strings.Builder
	sb.WriteString("digraph FaultTree {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box];\n\n")

	visited := make(map[mef.EventRef]bool)
	var walk func(ref mef.EventRef)
	walk = func(ref mef.EventRef) {
		if visited[ref] {
			return
		}
		visited[ref] = true

		switch ref.Kind {
		case mef.GateKind:
			g := m.Gate(ref)
			sb.WriteString(fmt.Sprintf("  %q [label=%q];\n", nodeID(ref), fmt.Sprintf("%s\\n%s", g.Name, formulaLabel(g.Formula))))
			for _, lit := range g.Formula.Args {
				style := ""
				if lit.Negated {
					style = " [style=dashed]"
				}
				sb.WriteString(fmt.Sprintf("  %q -> %q%s;\n", nodeID(ref), nodeID(lit.Ref), style))
				walk(lit.Ref)
			}
		case mef.BasicEventKind:
			be := m.BasicEvent(ref)
			sb.WriteString(fmt.Sprintf("  %q [shape=ellipse,label=%q];\n", nodeID(ref), be.Name))
		case mef.HouseEventKind:
			he := m.HouseEvent(ref)
			sb.WriteString(fmt.Sprintf("  %q [shape=ellipse,peripheries=2,label=%q];\n", nodeID(ref), fmt.Sprintf("%s=%v", he.Name, he.State)))
		}
	}
	walk(target)

	sb.WriteString("}\n")
	return sb.String()
}

func formulaLabel(f mef.Formula) string {
	if f.Op == mef.ATLEAST {
		return fmt.Sprintf("ATLEAST(%d)", f.K)
	}
	return strings.ToUpper(f.Op.String())
}

func nodeID(ref mef.EventRef) string {
	return fmt.Sprintf("%s_%d", ref.Kind, ref.Index)
}

// CutSetsDOT renders cs as a digraph: one cluster per cut set, its
// literal leaves converging on a shared synthetic TOP node, so the whole
// figure reads as the disjunction-of-conjunctions the minimal cut sets
// represent.
func CutSetsDOT(cs *mocus.CutSets, g *preprocess.Graph) string {
	var sb strings.Builder
	sb.WriteString("digraph CutSets {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  TOP [shape=doublecircle];\n\n")

	for i, set := range cs.Sets {
		sb.WriteString(fmt.Sprintf("  subgraph cluster_%d {\n", i))
		sb.WriteString(fmt.Sprintf("    label=%q;\n", fmt.Sprintf("cut set %d (order %d)", i, set.Order())))
		andNode := fmt.Sprintf("and_%d", i)
		if len(set.Lits) == 1 {
			andNode = literalNodeID(i, 0)
		} else {
			sb.WriteString(fmt.Sprintf("    %q [shape=point];\n", andNode))
		}
		for j, lit := range set.Lits {
			name := g.Leaves[lit.Leaf].Name
			label := name
			if lit.Negated {
				label = "NOT " + name
			}
			sb.WriteString(fmt.Sprintf("    %q [shape=ellipse,label=%q];\n", literalNodeID(i, j), label))
			if andNode != literalNodeID(i, 0) {
				sb.WriteString(fmt.Sprintf("    %q -> %q;\n", literalNodeID(i, j), andNode))
			}
		}
		sb.WriteString("  }\n")
		sb.WriteString(fmt.Sprintf("  %q -> TOP;\n\n", andNode))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func literalNodeID(set, idx int) string {
	return fmt.Sprintf("lit_%d_%d", set, idx)
}
