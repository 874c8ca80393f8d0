package preprocess

// DetectModules marks every node in g whose basic-event leaf set is used
// nowhere else in the graph as IsModule (spec.md §4.2 step 5). The MCS
// engine solves a module's minimal cut sets once, independently of the
// rest of the graph, and forks over them the way it forks over an OR
// gate's arguments.
//
// Because every node's arguments were built before the node itself,
// NodeID order is already a topological (leaves-first) order, so leaf
// sets and descendant sets can both be computed with one forward pass
// instead of recursion.
func DetectModules(g *Graph) {
	if len(g.Nodes) == 0 {
		return
	}
	leafSets := computeLeafSets(g)
	descendants := computeDescendants(g)
	directUsers := computeDirectUsers(g)

	topID := g.Top.Node
	isModuleCandidate := make([]bool, len(g.Nodes))
	for id := range g.Nodes {
		n := &g.Nodes[id]
		if n.Kind == NodeConstant || n.Kind == NodeBasicEvent || NodeID(id) == topID {
			continue
		}
		if len(leafSets[id]) == 0 {
			continue
		}
		if isSelfContained(NodeID(id), leafSets, descendants, directUsers) {
			isModuleCandidate[id] = true
		}
	}

	// Mark modules from the top down (largest NodeID first, i.e. closest
	// to the top) so a module swallows its own internal candidates instead
	// of the MCS engine treating a node and its ancestor both as modules.
	consumed := make([]bool, len(g.Nodes))
	for id := len(g.Nodes) - 1; id >= 0; id-- {
		if !isModuleCandidate[id] || consumed[id] {
			continue
		}
		g.Nodes[id].IsModule = true
		for d := range descendants[id] {
			consumed[d] = true
		}
	}
}

func computeLeafSets(g *Graph) []map[int32]bool {
	sets := make([]map[int32]bool, len(g.Nodes))
	for id, n := range g.Nodes {
		s := make(map[int32]bool)
		switch n.Kind {
		case NodeBasicEvent:
			s[n.Basic] = true
		case NodeAND, NodeOR, NodeATLEAST:
			for _, a := range n.Args {
				for leaf := range sets[a.Node] {
					s[leaf] = true
				}
			}
		}
		sets[id] = s
	}
	return sets
}

func computeDescendants(g *Graph) []map[int]bool {
	desc := make([]map[int]bool, len(g.Nodes))
	for id, n := range g.Nodes {
		s := make(map[int]bool)
		for _, a := range n.Args {
			s[int(a.Node)] = true
			for d := range desc[a.Node] {
				s[d] = true
			}
		}
		desc[id] = s
	}
	return desc
}

// computeDirectUsers maps each basic-event leaf id to the set of node ids
// whose Args directly reference a NodeBasicEvent node for that leaf.
func computeDirectUsers(g *Graph) map[int32]map[int]bool {
	result := make(map[int32]map[int]bool)
	for id, n := range g.Nodes {
		for _, a := range n.Args {
			argNode := g.Nodes[a.Node]
			if argNode.Kind == NodeBasicEvent {
				if result[argNode.Basic] == nil {
					result[argNode.Basic] = make(map[int]bool)
				}
				result[argNode.Basic][id] = true
			}
		}
	}
	return result
}

// isSelfContained reports whether every direct user of every leaf under
// node id lies within id's own subtree (id included).
func isSelfContained(id NodeID, leafSets []map[int32]bool, descendants []map[int]bool, directUsers map[int32]map[int]bool) bool {
	desc := descendants[id]
	for leaf := range leafSets[id] {
		for user := range directUsers[leaf] {
			if user != int(id) && !desc[user] {
				return false
			}
		}
	}
	return true
}
