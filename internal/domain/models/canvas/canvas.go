package canvas

// Canvas is the full graph of a workspace
type Canvas struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// GraphStats summarizes the size of a stored graph
type GraphStats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// NodesWithWorkspace returns copies of the given nodes bound to workspaceID
func NodesWithWorkspace(nodes []Node, workspaceID int64) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		n.WorkspaceID = workspaceID
		out[i] = n
	}
	return out
}

// EdgesWithWorkspace returns copies of the given edges bound to workspaceID
func EdgesWithWorkspace(edges []Edge, workspaceID int64) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		e.WorkspaceID = workspaceID
		out[i] = e
	}
	return out
}
