package catalog

import (
	"encoding/json"
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"

	canvasModels "meshwork/internal/domain/models/canvas"
)

// idAlphabet matches the URL-safe ids the canvas client generates
const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const idLength = 12

// NewGraphID returns a fresh node or edge id with the given prefix
func NewGraphID(prefix string) (string, error) {
	id, err := nanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return prefix + id, nil
}

// check validates that every edge and parent references a declared key
func (g *StarterGraph) check() error {
	keys := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Key == "" {
			return fmt.Errorf("starter node without key")
		}
		if keys[n.Key] {
			return fmt.Errorf("duplicate starter node %q", n.Key)
		}
		keys[n.Key] = true
	}
	for _, n := range g.Nodes {
		if n.Parent != "" && !keys[n.Parent] {
			return fmt.Errorf("starter node %q has unknown parent %q", n.Key, n.Parent)
		}
	}
	for _, e := range g.Edges {
		if !keys[e.Source] || !keys[e.Target] {
			return fmt.Errorf("starter edge %s->%s references an unknown node", e.Source, e.Target)
		}
	}
	return nil
}

// Instantiate builds a concrete graph for workspaceID with freshly generated
// ids. Parent references and edge endpoints are remapped to the new ids.
func (g *StarterGraph) Instantiate(workspaceID int64) ([]canvasModels.Node, []canvasModels.Edge, error) {
	ids := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		id, err := NewGraphID("n-")
		if err != nil {
			return nil, nil, err
		}
		ids[n.Key] = id
	}

	nodes := make([]canvasModels.Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.Data == nil {
			n.Data = map[string]interface{}{}
		}
		data, err := json.Marshal(n.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("encode starter node %q: %w", n.Key, err)
		}

		node := canvasModels.Node{
			ID:          ids[n.Key],
			WorkspaceID: workspaceID,
			Type:        n.Type,
			Position:    canvasModels.Position{X: n.X, Y: n.Y},
			Data:        data,
		}
		if n.Parent != "" {
			parent := ids[n.Parent]
			node.ParentID = &parent
		}
		if n.Extent != "" {
			extent := n.Extent
			node.Extent = &extent
		}
		nodes = append(nodes, node)
	}

	edges := make([]canvasModels.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		id, err := NewGraphID("e-")
		if err != nil {
			return nil, nil, err
		}
		data, err := e.labelData()
		if err != nil {
			return nil, nil, fmt.Errorf("encode starter edge: %w", err)
		}
		edges = append(edges, canvasModels.Edge{
			ID:          id,
			WorkspaceID: workspaceID,
			Source:      ids[e.Source],
			Target:      ids[e.Target],
			Type:        e.Type,
			Data:        data,
			Animated:    e.Animated,
		})
	}

	return nodes, edges, nil
}
