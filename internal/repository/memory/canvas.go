package memory

import (
	"context"
	"fmt"

	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/canvas"
	repo "meshwork/internal/domain/repositories/canvas"
)

// CanvasRepository implements repo.CanvasRepository on a Store
type CanvasRepository struct {
	store *Store
}

// NewCanvasRepository creates a canvas repository backed by s
func NewCanvasRepository(s *Store) repo.CanvasRepository {
	return &CanvasRepository{store: s}
}

// GetNodes returns copies of the workspace's nodes
func (r *CanvasRepository) GetNodes(ctx context.Context, workspaceID int64) ([]models.Node, error) {
	var nodes []models.Node
	err := r.store.read(ctx, func(st *state) error {
		nodes = cloneNodes(st.nodes[workspaceID])
		return nil
	})
	return nodes, err
}

// GetEdges returns copies of the workspace's edges
func (r *CanvasRepository) GetEdges(ctx context.Context, workspaceID int64) ([]models.Edge, error) {
	var edges []models.Edge
	err := r.store.read(ctx, func(st *state) error {
		edges = cloneEdges(st.edges[workspaceID])
		return nil
	})
	return edges, err
}

// ReplaceGraph swaps the stored graph for the given one
func (r *CanvasRepository) ReplaceGraph(ctx context.Context, workspaceID int64, nodes []models.Node, edges []models.Edge) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.workspaces[workspaceID]; !ok {
			return fmt.Errorf("workspace %d: %w", workspaceID, domain.ErrNotFound)
		}
		if err := checkUniqueIDs(nodes, edges); err != nil {
			return err
		}

		st.nodes[workspaceID] = cloneNodes(models.NodesWithWorkspace(nodes, workspaceID))
		st.edges[workspaceID] = cloneEdges(models.EdgesWithWorkspace(edges, workspaceID))
		return nil
	})
}

// DuplicateGraph appends a copy of fromID's graph to toID
func (r *CanvasRepository) DuplicateGraph(ctx context.Context, fromID, toID int64) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.workspaces[toID]; !ok {
			return fmt.Errorf("workspace %d: %w", toID, domain.ErrNotFound)
		}

		nodes := append(cloneNodes(st.nodes[toID]), models.NodesWithWorkspace(cloneNodes(st.nodes[fromID]), toID)...)
		edges := append(cloneEdges(st.edges[toID]), models.EdgesWithWorkspace(cloneEdges(st.edges[fromID]), toID)...)
		if err := checkUniqueIDs(nodes, edges); err != nil {
			return err
		}

		st.nodes[toID] = nodes
		st.edges[toID] = edges
		return nil
	})
}

// DeleteGraph drops every node and edge of the workspace
func (r *CanvasRepository) DeleteGraph(ctx context.Context, workspaceID int64) error {
	return r.store.write(ctx, func(st *state) error {
		delete(st.edges, workspaceID)
		delete(st.nodes, workspaceID)
		return nil
	})
}

// CountGraph counts stored nodes and edges
func (r *CanvasRepository) CountGraph(ctx context.Context, workspaceID int64) (*models.GraphStats, error) {
	var stats models.GraphStats
	err := r.store.read(ctx, func(st *state) error {
		stats.Nodes = len(st.nodes[workspaceID])
		stats.Edges = len(st.edges[workspaceID])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// checkUniqueIDs enforces the (workspace, id) primary key the SQL backends have
func checkUniqueIDs(nodes []models.Node, edges []models.Edge) error {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("node %q already exists in workspace", n.ID),
				ResourceType: "node",
				ResourceID:   n.ID,
			}
		}
		seen[n.ID] = true
	}

	clear(seen)
	for _, e := range edges {
		if seen[e.ID] {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("edge %q already exists in workspace", e.ID),
				ResourceType: "edge",
				ResourceID:   e.ID,
			}
		}
		seen[e.ID] = true
	}
	return nil
}
