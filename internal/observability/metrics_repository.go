package observability

import (
	"context"
	"time"

	models "meshwork/internal/domain/models/canvas"
	canvasRepo "meshwork/internal/domain/repositories/canvas"
)

// MetricsCanvasRepository decorates a CanvasRepository with operation
// counts, latencies and sync volume
type MetricsCanvasRepository struct {
	inner   canvasRepo.CanvasRepository
	metrics *Collector
}

// NewMetricsCanvasRepository wraps inner
func NewMetricsCanvasRepository(inner canvasRepo.CanvasRepository, metrics *Collector) canvasRepo.CanvasRepository {
	return &MetricsCanvasRepository{inner: inner, metrics: metrics}
}

func (r *MetricsCanvasRepository) GetNodes(ctx context.Context, workspaceID int64) ([]models.Node, error) {
	start := time.Now()
	nodes, err := r.inner.GetNodes(ctx, workspaceID)
	r.metrics.ObserveDB("get_nodes", err, time.Since(start))
	return nodes, err
}

func (r *MetricsCanvasRepository) GetEdges(ctx context.Context, workspaceID int64) ([]models.Edge, error) {
	start := time.Now()
	edges, err := r.inner.GetEdges(ctx, workspaceID)
	r.metrics.ObserveDB("get_edges", err, time.Since(start))
	return edges, err
}

// ReplaceGraph counts written elements only when the replace succeeded.
// The surrounding transaction may still roll back.
func (r *MetricsCanvasRepository) ReplaceGraph(ctx context.Context, workspaceID int64, nodes []models.Node, edges []models.Edge) error {
	start := time.Now()
	err := r.inner.ReplaceGraph(ctx, workspaceID, nodes, edges)
	r.metrics.ObserveDB("replace_graph", err, time.Since(start))

	r.metrics.CanvasSyncs.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		r.metrics.NodesWritten.Add(float64(len(nodes)))
		r.metrics.EdgesWritten.Add(float64(len(edges)))
	}
	return err
}

func (r *MetricsCanvasRepository) DuplicateGraph(ctx context.Context, fromID, toID int64) error {
	start := time.Now()
	err := r.inner.DuplicateGraph(ctx, fromID, toID)
	r.metrics.ObserveDB("duplicate_graph", err, time.Since(start))
	return err
}

func (r *MetricsCanvasRepository) DeleteGraph(ctx context.Context, workspaceID int64) error {
	start := time.Now()
	err := r.inner.DeleteGraph(ctx, workspaceID)
	r.metrics.ObserveDB("delete_graph", err, time.Since(start))
	return err
}

func (r *MetricsCanvasRepository) CountGraph(ctx context.Context, workspaceID int64) (*models.GraphStats, error) {
	start := time.Now()
	stats, err := r.inner.CountGraph(ctx, workspaceID)
	r.metrics.ObserveDB("count_graph", err, time.Since(start))
	return stats, err
}
