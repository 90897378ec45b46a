package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshwork/internal/config"
	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/canvas"
	wsModels "meshwork/internal/domain/models/workspace"
	canvasRepo "meshwork/internal/domain/repositories/canvas"
	wsRepo "meshwork/internal/domain/repositories/workspace"
	canvasSvc "meshwork/internal/domain/services/canvas"
	"meshwork/internal/repository/memory"
	"meshwork/internal/service/auth"
)

type fixture struct {
	svc        canvasSvc.CanvasService
	canvas     canvasRepo.CanvasRepository
	workspaces wsRepo.WorkspaceRepository
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	store := memory.NewStore()
	return newFixtureWithRepo(t, store, memory.NewCanvasRepository(store), opts)
}

func newFixtureWithRepo(t *testing.T, store *memory.Store, repo canvasRepo.CanvasRepository, opts Options) *fixture {
	t.Helper()
	workspaces := memory.NewWorkspaceRepository(store)
	authorizer := auth.NewOwnerBasedAuthorizer(workspaces, memory.NewCollectionRepository(store))
	return &fixture{
		svc:        NewCanvasService(repo, memory.NewTransactionManager(store), authorizer, opts, slog.New(slog.DiscardHandler)),
		canvas:     repo,
		workspaces: workspaces,
	}
}

func (f *fixture) workspace(t *testing.T, userID string) int64 {
	t.Helper()
	ws := &wsModels.Workspace{Title: "Diagram", Type: "system", Icon: "box", UserID: userID}
	require.NoError(t, f.workspaces.Create(context.Background(), ws))
	return ws.ID
}

func strPtr(s string) *string { return &s }

func sampleRequest() *canvasSvc.SyncCanvasRequest {
	return &canvasSvc.SyncCanvasRequest{
		Nodes: []models.Node{
			{ID: "n1", Type: "system", Position: models.Position{X: 0, Y: 0}, Data: json.RawMessage(`{"label":"API","meta":{"tier":1}}`)},
			{ID: "n2", Type: "database", Position: models.Position{X: 100, Y: 50}, ParentID: strPtr("n1"), Extent: strPtr("parent")},
		},
		Edges: []models.Edge{
			{ID: "e1", Source: "n1", Target: "n2", SourceHandle: strPtr("right"), Type: "smoothstep", Animated: true, Data: json.RawMessage(`{"label":"reads"}`)},
		},
	}
}

func TestSyncCanvas_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	wsID := f.workspace(t, "u1")

	req := sampleRequest()
	res, err := f.svc.SyncCanvas(ctx, "u1", wsID, req)
	require.NoError(t, err)
	assert.Equal(t, &canvasSvc.SyncResult{Success: true, Nodes: 2, Edges: 1}, res)

	got, err := f.svc.GetCanvas(ctx, "u1", wsID)
	require.NoError(t, err)
	assert.ElementsMatch(t, models.NodesWithWorkspace(req.Nodes, wsID), got.Nodes)
	assert.ElementsMatch(t, models.EdgesWithWorkspace(req.Edges, wsID), got.Edges)

	nodes, err := f.svc.GetNodes(ctx, "u1", wsID)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	edges, err := f.svc.GetEdges(ctx, "u1", wsID)
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestSyncCanvas_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	wsID := f.workspace(t, "u1")

	for i := 0; i < 3; i++ {
		_, err := f.svc.SyncCanvas(ctx, "u1", wsID, sampleRequest())
		require.NoError(t, err)
	}

	stats, err := f.canvas.CountGraph(ctx, wsID)
	require.NoError(t, err)
	assert.Equal(t, &models.GraphStats{Nodes: 2, Edges: 1}, stats)
}

func TestSyncCanvas_EmptyClears(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	wsID := f.workspace(t, "u1")

	_, err := f.svc.SyncCanvas(ctx, "u1", wsID, sampleRequest())
	require.NoError(t, err)

	res, err := f.svc.SyncCanvas(ctx, "u1", wsID, &canvasSvc.SyncCanvasRequest{Nodes: []models.Node{}, Edges: []models.Edge{}})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, res.Nodes)

	got, err := f.svc.GetCanvas(ctx, "u1", wsID)
	require.NoError(t, err)
	assert.Empty(t, got.Nodes)
	assert.Empty(t, got.Edges)
}

func TestSyncCanvas_Validation(t *testing.T) {
	tooMany := make([]models.Node, config.MaxCanvasNodes+1)
	for i := range tooMany {
		tooMany[i] = models.Node{ID: fmt.Sprintf("n%d", i)}
	}

	tests := []struct {
		name   string
		strict bool
		req    *canvasSvc.SyncCanvasRequest
	}{
		{name: "nil request", req: nil},
		{
			name: "missing nodes",
			req:  &canvasSvc.SyncCanvasRequest{Edges: []models.Edge{}},
		},
		{
			name: "missing edges",
			req:  &canvasSvc.SyncCanvasRequest{Nodes: []models.Node{{ID: "n1"}}},
		},
		{
			name: "duplicate node id",
			req:  &canvasSvc.SyncCanvasRequest{Nodes: []models.Node{{ID: "n1"}, {ID: "n1"}}, Edges: []models.Edge{}},
		},
		{
			name: "empty node id",
			req:  &canvasSvc.SyncCanvasRequest{Nodes: []models.Node{{ID: ""}}, Edges: []models.Edge{}},
		},
		{
			name: "duplicate edge id",
			req: &canvasSvc.SyncCanvasRequest{
				Nodes: []models.Node{{ID: "a"}, {ID: "b"}},
				Edges: []models.Edge{{ID: "e", Source: "a", Target: "b"}, {ID: "e", Source: "b", Target: "a"}},
			},
		},
		{
			name: "edge without target",
			req:  &canvasSvc.SyncCanvasRequest{Nodes: []models.Node{}, Edges: []models.Edge{{ID: "e", Source: "a"}}},
		},
		{
			name:   "dangling edge in strict mode",
			strict: true,
			req: &canvasSvc.SyncCanvasRequest{
				Nodes: []models.Node{{ID: "a"}},
				Edges: []models.Edge{{ID: "e", Source: "a", Target: "ghost"}},
			},
		},
		{
			name: "too many nodes",
			req:  &canvasSvc.SyncCanvasRequest{Nodes: tooMany, Edges: []models.Edge{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, Options{StrictEdges: tt.strict})
			wsID := f.workspace(t, "u1")

			_, err := f.svc.SyncCanvas(ctx, "u1", wsID, tt.req)
			require.ErrorIs(t, err, domain.ErrValidation)

			stats, err := f.canvas.CountGraph(ctx, wsID)
			require.NoError(t, err)
			assert.Zero(t, stats.Nodes)
		})
	}
}

func TestSyncCanvas_DanglingEdgeAllowedByDefault(t *testing.T) {
	f := newFixture(t, Options{})
	wsID := f.workspace(t, "u1")

	_, err := f.svc.SyncCanvas(context.Background(), "u1", wsID, &canvasSvc.SyncCanvasRequest{
		Nodes: []models.Node{{ID: "a"}},
		Edges: []models.Edge{{ID: "e", Source: "a", Target: "ghost"}},
	})
	require.NoError(t, err)
}

func TestCanvas_Authorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	wsID := f.workspace(t, "owner")

	_, err := f.svc.GetCanvas(ctx, "intruder", wsID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.SyncCanvas(ctx, "intruder", wsID, sampleRequest())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.svc.GetCanvas(ctx, "owner", 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.SyncCanvas(ctx, "owner", 9999, sampleRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stats, err := f.canvas.CountGraph(ctx, wsID)
	require.NoError(t, err)
	assert.Zero(t, stats.Nodes, "rejected sync must not write")
}

func TestDuplicateCanvas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	from := f.workspace(t, "u1")
	to := f.workspace(t, "u1")

	_, err := f.svc.SyncCanvas(ctx, "u1", from, sampleRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.DuplicateCanvas(ctx, "u1", from, to))

	src, err := f.svc.GetCanvas(ctx, "u1", from)
	require.NoError(t, err)
	dst, err := f.svc.GetCanvas(ctx, "u1", to)
	require.NoError(t, err)

	assert.ElementsMatch(t, models.NodesWithWorkspace(src.Nodes, to), dst.Nodes)
	assert.ElementsMatch(t, models.EdgesWithWorkspace(src.Edges, to), dst.Edges)

	// Ids are kept, so a second copy into the same target collides
	err = f.svc.DuplicateCanvas(ctx, "u1", from, to)
	assert.ErrorIs(t, err, domain.ErrConflict)

	stats, err := f.canvas.CountGraph(ctx, to)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Nodes, "failed copy must not leave partial rows")
}

func TestDuplicateCanvas_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Options{})
	mine := f.workspace(t, "u1")
	theirs := f.workspace(t, "u2")

	assert.ErrorIs(t, f.svc.DuplicateCanvas(ctx, "u1", mine, mine), domain.ErrValidation)
	assert.ErrorIs(t, f.svc.DuplicateCanvas(ctx, "u1", mine, theirs), domain.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.DuplicateCanvas(ctx, "u1", theirs, mine), domain.ErrUnauthorized)
	assert.ErrorIs(t, f.svc.DuplicateCanvas(ctx, "u1", mine, 9999), domain.ErrNotFound)
}

// pausingCanvasRepository holds ReplaceGraph open after writing until released
type pausingCanvasRepository struct {
	canvasRepo.CanvasRepository
	written chan struct{}
	release chan struct{}
}

func (r *pausingCanvasRepository) ReplaceGraph(ctx context.Context, workspaceID int64, nodes []models.Node, edges []models.Edge) error {
	err := r.CanvasRepository.ReplaceGraph(ctx, workspaceID, nodes, edges)
	close(r.written)
	<-r.release
	return err
}

func TestSyncCanvas_ReadersSeeWholeGraph(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	base := memory.NewCanvasRepository(store)
	f := newFixtureWithRepo(t, store, base, Options{})
	wsID := f.workspace(t, "u1")
	_, err := f.svc.SyncCanvas(ctx, "u1", wsID, &canvasSvc.SyncCanvasRequest{
		Nodes: []models.Node{{ID: "old"}},
		Edges: []models.Edge{},
	})
	require.NoError(t, err)

	pausing := &pausingCanvasRepository{
		CanvasRepository: base,
		written:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	writer := newFixtureWithRepo(t, store, pausing, Options{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := writer.svc.SyncCanvas(ctx, "u1", wsID, sampleRequest())
		assert.NoError(t, err)
	}()
	<-pausing.written

	read := make(chan *models.Canvas, 1)
	go func() {
		got, err := f.svc.GetCanvas(ctx, "u1", wsID)
		assert.NoError(t, err)
		read <- got
	}()

	select {
	case <-read:
		t.Fatal("read completed while a sync was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(pausing.release)
	wg.Wait()

	got := <-read
	require.NotNil(t, got)
	assert.Len(t, got.Nodes, 2)
	assert.Len(t, got.Edges, 1)
}
