package workspace

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/workspace"
	wsRepo "meshwork/internal/domain/repositories/workspace"
	wsSvc "meshwork/internal/domain/services/workspace"
	"meshwork/internal/httputil"
	"meshwork/internal/repository/memory"
	"meshwork/internal/service/auth"
)

func TestCreateCollection_Validation(t *testing.T) {
	long := strings.Repeat("d", 501)

	tests := []struct {
		name    string
		req     wsSvc.CreateCollectionRequest
		wantErr error
	}{
		{name: "ok", req: wsSvc.CreateCollectionRequest{UserID: "u1", Title: "Payments & Billing!"}},
		{name: "max title", req: wsSvc.CreateCollectionRequest{UserID: "u1", Title: strings.Repeat("t", 64)}},
		{name: "blank title", req: wsSvc.CreateCollectionRequest{UserID: "u1", Title: "  "}, wantErr: domain.ErrValidation},
		{name: "long title", req: wsSvc.CreateCollectionRequest{UserID: "u1", Title: strings.Repeat("t", 65)}, wantErr: domain.ErrValidation},
		{name: "long description", req: wsSvc.CreateCollectionRequest{UserID: "u1", Title: "Infra", Description: &long}, wantErr: domain.ErrValidation},
		{name: "missing parent", req: wsSvc.CreateCollectionRequest{UserID: "u1", Title: "Infra", ParentID: func() *int64 { v := int64(42); return &v }()}, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := tt.req
			c, err := f.collections.CreateCollection(context.Background(), &req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, c.ID)
		})
	}
}

func TestCollections_ListAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	infra := f.createCollection(t, "u1", "Infra", nil)
	apps := f.createCollection(t, "u1", "Apps", nil)
	nested := f.createCollection(t, "u1", "Kubernetes", &infra.ID)
	f.createCollection(t, "u2", "Other", nil)

	root, err := f.collections.ListCollections(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, root, 2)
	assert.Equal(t, apps.ID, root[0].ID, "sorted by title")
	assert.Equal(t, infra.ID, root[1].ID)

	children, err := f.collections.ListCollections(ctx, "u1", &infra.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, nested.ID, children[0].ID)

	_, err = f.collections.ListCollections(ctx, "u2", &infra.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.collections.GetCollection(ctx, "u2", infra.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	got, err := f.collections.GetCollection(ctx, "u1", nested.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, infra.ID, *got.ParentID)
}

func TestUpdateCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.createCollection(t, "u1", "A", nil)
	b := f.createCollection(t, "u1", "B", &a.ID)
	c := f.createCollection(t, "u1", "C", &b.ID)
	other := f.createCollection(t, "u1", "Other", nil)
	theirs := f.createCollection(t, "u2", "Theirs", nil)

	_, err := f.collections.UpdateCollection(ctx, "u1", a.ID, &wsSvc.UpdateCollectionRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation, "empty update")

	move := func(id int64, parent *int64) error {
		req := &wsSvc.UpdateCollectionRequest{}
		req.ParentID.Set(parent)
		_, err := f.collections.UpdateCollection(ctx, "u1", id, req)
		return err
	}

	assert.ErrorIs(t, move(a.ID, &a.ID), domain.ErrValidation, "into itself")
	assert.ErrorIs(t, move(a.ID, &c.ID), domain.ErrValidation, "into a descendant")
	assert.ErrorIs(t, move(a.ID, &theirs.ID), domain.ErrUnauthorized)

	require.NoError(t, move(c.ID, &other.ID))
	require.NoError(t, move(b.ID, nil))

	got, err := f.collections.GetCollection(ctx, "u1", b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	desc := "Shared services"
	renamed, err := f.collections.UpdateCollection(ctx, "u1", a.ID, &wsSvc.UpdateCollectionRequest{
		Title:       strPtr(" Platform "),
		Description: httputil.OptionalString{Present: true, Value: &desc},
	})
	require.NoError(t, err)
	assert.Equal(t, "Platform", renamed.Title)
	require.NotNil(t, renamed.Description)
	assert.Equal(t, desc, *renamed.Description)

	cleared, err := f.collections.UpdateCollection(ctx, "u1", a.ID, &wsSvc.UpdateCollectionRequest{
		Description: httputil.OptionalString{Present: true},
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.Description)
	assert.Equal(t, "Platform", cleared.Title)
}

func TestDeleteCollection_KeepsWorkspaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	top := f.createCollection(t, "u1", "Top", nil)
	child := f.createCollection(t, "u1", "Child", &top.ID)
	ws := f.createWorkspace(t, "u1", "Deep", &child.ID)

	assert.ErrorIs(t, f.collections.DeleteCollection(ctx, "u2", top.ID), domain.ErrUnauthorized)
	require.NoError(t, f.collections.DeleteCollection(ctx, "u1", top.ID))

	_, err := f.collections.GetCollection(ctx, "u1", child.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	root, err := f.workspaces.ListWorkspaces(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, ws.ID, root[0].ID)
	assert.Nil(t, root[0].CollectionID)
}

func TestGetTree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	infra := f.createCollection(t, "u1", "Infra", nil)
	k8s := f.createCollection(t, "u1", "K8s", &infra.ID)
	f.createWorkspace(t, "u1", "Loose", nil)
	f.createWorkspace(t, "u1", "Mesh", &k8s.ID)
	f.createWorkspace(t, "u1", "Network", &infra.ID)
	f.createWorkspace(t, "u2", "Hidden", nil)

	tree, err := f.tree.GetTree(ctx, "u1")
	require.NoError(t, err)

	require.Len(t, tree.Workspaces, 1)
	assert.Equal(t, "Loose", tree.Workspaces[0].Title)

	require.Len(t, tree.Collections, 1)
	top := tree.Collections[0]
	assert.Equal(t, infra.ID, top.ID)
	require.Len(t, top.Workspaces, 1)
	assert.Equal(t, "Network", top.Workspaces[0].Title)

	require.Len(t, top.Collections, 1)
	assert.Equal(t, k8s.ID, top.Collections[0].ID)
	require.Len(t, top.Collections[0].Workspaces, 1)
	assert.Equal(t, "Mesh", top.Collections[0].Workspaces[0].Title)
	assert.Empty(t, top.Collections[0].Collections)

	empty, err := f.tree.GetTree(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty.Collections)
	assert.NotNil(t, empty.Workspaces)
}

// pausingCollectionRepository blocks the first Update until released
type pausingCollectionRepository struct {
	wsRepo.CollectionRepository
	once     sync.Once
	updating chan struct{}
	release  chan struct{}
}

func (r *pausingCollectionRepository) Update(ctx context.Context, c *models.Collection) error {
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.updating)
		<-r.release
	}
	return r.CollectionRepository.Update(ctx, c)
}

func TestUpdateCollection_CrossingMovesCannotCycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	base := memory.NewCollectionRepository(store)
	authorizer := auth.NewOwnerBasedAuthorizer(memory.NewWorkspaceRepository(store), base)
	pausing := &pausingCollectionRepository{
		CollectionRepository: base,
		updating:             make(chan struct{}),
		release:              make(chan struct{}),
	}
	svc := NewCollectionService(pausing, memory.NewTransactionManager(store), authorizer, slog.New(slog.DiscardHandler))

	a, err := svc.CreateCollection(ctx, &wsSvc.CreateCollectionRequest{UserID: "u1", Title: "A"})
	require.NoError(t, err)
	b, err := svc.CreateCollection(ctx, &wsSvc.CreateCollectionRequest{UserID: "u1", Title: "B"})
	require.NoError(t, err)

	move := func(id, parent int64) error {
		req := &wsSvc.UpdateCollectionRequest{}
		req.ParentID.Set(&parent)
		_, err := svc.UpdateCollection(ctx, "u1", id, req)
		return err
	}

	firstErr := make(chan error, 1)
	go func() { firstErr <- move(a.ID, b.ID) }()
	<-pausing.updating

	secondErr := make(chan error, 1)
	go func() { secondErr <- move(b.ID, a.ID) }()

	select {
	case err := <-secondErr:
		t.Fatalf("second move finished while the first was still writing: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(pausing.release)
	require.NoError(t, <-firstErr)
	assert.ErrorIs(t, <-secondErr, domain.ErrValidation)

	gotA, err := base.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := base.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, gotA.ParentID)
	assert.Equal(t, b.ID, *gotA.ParentID)
	assert.Nil(t, gotB.ParentID)
}
