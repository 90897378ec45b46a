// Package memory is a process-local storage backend for development and tests.
// Nothing is persisted and state is not shared between processes.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"meshwork/internal/domain/models/canvas"
	"meshwork/internal/domain/models/workspace"
	"meshwork/internal/domain/repositories"
)

var errReadOnlyTx = errors.New("write inside read-only transaction")

// state is everything the backend stores. It is replaced wholesale when a
// transaction rolls back.
type state struct {
	nextWorkspaceID  int64
	nextCollectionID int64
	workspaces       map[int64]workspace.Workspace
	collections      map[int64]workspace.Collection
	nodes            map[int64][]canvas.Node
	edges            map[int64][]canvas.Edge
}

func newState() *state {
	return &state{
		workspaces:  make(map[int64]workspace.Workspace),
		collections: make(map[int64]workspace.Collection),
		nodes:       make(map[int64][]canvas.Node),
		edges:       make(map[int64][]canvas.Edge),
	}
}

func (s *state) clone() *state {
	c := &state{
		nextWorkspaceID:  s.nextWorkspaceID,
		nextCollectionID: s.nextCollectionID,
		workspaces:       make(map[int64]workspace.Workspace, len(s.workspaces)),
		collections:      make(map[int64]workspace.Collection, len(s.collections)),
		nodes:            make(map[int64][]canvas.Node, len(s.nodes)),
		edges:            make(map[int64][]canvas.Edge, len(s.edges)),
	}
	for id, ws := range s.workspaces {
		c.workspaces[id] = cloneWorkspace(ws)
	}
	for id, col := range s.collections {
		c.collections[id] = cloneCollection(col)
	}
	for id, nodes := range s.nodes {
		c.nodes[id] = cloneNodes(nodes)
	}
	for id, edges := range s.edges {
		c.edges[id] = cloneEdges(edges)
	}
	return c
}

// Store owns the shared state and serves as the TransactionManager for
// every repository built on it.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		st:  newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type txKey struct{}

// txMarker records that the ctx already holds the store's lock
type txMarker struct {
	store *Store
	write bool
}

func (s *Store) marker(ctx context.Context) (txMarker, bool) {
	m, ok := ctx.Value(txKey{}).(txMarker)
	if !ok || m.store != s {
		return txMarker{}, false
	}
	return m, true
}

// NewTransactionManager returns the store as a TransactionManager
func NewTransactionManager(s *Store) repositories.TransactionManager {
	return s
}

// ExecTx runs fn holding the write lock. If fn fails or panics the state
// is restored to what it was before fn started.
func (s *Store) ExecTx(ctx context.Context, fn repositories.TxFn) (err error) {
	if m, ok := s.marker(ctx); ok {
		if !m.write {
			return errReadOnlyTx
		}
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	defer func() {
		if p := recover(); p != nil {
			s.st = snapshot
			panic(p)
		}
		if err != nil {
			s.st = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, txMarker{store: s, write: true}))
}

// ExecReadTx runs fn holding the read lock, so no transaction can commit
// while fn reads.
func (s *Store) ExecReadTx(ctx context.Context, fn repositories.TxFn) error {
	if _, ok := s.marker(ctx); ok {
		return fn(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(context.WithValue(ctx, txKey{}, txMarker{store: s}))
}

func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if _, ok := s.marker(ctx); ok {
		return fn(s.st)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// write applies fn under the write lock. Outside a transaction a failed
// fn leaves no partial changes behind.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if m, ok := s.marker(ctx); ok {
		if !m.write {
			return errReadOnlyTx
		}
		return fn(s.st)
	}
	return s.ExecTx(ctx, func(context.Context) error {
		return fn(s.st)
	})
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneWorkspace(ws workspace.Workspace) workspace.Workspace {
	ws.CollectionID = cloneInt64(ws.CollectionID)
	return ws
}

func cloneCollection(c workspace.Collection) workspace.Collection {
	c.Description = cloneString(c.Description)
	c.ParentID = cloneInt64(c.ParentID)
	return c
}

func cloneNodes(nodes []canvas.Node) []canvas.Node {
	out := make([]canvas.Node, len(nodes))
	for i, n := range nodes {
		n.Data = slices.Clone(n.Data)
		n.ParentID = cloneString(n.ParentID)
		n.Extent = cloneString(n.Extent)
		out[i] = n
	}
	return out
}

func cloneEdges(edges []canvas.Edge) []canvas.Edge {
	out := make([]canvas.Edge, len(edges))
	for i, e := range edges {
		e.Data = slices.Clone(e.Data)
		e.SourceHandle = cloneString(e.SourceHandle)
		e.TargetHandle = cloneString(e.TargetHandle)
		out[i] = e
	}
	return out
}
