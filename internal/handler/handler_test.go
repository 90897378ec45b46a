package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshwork/internal/catalog"
	canvasModels "meshwork/internal/domain/models/canvas"
	wsModels "meshwork/internal/domain/models/workspace"
	"meshwork/internal/httputil"
	"meshwork/internal/service/auth"
	canvasService "meshwork/internal/service/canvas"
	wsService "meshwork/internal/service/workspace"
	"meshwork/internal/storage"
)

const testUserHeader = "X-Test-User"

// newTestServer serves the API over the memory backend. The caller is
// identified by the X-Test-User header.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	registry, err := catalog.NewRegistry()
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	repos := storage.NewMemory()
	authorizer := auth.NewOwnerBasedAuthorizer(repos.Workspaces, repos.Collections)

	mux := http.NewServeMux()
	RegisterRoutes(mux, Handlers{
		Workspace: NewWorkspaceHandler(
			wsService.NewWorkspaceService(repos.Workspaces, repos.Canvas, repos.Tx, authorizer, registry, logger), logger),
		Canvas: NewCanvasHandler(
			canvasService.NewCanvasService(repos.Canvas, repos.Tx, authorizer, canvasService.Options{}, logger), logger),
		Collection: NewCollectionHandler(
			wsService.NewCollectionService(repos.Collections, repos.Tx, authorizer, logger),
			wsService.NewTreeService(repos.Collections, repos.Workspaces, repos.Tx, logger), logger),
		Catalog: NewCatalogHandler(registry, repos.Backend),
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := r.Header.Get(testUserHeader); user != "" {
			r = httputil.WithUserID(r, user)
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, user, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestWorkspaceCanvasLifecycle(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, "u1", http.MethodPost, "/api/workspaces", `{"title":"Shop","type":"system"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	ws := decode[wsModels.Workspace](t, body)
	assert.Equal(t, "Shop", ws.Title)
	assert.Equal(t, "box", ws.Icon)

	wsPath := "/api/workspaces/" + itoa(ws.ID)

	status, body = call(t, srv, "u1", http.MethodPost, wsPath+"/canvas/sync", `{
		"nodes": [
			{"id":"n1","type":"system","position":{"x":0,"y":0},"data":{"label":"API","status":"healthy"}},
			{"id":"n2","type":"database","position":{"x":100,"y":50}}
		],
		"edges": [{"id":"e1","source":"n1","target":"n2","animated":true}]
	}`)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"success":true,"nodes":2,"edges":1}`, string(body))

	status, body = call(t, srv, "u1", http.MethodGet, wsPath+"/canvas", "")
	require.Equal(t, http.StatusOK, status)
	canvas := decode[canvasModels.Canvas](t, body)
	require.Len(t, canvas.Nodes, 2)
	require.Len(t, canvas.Edges, 1)
	for _, n := range canvas.Nodes {
		if n.ID == "n1" {
			assert.JSONEq(t, `{"label":"API","status":"healthy"}`, string(n.Data))
		}
	}

	status, body = call(t, srv, "u1", http.MethodPost, wsPath+"/duplicate", "")
	require.Equal(t, http.StatusCreated, status, string(body))
	dup := decode[wsModels.Workspace](t, body)
	assert.Equal(t, "Shop (Copy)", dup.Title)

	status, body = call(t, srv, "u1", http.MethodGet, "/api/workspaces/"+itoa(dup.ID)+"/canvas", "")
	require.Equal(t, http.StatusOK, status)
	dupCanvas := decode[canvasModels.Canvas](t, body)
	assert.Len(t, dupCanvas.Nodes, 2)
	assert.Len(t, dupCanvas.Edges, 1)

	// The copy already holds n1, n2 and e1
	status, body = call(t, srv, "u1", http.MethodPost, wsPath+"/duplicate-canvas", `{"toWorkspaceId":`+itoa(dup.ID)+`}`)
	assert.Equal(t, http.StatusConflict, status, string(body))

	status, _ = call(t, srv, "u1", http.MethodDelete, wsPath, "")
	require.Equal(t, http.StatusNoContent, status)

	status, body = call(t, srv, "u1", http.MethodGet, wsPath, "")
	assert.Equal(t, http.StatusNotFound, status)
	problem := decode[httputil.ProblemDetail](t, body)
	assert.Equal(t, http.StatusNotFound, problem.Status)
}

func TestSyncCanvas_RejectsMissingArrays(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, "u1", http.MethodPost, "/api/workspaces", `{"title":"Shop"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	wsPath := "/api/workspaces/" + itoa(decode[wsModels.Workspace](t, body).ID)

	status, body = call(t, srv, "u1", http.MethodPost, wsPath+"/canvas/sync", `{"nodes":[{"id":"n1"}],"edges":[]}`)
	require.Equal(t, http.StatusOK, status, string(body))

	for _, payload := range []string{
		`{}`,
		`{"nodez":[{"id":"n9"}],"edgez":[]}`,
		`{"nodes":null,"edges":[]}`,
		`{"nodes":[]}`,
	} {
		status, body = call(t, srv, "u1", http.MethodPost, wsPath+"/canvas/sync", payload)
		assert.Equal(t, http.StatusBadRequest, status, "%s: %s", payload, body)
	}

	status, body = call(t, srv, "u1", http.MethodGet, wsPath+"/canvas", "")
	require.Equal(t, http.StatusOK, status)
	canvas := decode[canvasModels.Canvas](t, body)
	require.Len(t, canvas.Nodes, 1)
	assert.Equal(t, "n1", canvas.Nodes[0].ID)

	status, body = call(t, srv, "u1", http.MethodPost, wsPath+"/canvas/sync", `{"nodes":[],"edges":[]}`)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"success":true,"nodes":0,"edges":0}`, string(body))
}

func TestDuplicateWorkspace_BlankTitleUsesDefault(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, "u1", http.MethodPost, "/api/workspaces", `{"title":"Shop"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	wsPath := "/api/workspaces/" + itoa(decode[wsModels.Workspace](t, body).ID)

	for _, payload := range []string{`{"title":""}`, `{"title":"   "}`} {
		status, body = call(t, srv, "u1", http.MethodPost, wsPath+"/duplicate", payload)
		require.Equal(t, http.StatusCreated, status, "%s: %s", payload, body)
		assert.Equal(t, "Shop (Copy)", decode[wsModels.Workspace](t, body).Title)
	}
}

func TestWorkspaceErrors(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, "owner", http.MethodPost, "/api/workspaces", `{"title":"Mine"}`)
	require.Equal(t, http.StatusCreated, status)
	ws := decode[wsModels.Workspace](t, body)
	wsPath := "/api/workspaces/" + itoa(ws.ID)

	tests := []struct {
		name       string
		user       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "emoji title", user: "owner", method: http.MethodPost, path: "/api/workspaces", body: `{"title":"💥Crash"}`, wantStatus: http.StatusBadRequest},
		{name: "seventeen characters", user: "owner", method: http.MethodPost, path: "/api/workspaces", body: `{"title":"abcdefghijklmnopq"}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", user: "owner", method: http.MethodPost, path: "/api/workspaces", body: `{"title":`, wantStatus: http.StatusBadRequest},
		{name: "empty body", user: "owner", method: http.MethodPost, path: "/api/workspaces", wantStatus: http.StatusBadRequest},
		{name: "not a number", user: "owner", method: http.MethodGet, path: "/api/workspaces/abc", wantStatus: http.StatusBadRequest},
		{name: "zero id", user: "owner", method: http.MethodGet, path: "/api/workspaces/0", wantStatus: http.StatusBadRequest},
		{name: "bad collectionId", user: "owner", method: http.MethodGet, path: "/api/workspaces?collectionId=x", wantStatus: http.StatusBadRequest},
		{name: "missing", user: "owner", method: http.MethodGet, path: "/api/workspaces/9999", wantStatus: http.StatusNotFound},
		{name: "not owner", user: "intruder", method: http.MethodGet, path: wsPath, wantStatus: http.StatusUnauthorized},
		{name: "not owner sync", user: "intruder", method: http.MethodPost, path: wsPath + "/canvas/sync", body: `{"nodes":[],"edges":[]}`, wantStatus: http.StatusUnauthorized},
		{name: "duplicate node ids", user: "owner", method: http.MethodPost, path: wsPath + "/canvas/sync", body: `{"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}`, wantStatus: http.StatusBadRequest},
		{name: "duplicate canvas into itself", user: "owner", method: http.MethodPost, path: wsPath + "/duplicate-canvas", body: `{"toWorkspaceId":` + itoa(ws.ID) + `}`, wantStatus: http.StatusBadRequest},
		{name: "duplicate canvas without target", user: "owner", method: http.MethodPost, path: wsPath + "/duplicate-canvas", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "empty update", user: "owner", method: http.MethodPatch, path: wsPath, body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "anonymous", method: http.MethodGet, path: "/api/workspaces", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, srv, tt.user, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, status, string(body))
		})
	}
}

func TestUpdateWorkspace_PutAndPatch(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, "u1", http.MethodPost, "/api/collections", `{"title":"Infra"}`)
	require.Equal(t, http.StatusCreated, status)
	col := decode[wsModels.Collection](t, body)

	status, body = call(t, srv, "u1", http.MethodPost, "/api/workspaces", `{"title":"Edge","collectionId":`+itoa(col.ID)+`}`)
	require.Equal(t, http.StatusCreated, status)
	ws := decode[wsModels.Workspace](t, body)
	wsPath := "/api/workspaces/" + itoa(ws.ID)

	status, body = call(t, srv, "u1", http.MethodPut, wsPath, `{"title":"Edge v2","icon":"cloud"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decode[wsModels.Workspace](t, body)
	assert.Equal(t, "Edge v2", updated.Title)
	require.NotNil(t, updated.CollectionID)

	status, body = call(t, srv, "u1", http.MethodPatch, wsPath, `{"collectionId":null}`)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Nil(t, decode[wsModels.Workspace](t, body).CollectionID)

	status, body = call(t, srv, "u1", http.MethodGet, "/api/workspaces", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]wsModels.Workspace](t, body), 1)

	status, body = call(t, srv, "u1", http.MethodGet, "/api/workspaces?collectionId="+itoa(col.ID), "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]wsModels.Workspace](t, body))
}

func TestCollectionRoutes(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, "u1", http.MethodPost, "/api/collections", `{"title":"Infra","description":"shared"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	parent := decode[wsModels.Collection](t, body)

	status, body = call(t, srv, "u1", http.MethodPost, "/api/collections", `{"title":"K8s","parentId":`+itoa(parent.ID)+`}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	child := decode[wsModels.Collection](t, body)

	status, _ = call(t, srv, "u1", http.MethodPost, "/api/workspaces", `{"title":"Mesh","collectionId":`+itoa(child.ID)+`}`)
	require.Equal(t, http.StatusCreated, status)

	status, body = call(t, srv, "u1", http.MethodGet, "/api/collections?parentId="+itoa(parent.ID), "")
	require.Equal(t, http.StatusOK, status)
	children := decode[[]wsModels.Collection](t, body)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	status, body = call(t, srv, "u1", http.MethodGet, "/api/collections/tree", "")
	require.Equal(t, http.StatusOK, status)
	tree := decode[wsModels.Tree](t, body)
	require.Len(t, tree.Collections, 1)
	require.Len(t, tree.Collections[0].Collections, 1)
	assert.Len(t, tree.Collections[0].Collections[0].Workspaces, 1)

	// Moving a collection under its own child is a cycle
	status, _ = call(t, srv, "u1", http.MethodPatch, "/api/collections/"+itoa(parent.ID), `{"parentId":`+itoa(child.ID)+`}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, srv, "u1", http.MethodPatch, "/api/collections/"+itoa(child.ID), `{"parentId":null,"description":null}`)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Nil(t, decode[wsModels.Collection](t, body).ParentID)

	status, _ = call(t, srv, "u2", http.MethodGet, "/api/collections/"+itoa(child.ID), "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, srv, "u1", http.MethodDelete, "/api/collections/"+itoa(child.ID), "")
	require.Equal(t, http.StatusNoContent, status)

	status, body = call(t, srv, "u1", http.MethodGet, "/api/workspaces", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]wsModels.Workspace](t, body), 1, "workspace moves to the root listing")
}

func TestCatalogAndHealth(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, "u1", http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, status)
	c := decode[catalog.Catalog](t, body)
	assert.Equal(t, "system", c.DefaultType)
	assert.Contains(t, c.Icons, "box")
	assert.NotEmpty(t, c.Types)

	status, body = call(t, srv, "", http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"backend":"memory"`)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
