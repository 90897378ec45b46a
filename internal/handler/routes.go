package handler

import "net/http"

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Workspace  *WorkspaceHandler
	Canvas     *CanvasHandler
	Collection *CollectionHandler
	Catalog    *CatalogHandler
	Metrics    http.Handler // nil disables /metrics
}

// RegisterRoutes wires the API onto mux (Go 1.22+ method patterns)
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	// Health check
	mux.HandleFunc("GET /health", h.Catalog.HealthCheck)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	mux.HandleFunc("GET /api/catalog", h.Catalog.GetCatalog)

	// Workspace routes
	mux.HandleFunc("GET /api/workspaces", h.Workspace.ListWorkspaces)
	mux.HandleFunc("POST /api/workspaces", h.Workspace.CreateWorkspace)
	mux.HandleFunc("GET /api/workspaces/{id}", h.Workspace.GetWorkspace)
	mux.HandleFunc("PUT /api/workspaces/{id}", h.Workspace.UpdateWorkspace)
	mux.HandleFunc("PATCH /api/workspaces/{id}", h.Workspace.UpdateWorkspace)
	mux.HandleFunc("DELETE /api/workspaces/{id}", h.Workspace.DeleteWorkspace)
	mux.HandleFunc("POST /api/workspaces/{id}/duplicate", h.Workspace.DuplicateWorkspace)

	// Canvas routes
	mux.HandleFunc("GET /api/workspaces/{id}/canvas", h.Canvas.GetCanvas)
	mux.HandleFunc("POST /api/workspaces/{id}/canvas/sync", h.Canvas.SyncCanvas)
	mux.HandleFunc("POST /api/workspaces/{id}/duplicate-canvas", h.Canvas.DuplicateCanvas)

	// Collection routes
	mux.HandleFunc("GET /api/collections", h.Collection.ListCollections)
	mux.HandleFunc("GET /api/collections/tree", h.Collection.GetTree) // More specific than {id}
	mux.HandleFunc("POST /api/collections", h.Collection.CreateCollection)
	mux.HandleFunc("GET /api/collections/{id}", h.Collection.GetCollection)
	mux.HandleFunc("PATCH /api/collections/{id}", h.Collection.UpdateCollection)
	mux.HandleFunc("DELETE /api/collections/{id}", h.Collection.DeleteCollection)
}
