package handler

import (
	"log/slog"
	"net/http"

	wsSvc "meshwork/internal/domain/services/workspace"
	"meshwork/internal/httputil"
)

// CollectionHandler handles collection tree HTTP requests
type CollectionHandler struct {
	collectionService wsSvc.CollectionService
	treeService       wsSvc.TreeService
	logger            *slog.Logger
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collectionService wsSvc.CollectionService, treeService wsSvc.TreeService, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
		treeService:       treeService,
		logger:            logger,
	}
}

// ListCollections lists one level of the caller's tree
// GET /api/collections?parentId=
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	parentID, ok := queryID(w, r, "parentId")
	if !ok {
		return
	}

	collections, err := h.collectionService.ListCollections(r.Context(), userID, parentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, collections)
}

// GetTree returns the caller's nested collections and workspaces
// GET /api/collections/tree
func (h *CollectionHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tree, err := h.treeService.GetTree(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// CreateCollection creates a collection
// POST /api/collections
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req wsSvc.CreateCollectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleBodyError(w, err)
		return
	}
	req.UserID = userID

	c, err := h.collectionService.CreateCollection(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, c)
}

// GetCollection retrieves a collection
// GET /api/collections/{id}
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.collectionService.GetCollection(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, c)
}

// UpdateCollection renames or moves a collection
// PATCH /api/collections/{id}
func (h *CollectionHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req wsSvc.UpdateCollectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleBodyError(w, err)
		return
	}

	c, err := h.collectionService.UpdateCollection(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, c)
}

// DeleteCollection deletes a collection and its sub-collections
// DELETE /api/collections/{id}
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.collectionService.DeleteCollection(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
