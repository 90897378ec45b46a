package handler

import (
	"log/slog"
	"net/http"

	canvasSvc "meshwork/internal/domain/services/canvas"
	"meshwork/internal/httputil"
)

// CanvasHandler handles reads and saves of workspace graphs
type CanvasHandler struct {
	canvasService canvasSvc.CanvasService
	logger        *slog.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(canvasService canvasSvc.CanvasService, logger *slog.Logger) *CanvasHandler {
	return &CanvasHandler{
		canvasService: canvasService,
		logger:        logger,
	}
}

// GetCanvas returns the full graph of a workspace
// GET /api/workspaces/{id}/canvas
func (h *CanvasHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	canvas, err := h.canvasService.GetCanvas(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, canvas)
}

// SyncCanvas replaces the stored graph with the posted snapshot
// POST /api/workspaces/{id}/canvas/sync
func (h *CanvasHandler) SyncCanvas(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req canvasSvc.SyncCanvasRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleBodyError(w, err)
		return
	}

	result, err := h.canvasService.SyncCanvas(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// DuplicateCanvas copies the graph into another workspace of the caller
// POST /api/workspaces/{id}/duplicate-canvas
func (h *CanvasHandler) DuplicateCanvas(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req canvasSvc.DuplicateCanvasRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleBodyError(w, err)
		return
	}
	if req.ToWorkspaceID <= 0 {
		httputil.RespondError(w, http.StatusBadRequest, "toWorkspaceId must be a positive integer")
		return
	}

	if err := h.canvasService.DuplicateCanvas(r.Context(), userID, id, req.ToWorkspaceID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
