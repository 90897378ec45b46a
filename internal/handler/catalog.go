package handler

import (
	"net/http"
	"time"

	"meshwork/internal/catalog"
	"meshwork/internal/httputil"
)

// CatalogHandler serves the workspace types and icons, plus liveness
type CatalogHandler struct {
	registry *catalog.Registry
	backend  string
}

// NewCatalogHandler creates a new catalog handler. backend is reported by
// the health check.
func NewCatalogHandler(registry *catalog.Registry, backend string) *CatalogHandler {
	return &CatalogHandler{
		registry: registry,
		backend:  backend,
	}
}

// GetCatalog returns workspace types, icons and defaults
// GET /api/catalog
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.registry.Catalog())
}

// HealthCheck reports liveness
// GET /health
func (h *CatalogHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"backend": h.backend,
		"time":    time.Now().UTC(),
	})
}
