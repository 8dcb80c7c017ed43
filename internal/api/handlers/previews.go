package handlers

import (
	"net/http"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/attach"
)

// PreviewsHandler serves staged attachment bytes for the composer preview.
type PreviewsHandler struct {
	store *attach.Store
}

// NewPreviewsHandler creates a new previews handler.
func NewPreviewsHandler(store *attach.Store) *PreviewsHandler {
	return &PreviewsHandler{store: store}
}

// Serve handles GET /api/previews/{id}. A released handle is a 404; clients
// holding a stale handle simply stop rendering the preview.
func (h *PreviewsHandler) Serve(w http.ResponseWriter, r *http.Request, handle string) {
	file, ok := h.store.Get(handle)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Preview not found")
		return
	}

	w.Header().Set("Content-Type", file.MIMEType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
