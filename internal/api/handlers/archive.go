package handlers

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-dashboard/internal/api/middleware"
	"github.com/dvloznov/finance-dashboard/internal/archive"
)

// ArchiveHandler serves archived statements back out of the object store so
// an import can be audited against the document it came from.
type ArchiveHandler struct {
	store archive.ObjectStore
	log   zerolog.Logger
}

// NewArchiveHandler creates a new archive handler. store may be nil when no
// bucket is configured; every lookup then misses.
func NewArchiveHandler(store archive.ObjectStore, log zerolog.Logger) *ArchiveHandler {
	return &ArchiveHandler{store: store, log: log}
}

// Serve handles GET /api/archive/{objectName}
func (h *ArchiveHandler) Serve(w http.ResponseWriter, r *http.Request, objectName string) {
	if h.store == nil {
		middleware.WriteError(w, http.StatusNotFound, "Statement archiving is not configured")
		return
	}

	uri := h.store.URI(objectName)
	data, err := h.store.Fetch(r.Context(), uri)
	if err != nil {
		h.log.Warn().Err(err).Str("object", objectName).Msg("Archived statement not found")
		middleware.WriteError(w, http.StatusNotFound, "Archived statement not found")
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.FilenameFromURI(uri)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
