package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
)

type APIHandler struct {
	records   interfaces.RecordStorage
	snapshots interfaces.SnapshotSource
	logger    arbor.ILogger
}

func NewAPIHandler(records interfaces.RecordStorage, snapshots interfaces.SnapshotSource) *APIHandler {
	return &APIHandler{
		records:   records,
		snapshots: snapshots,
		logger:    common.GetLogger(),
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.Version,
		"build":      common.Build,
		"git_commit": common.GitCommit,
	})
}

// HealthHandler returns health check status with corpus and index state
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	count, err := h.records.CountRecords(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Health check failed to count records")
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status": "degraded",
		})
		return
	}

	snapshot := h.snapshots.Current()

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"records":     count,
		"index_ready": !snapshot.Empty(),
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
