package handlers

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
)

type IndexHandler struct {
	indexer    interfaces.IndexerService
	snapshots  interfaces.SnapshotHolder
	building   atomic.Bool
	lastReport atomic.Pointer[interfaces.BuildReport]
	logger     arbor.ILogger
}

func NewIndexHandler(indexer interfaces.IndexerService, snapshots interfaces.SnapshotHolder) *IndexHandler {
	return &IndexHandler{
		indexer:   indexer,
		snapshots: snapshots,
		logger:    common.GetLogger(),
	}
}

// RebuildIndexHandler handles POST /api/index/rebuild by starting an
// asynchronous build. Only one build runs at a time.
func (h *IndexHandler) RebuildIndexHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if h.building.Swap(true) {
		WriteError(w, http.StatusConflict, "an index build is already running")
		return
	}

	go func() {
		defer h.building.Store(false)

		// The build outlives the HTTP request
		snapshot, report, err := h.indexer.Build(context.Background())
		if err != nil {
			h.logger.Error().Err(err).Msg("Background index build failed")
			return
		}
		h.snapshots.Publish(snapshot)
		h.lastReport.Store(report)
	}()

	WriteStarted(w, "index build started")
}

// IndexStatusHandler handles GET /api/index/status
func (h *IndexHandler) IndexStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := map[string]interface{}{
		"building":    h.building.Load(),
		"index_ready": false,
	}

	if snapshot := h.snapshots.Current(); !snapshot.Empty() {
		status["index_ready"] = true
		status["model"] = snapshot.ModelName
		status["dimension"] = snapshot.Dimension
		status["entries"] = len(snapshot.Entries)
		status["built_at"] = snapshot.BuiltAt
	}

	if report := h.lastReport.Load(); report != nil {
		status["last_build"] = report
	}

	WriteJSON(w, http.StatusOK, status)
}
