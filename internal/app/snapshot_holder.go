package app

import (
	"sync/atomic"

	"github.com/voxlore/voxlore/internal/models"
)

// SnapshotHolder publishes index snapshots with an atomic pointer
// swap. Readers racing with a publish see either the old or the new
// snapshot, both complete.
type SnapshotHolder struct {
	current atomic.Pointer[models.IndexSnapshot]
}

// NewSnapshotHolder creates an empty holder
func NewSnapshotHolder() *SnapshotHolder {
	return &SnapshotHolder{}
}

// Current returns the live snapshot, or nil before the first publish
func (h *SnapshotHolder) Current() *models.IndexSnapshot {
	return h.current.Load()
}

// Publish replaces the live snapshot
func (h *SnapshotHolder) Publish(snapshot *models.IndexSnapshot) {
	h.current.Store(snapshot)
}
