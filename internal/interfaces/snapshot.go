package interfaces

import (
	"github.com/voxlore/voxlore/internal/models"
)

// SnapshotSource yields the currently published index snapshot, or nil
// when no build has completed yet. Implementations swap snapshots
// atomically so readers never observe a partial index.
type SnapshotSource interface {
	Current() *models.IndexSnapshot
}

// SnapshotHolder is a SnapshotSource that can also publish a newly
// built snapshot, replacing the current one in a single atomic step.
type SnapshotHolder interface {
	SnapshotSource
	Publish(snapshot *models.IndexSnapshot)
}
