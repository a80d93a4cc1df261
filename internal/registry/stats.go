package registry

import (
	"github.com/vehement/assetdb/internal/asset"
)

// Statistics is a point-in-time snapshot of registry counts.
type Statistics struct {
	TotalAssets     int
	LoadedAssets    int
	ByType          map[asset.Type]int
	DependencyEdges int
	Reloads         int
	PendingReloads  int
}

// GetStatistics snapshots the registry's counters.
func (r *Registry) GetStatistics() Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Statistics{
		TotalAssets:     len(r.refs),
		LoadedAssets:    len(r.assets),
		ByType:          make(map[asset.Type]int),
		DependencyEdges: r.graph.EdgeCount(),
		Reloads:         r.reloads,
		PendingReloads:  r.pending,
	}
	for _, ref := range r.refs {
		stats.ByType[ref.Type]++
	}
	return stats
}

// SetPendingReloads records the watcher's current pending-change count so it
// shows up in statistics snapshots.
func (r *Registry) SetPendingReloads(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = n
}
