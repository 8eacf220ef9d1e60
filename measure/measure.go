// Package measure accumulates byte-size telemetry behind a global
// registry. Collection is off unless Enabled is set, so library callers
// pay nothing in the common case.
package measure

import "sync"

// Enabled gates all collection.
var Enabled bool

// Registry is a keyed sum of observed sizes.
type Registry struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// Global is the registry used by the library.
var Global = &Registry{}

// Add accumulates n under key. Negative values are ignored.
func (r *Registry) Add(key string, n int64) {
	if n < 0 {
		return
	}
	r.mu.Lock()
	if r.counters == nil {
		r.counters = make(map[string]uint64)
	}
	r.counters[key] += uint64(n)
	r.mu.Unlock()
}

// SnapshotAndReset returns the accumulated counters and clears them.
func (r *Registry) SnapshotAndReset() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.counters
	r.counters = nil
	if out == nil {
		out = map[string]uint64{}
	}
	return out
}
