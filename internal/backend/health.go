package backend

import (
	"sync"
	"time"
)

// Health is a point-in-time view of one backend's generative calls. It is
// observability only: enhancement never consults it before calling a
// backend, because every failure already has a fallback path.
type Health struct {
	Healthy     bool
	Successes   uint64
	Failures    uint64
	LastError   string
	LastChecked time.Time
}

// HealthTracker records the outcome of generative calls per backend.
type HealthTracker struct {
	mu    sync.RWMutex
	stats map[string]*Health
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		stats: make(map[string]*Health),
	}
}

// RecordSuccess records a successful generative call for the backend.
func (t *HealthTracker) RecordSuccess(backend string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.get(backend)
	h.Healthy = true
	h.Successes++
	h.LastError = ""
	h.LastChecked = time.Now()
}

// RecordFailure records a failed generative call for the backend.
func (t *HealthTracker) RecordFailure(backend string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.get(backend)
	h.Healthy = false
	h.Failures++
	if err != nil {
		h.LastError = err.Error()
	}
	h.LastChecked = time.Now()
}

// Snapshot returns a copy of the backend's health. ok is false when no call
// has been recorded yet.
func (t *HealthTracker) Snapshot(backend string) (Health, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.stats[backend]
	if !ok {
		return Health{}, false
	}
	return *h, true
}

// get must be called with the write lock held.
func (t *HealthTracker) get(backend string) *Health {
	h, ok := t.stats[backend]
	if !ok {
		h = &Health{}
		t.stats[backend] = h
	}
	return h
}
