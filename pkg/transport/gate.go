package transport

import (
	"sync"
	"sync/atomic"
	"time"
)

// gate serializes requests sharing one endpoint signature. The
// reference count tracks how many requests currently hold or wait for
// the gate so the registry can drop entries nobody uses.
type gate struct {
	mu   sync.Mutex
	refs int
}

// gateRegistry maps endpoint signatures to their gates. Entries are
// created on first use and removed once the last referencing request
// releases them, so idle signatures cost nothing.
type gateRegistry struct {
	mu    sync.Mutex
	gates map[string]*gate
}

func newGateRegistry() *gateRegistry {
	return &gateRegistry{gates: make(map[string]*gate)}
}

// acquire blocks until the gate for sig is exclusively held and
// returns a handle that must be released exactly once.
func (r *gateRegistry) acquire(sig string) *gateHandle {
	r.mu.Lock()
	g, ok := r.gates[sig]
	if !ok {
		g = &gate{}
		r.gates[sig] = g
	}
	// Count the reference before blocking so the entry cannot be
	// reaped while we wait.
	g.refs++
	r.mu.Unlock()

	g.mu.Lock()
	return &gateHandle{reg: r, sig: sig, g: g}
}

// size returns the number of live gates. Test hook.
func (r *gateRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gates)
}

// gateHandle represents one held gate. release is idempotent: the
// deferred-release timer and the normal completion path may both
// attempt it, but only the first wins.
type gateHandle struct {
	reg      *gateRegistry
	sig      string
	g        *gate
	released atomic.Bool
	deferred atomic.Bool
}

// release unlocks the gate and drops its registry reference. Safe to
// call multiple times; only the first call has any effect.
func (h *gateHandle) release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	h.g.mu.Unlock()

	h.reg.mu.Lock()
	h.g.refs--
	if h.g.refs == 0 {
		delete(h.reg.gates, h.sig)
	}
	h.reg.mu.Unlock()
}

// deferRelease schedules the release after d instead of letting the
// completion path unlock the gate. Used when the endpoint quota is
// exhausted: the gate stays held until the quota window resets.
// Scheduling happens at most once per handle.
func (h *gateHandle) deferRelease(d time.Duration) {
	if !h.deferred.CompareAndSwap(false, true) {
		return
	}
	time.AfterFunc(d, h.release)
}

// finish releases the gate unless a deferred release was scheduled.
// Called on every exit path of a dispatch.
func (h *gateHandle) finish() {
	if h.deferred.Load() {
		return
	}
	h.release()
}
