package ui

import "sync"

// Ref is a liveness-checked reference to a Sink owned by someone else.
// The owner calls Release when it tears the UI down; holders must Upgrade
// before every use.
type Ref struct {
	mu     sync.RWMutex
	target Sink
}

func NewRef(target Sink) *Ref {
	return &Ref{target: target}
}

// Upgrade returns the target while it is alive.
func (r *Ref) Upgrade() (Sink, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.target == nil {
		return nil, false
	}
	return r.target, true
}

func (r *Ref) Alive() bool {
	_, ok := r.Upgrade()
	return ok
}

// Release marks the target dead. It is safe to call more than once.
func (r *Ref) Release() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.target = nil
	r.mu.Unlock()
}

// DirectHandle dispatches inline on the calling goroutine. It is meant for
// callers that already run on the UI loop, and for tests.
type DirectHandle struct {
	ref *Ref
}

func NewDirectHandle(ref *Ref) *DirectHandle {
	return &DirectHandle{ref: ref}
}

func (h *DirectHandle) Dispatch(fn func(Sink)) bool {
	sink, ok := h.ref.Upgrade()
	if !ok {
		return false
	}
	fn(sink)
	return true
}
