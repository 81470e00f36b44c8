package service

import "context"

// RequestTracker issues monotonically increasing request epochs.
//
// Async work captures the epoch at dispatch and must check IsCurrent before
// applying its result. Each epoch also owns a context that is cancelled as
// soon as a newer epoch is issued, so superseded HTTP requests stop early.
// The epoch comparison stays authoritative: a result that raced past the
// cancellation is still dropped.
//
// RequestTracker is not safe for concurrent use; it belongs to the UI loop.
type RequestTracker struct {
	epoch  uint64
	base   context.Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRequestTracker creates a tracker whose epoch contexts derive from parent
func NewRequestTracker(parent context.Context) *RequestTracker {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &RequestTracker{
		base:   parent,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Next invalidates every outstanding request and returns the new epoch
func (t *RequestTracker) Next() uint64 {
	t.cancel()
	t.epoch++
	t.ctx, t.cancel = context.WithCancel(t.base)
	return t.epoch
}

// Current returns the live epoch
func (t *RequestTracker) Current() uint64 {
	return t.epoch
}

// IsCurrent reports whether a captured epoch still matches the live one
func (t *RequestTracker) IsCurrent(captured uint64) bool {
	return captured == t.epoch
}

// Context returns the context bound to the live epoch
func (t *RequestTracker) Context() context.Context {
	return t.ctx
}

// Close cancels the live epoch context when the session is torn down
func (t *RequestTracker) Close() {
	t.cancel()
}
