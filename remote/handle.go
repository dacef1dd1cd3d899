// Package remote implements RemoteHandle: a durable, isolate-tagged
// reference into one isolate's heap that can only be dereferenced while
// holding that isolate's lock.
package remote

import (
	"sync"

	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/resource"
	"github.com/riftlabs/isobridge/vm"
)

// handleState is the table slot a Handle and every clone produced from
// it via Clone share. The slot is removed from the isolate's table only
// once every handle sharing this state has released its own claim — the
// same "clones keep the underlying resource alive" shape a reference
// counted pointer gives you, sized down to exactly the one case this
// module needs it for: a transferable produced from a handle that must
// stay consumable independently of the ReferenceHandle it came from.
type handleState[T vm.Value] struct {
	mu        sync.Mutex
	slot      resource.Handle
	refs      int
	onRelease func(T)
}

// Handle is a durable reference to a live value of type T in one
// isolate's heap. It is the Go rendering of spec.md's RemoteHandle[T]:
// capturing one pins the value's slot until every handle sharing its
// underlying slot has called Release, and dereferencing requires
// proving (via a *vm.LockToken) that the caller is currently running
// inside the owning isolate.
type Handle[T vm.Value] struct {
	registry *vm.Registry
	isolate  vm.IsolateID
	state    *handleState[T]

	mu       sync.Mutex
	released bool
}

// Capture pins value into the isolate tok belongs to and returns a
// durable handle to it. The caller must be holding tok for that same
// isolate — capture always happens from inside the owning isolate's
// lock, per spec.md section 3.
func Capture[T vm.Value](tok *vm.LockToken, value T, registry *vm.Registry) *Handle[T] {
	iso := tok.Isolate()
	slot := iso.Table().Insert(uint32(value.Kind()), value)
	return &Handle[T]{
		registry: registry,
		isolate:  iso.ID(),
		state:    &handleState[T]{slot: slot, refs: 1},
	}
}

// IsolateID returns the ID of the isolate this handle is bound to.
func (h *Handle[T]) IsolateID() vm.IsolateID { return h.isolate }

// IsZero reports whether this particular handle has already been
// released (or was never captured). A clone produced by Clone reports
// its own released state independently of h and of any other clone
// sharing the same underlying slot.
func (h *Handle[T]) IsZero() bool {
	if h == nil {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// OnRelease installs a callback run, under the owning isolate's lock,
// immediately before the slot is actually dropped from its table — that
// is, when the last handle sharing this slot releases, not necessarily
// when this particular handle does. Modeled on
// shareable_persistent.h's deleter-before-Reset hook in the original.
func (h *Handle[T]) OnRelease(fn func(T)) {
	h.state.mu.Lock()
	h.state.onRelease = fn
	h.state.mu.Unlock()
}

// Clone returns a second handle to the same underlying slot, sharing
// ownership with h: the slot is only actually removed once h and every
// clone derived from it have each called Release. The clone starts
// unreleased regardless of h's own state, and is safe to hand to a
// different goroutine, or a different isolate-crossing transferable,
// than h is used from.
func (h *Handle[T]) Clone() *Handle[T] {
	h.state.mu.Lock()
	h.state.refs++
	h.state.mu.Unlock()
	return &Handle[T]{
		registry: h.registry,
		isolate:  h.isolate,
		state:    h.state,
	}
}

// Deref produces the live value. tok must belong to the isolate this
// handle was captured in, or Deref returns errors.WrongIsolate — the Go
// analogue of the original's "reference belongs to a different
// isolate" check.
func (h *Handle[T]) Deref(tok *vm.LockToken) (T, error) {
	var zero T
	h.mu.Lock()
	released := h.released
	h.mu.Unlock()
	if released {
		return zero, isoerr.Released()
	}
	if tok.Isolate().ID() != h.isolate {
		return zero, isoerr.WrongIsolate()
	}
	v, ok := tok.Isolate().Table().Get(h.state.slot)
	if !ok {
		return zero, isoerr.Released()
	}
	return v.(T), nil
}

// Release marks this handle released and drops the underlying slot from
// its owning isolate's table once every handle sharing that slot (h and
// every clone of it) has done the same. It is safe to call from any
// goroutine, any number of times; only the first call on any given
// handle decrements the shared refcount, and only the call that brings
// that count to zero actually schedules slot removal. If the owning
// isolate is no longer registered (already disposed), the handle is
// abandoned without touching anything — its heap is already gone.
func (h *Handle[T]) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.mu.Unlock()

	h.state.mu.Lock()
	h.state.refs--
	last := h.state.refs == 0
	slot := h.state.slot
	onRelease := h.state.onRelease
	h.state.mu.Unlock()
	if !last {
		return
	}

	iso, ok := h.registry.Get(h.isolate)
	if !ok {
		return
	}
	_ = iso.Schedule(func(tok *vm.LockToken) {
		if onRelease != nil {
			if v, ok := iso.Table().Get(slot); ok {
				onRelease(v.(T))
			}
		}
		iso.Table().Remove(slot)
	}, nil)
}
