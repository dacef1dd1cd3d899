// Package reference implements ReferenceHandle, the user-visible object
// exposing deref, derefInto, release, copy, get, set, and apply across
// isolate boundaries (spec.md section 4.5).
package reference

import (
	"sync"

	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/remote"
	"github.com/riftlabs/isobridge/transfer"
	"github.com/riftlabs/isobridge/vm"
)

// Handle is a ReferenceHandle: an owning isolate (implicit in value's
// IsolateID), a remote handle to a value, and the cached type tag.
// spec.md section 3 also lists a remote handle to the "creation
// context" as a fourth field; in this module a context is just an
// isolate's global object (vm.Isolate.Global()), so it is retrievable
// directly from the isolate once Apply's Phase 2 already holds that
// isolate's lock — a separate durable handle to it would be redundant
// plumbing and is not kept (see DESIGN.md).
type Handle struct {
	mu       sync.Mutex
	registry *vm.Registry
	value    *remote.Handle[vm.Value]
	kind     vm.Kind
	released bool
}

// New creates a ReferenceHandle to value, captured in the isolate tok
// belongs to. Per spec.md section 3, "created in any isolate from a
// local value captured there."
func New(tok *vm.LockToken, value vm.Value, registry *vm.Registry) *Handle {
	return &Handle{
		registry: registry,
		value:    remote.Capture[vm.Value](tok, value, registry),
		kind:     value.Kind(),
	}
}

// fromValueHandle wraps an existing remote.Handle directly — used when
// a *transfer.Reference arrives and must materialize as a new
// ReferenceHandle without capturing the value a second time.
func fromValueHandle(registry *vm.Registry, value *remote.Handle[vm.Value], kind vm.Kind) *Handle {
	return &Handle{registry: registry, value: value, kind: kind}
}

// Typeof returns the cached type tag. It is synchronous and local: it
// never requires a cross-isolate trip, and per spec.md property 1
// remains stable until Release — at which point, like every other
// operation, it fails with errors.Released().
func (h *Handle) Typeof() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return "", isoerr.Released()
	}
	return h.kind.String(), nil
}

// IsolateID reports which isolate owns the referenced value, or the
// zero UUID if this handle has been released.
func (h *Handle) IsolateID() vm.IsolateID {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return vm.IsolateID{}
	}
	return h.value.IsolateID()
}

// Release clears this handle's fields and schedules disposal of its
// underlying remote handle on the owning isolate. Idempotent: releasing
// an already-released handle reports errors.Released(), matching
// spec.md property 2.
func (h *Handle) Release() error {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return isoerr.Released()
	}
	h.released = true
	value := h.value
	h.value = nil
	h.mu.Unlock()

	value.Release()
	return nil
}

// targetIsolate resolves the isolate this handle's value lives in. It
// fails with errors.Released() both when this handle has been released
// and when the owning isolate itself has already been disposed — from
// the caller's perspective those are indistinguishable.
func (h *Handle) targetIsolate() (*vm.Isolate, *remote.Handle[vm.Value], error) {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return nil, nil, isoerr.Released()
	}
	value := h.value
	id := value.IsolateID()
	h.mu.Unlock()

	iso, ok := h.registry.Get(id)
	if !ok {
		return nil, nil, isoerr.Released()
	}
	return iso, value, nil
}

// materialize turns a marshaled result into the value Go callers see: a
// *transfer.Reference becomes a new *Handle (spec.md section 3: "a
// Reference ... materializes on arrival as a new ReferenceHandle"),
// anything else passes through unchanged.
func materialize(registry *vm.Registry, v vm.Value) vm.Value {
	if ref, ok := v.(*transfer.Reference); ok {
		return fromValueHandle(registry, ref.Handle(), ref.Kind())
	}
	return v
}

// Kind lets *Handle itself satisfy vm.Value: a ReferenceHandle received
// as, say, an apply argument reports the referent's cached kind via
// typeof, but (correctly) cannot be invoked as a local *vm.Function —
// only through this handle's own Apply.
func (h *Handle) Kind() vm.Kind {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.kind
}

// RemoteHandle satisfies transfer.Referenceable: when a *Handle itself
// flows into transfer.Marshal (an argument, a set value, a return
// value), Marshal delegates to the handle this ReferenceHandle already
// wraps instead of capturing the wrapper struct — spec.md section 4.2
// rule 1's "delegating to a value's own TransferOut" for the one vm.Value
// this package defines. The returned handle is h's own; the caller is
// expected to Clone it before handing it off to anything with its own
// release lifecycle.
func (h *Handle) RemoteHandle() (*remote.Handle[vm.Value], vm.Kind, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, 0, isoerr.Released()
	}
	return h.value, h.kind, nil
}
