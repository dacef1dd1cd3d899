package reference

import (
	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/transfer"
	"github.com/riftlabs/isobridge/vm"
)

// DerefOptions configures deref and derefInto.
type DerefOptions struct {
	Release bool
}

// Deref requires the caller to currently hold the owning isolate's lock
// (proven by tok); spec.md section 4.5 — it is the one ReferenceHandle
// operation with no cross-isolate trip to make, since the caller is
// already where the value lives. If opts.Release is set, the handle is
// released afterward (spec.md property 10).
func (h *Handle) Deref(tok *vm.LockToken, opts DerefOptions) (vm.Value, error) {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return nil, isoerr.Released()
	}
	value := h.value
	h.mu.Unlock()

	v, err := value.Deref(tok)
	if err != nil {
		return nil, err
	}
	if opts.Release {
		if relErr := h.Release(); relErr != nil {
			return nil, relErr
		}
	}
	return v, nil
}

// DerefInto produces a single-use transferable that re-materializes the
// referenced value only when it lands back in its owning isolate
// (spec.md section 4.5/4.8). If opts.Release is set, h hands the
// transferable its own remote handle outright and is released
// immediately. Otherwise h keeps using its own handle, and the
// transferable gets a clone: the underlying slot stays pinned until
// both h and the transferable's consumer have released their own
// claim on it, so consuming the transferable can never leave h pointing
// at an already-dropped slot.
func (h *Handle) DerefInto(opts DerefOptions) (*transfer.Deref, error) {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return nil, isoerr.Released()
	}
	value := h.value
	h.mu.Unlock()

	if opts.Release {
		d := transfer.NewDeref(value)
		h.mu.Lock()
		h.released = true
		h.value = nil
		h.mu.Unlock()
		return d, nil
	}
	return transfer.NewDeref(value.Clone()), nil
}
