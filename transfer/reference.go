package transfer

import (
	"github.com/riftlabs/isobridge/remote"
	"github.com/riftlabs/isobridge/vm"
)

// Reference is a RemoteHandle plus the cached type tag — spec.md section
// 3's Reference variant. It materializes on arrival as a new
// ReferenceHandle; since package reference builds on top of package
// transfer (not the other way around), Reference satisfies vm.Value
// itself (via Kind), and TransferIn simply hands the Reference back.
// Package reference type-switches on *transfer.Reference when it needs
// to wrap one in a full ReferenceHandle with get/set/apply/etc.
type Reference struct {
	handle *remote.Handle[vm.Value]
	kind   vm.Kind
}

// NewReference captures v into a durable handle and wraps it as a
// Reference transferable. tok must belong to the isolate v lives in.
func NewReference(tok *vm.LockToken, v vm.Value, registry *vm.Registry) *Reference {
	return &Reference{
		handle: remote.Capture[vm.Value](tok, v, registry),
		kind:   v.Kind(),
	}
}

// newReferenceFromHandle wraps an already-captured handle directly,
// without capturing anything new — used by Marshal when v is
// Referenceable and delegation means handing across the handle v
// already owns (a clone of it, so v's own lifecycle and the
// transferable's stay independent) rather than capturing v itself.
func newReferenceFromHandle(handle *remote.Handle[vm.Value], kind vm.Kind) *Reference {
	return &Reference{handle: handle, kind: kind}
}

// Kind lets *Reference itself satisfy vm.Value — the materialized value
// of a Reference transferable is the reference object, not the
// dereferenced target.
func (r *Reference) Kind() vm.Kind { return r.kind }

// Handle returns the underlying durable handle to the referenced value.
func (r *Reference) Handle() *remote.Handle[vm.Value] { return r.handle }

func (r *Reference) TransferIn(tok *vm.LockToken) (vm.Value, error) {
	return r, nil
}
