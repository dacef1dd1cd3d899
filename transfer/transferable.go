// Package transfer implements the transferable value protocol: the
// variants describing how a value crosses an isolate boundary
// (spec.md section 3/4.2) — Copy, Reference, Deref, Extern.
package transfer

import (
	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/remote"
	"github.com/riftlabs/isobridge/vm"
)

// Transferable describes a value in motion between isolates. TransferOut
// (performed under the source isolate's lock, hence the separate
// constructors in this package rather than a method on Transferable)
// produces one of these; TransferIn, called under the destination
// isolate's lock, materializes it as a live value there.
type Transferable interface {
	TransferIn(tok *vm.LockToken) (vm.Value, error)
}

// Referenceable is implemented by a vm.Value that already wraps its own
// durable handle into some isolate's heap — currently only
// *reference.Handle. Marshal checks for it before anything else, so
// that a ReferenceHandle flowing through an argument, set, or return
// position forwards to the value it refers to instead of being captured
// as a new reference to the wrapper struct itself (spec.md section 4.2
// rule 1).
type Referenceable interface {
	RemoteHandle() (*remote.Handle[vm.Value], vm.Kind, error)
}

// Position distinguishes marshaling a function argument from marshaling
// a return value — spec.md section 4.2's default policy differs between
// the two.
type Position int

const (
	PositionArgument Position = iota
	PositionReturn
)

// Marshal implements spec.md section 4.2's marshaling rules. Rule 1
// ("delegating to a value's own TransferOut") applies whenever v is
// Referenceable — a *reference.Handle flowing through as an argument,
// set value, or return value forwards to the remote handle it already
// wraps rather than being captured as a brand new reference to the
// wrapper struct, regardless of opts; every other value follows rules
// 2-4 below. tok must belong to the source isolate, i.e. the one v
// currently lives in.
func Marshal(tok *vm.LockToken, registry *vm.Registry, v vm.Value, opts Options, pos Position) (Transferable, error) {
	if ref, ok := v.(Referenceable); ok {
		handle, kind, err := ref.RemoteHandle()
		if err != nil {
			return nil, err
		}
		return newReferenceFromHandle(handle.Clone(), kind), nil
	}
	if opts.Copy || opts.ExternalCopy || v.Kind().IsPrimitive() {
		return NewCopy(v)
	}
	if opts.Reference || (pos == PositionReturn && opts.IsZero()) {
		return NewReference(tok, v, registry), nil
	}
	return nil, isoerr.NotTransferable()
}
