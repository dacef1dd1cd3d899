package transfer

import (
	"sync/atomic"

	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/remote"
	"github.com/riftlabs/isobridge/vm"
)

// Deref is the DereferenceHandle transferable (spec.md section 4.8): it
// wraps an existing RemoteHandle and, on arrival in that handle's home
// isolate, re-materializes the live value and releases the handle.
// Single-use is enforced here, at the transferable, not on the
// ReferenceHandle it came from — spec.md's design notes call this out
// explicitly, because the originating handle may already be released by
// the time the transferable is consumed.
type Deref struct {
	handle *remote.Handle[vm.Value]
	used   atomic.Bool
}

// NewDeref wraps an existing handle for one-shot, deref-on-arrival
// transfer. It never captures a new value — the caller decides whether
// to hand over its own handle or a Clone of it.
func NewDeref(handle *remote.Handle[vm.Value]) *Deref {
	return &Deref{handle: handle}
}

func (d *Deref) TransferIn(tok *vm.LockToken) (vm.Value, error) {
	if !d.used.CompareAndSwap(false, true) {
		return nil, isoerr.DerefIntoUsed()
	}
	if tok.Isolate().ID() != d.handle.IsolateID() {
		return nil, isoerr.DerefIntoWrongIsolate()
	}
	v, err := d.handle.Deref(tok)
	if err != nil {
		return nil, err
	}
	d.handle.Release()
	return v, nil
}
