package reference

import (
	"context"

	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/remote"
	"github.com/riftlabs/isobridge/task"
	"github.com/riftlabs/isobridge/transfer"
	"github.com/riftlabs/isobridge/vm"
)

// remoteHandle shortens the generic instantiation used throughout this
// package: every durable handle here points at a vm.Value.
type remoteHandle = remote.Handle[vm.Value]

// GetSync reads a property of the referenced value on its owning
// isolate, marshals it per opts (empty opts: a Reference, even to a
// primitive property), and blocks until the result is ready. key must
// copy as a primitive or this fails with errors.InvalidKey().
func (h *Handle) GetSync(callerTok *vm.LockToken, key vm.Value, opts transfer.Options) (vm.Value, error) {
	k, err := keyToString(key)
	if err != nil {
		return nil, err
	}
	target, value, err := h.targetIsolate()
	if err != nil {
		return nil, err
	}
	v, err := task.RunBlocking(callerTok, target, 0, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		return getProperty(tok, h.registry, value, k, opts)
	})
	if err != nil {
		return nil, err
	}
	return materialize(h.registry, v), nil
}

// Get is getSync's non-blocking counterpart.
func (h *Handle) Get(callerIso *vm.Isolate, key vm.Value, opts transfer.Options) (*vm.Promise, error) {
	k, err := keyToString(key)
	if err != nil {
		return nil, err
	}
	target, value, err := h.targetIsolate()
	if err != nil {
		return nil, err
	}
	registry := h.registry
	inner, err := task.RunAsync(callerIso, target, 0, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		return getProperty(tok, registry, value, k, opts)
	})
	if err != nil {
		return nil, err
	}
	outer := vm.NewPromise()
	inner.Then(func(v vm.Value, err error) {
		if err != nil {
			outer.Reject(err)
			return
		}
		outer.Resolve(materialize(registry, v))
	})
	return outer, nil
}

func getProperty(tok *vm.LockToken, registry *vm.Registry, value *remoteHandle, key string, opts transfer.Options) (vm.Value, error) {
	v, err := value.Deref(tok)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*vm.Object)
	if !ok {
		return nil, isoerr.New(isoerr.PhaseGet, isoerr.KindType).Detail("value is not an object").Build()
	}
	prop, ok := obj.Get(key)
	if !ok {
		prop = vm.Undefined{}
	}
	if _, delegates := prop.(transfer.Referenceable); opts.IsZero() && !delegates {
		return transfer.NewReference(tok, prop, registry).TransferIn(tok)
	}
	tr, err := transfer.Marshal(tok, registry, prop, opts, transfer.PositionReturn)
	if err != nil {
		return nil, err
	}
	return tr.TransferIn(tok)
}

// SetSync deletes any existing binding for key (spec.md section 4.5's
// "delete-before-set", so replacing a large value does not transiently
// double its heap footprint) and sets it to value, marshaled per opts.
// It reports whether the set was accepted. value is transferred out
// under callerTok in Phase 1 — it lives in the caller's isolate, not
// the target's — and only transferred back in under the target's lock
// in Phase 2.
func (h *Handle) SetSync(callerTok *vm.LockToken, key vm.Value, value vm.Value, opts transfer.Options) (bool, error) {
	k, err := keyToString(key)
	if err != nil {
		return false, err
	}
	target, remoteVal, err := h.targetIsolate()
	if err != nil {
		return false, err
	}
	tr, err := transfer.Marshal(callerTok, h.registry, value, opts, transfer.PositionArgument)
	if err != nil {
		return false, err
	}
	result, err := task.RunBlocking(callerTok, target, 0, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		return setProperty(tok, remoteVal, k, tr)
	})
	if err != nil {
		return false, err
	}
	return bool(result.(vm.Boolean)), nil
}

// SetIgnored fires the set without waiting for it or reporting errors,
// per spec.md section 4.5's setIgnored. callerTok proves the caller
// holds its own isolate's lock, since value is transferred out under it
// before the set is fired.
func (h *Handle) SetIgnored(callerTok *vm.LockToken, key vm.Value, value vm.Value, opts transfer.Options) error {
	k, err := keyToString(key)
	if err != nil {
		return err
	}
	target, remoteVal, err := h.targetIsolate()
	if err != nil {
		return err
	}
	tr, err := transfer.Marshal(callerTok, h.registry, value, opts, transfer.PositionArgument)
	if err != nil {
		return err
	}
	return task.RunIgnored(target, 0, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		return setProperty(tok, remoteVal, k, tr)
	})
}

func setProperty(tok *vm.LockToken, remoteVal *remoteHandle, key string, valueTr transfer.Transferable) (vm.Value, error) {
	target, err := remoteVal.Deref(tok)
	if err != nil {
		return nil, err
	}
	obj, ok := target.(*vm.Object)
	if !ok {
		return vm.Boolean(false), nil
	}
	materialized, err := valueTr.TransferIn(tok)
	if err != nil {
		return nil, err
	}
	obj.Delete(key)
	obj.Set(key, materialized)
	return vm.Boolean(true), nil
}
