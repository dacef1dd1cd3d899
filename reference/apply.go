package reference

import (
	"context"

	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/bridge"
	"github.com/riftlabs/isobridge/task"
	"github.com/riftlabs/isobridge/transfer"
	"github.com/riftlabs/isobridge/vm"
)

// ApplySync calls the referenced value as a function, blocking until it
// returns (or its timeout, if any, expires). recv and args are
// marshaled out under the caller's lock and back in under the target's,
// per spec.md section 4.6's Phase 1/Phase 2 split.
func (h *Handle) ApplySync(callerTok *vm.LockToken, recv vm.Value, args *vm.Object, opts ApplyOptions) (vm.Value, error) {
	target, remoteVal, recvTr, argTrs, err := h.prepareApply(callerTok, recv, args, opts)
	if err != nil {
		return nil, err
	}
	result, err := task.RunBlocking(callerTok, target, opts.Timeout, applyPhase2(h.registry, remoteVal, recvTr, argTrs, opts.Return))
	if err != nil {
		return nil, err
	}
	return materialize(h.registry, result), nil
}

// Apply is applySync's non-blocking counterpart: the call result
// settles a promise from a task scheduled back onto callerTok's isolate.
func (h *Handle) Apply(callerTok *vm.LockToken, recv vm.Value, args *vm.Object, opts ApplyOptions) (*vm.Promise, error) {
	target, remoteVal, recvTr, argTrs, err := h.prepareApply(callerTok, recv, args, opts)
	if err != nil {
		return nil, err
	}
	registry := h.registry
	inner, err := task.RunAsync(callerTok.Isolate(), target, opts.Timeout, applyPhase2(registry, remoteVal, recvTr, argTrs, opts.Return))
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

// ApplyIgnored fires the call and returns immediately; errors are
// swallowed and logged, per spec.md section 4.6/4.7. callerTok still
// proves the caller holds its own isolate's lock, since recv/args are
// transferred out under it before the call is fired.
func (h *Handle) ApplyIgnored(callerTok *vm.LockToken, recv vm.Value, args *vm.Object, opts ApplyOptions) error {
	target, remoteVal, recvTr, argTrs, err := h.prepareApply(callerTok, recv, args, opts)
	if err != nil {
		return err
	}
	return task.RunIgnored(target, opts.Timeout, applyPhase2(h.registry, remoteVal, recvTr, argTrs, opts.Return))
}

// ApplySyncPromise calls the referenced value, and if it returns a
// promise, blocks the caller until that promise settles instead of
// until the call itself returns — the async-promise bridge described in
// spec.md section 4.7. return options must be empty; spec.md section 6
// forbids them here because the bridge only marshals the resolved
// value under default policy.
func (h *Handle) ApplySyncPromise(callerTok *vm.LockToken, recv vm.Value, args *vm.Object, opts ApplyOptions) (vm.Value, error) {
	if !opts.Return.IsZero() {
		return nil, isoerr.ReturnOptionsNotAvailableForSyncPromise()
	}
	target, remoteVal, recvTr, argTrs, err := h.prepareApply(callerTok, recv, args, opts)
	if err != nil {
		return nil, err
	}

	result, err := task.RunBlocking(callerTok, target, opts.Timeout, applyPhase2Raw(h.registry, remoteVal, recvTr, argTrs))
	if err != nil {
		return nil, err
	}

	p, isPromise := result.(*vm.Promise)
	if !isPromise {
		return materialize(h.registry, result), nil
	}
	v, err := bridge.Await(p, opts.Timeout)
	if err != nil {
		return nil, err
	}
	return materialize(h.registry, v), nil
}

// prepareApply runs spec.md section 4.6's Phase 1: validate and resolve
// the target isolate, convert the index-dense args object into a Go
// slice, and transfer recv and every argument out under callerTok — the
// isolate they actually live in. Phase 2 only transfers the results of
// this back in, under the target's lock; it never calls transfer.Marshal
// itself, or a Reference built from recv/args would end up captured as
// owned by the target isolate instead of the caller.
func (h *Handle) prepareApply(callerTok *vm.LockToken, recv vm.Value, args *vm.Object, opts ApplyOptions) (*vm.Isolate, *remoteHandle, transfer.Transferable, []transfer.Transferable, error) {
	if opts.Timeout < 0 {
		return nil, nil, nil, nil, isoerr.TimeoutMustBeInteger()
	}
	argv, err := argsFromObject(args)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	target, remoteVal, err := h.targetIsolate()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	if recv == nil {
		recv = vm.Undefined{}
	}
	recvTr, err := transfer.Marshal(callerTok, h.registry, recv, opts.Arguments, transfer.PositionArgument)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	argTrs := make([]transfer.Transferable, len(argv))
	for i, a := range argv {
		tr, err := transfer.Marshal(callerTok, h.registry, a, opts.Arguments, transfer.PositionArgument)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		argTrs[i] = tr
	}

	return target, remoteVal, recvTr, argTrs, nil
}

// applyPhase2 is spec.md section 4.6's Phase 2 for the sync/async/
// ignored call shapes: enter the reference's creation context, confirm
// callability, transfer the already-marshaled receiver and arguments in,
// invoke under the timeout guard (already armed by the task package
// around this closure), marshal the result out using returnOpts — the
// return value originates on the target isolate, so that marshal
// correctly happens here rather than in Phase 1.
func applyPhase2(registry *vm.Registry, remoteVal *remoteHandle, recvTr transfer.Transferable, argTrs []transfer.Transferable, returnOpts transfer.Options) task.Phase2Func {
	return func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		result, err := callFunction(ctx, tok, registry, remoteVal, recvTr, argTrs)
		if err != nil {
			return nil, err
		}
		tr, err := transfer.Marshal(tok, registry, result, returnOpts, transfer.PositionReturn)
		if err != nil {
			return nil, err
		}
		return tr.TransferIn(tok)
	}
}

// applyPhase2Raw is applyPhase2 without marshaling the result, used by
// ApplySyncPromise: the raw call result (possibly a *vm.Promise) must
// survive intact so the bridge can detect and await it before any
// marshaling happens.
func applyPhase2Raw(registry *vm.Registry, remoteVal *remoteHandle, recvTr transfer.Transferable, argTrs []transfer.Transferable) task.Phase2Func {
	return func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		return callFunction(ctx, tok, registry, remoteVal, recvTr, argTrs)
	}
}

// callFunction transfers the receiver and arguments in and calls the
// function; a Reference receiver or argument arrives as a *Handle.
func callFunction(ctx context.Context, tok *vm.LockToken, registry *vm.Registry, remoteVal *remoteHandle, recvTr transfer.Transferable, argTrs []transfer.Transferable) (vm.Value, error) {
	v, err := remoteVal.Deref(tok)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(*vm.Function)
	if !ok {
		return nil, isoerr.NotAFunction()
	}

	marshaledRecv, err := recvTr.TransferIn(tok)
	if err != nil {
		return nil, err
	}

	marshaledArgs := make([]vm.Value, len(argTrs))
	for i, tr := range argTrs {
		arg, err := tr.TransferIn(tok)
		if err != nil {
			return nil, err
		}
		marshaledArgs[i] = materialize(registry, arg)
	}

	return fn.Call(ctx, tok, materialize(registry, marshaledRecv), marshaledArgs)
}
