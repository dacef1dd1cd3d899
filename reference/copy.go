package reference

import (
	"context"

	"github.com/riftlabs/isobridge/task"
	"github.com/riftlabs/isobridge/vm"
)

// CopySync deep-copies the referenced value on its owning isolate and
// blocks the calling goroutine (which must already hold callerTok for
// its own isolate) until the copy is ready. Implements spec.md section
// 4.5's copySync, and is exercised by property 5's copy round-trip.
func (h *Handle) CopySync(callerTok *vm.LockToken) (vm.Value, error) {
	target, value, err := h.targetIsolate()
	if err != nil {
		return nil, err
	}
	return task.RunBlocking(callerTok, target, 0, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		v, err := value.Deref(tok)
		if err != nil {
			return nil, err
		}
		return vm.DeepCopy(v)
	})
}

// Copy is copySync's non-blocking counterpart: it returns a promise
// that settles from a task scheduled back onto callerIso.
func (h *Handle) Copy(callerIso *vm.Isolate) (*vm.Promise, error) {
	target, value, err := h.targetIsolate()
	if err != nil {
		return nil, err
	}
	return task.RunAsync(callerIso, target, 0, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		v, err := value.Deref(tok)
		if err != nil {
			return nil, err
		}
		return vm.DeepCopy(v)
	})
}
