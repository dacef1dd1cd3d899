package transfer

import "github.com/riftlabs/isobridge/vm"

// ExternValue wraps an engine-native shareable object — a compiled
// script, a context, a buffer — opaquely, the way spec.md section 3
// describes the Extern transferable variant. typeof an extern is
// "object"; nothing in this module inspects the payload.
type ExternValue struct {
	Payload any
}

func (*ExternValue) Kind() vm.Kind { return vm.KindObject }

// Extern is the transferable wrapping an ExternValue. Unlike Copy and
// Reference, it carries no isolate-boundary semantics of its own —
// extern payloads (e.g. a wazero.CompiledModule) are already safe to
// share across goroutines, so TransferIn just unwraps the payload.
type Extern struct {
	payload any
}

// NewExtern wraps payload (typically a *wazero.CompiledModule) for
// transfer as an opaque engine-native object.
func NewExtern(payload any) *Extern {
	return &Extern{payload: payload}
}

func (e *Extern) TransferIn(tok *vm.LockToken) (vm.Value, error) {
	return &ExternValue{Payload: e.payload}, nil
}
