package transfer

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/riftlabs/isobridge/vm"
)

// a minimal valid WASM module: (module) with no imports or exports.
var trivialWasmModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // \0asm
	0x01, 0x00, 0x00, 0x00, // version 1
}

func TestExtern_WazeroCompiledModuleRoundTrip(t *testing.T) {
	ctx := context.Background()
	runtime := wazero.NewRuntime(ctx)
	defer runtime.Close(ctx)

	compiled, err := runtime.CompileModule(ctx, trivialWasmModule)
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}
	defer compiled.Close(ctx)

	reg := vm.NewRegistry()
	iso := reg.New(vm.IsolateOptions{})
	defer reg.Close()

	ext := NewExtern(compiled)

	done := make(chan struct{})
	var got vm.Value
	var gotErr error
	iso.Schedule(func(tok *vm.LockToken) {
		got, gotErr = ext.TransferIn(tok)
		close(done)
	}, nil)
	<-done

	if gotErr != nil {
		t.Fatalf("TransferIn: %v", gotErr)
	}
	ev, ok := got.(*ExternValue)
	if !ok {
		t.Fatalf("TransferIn returned %T, want *ExternValue", got)
	}
	if ev.Payload.(wazero.CompiledModule) != compiled {
		t.Fatal("the same compiled module should resurface on the other side")
	}
	if ev.Kind() != vm.KindObject {
		t.Fatalf("Kind() = %v, want object", ev.Kind())
	}
}
