// Package isobridge provides the cross-isolate reference and invocation
// core for a multi-tenant scripting runtime: capture a value live in one
// isolate, hand a handle to it to code running in another, and call,
// read, write, or copy through that handle without ever sharing memory
// between the two.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	isobridge/            Root package doc only — no exported API
//	├── vm/                Minimal isolate substrate: values, functions,
//	│                       promises, the single-goroutine lock/queue
//	├── resource/           Generic handle table backing an isolate's heap
//	├── remote/             RemoteHandle[T]: a durable, isolate-scoped
//	│                       pointer that can only be dereferenced under
//	│                       that isolate's lock
//	├── transfer/           The transferable value protocol: Copy,
//	│                       Reference, Deref, Extern
//	├── task/               The three-phase task driver and timeout guard
//	├── bridge/             The async-promise bridge (applySyncPromise)
//	├── reference/          ReferenceHandle: deref, derefInto, release,
//	│                       copy, get, set, apply
//	├── errors/             Structured errors, including the bit-stable
//	│                       literal strings the external interface promises
//	└── cmd/isorepl/         Interactive two-isolate demo
//
// # Quick Start
//
//	registry := vm.NewRegistry()
//	owner := registry.New(vm.IsolateOptions{})
//	caller := registry.New(vm.IsolateOptions{})
//
//	var ref *reference.Handle
//	owner.Schedule(func(tok *vm.LockToken) {
//		fn := vm.NewFunction(func(ctx context.Context, tok *vm.LockToken, recv vm.Value, args []vm.Value) (vm.Value, error) {
//			return vm.String("hello"), nil
//		})
//		ref = reference.New(tok, fn, registry)
//	}, nil)
//
//	caller.Schedule(func(tok *vm.LockToken) {
//		result, err := ref.ApplySync(tok, nil, vm.NewArgsObject(nil), reference.ApplyOptions{})
//		// result is vm.String("hello")
//	}, nil)
//
// # Thread Safety
//
// Every vm.Isolate runs its own single goroutine; a *vm.LockToken is the
// capability proving the calling code is running on a particular
// isolate's goroutine. remote.Handle and reference.Handle are safe to
// pass freely between goroutines — only dereferencing the value itself
// requires holding the owning isolate's token.
package isobridge
