package task

import (
	"context"
	"sync"
	"testing"
	"time"

	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/vm"
)

func newIsolates(t *testing.T) (caller, target *vm.Isolate, cleanup func()) {
	t.Helper()
	caller = vm.NewIsolate(vm.IsolateOptions{})
	target = vm.NewIsolate(vm.IsolateOptions{})
	return caller, target, func() {
		caller.Dispose()
		target.Dispose()
	}
}

func runOn(t *testing.T, iso *vm.Isolate, fn func(*vm.LockToken)) {
	t.Helper()
	done := make(chan struct{})
	if err := iso.Schedule(func(tok *vm.LockToken) {
		fn(tok)
		close(done)
	}, nil); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	<-done
}

func TestRunBlocking_ReturnsValue(t *testing.T) {
	caller, target, cleanup := newIsolates(t)
	defer cleanup()

	var result vm.Value
	var resultErr error
	runOn(t, caller, func(callerTok *vm.LockToken) {
		result, resultErr = RunBlocking(callerTok, target, 0, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
			return vm.Number(42), nil
		})
	})
	if resultErr != nil || result != vm.Number(42) {
		t.Fatalf("RunBlocking = %v, %v", result, resultErr)
	}
}

func TestRunBlocking_Timeout(t *testing.T) {
	caller, target, cleanup := newIsolates(t)
	defer cleanup()

	var resultErr error
	runOn(t, caller, func(callerTok *vm.LockToken) {
		_, resultErr = RunBlocking(callerTok, target, 20*time.Millisecond, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
	})
	if !isoerr.Timeout().Is(resultErr) {
		t.Fatalf("RunBlocking timeout = %v, want errors.Timeout()", resultErr)
	}
}

// TestRunBlocking_TimeoutDoesNotRaceNextTask exercises the window a
// tight ctx.Done()-checking busy-loop never reaches: phase2 keeps
// running well past the timeout, and a second task is queued on target
// the instant the caller observes the timeout error. target's worker
// goroutine must finish the abandoned phase2 before starting the second
// task, or both would observe busy == true at once.
func TestRunBlocking_TimeoutDoesNotRaceNextTask(t *testing.T) {
	caller, target, cleanup := newIsolates(t)
	defer cleanup()

	var mu sync.Mutex
	var busy, raced bool

	abandonedDone := make(chan struct{})
	runOn(t, caller, func(callerTok *vm.LockToken) {
		_, _ = RunBlocking(callerTok, target, 10*time.Millisecond, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
			mu.Lock()
			if busy {
				raced = true
			}
			busy = true
			mu.Unlock()

			time.Sleep(50 * time.Millisecond)

			mu.Lock()
			busy = false
			mu.Unlock()
			close(abandonedDone)
			return nil, nil
		})
	})

	nextDone := make(chan struct{})
	if err := target.Schedule(func(tok *vm.LockToken) {
		mu.Lock()
		if busy {
			raced = true
		}
		mu.Unlock()
		close(nextDone)
	}, nil); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	select {
	case <-nextDone:
	case <-time.After(time.Second):
		t.Fatal("next task never ran")
	}
	<-abandonedDone

	if raced {
		t.Fatal("next task observed the abandoned task's isolate state while it was still running")
	}
}

func TestRunAsync_SettlesOnCallerIsolate(t *testing.T) {
	caller, target, cleanup := newIsolates(t)
	defer cleanup()

	p, err := RunAsync(caller, target, 0, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		return vm.String("done"), nil
	})
	if err != nil {
		t.Fatalf("RunAsync: %v", err)
	}

	result := make(chan vm.Value, 1)
	p.Then(func(v vm.Value, err error) {
		result <- v
	})
	select {
	case v := <-result:
		if v != vm.String("done") {
			t.Fatalf("got %v", v)
		}
	case <-time.After(time.Second):
		t.Fatal("promise never settled")
	}
}

func TestRunIgnored_DoesNotBlockCaller(t *testing.T) {
	_, target, cleanup := newIsolates(t)
	defer cleanup()

	ranCh := make(chan struct{})
	err := RunIgnored(target, 0, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		close(ranCh)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("RunIgnored: %v", err)
	}
	select {
	case <-ranCh:
	case <-time.After(time.Second):
		t.Fatal("ignored task never ran")
	}
}

func TestRunIgnored_ErrorsAreSwallowed(t *testing.T) {
	_, target, cleanup := newIsolates(t)
	defer cleanup()

	err := RunIgnored(target, 0, func(ctx context.Context, tok *vm.LockToken) (vm.Value, error) {
		return nil, isoerr.NotAFunction()
	})
	if err != nil {
		t.Fatalf("RunIgnored should report no error to the caller, got %v", err)
	}
}
