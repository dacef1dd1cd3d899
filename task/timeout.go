package task

import (
	"context"
	"time"

	"github.com/riftlabs/isobridge/vm"
)

// Phase2Func is Phase 2 of a three-phase task: the work that runs under
// the target isolate's lock. It receives a context that is cancelled
// when the timeout guard expires; well-behaved functions (in particular
// vm.Func closures standing in for long-running script) must check
// ctx.Done() to unwind promptly, the way real script execution observes
// an engine-level termination signal.
type Phase2Func func(ctx context.Context, tok *vm.LockToken) (vm.Value, error)

// runWithTimeout bounds phase2's wall-clock duration to timeout for the
// purpose of notifying a waiting caller. A zero-or-negative timeout
// disables the guard entirely, matching spec.md section 4.4. It is armed
// around the whole phase2 closure: where that closure also transfers
// values in or marshals a result out (as reference's apply closures do),
// that work runs inside the guard too. Marshaling done on the caller
// before the task is scheduled is never inside it.
//
// Go cannot forcibly preempt a running goroutine the way an engine can
// interrupt a script, so on expiry this calls onTimeout immediately
// (once, synchronously) so a blocked caller can be released without
// waiting for phase2 to notice ctx.Done() — but runWithTimeout itself
// does not return until phase2 actually stops running. The isolate's own
// worker goroutine is the one calling this function, and spec.md
// section 5's single-lock invariant requires that goroutine not start
// the isolate's next queued task while an abandoned phase2 from a
// previous one might still be touching isolate state. onTimeout may be
// nil, in which case a timeout is silent until phase2 itself returns.
func runWithTimeout(tok *vm.LockToken, timeout time.Duration, phase2 Phase2Func, onTimeout func()) (vm.Value, error) {
	if timeout <= 0 {
		return phase2(context.Background(), tok)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	type result struct {
		v   vm.Value
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := phase2(ctx, tok)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		if onTimeout != nil {
			onTimeout()
		}
		r := <-done
		return r.v, r.err
	}
}
