// Package task implements the three-phase task driver: Phase 1 runs on
// the caller (the method body that builds a Phase2Func closure), Phase 2
// runs on the target isolate under a timeout guard, and Phase 3 delivers
// the result back to the caller according to the call's Mode.
package task

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/vm"
)

// Mode names the four ReferenceHandle call shapes (apply, applySync,
// applyIgnored, applySyncPromise — and their copy/get/set analogues),
// per spec.md section 4.3's table. No function takes a Mode: each Run*
// function below implements one shape, and the doc comments refer to
// these names.
type Mode int

const (
	ModeAsync Mode = iota
	ModeSync
	ModeIgnored
	ModeSyncPromise
)

// RunBlocking runs phase2 on target and blocks the calling goroutine —
// which must already be the caller isolate's own worker goroutine,
// proven by callerTok — until either phase2 completes or its timeout
// guard expires, whichever comes first. Phase 3 then runs inline, on
// that same already-held goroutine: no extra hop onto the caller's
// queue is needed or possible, since that queue's single goroutine is
// the one doing the blocking. Used for ModeSync and as the first half of
// ModeSyncPromise (see package bridge for the promise-await half).
//
// A timed-out phase2 keeps running on target after this returns; target
// itself does not move on to its next queued task until that abandoned
// goroutine actually stops, so this function's early return never lets
// two goroutines touch target's state at once.
func RunBlocking(callerTok *vm.LockToken, target *vm.Isolate, timeout time.Duration, phase2 Phase2Func) (vm.Value, error) {
	type result struct {
		v   vm.Value
		err error
	}
	done := make(chan result, 1)
	var delivered atomic.Bool
	deliver := func(v vm.Value, err error) {
		if delivered.CompareAndSwap(false, true) {
			done <- result{v, err}
		}
	}

	scheduleErr := target.Schedule(func(tok *vm.LockToken) {
		v, err := runWithTimeout(tok, timeout, phase2, func() {
			deliver(nil, isoerr.Timeout())
		})
		deliver(v, err)
	}, func(err error) {
		deliver(nil, err)
	})
	if scheduleErr != nil {
		return nil, scheduleErr
	}

	r := <-done
	return r.v, r.err
}

// RunAsync runs phase2 on target without blocking the caller. The
// returned *vm.Promise settles from a task scheduled back onto
// callerIso — the Phase 3 hop spec.md section 4.3 requires so that
// result delivery stays totally ordered with respect to the caller's
// other work.
//
// As with RunBlocking, a timeout settles the promise immediately but
// target's worker goroutine keeps waiting for the abandoned phase2 to
// actually return before it will run anything else queued on target.
func RunAsync(callerIso, target *vm.Isolate, timeout time.Duration, phase2 Phase2Func) (*vm.Promise, error) {
	p := vm.NewPromise()
	var delivered atomic.Bool

	settle := func(v vm.Value, err error) {
		if !delivered.CompareAndSwap(false, true) {
			return
		}
		scheduleErr := callerIso.Schedule(func(*vm.LockToken) {
			if err != nil {
				p.Reject(err)
			} else {
				p.Resolve(v)
			}
		}, func(schedErr error) {
			p.Reject(schedErr)
		})
		if scheduleErr != nil {
			p.Reject(scheduleErr)
		}
	}

	err := target.Schedule(func(tok *vm.LockToken) {
		v, phaseErr := runWithTimeout(tok, timeout, phase2, func() {
			settle(nil, isoerr.Timeout())
		})
		settle(v, phaseErr)
	}, func(err error) {
		settle(nil, err)
	})
	return p, err
}

// RunIgnored fires phase2 on target and returns immediately. Errors are
// swallowed — no promise, no channel — and logged at Warn, matching
// spec.md section 4.6/4.7's "applyIgnored" contract. target's worker
// goroutine still waits out an abandoned, timed-out phase2 before moving
// on; there is simply no caller blocked on the outcome.
func RunIgnored(target *vm.Isolate, timeout time.Duration, phase2 Phase2Func) error {
	return target.Schedule(func(tok *vm.LockToken) {
		_, err := runWithTimeout(tok, timeout, phase2, func() {
			vm.Logger().Warn("applyIgnored task timed out")
		})
		if err != nil {
			vm.Logger().Warn("applyIgnored task failed", zap.Error(err))
		}
	}, func(err error) {
		vm.Logger().Warn("applyIgnored task cancelled", zap.Error(err))
	})
}
