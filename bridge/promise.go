// Package bridge implements the async-promise bridge: letting a
// synchronous caller block until a promise produced on another isolate
// settles, per spec.md section 4.7 (Phase2Async).
package bridge

import (
	"sync/atomic"
	"time"

	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/vm"
)

// Await blocks the calling goroutine until p settles or timeout elapses
// (a zero timeout waits forever). It implements the did_finish
// coordination spec.md's design notes describe: whichever of
// (settlement, timeout) happens first wins, and the loser's effect is
// a no-op, via a single atomic CAS both paths race on.
//
// Rejection values are normalized the way spec.md section 4.7 requires:
// primitives and engine-level *vm.ErrorValue reasons are copied as-is;
// anything else becomes errors.NonErrorRejection().
func Await(p *vm.Promise, timeout time.Duration) (vm.Value, error) {
	var didFinish atomic.Bool
	done := make(chan struct{}, 1)
	var value vm.Value
	var settleErr error

	p.Then(func(v vm.Value, err error) {
		if !didFinish.CompareAndSwap(false, true) {
			return
		}
		if err != nil {
			settleErr = normalizeRejection(err)
		} else {
			value = v
		}
		done <- struct{}{}
	})

	if timeout <= 0 {
		<-done
		return value, settleErr
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return value, settleErr
	case <-timer.C:
		if didFinish.CompareAndSwap(false, true) {
			return nil, isoerr.Timeout()
		}
		// Settlement already won the race; its result is on its way.
		<-done
		return value, settleErr
	}
}

// normalizeRejection implements spec.md section 4.7's rejection policy.
func normalizeRejection(err error) error {
	ierr, ok := err.(*isoerr.Error)
	if !ok || ierr.Kind != isoerr.KindRuntime {
		return err
	}
	switch ierr.Value.(type) {
	case nil, vm.Null, vm.Undefined, vm.Number, vm.String, vm.Boolean:
		return ierr
	case *vm.ErrorValue:
		return ierr
	default:
		return isoerr.NonErrorRejection()
	}
}
