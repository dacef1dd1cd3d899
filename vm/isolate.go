package vm

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/resource"
)

// IsolateID identifies an isolate for the lifetime of a process.
type IsolateID = uuid.UUID

// LockToken is the capability proving the holder is running inside a
// specific isolate's single goroutine — the Go analogue of "currently
// holding the isolate's lock." Only code holding the right token may
// dereference that isolate's handles or run its functions.
type LockToken struct {
	isolate *Isolate
}

// Isolate returns the isolate this token proves lock ownership of.
func (t *LockToken) Isolate() *Isolate { return t.isolate }

// task is one unit of work queued on an isolate.
type task struct {
	run    func(*LockToken)
	cancel func(error)
}

// IsolateOptions configures a new Isolate: a small plain struct of
// knobs passed once at construction.
type IsolateOptions struct {
	// QueueHint sizes the initial task backlog capacity; it is advisory,
	// the queue grows past it under load.
	QueueHint int
}

// Isolate is a single-threaded execution environment: one goroutine
// drains a FIFO queue of tasks (the "lock"), tasks run one at a time in
// submission order, and a resource.Table holds every live value
// currently reachable through a durable handle into this isolate.
type Isolate struct {
	id      IsolateID
	table   resource.Table
	global  *Object
	heapLog *heapDiagnostics

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []task
	disposed bool
	wg       sync.WaitGroup
}

// NewIsolate starts a new isolate and its draining goroutine.
func NewIsolate(opts IsolateOptions) *Isolate {
	table := resource.NewTable()
	iso := &Isolate{
		id:     uuid.New(),
		table:  table,
		global: NewObject(),
		queue:  make([]task, 0, opts.QueueHint),
	}
	iso.cond = sync.NewCond(&iso.mu)
	iso.heapLog = &heapDiagnostics{isolate: iso.id}
	table.Subscribe(iso.heapLog)
	iso.wg.Add(1)
	go iso.loop()
	return iso
}

// heapDiagnostics logs every slot this isolate's table creates or drops,
// at debug level, so a live process can watch handle churn per isolate
// without a debugger attached. It implements resource.Observer.
type heapDiagnostics struct {
	isolate IsolateID
}

func (d *heapDiagnostics) OnResourceEvent(e resource.Event) {
	kind := Kind(e.TypeID)
	switch e.Type {
	case resource.EventCreated:
		Logger().Debug("heap slot created",
			zap.String("isolate", d.isolate.String()),
			zap.Uint64("handle", uint64(e.Handle)),
			zap.Stringer("kind", kind))
	case resource.EventDropped:
		Logger().Debug("heap slot dropped",
			zap.String("isolate", d.isolate.String()),
			zap.Uint64("handle", uint64(e.Handle)),
			zap.Stringer("kind", kind))
	}
}

// ID returns this isolate's identity.
func (i *Isolate) ID() IsolateID { return i.id }

// Table returns the handle table backing RemoteHandle slots in this
// isolate.
func (i *Isolate) Table() resource.Table { return i.table }

// Global returns this isolate's context object. It serves as the
// "creation context" of every value in this isolate; a ReferenceHandle
// keeps no separate handle to it.
func (i *Isolate) Global() *Object { return i.global }

// Schedule enqueues run to execute on this isolate's goroutine, in
// submission order relative to every other call queued by the same
// caller. If the isolate has already been disposed, Schedule returns
// errors.Disposed and never calls run; cancel, if non-nil, is still
// invoked with that error so callers can use the same cleanup path as a
// task cancelled mid-queue by Dispose.
func (i *Isolate) Schedule(run func(*LockToken), cancel func(error)) error {
	i.mu.Lock()
	if i.disposed {
		i.mu.Unlock()
		if cancel != nil {
			cancel(isoerr.Disposed())
		}
		return isoerr.Disposed()
	}
	i.queue = append(i.queue, task{run: run, cancel: cancel})
	i.cond.Signal()
	i.mu.Unlock()
	return nil
}

func (i *Isolate) loop() {
	defer i.wg.Done()
	tok := &LockToken{isolate: i}
	for {
		i.mu.Lock()
		for len(i.queue) == 0 && !i.disposed {
			i.cond.Wait()
		}
		if len(i.queue) == 0 {
			i.mu.Unlock()
			return
		}
		t := i.queue[0]
		i.queue = i.queue[1:]
		i.mu.Unlock()

		t.run(tok)
	}
}

// Dispose cancels every queued-but-not-yet-started task with
// errors.Disposed, waits for any task already running to finish, then
// closes the resource table. It is idempotent. Per spec.md section 5:
// "Isolate disposal cancels all queued tasks for that isolate with a
// 'disposed' error."
func (i *Isolate) Dispose() error {
	i.mu.Lock()
	if i.disposed {
		i.mu.Unlock()
		return nil
	}
	i.disposed = true
	pending := i.queue
	i.queue = nil
	i.cond.Broadcast()
	i.mu.Unlock()

	var err error
	for _, t := range pending {
		if t.cancel != nil {
			t.cancel(isoerr.Disposed())
		}
	}
	i.wg.Wait()
	i.table.Unsubscribe(i.heapLog)
	if closeErr := i.table.Close(); closeErr != nil {
		err = multierr.Append(err, closeErr)
	}
	return err
}

// Disposed reports whether Dispose has already run.
func (i *Isolate) Disposed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.disposed
}
