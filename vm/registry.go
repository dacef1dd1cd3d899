package vm

import (
	"sync"

	"go.uber.org/multierr"
)

// Registry is the minimal slice of isolate lifecycle management this
// module needs: mint isolates, look one up by ID for handle validation
// and async callbacks, and dispose one or all of them.
type Registry struct {
	mu       sync.RWMutex
	isolates map[IsolateID]*Isolate
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{isolates: make(map[IsolateID]*Isolate)}
}

// New creates and registers a new isolate.
func (r *Registry) New(opts IsolateOptions) *Isolate {
	iso := NewIsolate(opts)
	r.mu.Lock()
	r.isolates[iso.id] = iso
	r.mu.Unlock()
	return iso
}

// Get looks up an isolate by ID. It returns false once the isolate has
// been disposed via Dispose — RemoteHandle.Release treats that as "the
// heap is already gone, abandon the handle without touching it."
func (r *Registry) Get(id IsolateID) (*Isolate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iso, ok := r.isolates[id]
	return iso, ok
}

// Dispose disposes and unregisters a single isolate.
func (r *Registry) Dispose(id IsolateID) error {
	r.mu.Lock()
	iso, ok := r.isolates[id]
	if ok {
		delete(r.isolates, id)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return iso.Dispose()
}

// Close disposes every isolate still registered.
func (r *Registry) Close() error {
	r.mu.Lock()
	isolates := make([]*Isolate, 0, len(r.isolates))
	for _, iso := range r.isolates {
		isolates = append(isolates, iso)
	}
	r.isolates = make(map[IsolateID]*Isolate)
	r.mu.Unlock()

	var err error
	for _, iso := range isolates {
		if disposeErr := iso.Dispose(); disposeErr != nil {
			err = multierr.Append(err, disposeErr)
		}
	}
	return err
}

// Len reports how many isolates are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.isolates)
}
