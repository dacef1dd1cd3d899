package vm

import (
	"context"
	"strconv"
	"sync"

	isoerr "github.com/riftlabs/isobridge/errors"
)

// Value is anything that can live in an isolate's heap and flow through
// the transferable protocol. This package defines Null, Undefined,
// Number, String, Boolean, *ErrorValue, *Object, *Function and *Promise;
// other packages add their own implementations (transfer.Reference,
// transfer.ExternValue, reference.Handle), so a type switch over these
// nine alone is not exhaustive.
type Value interface {
	Kind() Kind
}

type Null struct{}

func (Null) Kind() Kind { return KindNull }

type Undefined struct{}

func (Undefined) Kind() Kind { return KindUndefined }

type Number float64

func (Number) Kind() Kind { return KindNumber }

type String string

func (String) Kind() Kind { return KindString }

type Boolean bool

func (Boolean) Kind() Kind { return KindBoolean }

// ErrorValue is the engine-level error representation: what a script
// "throw new Error(...)" produces. typeof an ErrorValue is still
// "object", matching real engines.
type ErrorValue struct {
	Message string
	Name    string
}

func (*ErrorValue) Kind() Kind { return KindObject }

func (e *ErrorValue) Error() string {
	if e.Name != "" {
		return e.Name + ": " + e.Message
	}
	return e.Message
}

// Object is a property bag, the stand-in for a scripted object. Property
// order is preserved for callers that care (apply's positional argv
// marshaling builds one of these from a slice).
type Object struct {
	mu    sync.RWMutex
	props map[string]Value
	order []string
}

func NewObject() *Object {
	return &Object{props: make(map[string]Value)}
}

func (*Object) Kind() Kind { return KindObject }

func (o *Object) Get(key string) (Value, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.props[key]
	return v, ok
}

func (o *Object) Set(key string, v Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.props[key]; !exists {
		o.order = append(o.order, key)
	}
	o.props[key] = v
}

func (o *Object) Delete(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.props[key]; !exists {
		return
	}
	delete(o.props, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

func (o *Object) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

func (o *Object) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.order)
}

// NewArgsObject builds the positional "arguments" object apply expects
// — keys "0", "1", ... plus a "length" property, mirroring how the
// original marshals a JS array as an arguments object.
func NewArgsObject(args []Value) *Object {
	o := NewObject()
	for i, a := range args {
		o.Set(strconv.Itoa(i), a)
	}
	o.Set("length", Number(len(args)))
	return o
}

// Func is a Go closure invoked under the owning isolate's lock (proven
// by tok) when a *Function is applied. It may return a *Promise.
type Func func(ctx context.Context, tok *LockToken, recv Value, args []Value) (Value, error)

// Function is the only callable Value. It always runs on its owning
// isolate's goroutine; ReferenceHandle.Apply is what gets it there.
type Function struct {
	fn Func
}

func NewFunction(fn Func) *Function {
	return &Function{fn: fn}
}

func (*Function) Kind() Kind { return KindFunction }

func (f *Function) Call(ctx context.Context, tok *LockToken, recv Value, args []Value) (Value, error) {
	return f.fn(ctx, tok, recv, args)
}

// PromiseState is the settlement state of a Promise.
type PromiseState uint8

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// Promise is a minimal thenable. Settlement callbacks registered via
// Then run synchronously, on whatever goroutine calls Resolve/Reject (or
// immediately, inline, if the promise is already settled) — callers that
// need the callback to run under a particular isolate's lock must
// Schedule it themselves, the way task.RunAsync settles its promise from
// a task scheduled on the caller isolate.
type Promise struct {
	mu       sync.Mutex
	state    PromiseState
	value    Value
	err      error
	onSettle []func(Value, error)
}

func NewPromise() *Promise {
	return &Promise{}
}

func (*Promise) Kind() Kind { return KindObject }

func (p *Promise) Resolve(v Value) {
	p.settle(v, nil)
}

func (p *Promise) Reject(err error) {
	p.settle(nil, err)
}

func (p *Promise) settle(v Value, err error) {
	p.mu.Lock()
	if p.state != PromisePending {
		p.mu.Unlock()
		return
	}
	if err != nil {
		p.state = PromiseRejected
		p.err = err
	} else {
		p.state = PromiseFulfilled
		p.value = v
	}
	callbacks := p.onSettle
	p.onSettle = nil
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(p.value, p.err)
	}
}

// Then registers a settlement callback, called exactly once, either
// immediately (if the promise has already settled) or when it next
// settles.
func (p *Promise) Then(cb func(Value, error)) {
	p.mu.Lock()
	if p.state == PromisePending {
		p.onSettle = append(p.onSettle, cb)
		p.mu.Unlock()
		return
	}
	v, err := p.value, p.err
	p.mu.Unlock()
	cb(v, err)
}

func (p *Promise) State() PromiseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsPromise reports whether v is a *Promise — typeof still reports
// "object" for promises, so callers that need to special-case them (the
// async bridge, applySyncPromise) use this instead of Kind().
func IsPromise(v Value) bool {
	_, ok := v.(*Promise)
	return ok
}

// DeepCopy produces a self-contained copy of v for the transfer.Copy
// variant. Primitives copy trivially; *Object copies recursively as long
// as every property is itself copyable and no object contains itself.
// *Function and *Promise have no by-value representation and return
// errors.Unserializable, as does a cyclic *Object, matching spec.md's
// "functions ... are not copyable."
func DeepCopy(v Value) (Value, error) {
	return deepCopy(v, nil, make(map[*Object]bool))
}

func deepCopy(v Value, path []string, seen map[*Object]bool) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Undefined{}, nil
	case Null, Undefined, Number, String, Boolean:
		return t, nil
	case *Object:
		if seen[t] {
			return nil, isoerr.Unserializable(isoerr.PhaseCopy, path, "*vm.Object")
		}
		seen[t] = true
		defer delete(seen, t)
		out := NewObject()
		for _, k := range t.Keys() {
			pv, _ := t.Get(k)
			cv, err := deepCopy(pv, append(path, k), seen)
			if err != nil {
				return nil, err
			}
			out.Set(k, cv)
		}
		return out, nil
	default:
		return nil, isoerr.Unserializable(isoerr.PhaseCopy, path, goTypeName(v))
	}
}

func goTypeName(v Value) string {
	switch v.(type) {
	case *Function:
		return "*vm.Function"
	case *Promise:
		return "*vm.Promise"
	default:
		return "unknown"
	}
}
