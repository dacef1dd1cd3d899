package vm

import (
	"context"
	"testing"
)

func TestObject_SetGetDelete(t *testing.T) {
	o := NewObject()
	o.Set("a", Number(1))
	o.Set("b", String("x"))

	if v, ok := o.Get("a"); !ok || v != Number(1) {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	if o.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", o.Len())
	}
	o.Delete("a")
	if _, ok := o.Get("a"); ok {
		t.Fatal("a should be gone after Delete")
	}
	if got := o.Keys(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("Keys() = %v, want [b]", got)
	}
}

func TestNewArgsObject(t *testing.T) {
	args := NewArgsObject([]Value{String("x"), Number(2)})
	if v, _ := args.Get("0"); v != String("x") {
		t.Errorf("args[0] = %v", v)
	}
	if v, _ := args.Get("length"); v != Number(2) {
		t.Errorf("length = %v, want 2", v)
	}
}

func TestFunction_Call(t *testing.T) {
	fn := NewFunction(func(ctx context.Context, tok *LockToken, recv Value, args []Value) (Value, error) {
		return args[0], nil
	})
	v, err := fn.Call(context.Background(), nil, nil, []Value{Number(7)})
	if err != nil || v != Number(7) {
		t.Fatalf("Call() = %v, %v", v, err)
	}
}

func TestPromise_ThenAfterSettle(t *testing.T) {
	p := NewPromise()
	p.Resolve(String("done"))

	var got Value
	p.Then(func(v Value, err error) {
		got = v
	})
	if got != String("done") {
		t.Fatalf("got %v", got)
	}
}

func TestPromise_ThenBeforeSettle(t *testing.T) {
	p := NewPromise()
	ch := make(chan Value, 1)
	p.Then(func(v Value, err error) {
		ch <- v
	})
	p.Resolve(Number(42))
	if v := <-ch; v != Number(42) {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestPromise_SettleOnce(t *testing.T) {
	p := NewPromise()
	p.Resolve(Number(1))
	p.Resolve(Number(2))
	if p.State() != PromiseFulfilled {
		t.Fatal("state should be Fulfilled")
	}
	var got Value
	p.Then(func(v Value, err error) { got = v })
	if got != Number(1) {
		t.Fatalf("second Resolve should be ignored, got %v", got)
	}
}

func TestIsPromise(t *testing.T) {
	if !IsPromise(NewPromise()) {
		t.Error("IsPromise should be true for a *Promise")
	}
	if IsPromise(Number(1)) {
		t.Error("IsPromise should be false for a Number")
	}
	if NewPromise().Kind() != KindObject {
		t.Error("Promise.Kind() should report object, matching typeof in script")
	}
}

func TestDeepCopy_Primitives(t *testing.T) {
	for _, v := range []Value{Null{}, Undefined{}, Number(1), String("s"), Boolean(true)} {
		got, err := DeepCopy(v)
		if err != nil || got != v {
			t.Errorf("DeepCopy(%v) = %v, %v", v, got, err)
		}
	}
}

func TestDeepCopy_Object(t *testing.T) {
	o := NewObject()
	o.Set("n", Number(1))
	inner := NewObject()
	inner.Set("s", String("x"))
	o.Set("inner", inner)

	got, err := DeepCopy(o)
	if err != nil {
		t.Fatalf("DeepCopy: %v", err)
	}
	copied := got.(*Object)
	if copied == o {
		t.Fatal("DeepCopy should produce a distinct object")
	}
	innerCopy, _ := copied.Get("inner")
	if innerCopy.(*Object) == inner {
		t.Fatal("nested object should also be a distinct copy")
	}
	v, _ := innerCopy.(*Object).Get("s")
	if v != String("x") {
		t.Fatalf("nested value = %v", v)
	}
}

func TestDeepCopy_FunctionIsUnserializable(t *testing.T) {
	fn := NewFunction(func(ctx context.Context, tok *LockToken, recv Value, args []Value) (Value, error) {
		return Undefined{}, nil
	})
	if _, err := DeepCopy(fn); err == nil {
		t.Fatal("DeepCopy of a function should fail")
	}
}
