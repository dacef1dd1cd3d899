package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full diagnostic error",
			err: &Error{
				Phase:  PhaseCopy,
				Kind:   KindInternal,
				Path:   []string{"a", "b", "c"},
				GoType: "chan int",
				Detail: "channels are not copyable",
			},
			contains: []string{"[copy]", "internal_error", "a.b.c", "chan int", "channels are not copyable"},
		},
		{
			name: "minimal diagnostic error",
			err:  &Error{Phase: PhaseGet, Kind: KindType},
			contains: []string{"[get]", "type_error"},
		},
		{
			name: "bit-stable error ignores phase formatting",
			err:  Released(),
			contains: []string{"Reference has been released"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{Phase: PhaseCopy, Kind: KindInternal, Cause: cause}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{Phase: PhaseCopy, Kind: KindInternal, Path: []string{"foo"}}

	if !err.Is(&Error{Phase: PhaseCopy, Kind: KindInternal}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseGet, Kind: KindInternal}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseCopy, Kind: KindType}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseCopy, Kind: KindInternal}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestError_Is_BitStable(t *testing.T) {
	if !Released().Is(Released()) {
		t.Error("two Released() errors should match each other")
	}
	if Released().Is(Timeout()) {
		t.Error("Released and Timeout should not match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseCopy, KindInternal).
		Path("user", "name").
		GoType("chan int").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseCopy {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseCopy)
	}
	if err.Kind != KindInternal {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInternal)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.GoType != "chan int" {
		t.Errorf("GoType = %v, want 'chan int'", err.GoType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}
}

func TestBitStableMessages(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{Released(), "Reference has been released"},
		{WrongIsolate(), "Cannot dereference this from current isolate"},
		{DerefIntoWrongIsolate(), "Cannot dereference this into target isolate"},
		{DerefIntoUsed(), "The return value of `derefInto()` should only be used once"},
		{NotAFunction(), "Reference is not a function"},
		{Timeout(), "Script execution timed out."},
		{InvalidArguments(), "Invalid `arguments` array"},
		{TimeoutMustBeInteger(), "`timeout` must be integer"},
		{ArgumentsMustBeObject(), "`arguments` must be object"},
		{ReturnMustBeObject(), "`return` must be object"},
		{InvalidKey(), "Invalid `key`"},
		{ReturnOptionsNotAvailableForSyncPromise(), "`return` options are not available for `applySyncPromise`"},
		{NotTransferable(), "value not transferable"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestNonErrorRejection(t *testing.T) {
	err := NonErrorRejection()
	if err.Kind != KindRuntime {
		t.Errorf("Kind = %v, want %v", err.Kind, KindRuntime)
	}
	if !contains(err.Error(), "was not an instance of `Error`") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestRuntime(t *testing.T) {
	err := Runtime("boom")
	if err.Kind != KindRuntime {
		t.Errorf("Kind = %v, want %v", err.Kind, KindRuntime)
	}
	if err.Value != "boom" {
		t.Errorf("Value = %v, want boom", err.Value)
	}
}

func TestUnserializable(t *testing.T) {
	err := Unserializable(PhaseCopy, []string{"a"}, "chan int")
	if err.Kind != KindInternal {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInternal)
	}
	if err.GoType != "chan int" {
		t.Errorf("GoType = %v, want 'chan int'", err.GoType)
	}
}

func contains(s, substr string) bool {
	if len(substr) == 0 {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
