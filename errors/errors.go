package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation raised the error. It is informational
// only: bit-stable error messages (see the Kind constructors below) never
// include it, matching spec section 6's requirement that those strings be
// literal.
type Phase string

const (
	PhaseCapture  Phase = "capture"  // RemoteHandle.capture
	PhaseTransfer Phase = "transfer" // Transferable marshaling
	PhaseApply    Phase = "apply"    // ReferenceHandle.apply family
	PhaseGet      Phase = "get"      // ReferenceHandle.get family
	PhaseSet      Phase = "set"      // ReferenceHandle.set family
	PhaseCopy     Phase = "copy"     // ReferenceHandle.copy family
	PhaseDeref    Phase = "deref"    // ReferenceHandle.deref / derefInto
	PhaseBridge   Phase = "bridge"   // async-promise bridge
	PhaseDispose  Phase = "dispose"  // isolate disposal
)

// Kind classifies an error the way spec section 7 does.
type Kind string

const (
	KindType     Kind = "type_error"     // contract violation by the caller
	KindGeneric  Kind = "generic_error"  // lifecycle violation
	KindRuntime  Kind = "runtime_error"  // user-script exception propagated from Phase 2
	KindInternal Kind = "internal_error" // engine failure during marshaling
)

// Error is the structured error type used throughout this module.
//
// When Phase is empty, Error() returns Detail verbatim (followed by the
// cause, if Cause is set) — this is how the bit-stable messages in spec
// section 6 are produced. When Phase is set,
// Error() renders a richer diagnostic suitable for an InternalError over
// an unserializable value or similar engine-side failure.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Detail string
	Path   []string
}

func (e *Error) Error() string {
	if e.Phase == "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s (caused by: %s)", e.Detail, e.Cause.Error())
		}
		return e.Detail
	}

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}
	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}
	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Phase == "" && t.Phase == "" {
		return e.Kind == t.Kind && e.Detail == t.Detail
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder provides structured error construction for internal diagnostics.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *Builder) Build() *Error {
	return &b.err
}

// Bit-stable constructors — spec section 6. These are matched on literal
// text by callers, so never wrap them in the Phase-prefixed rendering.

func Released() *Error {
	return &Error{Kind: KindGeneric, Detail: "Reference has been released"}
}

func WrongIsolate() *Error {
	return &Error{Kind: KindType, Detail: "Cannot dereference this from current isolate"}
}

func DerefIntoWrongIsolate() *Error {
	return &Error{Kind: KindType, Detail: "Cannot dereference this into target isolate"}
}

func DerefIntoUsed() *Error {
	return &Error{Kind: KindGeneric, Detail: "The return value of `derefInto()` should only be used once"}
}

func NotAFunction() *Error {
	return &Error{Kind: KindType, Detail: "Reference is not a function"}
}

func Timeout() *Error {
	return &Error{Kind: KindGeneric, Detail: "Script execution timed out."}
}

func InvalidArguments() *Error {
	return &Error{Kind: KindType, Detail: "Invalid `arguments` array"}
}

func TimeoutMustBeInteger() *Error {
	return &Error{Kind: KindType, Detail: "`timeout` must be integer"}
}

func ArgumentsMustBeObject() *Error {
	return &Error{Kind: KindType, Detail: "`arguments` must be object"}
}

func ReturnMustBeObject() *Error {
	return &Error{Kind: KindType, Detail: "`return` must be object"}
}

func InvalidKey() *Error {
	return &Error{Kind: KindType, Detail: "Invalid `key`"}
}

func ReturnOptionsNotAvailableForSyncPromise() *Error {
	return &Error{Kind: KindType, Detail: "`return` options are not available for `applySyncPromise`"}
}

func NotTransferable() *Error {
	return &Error{Kind: KindType, Detail: "value not transferable"}
}

func Disposed() *Error {
	return &Error{Kind: KindGeneric, Detail: "isolate has been disposed"}
}

// NonErrorRejection is the synthetic rejection error spec section 4.7
// describes: a promise rejected with something that isn't an Error and
// isn't a primitive.
func NonErrorRejection() *Error {
	return &Error{
		Kind:   KindRuntime,
		Detail: "An object was thrown from supplied code within isobridge, but that object was not an instance of `Error`.",
	}
}

// Runtime wraps a user-script exception value propagated out of Phase 2,
// preserving it for Phase 3 to rethrow in the caller's isolate.
func Runtime(value any) *Error {
	return &Error{Kind: KindRuntime, Value: value, Detail: fmt.Sprintf("%v", value)}
}

// Unserializable describes a value that cannot be deep-copied across an
// isolate boundary.
func Unserializable(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Path:   path,
		GoType: goType,
		Detail: "value could not be copied: unsupported or cyclic structure",
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Detail: detail, Cause: cause}
}
