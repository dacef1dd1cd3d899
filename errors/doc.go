// Package errors provides the structured error type used across isobridge.
//
// Most call sites want one of the bit-stable constructors (Released,
// WrongIsolate, Timeout, ...), whose Error() text matches the literal
// strings the external interface promises callers they can match on.
//
// Internal diagnostics — an InternalError over a value that can't be
// deep-copied, for instance — use the richer Builder form instead, which
// renders a Phase/Kind/Path-annotated message:
//
//	err := errors.New(errors.PhaseCopy, errors.KindInternal).
//		Path("a", "b").
//		GoType("chan int").
//		Detail("channels are not copyable").
//		Build()
//
// All errors implement error, Unwrap, and Is.
package errors
