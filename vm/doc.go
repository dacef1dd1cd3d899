// Package vm is the minimal concrete substrate that stands in for the
// scripting engine and isolate lifecycle manager spec.md treats as given
// collaborators. It is not a scripting engine: there is no parser, no
// compiler, no garbage collector. It provides just enough — a closed set
// of value kinds, a single-threaded isolate with a lock modeled as a task
// queue drained by its own goroutine, and a small registry — for the
// reference/transfer/task/bridge packages to be exercised and tested
// honestly.
package vm
