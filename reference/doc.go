// Package reference implements ReferenceHandle, the user-visible object
// at the center of this module: typeof, deref, derefInto, release,
// copy/copySync, get/getSync, setSync/setIgnored (there is no
// promise-returning set), and the apply family (applySync, apply,
// applyIgnored, applySyncPromise). Every
// operation is built from a remote.Handle into the value, a
// transfer.Transferable crossing of the isolate boundary, and a
// task.Phase2Func run through the task package's driver.
package reference
