// Package resource provides a generic handle table: an in-memory map from
// an opaque integer Handle to an arbitrary Go value, with observer
// notifications for creation and removal.
//
// This is the storage primitive behind a RemoteHandle's durable slot into
// an isolate's heap (see package remote): each isolate owns one Table, and
// a RemoteHandle is nothing more than an isolate identity plus a Handle
// into that isolate's Table.
//
// # Usage
//
//	table := resource.NewTable()
//	h := table.Insert(typeID, myValue)
//	value, ok := table.Get(h)
//	value, ok = table.Remove(h)
//
// # Type Tags
//
// Handles are inserted with a typeID so callers can defend against handing
// a handle of one kind to code expecting another:
//
//	h := table.Insert(kindFunction, fn)
//	value, ok := table.GetTyped(h, kindFunction) // ok
//	value, ok = table.GetTyped(h, kindObject)    // !ok
//
// # Observers
//
// Register observers to track resource lifecycle events:
//
//	table.Subscribe(myObserver)
//
// # Cleanup
//
// Values are not garbage collected automatically. The owner must call
// Remove or Clear; Close releases everything and stops accepting inserts.
package resource
