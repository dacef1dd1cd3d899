package transfer

// Options is the TransferOptions schema from spec.md section 3/6,
// attachable to an argument list, a single value, or a return value.
type Options struct {
	Copy         bool
	ExternalCopy bool
	Reference    bool
	// Promise signals the caller wants a promise-aware reference rather
	// than an eagerly-materialized one. applySyncPromise covers the one
	// place spec.md actually differentiates promise handling, and it
	// requires return options to be empty (see errors.
	// ReturnOptionsNotAvailableForSyncPromise), so this field carries no
	// additional Marshal-time behavior of its own; it exists for schema
	// parity with spec.md section 6's options table.
	Promise bool
}

// IsZero reports whether o carries no explicit choice, which is what
// Marshal checks to apply the position-dependent default policy.
func (o Options) IsZero() bool {
	return !o.Copy && !o.ExternalCopy && !o.Reference && !o.Promise
}
