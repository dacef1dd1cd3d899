package reference

import (
	"strconv"
	"time"

	isoerr "github.com/riftlabs/isobridge/errors"
	"github.com/riftlabs/isobridge/transfer"
	"github.com/riftlabs/isobridge/vm"
)

// ApplyOptions is the parsed form of spec.md section 6's apply options
// schema: {timeout?, arguments?, return?}.
type ApplyOptions struct {
	Timeout   time.Duration
	Arguments transfer.Options
	Return    transfer.Options
}

// ParseApplyOptions parses a script-level options object into
// ApplyOptions, enforcing the validation and bit-stable error messages
// spec.md section 6 lists. A nil opts object is treated as all-default.
func ParseApplyOptions(opts *vm.Object) (ApplyOptions, error) {
	var out ApplyOptions
	if opts == nil {
		return out, nil
	}

	if tv, ok := opts.Get("timeout"); ok {
		n, ok := tv.(vm.Number)
		if !ok || n < 0 || float64(n) != float64(int64(n)) {
			return out, isoerr.TimeoutMustBeInteger()
		}
		out.Timeout = time.Duration(int64(n)) * time.Millisecond
	}

	if av, ok := opts.Get("arguments"); ok {
		ao, ok := av.(*vm.Object)
		if !ok {
			return out, isoerr.ArgumentsMustBeObject()
		}
		out.Arguments = parseTransferOptions(ao)
	}

	if rv, ok := opts.Get("return"); ok {
		ro, ok := rv.(*vm.Object)
		if !ok {
			return out, isoerr.ReturnMustBeObject()
		}
		out.Return = parseTransferOptions(ro)
	}

	return out, nil
}

func parseTransferOptions(o *vm.Object) transfer.Options {
	var t transfer.Options
	if v, ok := o.Get("copy"); ok {
		if b, ok := v.(vm.Boolean); ok {
			t.Copy = bool(b)
		}
	}
	if v, ok := o.Get("externalCopy"); ok {
		if b, ok := v.(vm.Boolean); ok {
			t.ExternalCopy = bool(b)
		}
	}
	if v, ok := o.Get("reference"); ok {
		if b, ok := v.(vm.Boolean); ok {
			t.Reference = bool(b)
		}
	}
	if v, ok := o.Get("promise"); ok {
		if b, ok := v.(vm.Boolean); ok {
			t.Promise = bool(b)
		}
	}
	return t
}

// keyToString validates and converts a get/set key: spec.md section 4.5
// requires the key be copied as a primitive, failing with
// errors.InvalidKey() otherwise.
func keyToString(key vm.Value) (string, error) {
	switch k := key.(type) {
	case vm.String:
		return string(k), nil
	case vm.Number:
		return strconv.FormatFloat(float64(k), 'g', -1, 64), nil
	case vm.Boolean:
		return strconv.FormatBool(bool(k)), nil
	case vm.Null:
		return "null", nil
	case vm.Undefined:
		return "undefined", nil
	default:
		return "", isoerr.InvalidKey()
	}
}

// argsFromObject validates and converts an index-dense arguments object
// (own keys 0..N-1 plus "length") into a Go slice, per spec.md section
// 4.6's "args must be an index-dense property bag" requirement.
func argsFromObject(args *vm.Object) ([]vm.Value, error) {
	if args == nil {
		return nil, nil
	}
	lv, ok := args.Get("length")
	n, okNum := lv.(vm.Number)
	if !ok || !okNum || n < 0 || float64(n) != float64(int(n)) {
		return nil, isoerr.InvalidArguments()
	}
	count := int(n)
	out := make([]vm.Value, count)
	for i := 0; i < count; i++ {
		v, ok := args.Get(strconv.Itoa(i))
		if !ok {
			return nil, isoerr.InvalidArguments()
		}
		out[i] = v
	}
	return out, nil
}
