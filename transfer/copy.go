package transfer

import "github.com/riftlabs/isobridge/vm"

// Copy is a deep, self-contained copy of a primitive or plain data
// structure, produced under the source isolate's lock. TransferIn needs
// no lock of its own beyond what the caller already holds: the value is
// already fully detached from the isolate it came from.
type Copy struct {
	value vm.Value
}

// NewCopy deep-copies v. It fails with errors.Unserializable if v (or
// anything reachable from it) cannot be copied by value — functions and
// promises, per spec.md section 4.2.
func NewCopy(v vm.Value) (*Copy, error) {
	cv, err := vm.DeepCopy(v)
	if err != nil {
		return nil, err
	}
	return &Copy{value: cv}, nil
}

func (c *Copy) TransferIn(tok *vm.LockToken) (vm.Value, error) {
	return c.value, nil
}
