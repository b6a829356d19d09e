// Package bus implements the minimal address-range router between the CPU
// and its memory-mapped devices.
//
// Today DRAM is the only device on the bus, so routing is a single
// comparison against dram.Base. The indirection is kept anyway: it is the
// natural seam for adding devices (UART, CLINT, PLIC, ...) later without
// touching CPU code, even though right now it does not need to choose
// between more than one range.
package bus

import (
	"github.com/pkg/errors"

	"github.com/rasteiro11/rv64emu/pkg/dram"
)

// ErrNoDevice indicates the address doesn't fall within any device's range.
var ErrNoDevice = errors.New("bus: no device mapped at address")

// Bus routes loads and stores to the device whose address range contains
// the requested address.
type Bus struct {
	dram *dram.DRAM
}

// New wires a Bus in front of a freshly created DRAM initialized with image.
func New(image []byte) (*Bus, error) {
	d, err := dram.New(image)
	if err != nil {
		return nil, errors.Wrap(err, "bus: failed to initialize dram")
	}
	return &Bus{dram: d}, nil
}

// Load dispatches a load to the device owning addr.
func (b *Bus) Load(addr, size uint64) (uint64, error) {
	if addr >= dram.Base {
		v, err := b.dram.Load(addr, size)
		return v, errors.Wrap(err, "bus: load")
	}
	return 0, ErrNoDevice
}

// Store dispatches a store to the device owning addr.
func (b *Bus) Store(addr, size, value uint64) error {
	if addr >= dram.Base {
		return errors.Wrap(b.dram.Store(addr, size, value), "bus: store")
	}
	return ErrNoDevice
}
