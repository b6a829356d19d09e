// Package dram implements the flat, byte-addressable main memory of the
// emulated machine.
//
// DRAM is purely passive: it neither caches nor reorders accesses, and it
// knows nothing about signed/unsigned interpretation of the values it
// stores. Loads always return a zero-extended unsigned value; applying a
// sign is the caller's responsibility.
package dram

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// Base is the fixed physical address DRAM is mapped at. It matches
	// the entry point QEMU and the reference RV64I tutorials use for a
	// flat binary image.
	Base = uint64(0x8000_0000)

	// Size is the capacity of DRAM in bytes: 128 MiB.
	Size = uint64(128 * 1024 * 1024)
)

// Sentinel errors returned by Load/Store.
var (
	// ErrOutOfBounds indicates the requested access falls outside
	// [Base, Base+Size).
	ErrOutOfBounds = errors.New("dram: address out of bounds")

	// ErrBadWidth indicates size is not one of 8, 16, 32, 64.
	ErrBadWidth = errors.New("dram: unsupported access width")
)

// DRAM is the owned byte buffer backing the machine's main memory.
type DRAM struct {
	mem []byte
}

// New allocates a zeroed DRAM and copies image into its first len(image)
// bytes (i.e. starting at physical address Base). It fails if image is
// larger than Size.
func New(image []byte) (*DRAM, error) {
	if uint64(len(image)) > Size {
		return nil, errors.Errorf("dram: image of %d bytes exceeds capacity %d", len(image), Size)
	}
	mem := make([]byte, Size)
	copy(mem, image)
	return &DRAM{mem: mem}, nil
}

// Load reads a size-bit (8/16/32/64) little-endian unsigned value at addr,
// zero-extended to 64 bits.
func (d *DRAM) Load(addr, size uint64) (uint64, error) {
	nbytes, err := widthBytes(size)
	if err != nil {
		return 0, err
	}
	off, err := d.offset(addr, nbytes)
	if err != nil {
		return 0, err
	}
	switch size {
	case 8:
		return uint64(d.mem[off]), nil
	case 16:
		return uint64(binary.LittleEndian.Uint16(d.mem[off:])), nil
	case 32:
		return uint64(binary.LittleEndian.Uint32(d.mem[off:])), nil
	case 64:
		return binary.LittleEndian.Uint64(d.mem[off:]), nil
	default:
		return 0, ErrBadWidth
	}
}

// Store writes the low size bits of value at addr in little-endian order.
func (d *DRAM) Store(addr, size, value uint64) error {
	nbytes, err := widthBytes(size)
	if err != nil {
		return err
	}
	off, err := d.offset(addr, nbytes)
	if err != nil {
		return err
	}
	switch size {
	case 8:
		d.mem[off] = byte(value)
	case 16:
		binary.LittleEndian.PutUint16(d.mem[off:], uint16(value))
	case 32:
		binary.LittleEndian.PutUint32(d.mem[off:], uint32(value))
	case 64:
		binary.LittleEndian.PutUint64(d.mem[off:], value)
	default:
		return ErrBadWidth
	}
	return nil
}

func widthBytes(size uint64) (uint64, error) {
	switch size {
	case 8, 16, 32, 64:
		return size / 8, nil
	default:
		return 0, ErrBadWidth
	}
}

// offset validates that [addr, addr+nbytes) lies within DRAM and returns
// the byte offset into mem.
func (d *DRAM) offset(addr, nbytes uint64) (uint64, error) {
	if addr < Base {
		return 0, ErrOutOfBounds
	}
	off := addr - Base
	if off > Size || nbytes > Size-off {
		return 0, ErrOutOfBounds
	}
	return off, nil
}
