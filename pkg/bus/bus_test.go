package bus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasteiro11/rv64emu/pkg/bus"
	"github.com/rasteiro11/rv64emu/pkg/dram"
)

func TestLoadStoreDelegatesToDRAM(t *testing.T) {
	b, err := bus.New(nil)
	require.NoError(t, err)

	require.NoError(t, b.Store(dram.Base, 64, 0x1122334455667788))
	v, err := b.Load(dram.Base, 64)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1122334455667788), v)
}

func TestLoadBelowDRAMHasNoDevice(t *testing.T) {
	b, err := bus.New(nil)
	require.NoError(t, err)

	_, err = b.Load(dram.Base-4, 32)
	assert.ErrorIs(t, err, bus.ErrNoDevice)
}

func TestStoreBelowDRAMHasNoDevice(t *testing.T) {
	b, err := bus.New(nil)
	require.NoError(t, err)

	err = b.Store(dram.Base-4, 32, 0)
	assert.ErrorIs(t, err, bus.ErrNoDevice)
}

func TestLoadPastDRAMEndFaults(t *testing.T) {
	b, err := bus.New(nil)
	require.NoError(t, err)

	_, err = b.Load(dram.Base+dram.Size, 32)
	assert.ErrorIs(t, err, dram.ErrOutOfBounds)
}
