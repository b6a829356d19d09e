package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rasteiro11/rv64emu/pkg/rvasm"
)

func TestFieldExtraction(t *testing.T) {
	insn := rvasm.ADD(7, 8, 9)
	assert.Equal(t, uint32(0x33), opcode(insn))
	assert.Equal(t, uint32(7), rd(insn))
	assert.Equal(t, uint32(0x0), funct3(insn))
	assert.Equal(t, uint32(8), rs1(insn))
	assert.Equal(t, uint32(9), rs2(insn))
	assert.Equal(t, uint32(0x00), funct7(insn))
}

func TestImmIPositiveAndNegative(t *testing.T) {
	assert.Equal(t, uint64(5), immI(rvasm.ADDI(1, 0, 5)))
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), immI(rvasm.ADDI(1, 0, -1)))
	assert.Equal(t, uint64(0xFFFFFFFFFFFFF800), immI(rvasm.ADDI(1, 0, -2048)))
}

func TestImmSRoundTrip(t *testing.T) {
	assert.Equal(t, uint64(100), immS(rvasm.SW(2, 1, 100)))
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), immS(rvasm.SW(2, 1, -1)))
}

func TestImmBRoundTrip(t *testing.T) {
	assert.Equal(t, uint64(8), immB(rvasm.BEQ(1, 2, 8)))
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFE), immB(rvasm.BEQ(1, 2, -2)))
}

func TestImmUMasksLow12Bits(t *testing.T) {
	assert.Equal(t, uint64(0x12345000), immU(rvasm.LUI(5, 0x12345abc)))
}

func TestImmJRoundTrip(t *testing.T) {
	assert.Equal(t, uint64(8), immJ(rvasm.JAL(1, 8)))
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFE), immJ(rvasm.JAL(1, -2)))
}

func TestShamtMasking(t *testing.T) {
	insn := rvasm.SLLI(1, 1, 0x3f)
	assert.Equal(t, uint32(0x3f), shamt64(insn))
	insnW := rvasm.SLLIW(1, 1, 0x1f)
	assert.Equal(t, uint32(0x1f), shamt32(insnW))
}

func TestLoadWidth(t *testing.T) {
	cases := []struct {
		f3       uint32
		size     uint64
		unsigned bool
	}{
		{0x0, 8, false},  // LB
		{0x1, 16, false}, // LH
		{0x2, 32, false}, // LW
		{0x3, 64, false}, // LD
		{0x4, 8, true},   // LBU
		{0x5, 16, true},  // LHU
		{0x6, 32, true},  // LWU
	}
	for _, c := range cases {
		size, unsigned, err := loadWidth(c.f3)
		assert.NoError(t, err)
		assert.Equal(t, c.size, size)
		assert.Equal(t, c.unsigned, unsigned)
	}
}

func TestLoadWidthRejectsUndefinedFunct3(t *testing.T) {
	_, _, err := loadWidth(0x7)
	assert.ErrorIs(t, err, ErrDecodeFault)
}

func TestStoreWidth(t *testing.T) {
	cases := []struct {
		f3   uint32
		size uint64
	}{
		{0x0, 8},  // SB
		{0x1, 16}, // SH
		{0x2, 32}, // SW
		{0x3, 64}, // SD
	}
	for _, c := range cases {
		size, err := storeWidth(c.f3)
		assert.NoError(t, err)
		assert.Equal(t, c.size, size)
	}
}

func TestStoreWidthRejectsUndefinedFunct3(t *testing.T) {
	for _, f3 := range []uint32{0x4, 0x5, 0x6, 0x7} {
		_, err := storeWidth(f3)
		assert.ErrorIs(t, err, ErrDecodeFault)
	}
}
