package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMExtOpMul(t *testing.T) {
	v, err := mExtOp(0x0, 6, 7)
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}

func TestMExtOpDivByZero(t *testing.T) {
	v, err := mExtOp(0x4, 10, 0) // DIV
	assert.NoError(t, err)
	assert.Equal(t, ^uint64(0), v)

	v, err = mExtOp(0x5, 10, 0) // DIVU
	assert.NoError(t, err)
	assert.Equal(t, ^uint64(0), v)
}

func TestMExtOpRemByZero(t *testing.T) {
	v, err := mExtOp(0x6, 10, 0) // REM
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), v)

	v, err = mExtOp(0x7, 10, 0) // REMU
	assert.NoError(t, err)
	assert.Equal(t, uint64(10), v)
}

func TestMExtOpSignedOverflowWraps(t *testing.T) {
	minInt64 := uint64(1) << 63
	negOne := ^uint64(0) // -1

	v, err := mExtOp(0x4, minInt64, negOne) // DIV
	assert.NoError(t, err)
	assert.Equal(t, minInt64, v)

	v, err = mExtOp(0x6, minInt64, negOne) // REM
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), v)
}

func TestMExtOpWSignedOverflowWraps(t *testing.T) {
	minInt32 := uint32(1) << 31
	negOne := ^uint32(0) // -1

	v, err := mExtOpW(0x4, minInt32, negOne) // DIVW
	assert.NoError(t, err)
	assert.Equal(t, signExtend(uint64(minInt32), 31), v)
}

func TestMulhSignedSigned(t *testing.T) {
	// (-1) * (-1) = 1, whose high 64 bits of the 128-bit product are 0.
	assert.Equal(t, int64(0), mulh(-1, -1))

	// A large positive times a large positive should match the high
	// word of the unsigned product when both operands happen positive.
	a, b := int64(1<<40), int64(1<<40)
	hi, _ := bits64Mul(uint64(a), uint64(b))
	assert.Equal(t, int64(hi), mulh(a, b))
}

func TestMulhuAgainstBits64Mul(t *testing.T) {
	a, b := uint64(math.MaxUint64), uint64(2)
	hi, _ := bits64Mul(a, b)
	assert.Equal(t, hi, mulhu(a, b))
}

func TestBits64MulKnownProduct(t *testing.T) {
	hi, lo := bits64Mul(0xFFFFFFFFFFFFFFFF, 2)
	// 0xFFFFFFFFFFFFFFFF * 2 = 0x1FFFFFFFFFFFFFFFE
	assert.Equal(t, uint64(1), hi)
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFE), lo)
}

func TestExecuteZeroesRegisterZero(t *testing.T) {
	c := &CPU{}
	c.regs[0] = 123
	c.pc = 4
	_ = c.execute(0) // opcode 0: decode fault, but x0 must already be re-zeroed
	assert.Equal(t, uint64(0), c.regs[0])
}
