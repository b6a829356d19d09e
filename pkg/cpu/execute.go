package cpu

import (
	"github.com/pkg/errors"
)

// Opcode values for the RV64I + RV64M subset this interpreter implements.
const (
	opLoad    = 0x03
	opOpImm   = 0x13
	opAuipc   = 0x17
	opOpImm32 = 0x1b
	opStore   = 0x23
	opOp      = 0x33
	opLui     = 0x37
	opOp32    = 0x3b
	opBranch  = 0x63
	opJalr    = 0x67
	opJal     = 0x6f
)

// mExtFunct7 marks an OP/OP-32 instruction as belonging to the RV64M
// multiply/divide extension rather than the base ADD/SUB/... family.
const mExtFunct7 = 0x01

// execute decodes and performs the effects of one instruction, including
// any PC update. On entry c.pc already holds the post-advance PC (the
// address of the instruction following this one); control-transfer
// instructions below correct for that by subtracting 4 from their target
// formula, per the "advance before execute" convention.
func (c *CPU) execute(insn uint32) error {
	c.regs[0] = 0 // x0 is hard-wired to zero; re-zero at the top of every step

	switch op := opcode(insn); op {
	case opLoad:
		return c.execLoad(insn)
	case opOpImm:
		return c.execOpImm(insn)
	case opAuipc:
		c.setReg(int(rd(insn)), (c.pc-4)+immU(insn))
		return nil
	case opOpImm32:
		return c.execOpImm32(insn)
	case opStore:
		return c.execStore(insn)
	case opOp:
		return c.execOp(insn)
	case opLui:
		c.setReg(int(rd(insn)), immU(insn))
		return nil
	case opOp32:
		return c.execOp32(insn)
	case opBranch:
		return c.execBranch(insn)
	case opJalr:
		return c.execJalr(insn)
	case opJal:
		c.setReg(int(rd(insn)), c.pc)
		c.pc = (c.pc - 4) + immJ(insn)
		return nil
	default:
		return errors.Wrapf(ErrDecodeFault, "cpu: unknown opcode 0x%02x at pc 0x%x", op, c.pc-4)
	}
}

func (c *CPU) execLoad(insn uint32) error {
	f3 := funct3(insn)
	size, unsigned, err := loadWidth(f3)
	if err != nil {
		return errors.Wrapf(err, "cpu: pc 0x%x", c.pc-4)
	}
	addr := c.Reg(int(rs1(insn))) + immI(insn)
	v, err := c.bus.Load(addr, size)
	if err != nil {
		return errors.Wrapf(ErrMemoryFault, "cpu: load: %s", err)
	}
	if !unsigned && size != 64 {
		v = signExtend(v, uint(size-1))
	}
	c.setReg(int(rd(insn)), v)
	return nil
}

func (c *CPU) execStore(insn uint32) error {
	f3 := funct3(insn)
	size, err := storeWidth(f3)
	if err != nil {
		return errors.Wrapf(err, "cpu: pc 0x%x", c.pc-4)
	}
	addr := c.Reg(int(rs1(insn))) + immS(insn)
	val := c.Reg(int(rs2(insn)))
	if err := c.bus.Store(addr, size, val); err != nil {
		return errors.Wrapf(ErrMemoryFault, "cpu: store: %s", err)
	}
	return nil
}

func (c *CPU) execOpImm(insn uint32) error {
	f3 := funct3(insn)
	a := c.Reg(int(rs1(insn)))
	imm := immI(insn)
	var v uint64
	switch f3 {
	case 0x0: // ADDI
		v = a + imm
	case 0x1: // SLLI
		v = a << shamt64(insn)
	case 0x2: // SLTI
		v = boolToReg(int64(a) < int64(imm))
	case 0x3: // SLTIU
		v = boolToReg(a < imm)
	case 0x4: // XORI
		v = a ^ imm
	case 0x5: // SRLI / SRAI
		if insn&(1<<30) != 0 { // SRAI
			v = uint64(int64(a) >> shamt64(insn))
		} else { // SRLI
			v = a >> shamt64(insn)
		}
	case 0x6: // ORI
		v = a | imm
	case 0x7: // ANDI
		v = a & imm
	default:
		return errors.Wrapf(ErrDecodeFault, "cpu: unknown op-imm funct3 0x%x at pc 0x%x", f3, c.pc-4)
	}
	c.setReg(int(rd(insn)), v)
	return nil
}

func (c *CPU) execOpImm32(insn uint32) error {
	f3 := funct3(insn)
	a := uint32(c.Reg(int(rs1(insn))))
	imm := uint32(immI(insn))
	var v uint32
	switch f3 {
	case 0x0: // ADDIW
		v = a + imm
	case 0x1: // SLLIW
		v = a << shamt32(insn)
	case 0x5: // SRLIW / SRAIW
		if insn&(1<<30) != 0 { // SRAIW
			v = uint32(int32(a) >> shamt32(insn))
		} else { // SRLIW
			v = a >> shamt32(insn)
		}
	default:
		return errors.Wrapf(ErrDecodeFault, "cpu: unknown op-imm-32 funct3 0x%x at pc 0x%x", f3, c.pc-4)
	}
	c.setReg(int(rd(insn)), signExtend(uint64(v), 31))
	return nil
}

func (c *CPU) execOp(insn uint32) error {
	f3, f7 := funct3(insn), funct7(insn)
	a, b := c.Reg(int(rs1(insn))), c.Reg(int(rs2(insn)))
	if f7 == mExtFunct7 {
		v, err := mExtOp(f3, a, b)
		if err != nil {
			return errors.Wrapf(err, "cpu: pc 0x%x", c.pc-4)
		}
		c.setReg(int(rd(insn)), v)
		return nil
	}
	var v uint64
	switch f3 {
	case 0x0: // ADD / SUB
		if f7 == 0x20 {
			v = a - b
		} else {
			v = a + b
		}
	case 0x1: // SLL
		v = a << (b & 0x3f)
	case 0x2: // SLT
		v = boolToReg(int64(a) < int64(b))
	case 0x3: // SLTU
		v = boolToReg(a < b)
	case 0x4: // XOR
		v = a ^ b
	case 0x5: // SRL / SRA
		if f7 == 0x20 {
			v = uint64(int64(a) >> (b & 0x3f))
		} else {
			v = a >> (b & 0x3f)
		}
	case 0x6: // OR
		v = a | b
	case 0x7: // AND
		v = a & b
	default:
		return errors.Wrapf(ErrDecodeFault, "cpu: unknown op funct3 0x%x at pc 0x%x", f3, c.pc-4)
	}
	c.setReg(int(rd(insn)), v)
	return nil
}

func (c *CPU) execOp32(insn uint32) error {
	f3, f7 := funct3(insn), funct7(insn)
	a, b := uint32(c.Reg(int(rs1(insn)))), uint32(c.Reg(int(rs2(insn))))
	if f7 == mExtFunct7 {
		v, err := mExtOpW(f3, a, b)
		if err != nil {
			return errors.Wrapf(err, "cpu: pc 0x%x", c.pc-4)
		}
		c.setReg(int(rd(insn)), v)
		return nil
	}
	var v uint32
	switch f3 {
	case 0x0: // ADDW / SUBW
		if f7 == 0x20 {
			v = a - b
		} else {
			v = a + b
		}
	case 0x1: // SLLW
		v = a << (b & 0x1f)
	case 0x5: // SRLW / SRAW
		if f7 == 0x20 {
			v = uint32(int32(a) >> (b & 0x1f))
		} else {
			v = a >> (b & 0x1f)
		}
	default:
		return errors.Wrapf(ErrDecodeFault, "cpu: unknown op-32 funct3 0x%x at pc 0x%x", f3, c.pc-4)
	}
	c.setReg(int(rd(insn)), signExtend(uint64(v), 31))
	return nil
}

func (c *CPU) execBranch(insn uint32) error {
	f3 := funct3(insn)
	a, b := c.Reg(int(rs1(insn))), c.Reg(int(rs2(insn)))
	var taken bool
	switch f3 {
	case 0x0: // BEQ
		taken = a == b
	case 0x1: // BNE
		taken = a != b
	case 0x4: // BLT
		taken = int64(a) < int64(b)
	case 0x5: // BGE
		taken = int64(a) >= int64(b)
	case 0x6: // BLTU
		taken = a < b
	case 0x7: // BGEU
		taken = a >= b
	default:
		return errors.Wrapf(ErrDecodeFault, "cpu: unknown branch funct3 0x%x at pc 0x%x", f3, c.pc-4)
	}
	if taken {
		c.pc = c.pc + immB(insn) - 4
	}
	return nil
}

func (c *CPU) execJalr(insn uint32) error {
	t := c.pc
	target := (c.Reg(int(rs1(insn))) + immI(insn)) &^ 1
	c.setReg(int(rd(insn)), t)
	c.pc = target
	return nil
}

// boolToReg converts a boolean comparison result to the canonical 0/1
// register encoding used by SLT/SLTI/SLTU/SLTIU.
func boolToReg(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// mExtOp implements the 64-bit RV64M operations under OP (funct7 == 1):
// MUL, MULH, MULHSU, MULHU, DIV, DIVU, REM, REMU.
func mExtOp(f3 uint32, a, b uint64) (uint64, error) {
	switch f3 {
	case 0x0: // MUL
		return a * b, nil
	case 0x1: // MULH (signed x signed, high 64 bits of 128-bit product)
		return uint64(mulh(int64(a), int64(b))), nil
	case 0x2: // MULHSU (signed x unsigned)
		return uint64(mulhsu(int64(a), b)), nil
	case 0x3: // MULHU (unsigned x unsigned)
		return mulhu(a, b), nil
	case 0x4: // DIV
		if b == 0 {
			return ^uint64(0), nil
		}
		if a == 1<<63 && int64(b) == -1 {
			return a, nil // signed overflow: result wraps to the dividend
		}
		return uint64(int64(a) / int64(b)), nil
	case 0x5: // DIVU
		if b == 0 {
			return ^uint64(0), nil
		}
		return a / b, nil
	case 0x6: // REM
		if b == 0 {
			return a, nil
		}
		if a == 1<<63 && int64(b) == -1 {
			return 0, nil
		}
		return uint64(int64(a) % int64(b)), nil
	case 0x7: // REMU
		if b == 0 {
			return a, nil
		}
		return a % b, nil
	default:
		return 0, errors.Wrapf(ErrDecodeFault, "unknown m-extension op funct3 0x%x", f3)
	}
}

// mExtOpW implements the 32-bit RV64M operations under OP-32 (funct7 == 1):
// MULW, DIVW, DIVUW, REMW, REMUW. Each operates on the low 32 bits of its
// operands and sign-extends the 32-bit result to 64 bits.
func mExtOpW(f3 uint32, a, b uint32) (uint64, error) {
	var v uint32
	switch f3 {
	case 0x0: // MULW
		v = a * b
	case 0x4: // DIVW
		if b == 0 {
			return ^uint64(0), nil
		}
		if a == 1<<31 && int32(b) == -1 {
			v = a
		} else {
			v = uint32(int32(a) / int32(b))
		}
	case 0x5: // DIVUW
		if b == 0 {
			return ^uint64(0), nil
		}
		v = a / b
	case 0x6: // REMW
		if b == 0 {
			return signExtend(uint64(a), 31), nil
		}
		if a == 1<<31 && int32(b) == -1 {
			v = 0
		} else {
			v = uint32(int32(a) % int32(b))
		}
	case 0x7: // REMUW
		if b == 0 {
			return signExtend(uint64(a), 31), nil
		}
		v = a % b
	default:
		return 0, errors.Wrapf(ErrDecodeFault, "unknown m-extension op-32 funct3 0x%x", f3)
	}
	return signExtend(uint64(v), 31), nil
}

func mulh(a, b int64) int64 {
	hi, _ := bits64Mul(uint64(a), uint64(b))
	hi -= uint64(boolToReg(a < 0)) * uint64(b)
	hi -= uint64(boolToReg(b < 0)) * uint64(a)
	return int64(hi)
}

func mulhsu(a int64, b uint64) int64 {
	hi, _ := bits64Mul(uint64(a), b)
	hi -= uint64(boolToReg(a < 0)) * b
	return int64(hi)
}

func mulhu(a, b uint64) uint64 {
	hi, _ := bits64Mul(a, b)
	return hi
}

// bits64Mul returns the high and low 64 bits of the full 128-bit unsigned
// product a*b.
func bits64Mul(a, b uint64) (hi, lo uint64) {
	const mask = 0xffffffff
	aLo, aHi := a&mask, a>>32
	bLo, bHi := b&mask, b>>32

	t := aLo * bLo
	w0 := t & mask
	k := t >> 32

	t = aHi*bLo + k
	w1 := t & mask
	w2 := t >> 32

	t = aLo*bHi + w1
	k = t >> 32

	hi = aHi*bHi + w2 + k
	lo = (t << 32) | w0
	return hi, lo
}
