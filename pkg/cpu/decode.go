package cpu

import "github.com/pkg/errors"

// Instruction field extraction. Each function pulls one field out of a
// 32-bit instruction word; kept as free functions (rather than inlined
// bit-masking at every call site) the way a reference RV64 decoder lays
// fields out, since RV64I has far more distinct fields than a 3-format ISA
// would.
func opcode(insn uint32) uint32 { return insn & 0x7f }
func rd(insn uint32) uint32     { return (insn >> 7) & 0x1f }
func funct3(insn uint32) uint32 { return (insn >> 12) & 0x7 }
func rs1(insn uint32) uint32    { return (insn >> 15) & 0x1f }
func rs2(insn uint32) uint32    { return (insn >> 20) & 0x1f }
func funct7(insn uint32) uint32 { return (insn >> 25) & 0x7f }

// signExtend sign-extends the low (bits+1) bits of v to a full 64-bit
// two's-complement value, treating bit `bits` as the sign bit.
func signExtend(v uint64, bits uint) uint64 {
	shift := 63 - bits
	return uint64(int64(v<<shift) >> shift)
}

// immI decodes the I-type immediate: sext(insn[31:20]).
func immI(insn uint32) uint64 {
	return signExtend(uint64(insn>>20), 11)
}

// immS decodes the S-type immediate: sext({insn[31:25], insn[11:7]}).
func immS(insn uint32) uint64 {
	v := uint64((insn>>7)&0x1f) | uint64((insn>>25)&0x7f)<<5
	return signExtend(v, 11)
}

// immB decodes the B-type immediate: sext({insn[31],insn[7],insn[30:25],insn[11:8],0}).
func immB(insn uint32) uint64 {
	v := uint64((insn>>8)&0xf)<<1 |
		uint64((insn>>25)&0x3f)<<5 |
		uint64((insn>>7)&0x1)<<11 |
		uint64((insn>>31)&0x1)<<12
	return signExtend(v, 12)
}

// immU decodes the U-type immediate: insn[31:12]<<12, sign-extended to 64.
func immU(insn uint32) uint64 {
	return signExtend(uint64(insn&0xfffff000), 31)
}

// immJ decodes the J-type immediate: sext({insn[31],insn[19:12],insn[20],insn[30:21],0}).
func immJ(insn uint32) uint64 {
	v := uint64((insn>>21)&0x3ff)<<1 |
		uint64((insn>>20)&0x1)<<11 |
		uint64((insn>>12)&0xff)<<12 |
		uint64((insn>>31)&0x1)<<20
	return signExtend(v, 20)
}

// shamt64 extracts a 6-bit shift amount for 64-bit shifts (from rs2's
// register index field, which also carries the I-immediate shamt bits).
func shamt64(insn uint32) uint32 { return (insn >> 20) & 0x3f }

// shamt32 extracts a 5-bit shift amount for 32-bit (*W) shifts.
func shamt32(insn uint32) uint32 { return (insn >> 20) & 0x1f }

// loadWidth maps a Load funct3 to its access width in bits and whether the
// result is zero-extended (unsigned). funct3 0x7 has no defined Load encoding.
func loadWidth(f3 uint32) (size uint64, unsigned bool, err error) {
	switch f3 {
	case 0x0: // LB
		return 8, false, nil
	case 0x1: // LH
		return 16, false, nil
	case 0x2: // LW
		return 32, false, nil
	case 0x3: // LD
		return 64, false, nil
	case 0x4: // LBU
		return 8, true, nil
	case 0x5: // LHU
		return 16, true, nil
	case 0x6: // LWU
		return 32, true, nil
	default:
		return 0, false, errors.Wrapf(ErrDecodeFault, "cpu: unknown load funct3 0x%x", f3)
	}
}

// storeWidth maps a Store funct3 to its access width in bits. funct3 0x4..0x7
// have no defined Store encoding.
func storeWidth(f3 uint32) (uint64, error) {
	switch f3 {
	case 0x0: // SB
		return 8, nil
	case 0x1: // SH
		return 16, nil
	case 0x2: // SW
		return 32, nil
	case 0x3: // SD
		return 64, nil
	default:
		return 0, errors.Wrapf(ErrDecodeFault, "cpu: unknown store funct3 0x%x", f3)
	}
}
