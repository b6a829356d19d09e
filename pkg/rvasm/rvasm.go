// Package rvasm assembles individual RV64I/M instruction words for test
// fixtures.
//
// spec.md's worked scenarios (and this repo's own tests) need concrete
// machine-code bytes. The teacher (bassosimone/risc32) ships a full
// RiSC-32 text assembler with its own lexer and parser; RiSC-32's 3-format
// encoding has nothing in common with RV64I's 6 formats, so the lexer and
// parser aren't reusable. What's kept from the teacher's pkg/asm is the
// underlying idea — one function per mnemonic, each returning an encoded
// instruction word — expressed here as direct builder functions instead of
// a text pipeline.
package rvasm

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

func encodeR(funct7, rs2, rs1, funct3, rd, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeI(imm12 uint32, rs1, funct3, rd, opcode uint32) uint32 {
	return (imm12&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

// encodeShift builds an OP-IMM/OP-IMM-32 instruction whose immediate field
// packs a 6-bit shift amount plus a top funct6 selecting logical/arithmetic.
func encodeShift(arith bool, shamt, rs1, funct3, rd, opcode uint32) uint32 {
	var top uint32
	if arith {
		top = 0x20
	}
	imm := top<<5 | (shamt & 0x3f)
	return encodeI(imm, rs1, funct3, rd, opcode)
}

func encodeS(imm12 uint32, rs2, rs1, funct3, opcode uint32) uint32 {
	lo := imm12 & 0x1f
	hi := (imm12 >> 5) & 0x7f
	return hi<<25 | rs2<<20 | rs1<<15 | funct3<<12 | lo<<7 | opcode
}

func encodeB(imm13 uint32, rs2, rs1, funct3, opcode uint32) uint32 {
	b11 := (imm13 >> 11) & 0x1
	b12 := (imm13 >> 12) & 0x1
	b4_1 := (imm13 >> 1) & 0xf
	b10_5 := (imm13 >> 5) & 0x3f
	return b12<<31 | b10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | b4_1<<8 | b11<<7 | opcode
}

func encodeU(imm32 uint32, rd, opcode uint32) uint32 {
	return (imm32 & 0xfffff000) | rd<<7 | opcode
}

func encodeJ(imm21 uint32, rd, opcode uint32) uint32 {
	b20 := (imm21 >> 20) & 0x1
	b19_12 := (imm21 >> 12) & 0xff
	b11 := (imm21 >> 11) & 0x1
	b10_1 := (imm21 >> 1) & 0x3ff
	return b20<<31 | b10_1<<21 | b11<<20 | b19_12<<12 | rd<<7 | opcode
}

// Loads

func LB(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0x0, rd, opLoad) }
func LH(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0x1, rd, opLoad) }
func LW(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0x2, rd, opLoad) }
func LD(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0x3, rd, opLoad) }
func LBU(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0x4, rd, opLoad) }
func LHU(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0x5, rd, opLoad) }
func LWU(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0x6, rd, opLoad) }

// OP-IMM

func ADDI(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0x0, rd, opOpImm) }
func SLTI(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0x2, rd, opOpImm) }
func SLTIU(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0x3, rd, opOpImm) }
func XORI(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0x4, rd, opOpImm) }
func ORI(rd, rs1 uint32, imm int32) uint32   { return encodeI(uint32(imm), rs1, 0x6, rd, opOpImm) }
func ANDI(rd, rs1 uint32, imm int32) uint32  { return encodeI(uint32(imm), rs1, 0x7, rd, opOpImm) }
func SLLI(rd, rs1, shamt uint32) uint32 {
	return encodeShift(false, shamt, rs1, 0x1, rd, opOpImm)
}
func SRLI(rd, rs1, shamt uint32) uint32 {
	return encodeShift(false, shamt, rs1, 0x5, rd, opOpImm)
}
func SRAI(rd, rs1, shamt uint32) uint32 {
	return encodeShift(true, shamt, rs1, 0x5, rd, opOpImm)
}

// AUIPC / LUI

func AUIPC(rd uint32, imm uint32) uint32 { return encodeU(imm, rd, opAuipc) }
func LUI(rd uint32, imm uint32) uint32   { return encodeU(imm, rd, opLui) }

// OP-IMM-32

func ADDIW(rd, rs1 uint32, imm int32) uint32 { return encodeI(uint32(imm), rs1, 0x0, rd, opOpImm32) }
func SLLIW(rd, rs1, shamt uint32) uint32 {
	return encodeShift(false, shamt, rs1, 0x1, rd, opOpImm32)
}
func SRLIW(rd, rs1, shamt uint32) uint32 {
	return encodeShift(false, shamt, rs1, 0x5, rd, opOpImm32)
}
func SRAIW(rd, rs1, shamt uint32) uint32 {
	return encodeShift(true, shamt, rs1, 0x5, rd, opOpImm32)
}

// Stores

func SB(rs2, rs1 uint32, imm int32) uint32 { return encodeS(uint32(imm), rs2, rs1, 0x0, opStore) }
func SH(rs2, rs1 uint32, imm int32) uint32 { return encodeS(uint32(imm), rs2, rs1, 0x1, opStore) }
func SW(rs2, rs1 uint32, imm int32) uint32 { return encodeS(uint32(imm), rs2, rs1, 0x2, opStore) }
func SD(rs2, rs1 uint32, imm int32) uint32 { return encodeS(uint32(imm), rs2, rs1, 0x3, opStore) }

// OP

func ADD(rd, rs1, rs2 uint32) uint32  { return encodeR(0x00, rs2, rs1, 0x0, rd, opOp) }
func SUB(rd, rs1, rs2 uint32) uint32  { return encodeR(0x20, rs2, rs1, 0x0, rd, opOp) }
func SLL(rd, rs1, rs2 uint32) uint32  { return encodeR(0x00, rs2, rs1, 0x1, rd, opOp) }
func SLT(rd, rs1, rs2 uint32) uint32  { return encodeR(0x00, rs2, rs1, 0x2, rd, opOp) }
func SLTU(rd, rs1, rs2 uint32) uint32 { return encodeR(0x00, rs2, rs1, 0x3, rd, opOp) }
func XOR(rd, rs1, rs2 uint32) uint32  { return encodeR(0x00, rs2, rs1, 0x4, rd, opOp) }
func SRL(rd, rs1, rs2 uint32) uint32  { return encodeR(0x00, rs2, rs1, 0x5, rd, opOp) }
func SRA(rd, rs1, rs2 uint32) uint32  { return encodeR(0x20, rs2, rs1, 0x5, rd, opOp) }
func OR(rd, rs1, rs2 uint32) uint32   { return encodeR(0x00, rs2, rs1, 0x6, rd, opOp) }
func AND(rd, rs1, rs2 uint32) uint32  { return encodeR(0x00, rs2, rs1, 0x7, rd, opOp) }

func MUL(rd, rs1, rs2 uint32) uint32    { return encodeR(0x01, rs2, rs1, 0x0, rd, opOp) }
func MULH(rd, rs1, rs2 uint32) uint32   { return encodeR(0x01, rs2, rs1, 0x1, rd, opOp) }
func MULHSU(rd, rs1, rs2 uint32) uint32 { return encodeR(0x01, rs2, rs1, 0x2, rd, opOp) }
func MULHU(rd, rs1, rs2 uint32) uint32  { return encodeR(0x01, rs2, rs1, 0x3, rd, opOp) }
func DIV(rd, rs1, rs2 uint32) uint32    { return encodeR(0x01, rs2, rs1, 0x4, rd, opOp) }
func DIVU(rd, rs1, rs2 uint32) uint32   { return encodeR(0x01, rs2, rs1, 0x5, rd, opOp) }
func REM(rd, rs1, rs2 uint32) uint32    { return encodeR(0x01, rs2, rs1, 0x6, rd, opOp) }
func REMU(rd, rs1, rs2 uint32) uint32   { return encodeR(0x01, rs2, rs1, 0x7, rd, opOp) }

// OP-32

func ADDW(rd, rs1, rs2 uint32) uint32 { return encodeR(0x00, rs2, rs1, 0x0, rd, opOp32) }
func SUBW(rd, rs1, rs2 uint32) uint32 { return encodeR(0x20, rs2, rs1, 0x0, rd, opOp32) }
func SLLW(rd, rs1, rs2 uint32) uint32 { return encodeR(0x00, rs2, rs1, 0x1, rd, opOp32) }
func SRLW(rd, rs1, rs2 uint32) uint32 { return encodeR(0x00, rs2, rs1, 0x5, rd, opOp32) }
func SRAW(rd, rs1, rs2 uint32) uint32 { return encodeR(0x20, rs2, rs1, 0x5, rd, opOp32) }

func MULW(rd, rs1, rs2 uint32) uint32   { return encodeR(0x01, rs2, rs1, 0x0, rd, opOp32) }
func DIVW(rd, rs1, rs2 uint32) uint32   { return encodeR(0x01, rs2, rs1, 0x4, rd, opOp32) }
func DIVUW(rd, rs1, rs2 uint32) uint32  { return encodeR(0x01, rs2, rs1, 0x5, rd, opOp32) }
func REMW(rd, rs1, rs2 uint32) uint32   { return encodeR(0x01, rs2, rs1, 0x6, rd, opOp32) }
func REMUW(rd, rs1, rs2 uint32) uint32  { return encodeR(0x01, rs2, rs1, 0x7, rd, opOp32) }

// Branches

func BEQ(rs1, rs2 uint32, imm int32) uint32  { return encodeB(uint32(imm), rs2, rs1, 0x0, opBranch) }
func BNE(rs1, rs2 uint32, imm int32) uint32  { return encodeB(uint32(imm), rs2, rs1, 0x1, opBranch) }
func BLT(rs1, rs2 uint32, imm int32) uint32  { return encodeB(uint32(imm), rs2, rs1, 0x4, opBranch) }
func BGE(rs1, rs2 uint32, imm int32) uint32  { return encodeB(uint32(imm), rs2, rs1, 0x5, opBranch) }
func BLTU(rs1, rs2 uint32, imm int32) uint32 { return encodeB(uint32(imm), rs2, rs1, 0x6, opBranch) }
func BGEU(rs1, rs2 uint32, imm int32) uint32 { return encodeB(uint32(imm), rs2, rs1, 0x7, opBranch) }

// Jumps

func JAL(rd uint32, imm int32) uint32 { return encodeJ(uint32(imm), rd, opJal) }
func JALR(rd, rs1 uint32, imm int32) uint32 {
	return encodeI(uint32(imm), rs1, 0x0, rd, opJalr)
}

// Bytes little-endian-encodes a sequence of instruction words into a flat
// program image ready to hand to cpu.New.
func Bytes(words ...uint32) []byte {
	out := make([]byte, 0, len(words)*4)
	for _, w := range words {
		out = append(out,
			byte(w), byte(w>>8), byte(w>>16), byte(w>>24),
		)
	}
	return out
}
