package cpu

import "fmt"

// Disassemble renders a single 32-bit instruction word as RV64I/M assembly
// text, used only for --trace output; it has no bearing on execution
// semantics.
func Disassemble(insn uint32) string {
	rdN, rs1N, rs2N := rd(insn), rs1(insn), rs2(insn)
	f3, f7 := funct3(insn), funct7(insn)

	switch opcode(insn) {
	case opLoad:
		name := [8]string{"lb", "lh", "lw", "ld", "lbu", "lhu", "lwu", "?"}[f3]
		return fmt.Sprintf("%s x%d, %d(x%d)", name, rdN, int64(immI(insn)), rs1N)
	case opStore:
		name := [8]string{"sb", "sh", "sw", "sd", "?", "?", "?", "?"}[f3]
		return fmt.Sprintf("%s x%d, %d(x%d)", name, rs2N, int64(immS(insn)), rs1N)
	case opOpImm:
		name := opImmName(f3, insn)
		if f3 == 0x1 || f3 == 0x5 {
			return fmt.Sprintf("%s x%d, x%d, %d", name, rdN, rs1N, shamt64(insn))
		}
		return fmt.Sprintf("%s x%d, x%d, %d", name, rdN, rs1N, int64(immI(insn)))
	case opOpImm32:
		name := [8]string{"addiw", "slliw", "?", "?", "?", "srliw/sraiw", "?", "?"}[f3]
		if f3 == 0x1 || f3 == 0x5 {
			return fmt.Sprintf("%s x%d, x%d, %d", name, rdN, rs1N, shamt32(insn))
		}
		return fmt.Sprintf("%s x%d, x%d, %d", name, rdN, rs1N, int64(immI(insn)))
	case opOp:
		return fmt.Sprintf("%s x%d, x%d, x%d", opName(f3, f7), rdN, rs1N, rs2N)
	case opOp32:
		return fmt.Sprintf("%s x%d, x%d, x%d", opNameW(f3, f7), rdN, rs1N, rs2N)
	case opLui:
		return fmt.Sprintf("lui x%d, 0x%x", rdN, immU(insn)>>12&0xfffff)
	case opAuipc:
		return fmt.Sprintf("auipc x%d, 0x%x", rdN, immU(insn)>>12&0xfffff)
	case opBranch:
		name := [8]string{"beq", "bne", "?", "?", "blt", "bge", "bltu", "bgeu"}[f3]
		return fmt.Sprintf("%s x%d, x%d, %d", name, rs1N, rs2N, int64(immB(insn)))
	case opJal:
		return fmt.Sprintf("jal x%d, %d", rdN, int64(immJ(insn)))
	case opJalr:
		return fmt.Sprintf("jalr x%d, %d(x%d)", rdN, int64(immI(insn)), rs1N)
	default:
		return fmt.Sprintf("<unknown opcode 0x%02x>", opcode(insn))
	}
}

func opImmName(f3 uint32, insn uint32) string {
	switch f3 {
	case 0x0:
		return "addi"
	case 0x1:
		return "slli"
	case 0x2:
		return "slti"
	case 0x3:
		return "sltiu"
	case 0x4:
		return "xori"
	case 0x5:
		if insn&(1<<30) != 0 {
			return "srai"
		}
		return "srli"
	case 0x6:
		return "ori"
	case 0x7:
		return "andi"
	default:
		return "?"
	}
}

func opName(f3, f7 uint32) string {
	if f7 == mExtFunct7 {
		return [8]string{"mul", "mulh", "mulhsu", "mulhu", "div", "divu", "rem", "remu"}[f3]
	}
	switch f3 {
	case 0x0:
		if f7 == 0x20 {
			return "sub"
		}
		return "add"
	case 0x1:
		return "sll"
	case 0x2:
		return "slt"
	case 0x3:
		return "sltu"
	case 0x4:
		return "xor"
	case 0x5:
		if f7 == 0x20 {
			return "sra"
		}
		return "srl"
	case 0x6:
		return "or"
	case 0x7:
		return "and"
	default:
		return "?"
	}
}

func opNameW(f3, f7 uint32) string {
	if f7 == mExtFunct7 {
		return [8]string{"mulw", "?", "?", "?", "divw", "divuw", "remw", "remuw"}[f3]
	}
	switch f3 {
	case 0x0:
		if f7 == 0x20 {
			return "subw"
		}
		return "addw"
	case 0x1:
		return "sllw"
	case 0x5:
		if f7 == 0x20 {
			return "sraw"
		}
		return "srlw"
	default:
		return "?"
	}
}
