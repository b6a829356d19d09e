// Package cpu implements the RV64I (+ a handful of RV64M hooks) fetch,
// decode, execute interpreter: the register file, program counter, and
// instruction semantics that drive the emulated machine.
package cpu

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rasteiro11/rv64emu/pkg/bus"
	"github.com/rasteiro11/rv64emu/pkg/dram"
)

// NumRegisters is the number of general-purpose registers (x0..x31).
const NumRegisters = 32

// ABINames gives the calling-convention name for each register, in x0..x31
// order, used by Dump and by trace output.
var ABINames = [NumRegisters]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Sentinel halt reasons. Run/Step classify every termination as exactly
// one of these (or nil error for "keep going").
var (
	// ErrFetchFault indicates the bus refused the instruction read.
	ErrFetchFault = errors.New("cpu: fetch fault")

	// ErrMemoryFault indicates a load/store the bus rejected.
	ErrMemoryFault = errors.New("cpu: memory fault")

	// ErrDecodeFault indicates an opcode/funct combination not in the
	// implemented table.
	ErrDecodeFault = errors.New("cpu: decode fault")

	// ErrHalt indicates the normal, non-error termination sentinel: PC
	// became 0 after a control transfer (e.g. a top-level `ret` through
	// an ra that started at 0).
	ErrHalt = errors.New("cpu: halted")
)

// CPU owns the architectural register file, the program counter, and the
// bus used to reach memory.
type CPU struct {
	regs [NumRegisters]uint64
	pc   uint64
	bus  *bus.Bus
	log  *zap.Logger
}

// New constructs a machine from a flat program image: image is copied into
// DRAM starting at dram.Base, x2 (sp) is initialized to the top of DRAM,
// and pc is set to dram.Base. It fails if image doesn't fit in DRAM.
func New(image []byte, log *zap.Logger) (*CPU, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b, err := bus.New(image)
	if err != nil {
		return nil, errors.Wrap(err, "cpu: failed to initialize machine")
	}
	c := &CPU{
		bus: b,
		pc:  dram.Base,
		log: log,
	}
	c.regs[2] = dram.Base + dram.Size
	return c, nil
}

// PC returns the current program counter.
func (c *CPU) PC() uint64 { return c.pc }

// Reg returns the current value of register i (0..31). Reading x0 always
// yields 0.
func (c *CPU) Reg(i int) uint64 {
	if i == 0 {
		return 0
	}
	return c.regs[i]
}

// setReg writes val to register i, discarding writes to x0.
func (c *CPU) setReg(i int, val uint64) {
	if i != 0 {
		c.regs[i] = val
	}
}

// Step performs one fetch-decode-execute cycle.
//
// It returns nil when the machine should keep running, ErrHalt on normal
// termination (PC became 0), or one of ErrFetchFault/ErrMemoryFault/
// ErrDecodeFault (each possibly wrapped with additional context) when the
// interpreter must stop abnormally. When the logger is enabled at info
// level, each fetched instruction is logged with its pc and disassembly.
func (c *CPU) Step() error {
	insn, err := c.fetch()
	if err != nil {
		return err
	}
	if ce := c.log.Check(zap.InfoLevel, "step"); ce != nil {
		ce.Write(zap.String("pc", fmt.Sprintf("0x%x", c.pc)), zap.String("insn", Disassemble(insn)))
	}
	c.pc += 4
	if err := c.execute(insn); err != nil {
		return err
	}
	if c.pc == 0 {
		return ErrHalt
	}
	return nil
}

// fetch reads the 32-bit little-endian instruction word at pc.
func (c *CPU) fetch() (uint32, error) {
	if c.pc%4 != 0 {
		return 0, errors.Wrapf(ErrFetchFault, "cpu: misaligned pc 0x%x", c.pc)
	}
	v, err := c.bus.Load(c.pc, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrFetchFault, "cpu: %s", err)
	}
	return uint32(v), nil
}

// Run steps the machine until it halts, returning the terminal reason.
// ErrHalt is returned for normal termination exactly as any other fault
// would be, so callers distinguish the cases with errors.Is.
func (c *CPU) Run() error {
	for {
		if err := c.Step(); err != nil {
			return err
		}
	}
}

// Dump writes the 32 registers, one per line, as "<abi-name>
// <decimal-unsigned-value>", x0 through x31.
func (c *CPU) Dump(w io.Writer) error {
	for i := 0; i < NumRegisters; i++ {
		if _, err := fmt.Fprintf(w, "%s %d\n", ABINames[i], c.Reg(i)); err != nil {
			return err
		}
	}
	return nil
}
