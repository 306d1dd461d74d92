// Package cpu implements DeadBolt's execution core: the register file,
// the fetch-decode-dispatch loop, and the two console interrupt
// handlers. It consults internal/encoding for opcode/width lookups and
// internal/memory for the paged address space.
package cpu

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/ktstephano/deadbolt/internal/dlog"
	"github.com/ktstephano/deadbolt/internal/encoding"
	"github.com/ktstephano/deadbolt/internal/memory"
)

// Sentinel errors from the error taxonomy not already defined by
// internal/encoding (illegal instruction) or internal/memory (illicit
// access).
var (
	ErrStackUnderflow   = fmt.Errorf("stack underflow")
	ErrUnknownInterrupt = fmt.Errorf("unknown interrupt")
)

// InterruptHandler is invoked with mutable access to the CPU for the
// duration of the call only; handlers must not retain the reference.
type InterruptHandler func(c *CPU) error

// CPU is the interpreter's full runtime state: registers, memory, the
// shared encoding registry, and the interrupt vector table.
type CPU struct {
	Registers
	Mem      *memory.Memory
	Registry *encoding.Registry

	interrupts map[uint32]InterruptHandler

	stdout io.Writer
	stdin  *bufio.Reader

	Halted bool
	Debug  bool
}

// New builds a CPU around an existing Registry (so the assembler and the
// interpreter can be driven from the very same table set) and a fresh
// Memory. stdout/stdin default to os.Stdout/os.Stdin when nil.
func New(reg *encoding.Registry, stdout io.Writer, stdin io.Reader) *CPU {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	c := &CPU{
		Mem:      memory.New(),
		Registry: reg,
		stdout:   stdout,
		stdin:    bufio.NewReader(stdin),
	}
	c.interrupts = buildInterruptTable()
	return c
}

// Boot copies image into Memory starting at address 0 and resets the
// register file, matching the interpreter's documented boot sequence:
// pc=0, sp=0 (so the first push lands at address 4), fl=0, registers=0.
func (c *CPU) Boot(image []byte) error {
	c.Registers.Reset()
	c.Halted = false
	if err := c.Mem.Load(0, image); err != nil {
		return err
	}
	return nil
}

// String renders the full register file on one line, used by --debug
// step tracing.
func (c *CPU) String() string {
	return fmt.Sprintf(
		"pc=0x%08X sp=0x%08X fl=0x%02X r0=0x%08X r1=0x%08X r2=0x%08X r3=0x%08X",
		c.PC, c.SP, c.FL, c.Reg(0), c.Reg(1), c.Reg(2), c.Reg(3),
	)
}

func (c *CPU) printState(tag encoding.Tag) {
	if c.Debug {
		dlog.Debug("%-12s %s", tag, c)
	}
}
