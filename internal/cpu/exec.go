package cpu

import (
	"fmt"
	"runtime/debug"
)

// Step fetches, decodes and executes exactly one instruction and returns
// any error raised along the way. A Hlt sets c.Halted; a Hlt and an error
// are both terminal per the interpreter's two-state machine (Running,
// Halted).
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}
	opcodeByte, err := c.Mem.ReadByte(c.PC)
	if err != nil {
		return err
	}
	tag, err := c.Registry.Decode(opcodeByte)
	if err != nil {
		return err
	}
	c.printState(tag)
	return c.dispatch(tag)
}

// Run executes instructions until Hlt or an error. GC is disabled for the
// duration of the loop and restored afterward, since the register VM's
// hot path allocates only small short-lived buffers but would otherwise
// still pay GC-pacing overhead on a tight fetch-decode-execute loop.
func (c *CPU) Run() error {
	prevGC := debug.SetGCPercent(-1)
	defer debug.SetGCPercent(prevGC)

	for !c.Halted {
		if err := c.Step(); err != nil {
			return fmt.Errorf("at pc=0x%08X: %w", c.PC, err)
		}
	}
	return nil
}
