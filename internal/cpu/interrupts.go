package cpu

import (
	"fmt"

	"github.com/ktstephano/deadbolt/internal/dlog"
)

// Interrupt codes for the two console handlers defined by the external
// interface contract.
const (
	IntWriteConsole uint32 = 0x80
	IntReadConsole  uint32 = 0xA0
)

func buildInterruptTable() map[uint32]InterruptHandler {
	return map[uint32]InterruptHandler{
		IntWriteConsole: intWriteConsole,
		IntReadConsole:  intReadConsole,
	}
}

// intWriteConsole reads one byte from Memory at the address held in r0,
// writes it to standard output, and flushes.
func intWriteConsole(c *CPU) error {
	addr := c.Reg(0)
	b, err := c.Mem.ReadByte(addr)
	if err != nil {
		return err
	}
	dlog.Debug("interrupt 0x80: writing %q", b)
	_, err = fmt.Fprintf(c.stdout, "%c", b)
	if err != nil {
		return fmt.Errorf("console write: %w", err)
	}
	if f, ok := c.stdout.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// intReadConsole blocks until one byte of input is available, echoing it
// to standard output when the Echo flag is set, writes it into Memory at
// the address held in r0, and stores it zero-extended into r1.
func intReadConsole(c *CPU) error {
	dlog.Debug("interrupt 0xA0: waiting for input...")
	b, err := c.stdin.ReadByte()
	if err != nil {
		return fmt.Errorf("console read: %w", err)
	}
	if c.FlagSet(FlagEcho) {
		if _, err := fmt.Fprintf(c.stdout, "%c", b); err != nil {
			return fmt.Errorf("console echo: %w", err)
		}
	}
	addr := c.Reg(0)
	if err := c.Mem.WriteByte(addr, b); err != nil {
		return err
	}
	c.SetReg(1, uint32(b))
	return nil
}
