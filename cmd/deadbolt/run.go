package main

import (
	"io"

	"github.com/ktstephano/deadbolt/internal/assemble"
	"github.com/ktstephano/deadbolt/internal/cpu"
	"github.com/ktstephano/deadbolt/internal/encoding"
)

// assembleFile runs the two-pass assembler over r using a fresh
// Registry, the same table set the interpreter will later decode
// against.
func assembleFile(r io.Reader) ([]byte, error) {
	reg := encoding.NewRegistry()
	return assemble.Assemble(r, reg)
}

// interpret boots a CPU with image and runs it to completion (Hlt or a
// fatal error).
func interpret(image []byte, debugFlag bool) error {
	reg := encoding.NewRegistry()
	c := cpu.New(reg, nil, nil)
	c.Debug = debugFlag
	if err := c.Boot(image); err != nil {
		return err
	}
	return c.Run()
}
