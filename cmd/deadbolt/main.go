// Command deadbolt is the DeadBolt toolchain front end: an assembler
// (compile) and an interpreter (run) over the shared instruction
// encoding in internal/encoding.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ktstephano/deadbolt/internal/dlog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deadbolt",
		Short:         "Assemble and run DeadBolt bytecode programs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCompileCmd(), newRunCmd())
	return root
}

func newCompileCmd() *cobra.Command {
	var file, output string
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Assemble a DeadBolt source file into a raw byte image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return dlog.Fatalf("--file is required")
			}
			if output == "" {
				output = "a.out"
			}
			return runCompile(file, output)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to DeadBolt source file")
	cmd.Flags().StringVar(&output, "output", "a.out", "path to write the assembled byte image")
	return cmd
}

func newRunCmd() *cobra.Command {
	var input string
	var debugFlag bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a DeadBolt byte image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return dlog.Fatalf("--input is required")
			}
			dlog.Verbose = debugFlag
			return runInterpret(input, debugFlag)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "path to an assembled DeadBolt byte image")
	cmd.Flags().BoolVar(&debugFlag, "debug", false, "trace register state after every instruction")
	return cmd
}

func runCompile(file, output string) error {
	dlog.Info("compiling %s...", file)
	in, err := os.Open(file)
	if err != nil {
		return dlog.Fatalf("failed to open %s: %v", file, err)
	}
	defer in.Close()

	image, err := assembleFile(in)
	if err != nil {
		return dlog.Fatalf("failed to compile: %v", err)
	}

	if err := os.WriteFile(output, image, 0o644); err != nil {
		return dlog.Fatalf("failed to write %s: %v", output, err)
	}
	dlog.Info("wrote %d bytes to %s", len(image), output)
	return nil
}

func runInterpret(input string, debugFlag bool) error {
	image, err := os.ReadFile(input)
	if err != nil {
		return dlog.Fatalf("failed to open %s: %v", input, err)
	}
	if err := interpret(image, debugFlag); err != nil {
		return dlog.Fatalf("%v", err)
	}
	return nil
}
