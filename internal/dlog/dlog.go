// Package dlog is a small leveled, colored logger with four levels:
// debug/info/warn/error. Error is fatal to the caller's operation by
// convention: callers log it and then return a non-zero exit status
// themselves, the logger does not exit the process.
package dlog

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Verbose gates Debug output behind a runtime flag, set from the CLI's
// --debug flag.
var Verbose = false

var (
	debugColor = color.New(color.FgCyan)
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// Debug prints a cyan diagnostic line when Verbose is set.
func Debug(format string, args ...any) {
	if !Verbose {
		return
	}
	debugColor.Fprintf(os.Stderr, "[debug] "+format+"\n", args...)
}

// Info prints a green informational line.
func Info(format string, args ...any) {
	infoColor.Fprintf(os.Stderr, "[info] "+format+"\n", args...)
}

// Warn prints a yellow warning line.
func Warn(format string, args ...any) {
	warnColor.Fprintf(os.Stderr, "[warn] "+format+"\n", args...)
}

// Error prints a bold red error line. The caller is responsible for
// translating the failing operation into a process exit code.
func Error(format string, args ...any) {
	errorColor.Fprintf(os.Stderr, "[error] "+format+"\n", args...)
}

// Fatalf is a convenience used by command entry points: it logs the error
// and returns a formatted error value for cobra's RunE to propagate, so
// the process exits non-zero without the logger itself calling os.Exit.
func Fatalf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	Error("%s", msg)
	return fmt.Errorf("%s", msg)
}
