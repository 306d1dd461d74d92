package assemble

import (
	"strings"
	"testing"

	"github.com/ktstephano/deadbolt/internal/encoding"
)

// assert is a single t.Fatalf wrapper instead of pulling in an assertion
// library for every test.
func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func compile(t *testing.T, src string) []byte {
	t.Helper()
	reg := encoding.NewRegistry()
	out, err := Assemble(strings.NewReader(src), reg)
	assert(t, err == nil, "compile failed: %v", err)
	return out
}

// scenario 1: AddImm r0, 0x2A then Hlt.
func TestScenarioAddImmHlt(t *testing.T) {
	src := ".section .text\naddi r0, 0x2A\nhlt\n"
	out := compile(t, src)
	want := []byte{0x12, 0x00, 0x00, 0x00, 0x00, 0x2A, 0x6F}
	assert(t, string(out) == string(want), "got % X, want % X", out, want)
}

// scenario 2: MovDregSimm r1, 0x0100 then LdReg r0, r1.
func TestScenarioMovThenLd(t *testing.T) {
	src := ".section .text\nmovri r1, 0x0100\nldr r0, r1\n"
	out := compile(t, src)
	want := []byte{0x90, 0x01, 0x00, 0x00, 0x01, 0x00, 0xB2, 0x01}
	assert(t, string(out) == string(want), "got % X, want % X", out, want)
}

// scenario 4: a label resolves to the offset of the instruction that
// follows it; jmpl to that label emits the resolved address.
func TestScenarioLabelResolution(t *testing.T) {
	src := ".section .text\n.loop\nadd r0, r1\njmpl .loop\n"
	out := compile(t, src)
	want := []byte{0x11, 0x01, 0x81, 0x00, 0x00, 0x00, 0x00}
	assert(t, string(out) == string(want), "got % X, want % X", out, want)
}

// jmpi takes a signed hex offset, not a label: a label there would
// resolve to an absolute byte offset and be misinterpreted at runtime
// as a sign-magnitude relative jump.
func TestJmpiRejectsLabelOperand(t *testing.T) {
	reg := encoding.NewRegistry()
	_, err := Assemble(strings.NewReader(".section .text\n.loop\nhlt\njmpi .loop\n"), reg)
	assert(t, err != nil, "expected jmpi with a label operand to be fatal")
}

// scenario 5: bytes directive interleaves a quoted string and a hex word
// in source order.
func TestScenarioBytesDirective(t *testing.T) {
	src := ".section .data\nbytes \"Hi\" 0x41\n"
	out := compile(t, src)
	want := []byte{'H', 'i', 0x00, 0x00, 0x00, 0x41}
	assert(t, string(out) == string(want), "got % X, want % X", out, want)
}

// A mixed-case directive mnemonic is accepted by the same
// case-insensitive gate as any other mnemonic and must not panic while
// locating its operand tail.
func TestScenarioBytesDirectiveMixedCase(t *testing.T) {
	src := ".section .data\nBytes \"Hi\" 0x41\n"
	out := compile(t, src)
	want := []byte{'H', 'i', 0x00, 0x00, 0x00, 0x41}
	assert(t, string(out) == string(want), "got % X, want % X", out, want)
}

func TestInstructionBeforeSectionIsFatal(t *testing.T) {
	reg := encoding.NewRegistry()
	_, err := Assemble(strings.NewReader("hlt\n"), reg)
	assert(t, err != nil, "expected a fatal error for instruction before any section")
}

func TestLabelBeforeSectionIsFatal(t *testing.T) {
	reg := encoding.NewRegistry()
	_, err := Assemble(strings.NewReader(".loop\nhlt\n"), reg)
	assert(t, err != nil, "expected a fatal error for a label before any section")
}

func TestUnknownMnemonicIsFatal(t *testing.T) {
	reg := encoding.NewRegistry()
	_, err := Assemble(strings.NewReader(".section .text\nfrobnicate r0\n"), reg)
	assert(t, err != nil, "expected a fatal error for an unknown mnemonic")
}

func TestCommentsAndBlankLinesAreIgnored(t *testing.T) {
	src := ".section .text\n; a comment\n\nhlt ; trailing comment\n"
	out := compile(t, src)
	want := []byte{0x6F}
	assert(t, string(out) == string(want), "got % X, want % X", out, want)
}
