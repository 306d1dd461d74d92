package assemble

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ktstephano/deadbolt/internal/encoding"
)

// bytesToken matches either a double-quoted string or a 0x-prefixed hex
// literal, in the order they appear on a "bytes" directive line. Mixed
// strings and hex words are emitted in source order rather than
// requiring all strings before all hex words.
var bytesToken = regexp.MustCompile(`"[^"]*"|0[xX][0-9a-fA-F]+`)

// shapeOperandCount guards against malformed lines indexing past the end
// of the operand slice; a mismatch is a ParseError, not a panic.
var shapeOperandCount = map[encoding.Shape]int{
	encoding.ShapeNullary:  0,
	encoding.ShapeRegReg:   2,
	encoding.ShapeRegOnly:  1,
	encoding.ShapeFlagImm:  2,
	encoding.ShapeAddrOnly: 1,
	encoding.ShapeRegImm32: 2,
	encoding.ShapeAddrReg:  2,
}

type context struct {
	registry *encoding.Registry
	labels   map[string]uint32
}

// tokenize splits an instruction line (comments already stripped) into
// its mnemonic and comma/space-separated operands.
func tokenize(line string) (mnemonic string, operands []string) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

func parseRegister(tok string) (byte, error) {
	if len(tok) < 2 || (tok[0] != 'r' && tok[0] != 'R') {
		return 0, fmt.Errorf("%w: not a register: %q", ErrParse, tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 0 || n > 3 {
		return 0, fmt.Errorf("%w: bad register: %q", ErrParse, tok)
	}
	return byte(n), nil
}

func parseByte(tok string) (byte, error) {
	v, err := parseHex(tok)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func parseHex(tok string) (uint64, error) {
	if !strings.HasPrefix(tok, "0x") && !strings.HasPrefix(tok, "0X") {
		return 0, fmt.Errorf("%w: expected hex literal: %q", ErrParse, tok)
	}
	v, err := strconv.ParseUint(tok[2:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad literal %q: %v", ErrParse, tok, err)
	}
	return v, nil
}

// parseValue resolves an operand that may be either a label reference or
// a bare hex literal. Labels are checked first, per the assembler's
// documented label-resolution order.
func parseValue(tok string, ctx *context) (uint32, error) {
	if v, ok := ctx.labels[tok]; ok {
		return v, nil
	}
	if strings.HasPrefix(tok, ".") {
		return 0, fmt.Errorf("%w: %q", ErrUnresolvedLabel, tok)
	}
	v, err := parseHex(tok)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// addrOperand resolves the single operand of an Addr-only instruction.
// Every such instruction except JmpImm carries an absolute address and
// so accepts a label; JmpImm's operand is a signed sign-magnitude
// offset relative to pc, not an address, so a label there (which would
// resolve to an absolute byte offset) is rejected rather than silently
// encoded as the wrong kind of value.
func addrOperand(tag encoding.Tag, tok string, ctx *context) (uint32, error) {
	if tag == encoding.TagJmpImm {
		if strings.HasPrefix(tok, ".") {
			return 0, fmt.Errorf("%w: jmpi takes a signed hex offset, not a label: %q", ErrParse, tok)
		}
		v, err := parseHex(tok)
		if err != nil {
			return 0, err
		}
		return uint32(v), nil
	}
	return parseValue(tok, ctx)
}

// directiveTail returns everything in line after its first
// whitespace-separated token, regardless of that token's case. Used
// instead of a literal SplitN(line, "bytes", ...) so a directive that
// tokenize already accepted case-insensitively (Bytes, BYTES, ...)
// can't fail to find its own mnemonic in the split.
func directiveTail(line string) string {
	i := 0
	n := len(line)
	for i < n && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	for i < n && line[i] != ' ' && line[i] != '\t' {
		i++
	}
	for i < n && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[i:]
}

// bytesDirectivePayload expands a "bytes" directive's operand tail into
// its raw output bytes: quoted strings emit their UTF-8 bytes verbatim,
// hex literals emit a 4-byte big-endian word, interleaved in the order
// they appear in the source line.
func bytesDirectivePayload(tail string) []byte {
	var out []byte
	for _, m := range bytesToken.FindAllString(tail, -1) {
		if strings.HasPrefix(m, `"`) {
			out = append(out, []byte(strings.Trim(m, `"`))...)
			continue
		}
		v, _ := strconv.ParseUint(m[2:], 16, 32)
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(v))
		out = append(out, buf[:]...)
	}
	return out
}

// lineWidth returns the encoded byte length of a single instruction
// line, consulting the shared width table for ordinary instructions and
// computing the length directly for the "bytes" directive.
func lineWidth(line string, ctx *context) (uint32, error) {
	mnemonic, _ := tokenize(line)
	if mnemonic == "" {
		return 0, nil
	}
	if mnemonic == "bytes" {
		return uint32(len(bytesDirectivePayload(directiveTail(line)))), nil
	}
	tag, err := ctx.registry.Mnemonic(mnemonic)
	if err != nil {
		return 0, err
	}
	w, ok := ctx.registry.Width(tag)
	if !ok {
		return 0, fmt.Errorf("%w: no width for %v", ErrParse, tag)
	}
	return uint32(w), nil
}

// encodeLine produces the final byte encoding for a single instruction
// line, resolving any label operands against the fully-populated label
// map built in pass 1.
func encodeLine(line string, ctx *context) ([]byte, error) {
	mnemonic, operands := tokenize(line)
	if mnemonic == "" {
		return nil, nil
	}
	if mnemonic == "bytes" {
		return bytesDirectivePayload(directiveTail(line)), nil
	}

	tag, err := ctx.registry.Mnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	opcode, _ := ctx.registry.Opcode(tag)
	shape, _ := ctx.registry.Shape(tag)

	if want := shapeOperandCount[shape]; len(operands) != want {
		return nil, fmt.Errorf("%w: %s expects %d operand(s), got %d", ErrParse, mnemonic, want, len(operands))
	}

	switch shape {
	case encoding.ShapeNullary:
		return []byte{opcode}, nil

	case encoding.ShapeRegReg:
		dest, err := parseRegister(operands[0])
		if err != nil {
			return nil, err
		}
		src, err := parseRegister(operands[1])
		if err != nil {
			return nil, err
		}
		return []byte{opcode, dest<<4 | src}, nil

	case encoding.ShapeRegOnly:
		reg, err := parseRegister(operands[0])
		if err != nil {
			return nil, err
		}
		return []byte{opcode, reg}, nil

	case encoding.ShapeFlagImm:
		flagIdx, err := parseByte(operands[0])
		if err != nil {
			return nil, err
		}
		value, err := parseByte(operands[1])
		if err != nil {
			return nil, err
		}
		return []byte{opcode, flagIdx, value}, nil

	case encoding.ShapeAddrOnly:
		addr, err := addrOperand(tag, operands[0], ctx)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 5)
		buf[0] = opcode
		binary.BigEndian.PutUint32(buf[1:], addr)
		return buf, nil

	case encoding.ShapeRegImm32:
		reg, err := parseRegister(operands[0])
		if err != nil {
			return nil, err
		}
		imm, err := parseValue(operands[1], ctx)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 6)
		buf[0] = opcode
		buf[1] = reg
		binary.BigEndian.PutUint32(buf[2:], imm)
		return buf, nil

	case encoding.ShapeAddrReg:
		addr, err := parseValue(operands[0], ctx)
		if err != nil {
			return nil, err
		}
		reg, err := parseRegister(operands[1])
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 6)
		buf[0] = opcode
		binary.BigEndian.PutUint32(buf[1:5], addr)
		buf[5] = reg
		return buf, nil
	}
	return nil, fmt.Errorf("%w: unhandled shape for %v", ErrParse, tag)
}
