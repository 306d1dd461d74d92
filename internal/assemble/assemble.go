// Package assemble implements DeadBolt's two-pass assembler: pass one
// walks source lines tracking a byte cursor to resolve label addresses,
// pass two re-walks the same lines (now grouped into sections) and
// emits bytes, consulting the label map built in pass one.
package assemble

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ktstephano/deadbolt/internal/encoding"
)

// section is an ordered list of instruction lines belonging to one named
// region, emitted in declaration order.
type section struct {
	name  string
	lines []string
}

// Assemble reads a DeadBolt source program from r and returns its flat,
// big-endian encoded byte image.
func Assemble(r io.Reader, reg *encoding.Registry) ([]byte, error) {
	ctx := &context{registry: reg, labels: make(map[string]uint32)}

	var sections []*section
	var cursor uint32

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		raw := scanner.Text()
		line := stripComment(raw)
		trimmed := strings.TrimSpace(line)
		lineNo++

		if trimmed == "" {
			continue
		}

		if strings.Contains(trimmed, ".") {
			compact := stripWhitespace(trimmed)
			switch {
			case strings.Contains(compact, "section"):
				name := sectionName(compact)
				sections = append(sections, &section{name: name})
				continue
			case trimmed[0] == '.':
				if len(sections) == 0 {
					return nil, &LineError{Line: lineNo, Text: raw, Err: fmt.Errorf("%w: label before first section", ErrParse)}
				}
				ctx.labels[compact] = cursor
				continue
			}
		}

		sec, err := currentSection(sections)
		if err != nil {
			return nil, &LineError{Line: lineNo, Text: raw, Err: err}
		}
		w, err := lineWidth(trimmed, ctx)
		if err != nil {
			return nil, &LineError{Line: lineNo, Text: raw, Err: err}
		}
		cursor += w
		sec.lines = append(sec.lines, trimmed)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("io error reading source: %w", err)
	}

	var out []byte
	for _, sec := range sections {
		for _, line := range sec.lines {
			b, err := encodeLine(line, ctx)
			if err != nil {
				return nil, fmt.Errorf("encoding %q: %w", line, err)
			}
			out = append(out, b...)
		}
	}
	return out, nil
}

// sectionName extracts the section's name from a whitespace-stripped
// ".section<name>" declaration, removing only the first "section"
// occurrence so a name that itself contains that substring (e.g.
// ".intersection") survives intact.
func sectionName(compact string) string {
	idx := strings.Index(compact, "section")
	rest := compact[:idx] + compact[idx+len("section"):]
	return strings.TrimPrefix(rest, ".")
}

func currentSection(sections []*section) (*section, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: no section declared before first instruction", ErrParse)
	}
	return sections[len(sections)-1], nil
}

// stripComment removes a trailing ';' comment. The split is naive and
// does not respect quoted strings.
func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

func stripWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
