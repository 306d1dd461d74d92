package encoding

import "fmt"

// Registry is the read-only set of lookup tables both halves of DeadBolt
// consult: opcode<->tag, mnemonic->tag, tag->width. It is built once by
// NewRegistry and never mutated afterward.
type Registry struct {
	opcodeToTag   map[byte]Tag
	tagToOpcode   map[Tag]byte
	mnemonicToTag map[string]Tag
	tagToWidth    map[Tag]int
	tagToShape    map[Tag]Shape
}

type opcodeEntry struct {
	opcode byte
	tag    Tag
	shape  Shape
}

// canonical opcode assignments, fixed by the wire format contract.
var opcodeTable = []opcodeEntry{
	{0x02, TagSubReg, ShapeRegReg},
	{0x03, TagSubImm, ShapeRegImm32},
	{0x11, TagAddReg, ShapeRegReg},
	{0x12, TagAddImm, ShapeRegImm32},
	{0x38, TagMulReg, ShapeRegReg},
	{0x39, TagMulImm, ShapeRegImm32},
	{0x41, TagAndReg, ShapeRegReg},
	{0x42, TagAndImm, ShapeRegImm32},
	{0x56, TagOrReg, ShapeRegReg},
	{0x57, TagOrImm, ShapeRegImm32},
	{0x6A, TagXorReg, ShapeRegReg},
	{0x6B, TagXorImm, ShapeRegImm32},
	{0x6F, TagHlt, ShapeNullary},
	{0x79, TagCmpReg, ShapeRegReg},
	{0x80, TagCmpImm, ShapeRegImm32},
	{0x81, TagJmpAddr, ShapeAddrOnly},
	{0x82, TagJmpImm, ShapeAddrOnly},
	{0x83, TagJmpReg, ShapeRegOnly},
	{0x84, TagJeqImm, ShapeAddrOnly},
	{0x85, TagJeqReg, ShapeRegOnly},
	{0x8D, TagMovDregSreg, ShapeRegReg},
	{0x8E, TagMovDregSaddr, ShapeRegImm32},
	{0x8F, TagMovDaddrSreg, ShapeAddrReg},
	{0x90, TagMovDregSimm, ShapeRegImm32},
	{0xAA, TagIntImm, ShapeAddrOnly},
	{0xAB, TagIntReg, ShapeRegOnly},
	{0xB1, TagLdImm, ShapeRegImm32},
	{0xB2, TagLdReg, ShapeRegReg},
	{0xC5, TagSwp, ShapeRegReg},
	{0xD5, TagPushAddr, ShapeAddrOnly},
	{0xD6, TagPushReg, ShapeRegOnly},
	{0xF0, TagSfgReg, ShapeRegImm32},
	{0xF1, TagSfgImm, ShapeFlagImm},
	{0xF2, TagPop, ShapeRegOnly},
	{0xFF, TagNop, ShapeNullary},
}

// widths per shape, per Table W. ShapeRegReg and ShapeRegOnly both pack
// into 2 bytes but for different reasons (a packed dest/src nibble pair
// vs a single bare register byte); both are sized here, not derived.
var shapeWidth = map[Shape]int{
	ShapeNullary:  1,
	ShapeRegReg:   2,
	ShapeRegOnly:  2,
	ShapeFlagImm:  3,
	ShapeAddrOnly: 5,
	ShapeRegImm32: 6,
	ShapeAddrReg:  6,
}

// mnemonic naming follows the i/r/a suffix convention called out by the
// wire format contract: i=immediate, r=register(-indirect), a=address.
// Jmp/Jeq/Push use an 'l' suffix for their label-taking (absolute
// address) form since that is overwhelmingly their common use, and an
// 'o'-less bare 'jmpi' for the signed relative-offset form.
var mnemonicTable = map[string]Tag{
	"nop": TagNop,
	"hlt": TagHlt,

	"add":  TagAddReg,
	"addi": TagAddImm,
	"sub":  TagSubReg,
	"subi": TagSubImm,
	"mul":  TagMulReg,
	"muli": TagMulImm,

	"and":  TagAndReg,
	"andi": TagAndImm,
	"or":   TagOrReg,
	"ori":  TagOrImm,
	"xor":  TagXorReg,
	"xori": TagXorImm,

	"cmp":  TagCmpReg,
	"cmpi": TagCmpImm,

	"movrr": TagMovDregSreg,
	"movri": TagMovDregSimm,
	"movra": TagMovDregSaddr,
	"movar": TagMovDaddrSreg,

	"jmpl": TagJmpAddr,
	"jmpi": TagJmpImm,
	"jmpr": TagJmpReg,
	"jeql": TagJeqImm,
	"jeqr": TagJeqReg,

	"pushl": TagPushAddr,
	"pushr": TagPushReg,
	"pop":   TagPop,

	"ldi": TagLdImm,
	"ldr": TagLdReg,

	"sfgi": TagSfgImm,
	"sfgr": TagSfgReg,

	"inti": TagIntImm,
	"intr": TagIntReg,

	"swp": TagSwp,
}

// NewRegistry builds the lookup tables once. Callers should build a
// single Registry and share it; there is no mutation after construction.
func NewRegistry() *Registry {
	r := &Registry{
		opcodeToTag:   make(map[byte]Tag, len(opcodeTable)),
		tagToOpcode:   make(map[Tag]byte, len(opcodeTable)),
		mnemonicToTag: mnemonicTable,
		tagToWidth:    make(map[Tag]int, len(opcodeTable)),
		tagToShape:    make(map[Tag]Shape, len(opcodeTable)),
	}
	for _, e := range opcodeTable {
		r.opcodeToTag[e.opcode] = e.tag
		r.tagToOpcode[e.tag] = e.opcode
		r.tagToWidth[e.tag] = shapeWidth[e.shape]
		r.tagToShape[e.tag] = e.shape
	}
	return r
}

// ErrIllegalInstruction signals an opcode byte absent from the registry.
var ErrIllegalInstruction = fmt.Errorf("illegal instruction")

// ErrUnknownMnemonic signals a mnemonic absent from the registry (and
// not the special "bytes" directive).
var ErrUnknownMnemonic = fmt.Errorf("unknown mnemonic")

// Decode maps an opcode byte to its Tag.
func (r *Registry) Decode(opcode byte) (Tag, error) {
	tag, ok := r.opcodeToTag[opcode]
	if !ok {
		return 0, fmt.Errorf("%w: opcode 0x%02X", ErrIllegalInstruction, opcode)
	}
	return tag, nil
}

// Opcode maps a Tag to its canonical opcode byte.
func (r *Registry) Opcode(tag Tag) (byte, bool) {
	op, ok := r.tagToOpcode[tag]
	return op, ok
}

// Mnemonic maps a lowercase mnemonic string to its Tag.
func (r *Registry) Mnemonic(mnemonic string) (Tag, error) {
	tag, ok := r.mnemonicToTag[mnemonic]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMnemonic, mnemonic)
	}
	return tag, nil
}

// Width returns the total encoded byte length (opcode + operands) for tag.
func (r *Registry) Width(tag Tag) (int, bool) {
	w, ok := r.tagToWidth[tag]
	return w, ok
}

// Shape returns the operand layout for tag.
func (r *Registry) Shape(tag Tag) (Shape, bool) {
	s, ok := r.tagToShape[tag]
	return s, ok
}
