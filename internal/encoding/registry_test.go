package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpcodeRoundTrip(t *testing.T) {
	reg := NewRegistry()
	for _, e := range opcodeTable {
		tag, err := reg.Decode(e.opcode)
		require.NoError(t, err)
		assert.Equal(t, e.tag, tag, "opcode 0x%02X decoded to wrong tag", e.opcode)

		op, ok := reg.Opcode(e.tag)
		require.True(t, ok)
		assert.Equal(t, e.opcode, op, "tag %v encoded to wrong opcode", e.tag)
	}
}

func TestWidthAgreesWithTableW(t *testing.T) {
	reg := NewRegistry()
	cases := []struct {
		tag   Tag
		width int
	}{
		{TagNop, 1},
		{TagHlt, 1},
		{TagAddReg, 2},
		{TagAddImm, 6},
		{TagSwp, 2},
		{TagSfgImm, 3},
		{TagSfgReg, 6},
		{TagJmpAddr, 5},
		{TagJmpImm, 5},
		{TagJeqImm, 5},
		{TagMovDaddrSreg, 6},
		{TagMovDregSreg, 2},
		{TagPushReg, 2},
		{TagPop, 2},
	}
	for _, c := range cases {
		w, ok := reg.Width(c.tag)
		require.True(t, ok, "missing width for %v", c.tag)
		assert.Equal(t, c.width, w, "width mismatch for %v", c.tag)
	}
}

func TestDecodeUnknownOpcodeIsIllegalInstruction(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Decode(0x01)
	assert.ErrorIs(t, err, ErrIllegalInstruction)
}

func TestMnemonicUnknownIsUnknownMnemonic(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Mnemonic("notarealmnemonic")
	assert.ErrorIs(t, err, ErrUnknownMnemonic)
}

func TestScenarioMnemonicsResolveToSpecOpcodes(t *testing.T) {
	reg := NewRegistry()
	cases := map[string]byte{
		"addi":  0x12,
		"hlt":   0x6F,
		"movri": 0x90,
		"ldr":   0xB2,
		"jmpl":  0x81,
	}
	for mnemonic, wantOpcode := range cases {
		tag, err := reg.Mnemonic(mnemonic)
		require.NoError(t, err)
		op, ok := reg.Opcode(tag)
		require.True(t, ok)
		assert.Equal(t, wantOpcode, op, "mnemonic %q", mnemonic)
	}
}
