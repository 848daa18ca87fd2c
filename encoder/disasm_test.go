package encoder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w15tools/assembler/mem"
)

func TestDecodeFirstWord(t *testing.T) {
	tests := []struct {
		word int
		want string
	}{
		{0x4 | 15<<11, "stop"},
		{0x4 | 14<<11, "rts"},
		{0x4 | 8<<3 | 8<<7 | 0<<11, "mov reg, reg"},
		{0x4 | 2<<3 | 0<<7 | 9<<11, "jmp label"},
		{0x4 | 1<<3 | 0<<7 | 12<<11, "prn #imm"},
		{0x4 | 8<<3 | 4<<7 | 2<<11, "add *reg, reg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DecodeFirstWord(mem.Word(tt.word)), "word %#x", tt.word)
	}
}

func TestDecodeRejectsGarbageModes(t *testing.T) {
	// Mode nibble 3 is not a 1-hot encoding.
	w := mem.Word(0x4 | 3<<3 | 0<<11)
	assert.True(t, strings.HasPrefix(DecodeFirstWord(w), ".data"))
}

func TestAnnotatedListing(t *testing.T) {
	img, _, _, errs, ok := assemble(t, "MAIN: stop\nX: .data 5\n")
	require.True(t, ok, "errors: %v", errs)

	out := AnnotatedListing(img)
	assert.Contains(t, out, "0100")
	assert.Contains(t, out, "stop")
	assert.Contains(t, out, "0101")
	assert.NotContains(t, strings.Split(out, "\n")[2], "stop")
}
