package encoder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectFileFormat(t *testing.T) {
	img, _, _, errs, ok := assemble(t, "MAIN: add r1, r2\n")
	require.True(t, ok, "errors: %v", errs)

	var sb strings.Builder
	require.NoError(t, WriteObjectFile(&sb, img))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2 0", lines[0])

	first := mem4Octal(0x4 | 8<<3 | 8<<7 | 2<<11)
	second := mem4Octal(1<<6 | 2<<3 | 0x4)
	assert.Equal(t, "0100 "+first, lines[1])
	assert.Equal(t, "0101 "+second, lines[2])
}

func mem4Octal(v int) string {
	digits := "01234567"
	out := make([]byte, 5)
	for i := 4; i >= 0; i-- {
		out[i] = digits[v&7]
		v >>= 3
	}
	return string(out)
}

func TestObjectFileHeaderCounts(t *testing.T) {
	// Scenario: data only. Header is "0 3", addresses start at 100.
	img, _, _, errs, ok := assemble(t, "X: .data 7, -1, 9\n.entry X\n")
	require.True(t, ok, "errors: %v", errs)

	var sb strings.Builder
	require.NoError(t, WriteObjectFile(&sb, img))
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "0 3", lines[0])
	assert.Equal(t, "0100 00007", lines[1])
	assert.Equal(t, "0101 77777", lines[2])
	assert.Equal(t, "0102 00011", lines[3])
}

func TestEntriesFileFormat(t *testing.T) {
	_, syms, _, errs, ok := assemble(t, "X: .data 7, -1, 9\n.entry X\n")
	require.True(t, ok, "errors: %v", errs)

	var sb strings.Builder
	require.NoError(t, WriteEntriesFile(&sb, syms))
	assert.Equal(t, "X 0100\n", sb.String())
}

func TestExternalsFileFormat(t *testing.T) {
	_, _, ext, errs, ok := assemble(t, ".extern K\n  jmp K\n")
	require.True(t, ok, "errors: %v", errs)

	var sb strings.Builder
	require.NoError(t, WriteExternalsFile(&sb, ext))
	assert.Equal(t, "K 0101\n", sb.String())
}

func TestExternalsMultipleSitesEncounterOrder(t *testing.T) {
	src := ".extern K\n  jmp K\n  jsr K\n"
	_, _, ext, errs, ok := assemble(t, src)
	require.True(t, ok, "errors: %v", errs)

	var sb strings.Builder
	require.NoError(t, WriteExternalsFile(&sb, ext))
	assert.Equal(t, "K 0101\nK 0103\n", sb.String())
}

func TestEntriesListedOnce(t *testing.T) {
	src := "X: .data 1\n.entry X\n.entry X\nstop\n"
	_, syms, _, errs, ok := assemble(t, src)
	require.True(t, ok, "errors: %v", errs)

	var sb strings.Builder
	require.NoError(t, WriteEntriesFile(&sb, syms))
	assert.Equal(t, 1, strings.Count(sb.String(), "X "))
}

func TestListingOutput(t *testing.T) {
	img, _, _, errs, ok := assemble(t, "stop\nX: .data 1\n")
	require.True(t, ok, "errors: %v", errs)

	var sb strings.Builder
	require.NoError(t, WriteListing(&sb, img))
	out := sb.String()
	assert.Contains(t, out, "code 1 words, data 1 words")
	assert.Contains(t, out, "0100")
	assert.Contains(t, out, "code")
	assert.Contains(t, out, "data")
}
