package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w15tools/assembler/mem"
)

type pass1Result struct {
	ok   bool
	syms *SymbolTable
	img  *mem.Image
	errs *ErrorList
}

func runPass1(t *testing.T, src string) pass1Result {
	t.Helper()
	syms := NewSymbolTable()
	img := mem.NewImage()
	errs := &ErrorList{}
	p := NewPass1("t.am", syms, NewMacroTable(), img, errs)
	ok := p.Run(src)
	return pass1Result{ok: ok, syms: syms, img: img, errs: errs}
}

func (r pass1Result) kinds() []ErrorKind {
	var kinds []ErrorKind
	for _, e := range r.errs.Errors {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestRegisterPairInstruction(t *testing.T) {
	r := runPass1(t, "MAIN: add r1, r2\n")
	require.True(t, r.ok)

	sym := r.syms.Lookup("MAIN")
	require.NotNil(t, sym)
	assert.Equal(t, uint(100), sym.Value)
	assert.True(t, sym.Attrs.Code)

	// Opcode word plus one shared register word.
	assert.Equal(t, uint(102), r.img.IC())
}

func TestInstructionSizes(t *testing.T) {
	tests := []struct {
		line string
		size uint
	}{
		{"stop", 1},
		{"rts", 1},
		{"clr r1", 2},
		{"jmp LOOP", 2},
		{"prn #5", 2},
		{"mov r3, r5", 2},
		{"mov *r3, r5", 2},
		{"mov *r3, *r5", 2},
		{"mov r1, LOOP", 3},
		{"mov #3, r1", 3},
		{"cmp #3, #-4", 3},
		{"lea LOOP, r2", 3},
	}
	for _, tt := range tests {
		r := runPass1(t, "LOOP: .data 1\n"+tt.line+"\n")
		require.True(t, r.ok, "line %q: %v", tt.line, r.errs)
		assert.Equal(t, mem.MemoryStart+tt.size, r.img.IC(), "line %q", tt.line)
	}
}

func TestDataDirective(t *testing.T) {
	r := runPass1(t, "X: .data 7, -1, 9\n")
	require.True(t, r.ok)
	assert.Equal(t, uint(3), r.img.DC())

	sym := r.syms.Lookup("X")
	require.NotNil(t, sym)
	assert.Equal(t, uint(0), sym.Value)
	assert.True(t, sym.Attrs.Data)
}

func TestDataFinalization(t *testing.T) {
	// Scenario: data only, one entry.
	r := runPass1(t, "X: .data 7, -1, 9\n.entry X\n")
	require.True(t, r.ok)
	assert.Equal(t, uint(3), r.img.DC())
	assert.Equal(t, uint(100), r.img.IC())

	r.img.FinalizeCounters()
	assert.Equal(t, uint(100), r.img.ICF())
	assert.Equal(t, uint(103), r.img.DCF())

	ext := NewExtTable()
	require.True(t, r.syms.Finalize(r.img.ICF(), ext, "t.am", r.errs))

	x := r.syms.Lookup("X")
	assert.Equal(t, uint(100), x.Value)
	assert.Equal(t, uint(100), x.Address())
	assert.True(t, x.Attrs.Entry)
}

func TestStringDirective(t *testing.T) {
	r := runPass1(t, "S: .string \"abc\"\n")
	require.True(t, r.ok)
	assert.Equal(t, uint(4), r.img.DC()) // three chars plus terminator
}

func TestEmptyStringDirective(t *testing.T) {
	r := runPass1(t, ".string \"\"\n")
	require.True(t, r.ok)
	assert.Equal(t, uint(1), r.img.DC()) // terminator only
}

func TestStringErrors(t *testing.T) {
	r := runPass1(t, ".string abc\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrExpectedQuotes)

	r = runPass1(t, ".string \"abc\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrClosingQuoteMissing)

	r = runPass1(t, ".string\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrEmptyStringDeclaration)
}

func TestEntryExtern(t *testing.T) {
	r := runPass1(t, ".extern K\n.entry X\nX: .data 1\n")
	require.True(t, r.ok)

	k := r.syms.Lookup("K")
	require.NotNil(t, k)
	assert.True(t, k.Attrs.External)

	x := r.syms.Lookup("X")
	require.NotNil(t, x)
	assert.True(t, x.Attrs.Entry)
	assert.True(t, x.Attrs.Data)
}

func TestEmptyEntryWarnsOnly(t *testing.T) {
	r := runPass1(t, ".entry\n")
	assert.True(t, r.ok)
	assert.Empty(t, r.errs.Errors)
	require.Len(t, r.errs.Warnings, 1)
	assert.Equal(t, WarnEmptyEntryDeclaration, r.errs.Warnings[0].Kind)
}

func TestEmptyDataWarnsOnly(t *testing.T) {
	r := runPass1(t, ".data\n")
	assert.True(t, r.ok)
	assert.Empty(t, r.errs.Errors)
	require.Len(t, r.errs.Warnings, 1)
	assert.Equal(t, WarnEmptyDataDeclaration, r.errs.Warnings[0].Kind)
}

func TestDataCommaErrorRecovery(t *testing.T) {
	// The extra comma is reported and parsing continues: both numbers are
	// still counted, and the file is invalid.
	r := runPass1(t, ".data 1,, 2\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrExtraCommas)
}

func TestDataRejectsNonInteger(t *testing.T) {
	r := runPass1(t, ".data 1.5\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrWrongArgumentTypeNotInteger)

	r = runPass1(t, ".data abc\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrExpectedNumber)
}

func TestLabelLengthBoundary(t *testing.T) {
	ok31 := strings.Repeat("a", 31)
	r := runPass1(t, ok31+": .data 1\n")
	assert.True(t, r.ok, "31-char label must be accepted")

	bad32 := strings.Repeat("a", 32)
	r = runPass1(t, bad32+": .data 1\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrIllegalLabelLength)
}

func TestMissingSpaceAfterLabel(t *testing.T) {
	r := runPass1(t, "MAIN:add r1, r2\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrMissingSpaceAfterLabel)
	// Treated as if spaced: the label still lands in the table and the
	// instruction is still sized.
	assert.NotNil(t, r.syms.Lookup("MAIN"))
	assert.Equal(t, uint(102), r.img.IC())
}

func TestOperandErrors(t *testing.T) {
	tests := []struct {
		line string
		kind ErrorKind
	}{
		{"mov r1", ErrRequiredDestMissing},
		{"mov r1, r2, r3", ErrExtraOperands},
		{"mov r1, #5", ErrDstOperandKindNotAllowed},
		{"lea #5, r1", ErrSrcOperandKindNotAllowed},
		{"lea r2, r1", ErrSrcOperandKindNotAllowed},
		{"jmp r1", ErrDstOperandKindNotAllowed},
		{"clr", ErrRequiredDestMissing},
		{"mov 5x, r1", ErrIllegalSrcOperandKind},
		{"mov r1, 5x", ErrIllegalDstOperandKind},
	}
	for _, tt := range tests {
		r := runPass1(t, tt.line+"\n")
		assert.False(t, r.ok, "line %q", tt.line)
		assert.Contains(t, r.kinds(), tt.kind, "line %q", tt.line)
	}
}

func TestUndefinedTokens(t *testing.T) {
	r := runPass1(t, "bogus r1, r2\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrUndefinedToken)

	r = runPass1(t, ".dat 5\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrUndefinedInstruction)
}

func TestLineTooLong(t *testing.T) {
	r := runPass1(t, strings.Repeat("x", MaxLineLen+1)+"\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrLineTooLong)
}

func TestCommentsAndBlanksSkipped(t *testing.T) {
	r := runPass1(t, "; header comment\n\n   \nstop\n")
	require.True(t, r.ok)
	assert.Equal(t, uint(101), r.img.IC())
}

func TestLabelAloneIsError(t *testing.T) {
	r := runPass1(t, "MAIN:\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrLabelExpectedOpOrDirective)
}

func TestDuplicateLabel(t *testing.T) {
	r := runPass1(t, "X: .data 1\nX: .data 2\n")
	assert.False(t, r.ok)
	assert.Contains(t, r.kinds(), ErrNameAlreadyInUse)
}

func TestLabelCannotReuseMacroName(t *testing.T) {
	syms := NewSymbolTable()
	macros := NewMacroTable()
	require.Equal(t, ErrNone, macros.Add("HI", 0, 10))
	errs := &ErrorList{}
	p := NewPass1("t.am", syms, macros, mem.NewImage(), errs)

	ok := p.Run("HI: .data 1\n")
	assert.False(t, ok)
	var kinds []ErrorKind
	for _, e := range errs.Errors {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, ErrNameAlreadyInUse)
}

func TestErrorRecoveryReportsEveryLine(t *testing.T) {
	// One error per bad line; parsing never stops early.
	r := runPass1(t, ".data 1.5\nmov r1\nbogus\n")
	assert.False(t, r.ok)
	assert.GreaterOrEqual(t, len(r.errs.Errors), 3)
}
