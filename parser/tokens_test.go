package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRegister(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"r0", true},
		{"r7", true},
		{"r8", false},
		{"r", false},
		{"r10", false},
		{"R1", false},
		{"*r1", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRegister(tt.tok), "IsRegister(%q)", tt.tok)
	}
}

func TestIsImmediate(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"#5", true},
		{"#+5", true},
		{"#-123", true},
		{"#0", true},
		{"#", false},
		{"#-", false},
		{"#+", false},
		{"#1.5", false},
		{"#x", false},
		{"#5x", false},
		{"5", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsImmediate(tt.tok), "IsImmediate(%q)", tt.tok)
	}
}

func TestIsIndirect(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"*r0", true},
		{"*r7", true},
		{"*r8", false},
		{"*r", false},
		{"r1", false},
		{"**r1", false},
		{"*r12", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsIndirect(tt.tok), "IsIndirect(%q)", tt.tok)
	}
}

func TestRegisterNumber(t *testing.T) {
	assert.Equal(t, 3, RegisterNumber("r3"))
	assert.Equal(t, 5, RegisterNumber("*r5"))
	assert.Equal(t, -1, RegisterNumber("x"))
	assert.Equal(t, -1, RegisterNumber("r9"))
}

func TestLabelDeclClassifiers(t *testing.T) {
	assert.True(t, IsLabelDeclStrict("MAIN:"))
	assert.False(t, IsLabelDeclStrict("MAIN"))
	assert.True(t, IsLabelDeclLoose("MAIN:mov"))
	assert.True(t, IsLabelDeclLoose("MAIN:"))
	assert.False(t, IsLabelDeclLoose("MAIN"))
}

func TestDirectiveClassifiers(t *testing.T) {
	for _, d := range []string{".data", ".string", ".entry", ".extern"} {
		assert.True(t, IsDirectiveStrict(d), "strict %q", d)
		assert.True(t, IsDirectiveLoose(d), "loose %q", d)
	}
	assert.False(t, IsDirectiveStrict(".data5"))
	assert.True(t, IsDirectiveLoose(".data5"))
	assert.False(t, IsDirectiveStrict(".dat"))
	assert.False(t, IsDirectiveLoose(".dat"))

	assert.Equal(t, DirData, DirectiveTypeOf(".data"))
	assert.Equal(t, DirString, DirectiveTypeOf(".string5"))
	assert.Equal(t, DirEntry, DirectiveTypeOf(".entry"))
	assert.Equal(t, DirExtern, DirectiveTypeOf(".extern"))
	assert.Equal(t, DirNone, DirectiveTypeOf("mov"))
}

func TestIsComment(t *testing.T) {
	assert.True(t, IsComment("; a comment"))
	assert.True(t, IsComment("   ;indented"))
	assert.False(t, IsComment("mov ; trailing"))
	assert.False(t, IsComment(""))
}

func TestMacroKeywords(t *testing.T) {
	assert.True(t, IsMacroOpen("macr"))
	assert.False(t, IsMacroOpen("macro"))
	assert.True(t, IsMacroClose("endmacr"))
	assert.False(t, IsMacroClose("endm"))
}

func TestIsLabelRef(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"LOOP", true},
		{"x1", true},
		{"X", true},
		{strings.Repeat("a", 31), true},
		{strings.Repeat("a", 32), false},
		{"1x", false},
		{"x_y", false},
		{"mov", false},
		{"r3", false},
		{".data", false},
		{"macr", false},
		{"endmacr", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsLabelRef(tt.tok), "IsLabelRef(%q)", tt.tok)
	}
}

func TestValidateLabel(t *testing.T) {
	check := func(name string) []*Error {
		errs := &ErrorList{}
		ValidateLabel(name, Position{Filename: "t.am", Line: 1}, errs)
		return errs.Errors
	}

	assert.Empty(t, check("GOOD"))
	assert.Empty(t, check(strings.Repeat("a", 31)))

	long := check(strings.Repeat("a", 32))
	if assert.Len(t, long, 1) {
		assert.Equal(t, ErrIllegalLabelLength, long[0].Kind)
	}

	reg := check("r5")
	if assert.Len(t, reg, 1) {
		assert.Equal(t, ErrLabelReservedRegisterName, reg[0].Kind)
	}

	op := check("stop")
	if assert.Len(t, op, 1) {
		assert.Equal(t, ErrLabelReservedOperationName, op[0].Kind)
	}

	chars := check("9lives")
	if assert.Len(t, chars, 1) {
		assert.Equal(t, ErrIllegalLabelCharacters, chars[0].Kind)
	}

	underscore := check("a_b")
	if assert.Len(t, underscore, 1) {
		assert.Equal(t, ErrIllegalLabelCharacters, underscore[0].Kind)
	}
}

func TestIsReserved(t *testing.T) {
	for _, name := range []string{"r0", "r7", "mov", "stop", ".data", ".extern", "macr", "endmacr"} {
		assert.True(t, IsReserved(name), "IsReserved(%q)", name)
	}
	assert.False(t, IsReserved("LOOP"))
}
