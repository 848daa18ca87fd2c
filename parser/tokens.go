// Package parser implements the line-oriented front end of the assembler:
// token classification, macro preprocessing, the symbol and macro tables,
// and the first pass that validates the source and sizes the program.
package parser

import (
	"strings"

	"github.com/w15tools/assembler/inst"
)

// MaxLabelLen is the maximum length of a label or macro name.
const MaxLabelLen = 31

// MaxLineLen is the maximum length of a source line, in characters.
const MaxLineLen = 80

// Directive keywords.
const (
	KeywordData     = ".data"
	KeywordString   = ".string"
	KeywordEntry    = ".entry"
	KeywordExtern   = ".extern"
	KeywordMacro    = "macr"
	KeywordEndMacro = "endmacr"
)

// DirectiveType identifies one of the four assembler directives.
type DirectiveType int

const (
	DirNone DirectiveType = iota
	DirData
	DirString
	DirEntry
	DirExtern
)

// Keyword returns the directive's source keyword.
func (d DirectiveType) Keyword() string {
	switch d {
	case DirData:
		return KeywordData
	case DirString:
		return KeywordString
	case DirEntry:
		return KeywordEntry
	case DirExtern:
		return KeywordExtern
	}
	return ""
}

// IsRegister reports whether the token is a register name, r0 through r7.
func IsRegister(tok string) bool {
	return len(tok) == 2 && tok[0] == 'r' && tok[1] >= '0' && tok[1] <= '7'
}

// IsImmediate reports whether the token is an immediate operand: a '#'
// followed by an optional sign and at least one digit, and nothing else.
func IsImmediate(tok string) bool {
	if len(tok) < 2 || tok[0] != '#' {
		return false
	}
	s := tok[1:]
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsIndirect reports whether the token is an indirect register operand,
// exactly *r0 through *r7.
func IsIndirect(tok string) bool {
	return len(tok) == 3 && tok[0] == '*' && IsRegister(tok[1:])
}

// RegisterNumber extracts the register number from a register or indirect
// operand. Returns -1 when the token holds no register.
func RegisterNumber(tok string) int {
	i := strings.IndexByte(tok, 'r')
	if i < 0 || !IsRegister(tok[i:]) {
		return -1
	}
	return int(tok[i+1] - '0')
}

// IsLabelDeclStrict reports whether the token is a label declaration,
// i.e. ends with ':'.
func IsLabelDeclStrict(tok string) bool {
	return len(tok) > 0 && tok[len(tok)-1] == ':'
}

// IsLabelDeclLoose reports whether the token contains a ':' anywhere.
// Used to diagnose a missing space after a label declaration.
func IsLabelDeclLoose(tok string) bool {
	return strings.ContainsRune(tok, ':')
}

// IsDirectiveStrict reports whether the token exactly matches one of the
// four directive keywords.
func IsDirectiveStrict(tok string) bool {
	switch tok {
	case KeywordData, KeywordString, KeywordEntry, KeywordExtern:
		return true
	}
	return false
}

// IsDirectiveLoose reports whether a directive keyword appears inside the
// token. Used to diagnose a missing space after the directive.
func IsDirectiveLoose(tok string) bool {
	return strings.Contains(tok, KeywordData) || strings.Contains(tok, KeywordString) ||
		strings.Contains(tok, KeywordEntry) || strings.Contains(tok, KeywordExtern)
}

// DirectiveTypeOf returns the directive named inside the token, matching
// loosely so that a glued ".data5" still identifies as .data.
func DirectiveTypeOf(tok string) DirectiveType {
	switch {
	case strings.Contains(tok, KeywordData):
		return DirData
	case strings.Contains(tok, KeywordString):
		return DirString
	case strings.Contains(tok, KeywordEntry):
		return DirEntry
	case strings.Contains(tok, KeywordExtern):
		return DirExtern
	}
	return DirNone
}

// IsComment reports whether the line is a comment: its first non-blank
// character is ';'.
func IsComment(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, ";")
}

// IsMacroOpen reports whether the token opens a macro definition.
func IsMacroOpen(tok string) bool { return tok == KeywordMacro }

// IsMacroClose reports whether the token closes a macro definition.
func IsMacroClose(tok string) bool { return tok == KeywordEndMacro }

// IsReserved reports whether the name is a reserved identifier: a register,
// an operation mnemonic, a directive keyword, or a macro keyword.
func IsReserved(name string) bool {
	return IsRegister(name) || inst.IsOperation(name) ||
		IsDirectiveStrict(name) || IsMacroOpen(name) || IsMacroClose(name)
}

// IsLabelRef reports whether the token is usable as a symbol reference in
// operand position: a legal label name that is not reserved.
func IsLabelRef(tok string) bool {
	if len(tok) == 0 || len(tok) > MaxLabelLen || IsReserved(tok) {
		return false
	}
	if !isAlpha(tok[0]) {
		return false
	}
	for i := 1; i < len(tok); i++ {
		if !isAlpha(tok[i]) && !isDigit(tok[i]) {
			return false
		}
	}
	return true
}

// IsLegalMacroName reports whether the name may be used for a macro:
// anything that is not a directive keyword or operation mnemonic.
func IsLegalMacroName(name string) bool {
	return !IsDirectiveStrict(name) && !inst.IsOperation(name)
}

// ValidateLabel checks a label declaration name and reports each rule it
// violates: length, character set, and collisions with reserved register or
// operation names. Returns true if the name is legal.
func ValidateLabel(name string, pos Position, errs *ErrorList) bool {
	ok := true
	if len(name) == 0 {
		return errs.Report(pos, ErrIllegalLabelDeclaration)
	}
	if len(name) > MaxLabelLen {
		ok = errs.Report(pos, ErrIllegalLabelLength)
	}
	if IsRegister(name) {
		return errs.Report(pos, ErrLabelReservedRegisterName)
	}
	if inst.IsOperation(name) {
		return errs.Report(pos, ErrLabelReservedOperationName)
	}
	if !isAlpha(name[0]) {
		return errs.Report(pos, ErrIllegalLabelCharacters)
	}
	for i := 1; i < len(name); i++ {
		if !isAlpha(name[i]) && !isDigit(name[i]) {
			return errs.Report(pos, ErrIllegalLabelCharacters)
		}
	}
	return ok
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
