package parser

import (
	"fmt"
	"strings"
)

// Position represents a location in a source file.
type Position struct {
	Filename string
	Line     int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// ErrorKind categorizes a diagnostic. Every kind carries a fixed
// human-readable message; the taxonomy is closed.
type ErrorKind int

const (
	ErrNone ErrorKind = iota

	// Structural
	ErrLineTooLong
	ErrIllegalCharAtLineStart
	ErrIllegalCharAtLineEnd
	ErrUndefinedToken
	ErrUndefinedOperation
	ErrUndefinedInstruction
	ErrMissingSpaceAfterInstruction
	ErrMissingSpaceAfterLabel

	// Symbols and labels
	ErrIllegalLabelDeclaration
	ErrIllegalLabelLength
	ErrIllegalLabelCharacters
	ErrLabelReservedRegisterName
	ErrLabelReservedOperationName
	ErrLabelExpectedOpOrDirective
	ErrNameAlreadyInUse
	ErrOverrideExternal
	ErrOverrideLocalWithExternal
	ErrLabelNotDefined
	ErrSymbolDoesNotExist
	ErrEntryDeclaredButNotDefined

	// Directives
	ErrEmptyStringDeclaration
	ErrExpectedNumber
	ErrWrongArgumentTypeNotInteger
	ErrExpectedQuotes
	ErrClosingQuoteMissing

	// Operands
	ErrRequiredSourceMissing
	ErrRequiredDestMissing
	ErrExtraOperands
	ErrIllegalSrcOperandKind
	ErrIllegalDstOperandKind
	ErrSrcOperandKindNotAllowed
	ErrDstOperandKindNotAllowed

	// Comma syntax
	ErrCommaBeforeFirstParameter
	ErrCommaAfterLastParameter
	ErrExtraCommas
	ErrMissingCommas

	// Macros
	ErrMacroDeclWithoutName
	ErrIllegalMacroName
	ErrMacroNameInUse
	ErrMacroCloseWithoutOpen

	// Infrastructure
	ErrCannotOpenSource
	ErrFileCreationFailed
	ErrNoSourceFiles

	// Warnings
	WarnEmptyDataDeclaration
	WarnEmptyEntryDeclaration
	WarnEmptyExternalDeclaration
	WarnEmptyLabelDeclaration
)

var kindMessages = map[ErrorKind]string{
	ErrLineTooLong:                  "line exceeds the maximum length of 80 characters",
	ErrIllegalCharAtLineStart:       "illegal character at the start of the line",
	ErrIllegalCharAtLineEnd:         "illegal characters at the end of the line",
	ErrUndefinedToken:               "undefined token, not an operation, directive or label",
	ErrUndefinedOperation:           "undefined operation",
	ErrUndefinedInstruction:         "undefined directive",
	ErrMissingSpaceAfterInstruction: "missing space between directive and its arguments",
	ErrMissingSpaceAfterLabel:       "missing space after label declaration",

	ErrIllegalLabelDeclaration:    "illegal label declaration",
	ErrIllegalLabelLength:         "label length exceeds 31 characters",
	ErrIllegalLabelCharacters:     "label must start with a letter and contain only letters and digits",
	ErrLabelReservedRegisterName:  "label name collides with a register name",
	ErrLabelReservedOperationName: "label name collides with an operation name",
	ErrLabelExpectedOpOrDirective: "label must be followed by an operation or a directive",
	ErrNameAlreadyInUse:           "symbol name is already in use",
	ErrOverrideExternal:           "cannot override an external symbol with a local definition",
	ErrOverrideLocalWithExternal:  "cannot redeclare a local symbol as external",
	ErrLabelNotDefined:            "label is not defined",
	ErrSymbolDoesNotExist:         "symbol does not exist",
	ErrEntryDeclaredButNotDefined: "entry symbol is declared but never defined",

	ErrEmptyStringDeclaration:      ".string directive requires a quoted string",
	ErrExpectedNumber:              "expected a number",
	ErrWrongArgumentTypeNotInteger: "wrong argument type, expected an integer",
	ErrExpectedQuotes:              "expected opening quotes",
	ErrClosingQuoteMissing:         "closing quote is missing",

	ErrRequiredSourceMissing:    "required source operand is missing",
	ErrRequiredDestMissing:      "required destination operand is missing",
	ErrExtraOperands:            "too many operands passed to operation",
	ErrIllegalSrcOperandKind:    "illegal input passed as source operand",
	ErrIllegalDstOperandKind:    "illegal input passed as destination operand",
	ErrSrcOperandKindNotAllowed: "source operand addressing mode is not allowed for this operation",
	ErrDstOperandKindNotAllowed: "destination operand addressing mode is not allowed for this operation",

	ErrCommaBeforeFirstParameter: "illegal comma before the first parameter",
	ErrCommaAfterLastParameter:   "illegal comma after the last parameter",
	ErrExtraCommas:               "extra commas between parameters",
	ErrMissingCommas:             "missing comma between parameters",

	ErrMacroDeclWithoutName:  "macro declaration without a macro name",
	ErrIllegalMacroName:      "illegal macro name, reserved keyword",
	ErrMacroNameInUse:        "macro name is already in use",
	ErrMacroCloseWithoutOpen: "endmacr without a matching macr",

	ErrCannotOpenSource:   "source file could not be opened",
	ErrFileCreationFailed: "output file could not be created",
	ErrNoSourceFiles:      "no source files were provided",

	WarnEmptyDataDeclaration:     ".data directive declared with no values",
	WarnEmptyEntryDeclaration:    ".entry directive declared with no symbol",
	WarnEmptyExternalDeclaration: ".extern directive declared with no symbol",
	WarnEmptyLabelDeclaration:    "label attached to an empty declaration",
}

// Message returns the fixed message for the kind.
func (k ErrorKind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// IsWarning reports whether the kind is a warning: warnings are reported
// but do not fail the file.
func (k ErrorKind) IsWarning() bool {
	switch k {
	case WarnEmptyDataDeclaration, WarnEmptyEntryDeclaration,
		WarnEmptyExternalDeclaration, WarnEmptyLabelDeclaration:
		return true
	}
	return false
}

// Error is a diagnostic with position information.
type Error struct {
	Pos     Position
	Kind    ErrorKind
	Message string
	Context string // the source line, when available
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: error: %s\n", e.Pos, e.Message))
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf("    %s\n", e.Context))
	}
	return sb.String()
}

// NewError creates a new diagnostic error.
func NewError(pos Position, kind ErrorKind, message string) *Error {
	return &Error{Pos: pos, Kind: kind, Message: message}
}

// Warning is a non-fatal diagnostic.
type Warning struct {
	Pos     Position
	Kind    ErrorKind
	Message string
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s: warning: %s", w.Pos, w.Message)
}

// ErrorList collects errors and warnings for one source file. The passes
// report and keep going so the user sees every problem in the file; at
// stage boundaries HasErrors gates the transition to the failed state.
type ErrorList struct {
	Errors   []*Error
	Warnings []*Warning
}

// AddError adds an error to the list.
func (el *ErrorList) AddError(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddWarning adds a warning to the list.
func (el *ErrorList) AddWarning(warn *Warning) {
	el.Warnings = append(el.Warnings, warn)
}

// Report records a diagnostic of the given kind with its fixed message.
// Warnings go to the warning list. The return value is false for errors
// and true for warnings, so call sites can chain validity:
//
//	ok = errs.Report(pos, ErrExpectedNumber) && ok
func (el *ErrorList) Report(pos Position, kind ErrorKind) bool {
	if kind.IsWarning() {
		el.AddWarning(&Warning{Pos: pos, Kind: kind, Message: kind.Message()})
		return true
	}
	el.AddError(NewError(pos, kind, kind.Message()))
	return false
}

// HasErrors returns true if there are any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Error implements the error interface.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	var sb strings.Builder
	for _, err := range el.Errors {
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// PrintWarnings renders all warnings, one per line.
func (el *ErrorList) PrintWarnings() string {
	if len(el.Warnings) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, warn := range el.Warnings {
		sb.WriteString(warn.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
