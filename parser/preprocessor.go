package parser

import (
	"strings"
)

// Preprocessor expands user-defined macros by verbatim textual
// substitution. It streams the source line by line through a two-state
// machine: outside any definition, lines are copied (or replaced by a
// macro body when the first token names a macro); inside a definition,
// lines are swallowed until endmacr records the body's byte range.
type Preprocessor struct {
	filename string
	macros   *MacroTable
	errs     *ErrorList
}

// NewPreprocessor creates a preprocessor that installs definitions into
// the given macro table and reports diagnostics into errs.
func NewPreprocessor(filename string, macros *MacroTable, errs *ErrorList) *Preprocessor {
	return &Preprocessor{filename: filename, macros: macros, errs: errs}
}

// Expand produces the macro-expanded source. A preprocessing error aborts
// the file: the second return value is false and the expanded text must
// not be used.
func (p *Preprocessor) Expand(src string) (string, bool) {
	var out strings.Builder
	out.Grow(len(src))

	inDefinition := false
	var macroName string
	var bodyStart int

	line := 0
	for offset := 0; offset < len(src); {
		line++
		lineEnd := strings.IndexByte(src[offset:], '\n')
		var raw string
		var next int
		if lineEnd < 0 {
			raw = src[offset:]
			next = len(src)
		} else {
			raw = src[offset : offset+lineEnd+1]
			next = offset + lineEnd + 1
		}
		pos := Position{Filename: p.filename, Line: line}
		fields := strings.Fields(raw)
		first := ""
		if len(fields) > 0 {
			first = fields[0]
		}

		if inDefinition {
			if IsMacroClose(first) {
				// Body is everything between the macr line and this one.
				if kind := p.macros.Add(macroName, bodyStart, offset); kind != ErrNone {
					p.errs.Report(pos, kind)
					return "", false
				}
				inDefinition = false
			}
			offset = next
			continue
		}

		switch {
		case IsMacroOpen(first):
			if len(fields) < 2 {
				p.errs.Report(pos, ErrMacroDeclWithoutName)
				return "", false
			}
			if !IsLegalMacroName(fields[1]) {
				p.errs.Report(pos, ErrIllegalMacroName)
				return "", false
			}
			macroName = fields[1]
			bodyStart = next
			inDefinition = true

		case IsMacroClose(first):
			p.errs.Report(pos, ErrMacroCloseWithoutOpen)
			return "", false

		default:
			if m := p.macros.Lookup(first); m != nil {
				out.WriteString(src[m.Start:m.End])
			} else {
				out.WriteString(raw)
			}
		}
		offset = next
	}

	return out.String(), true
}
