package parser

import (
	"strings"

	"github.com/w15tools/assembler/inst"
	"github.com/w15tools/assembler/mem"
)

// operandClass is the addressing mode a concrete operand token resolves
// to, or classNone when the token is not a legal operand at all.
type operandClass int

const (
	classNone operandClass = iota
	classImmediate
	classIndirect
	classRegister
	classDirect
)

// classifyOperand decides the addressing mode of an operand token. The
// checks are ordered so that *r1 classifies as indirect before the bare
// register test can see the r1 suffix.
func classifyOperand(tok string) operandClass {
	switch {
	case IsImmediate(tok):
		return classImmediate
	case IsIndirect(tok):
		return classIndirect
	case IsRegister(tok):
		return classRegister
	case IsLabelRef(tok):
		return classDirect
	}
	return classNone
}

// allowed reports whether the class is permitted by the operation's mode
// mask for one operand position.
func (c operandClass) allowed(modes inst.AddrModes) bool {
	switch c {
	case classImmediate:
		return modes.Immediate
	case classIndirect:
		return modes.Indirect
	case classRegister:
		return modes.Register
	case classDirect:
		return modes.Direct
	}
	return false
}

// isRegisterLike reports whether the operand packs into a shared register
// word: register or indirect addressing.
func (c operandClass) isRegisterLike() bool {
	return c == classRegister || c == classIndirect
}

// Pass1 validates every line of the expanded source, grows the counters
// and populates the symbol table, so that every label resolves to a final
// address before the second pass emits any words.
type Pass1 struct {
	file   string
	syms   *SymbolTable
	macros *MacroTable
	img    *mem.Image
	errs   *ErrorList
}

// NewPass1 creates the first-pass parser for one file. The macro table is
// consulted so no label can reuse a macro name; the name spaces stay
// disjoint.
func NewPass1(file string, syms *SymbolTable, macros *MacroTable, img *mem.Image, errs *ErrorList) *Pass1 {
	return &Pass1{file: file, syms: syms, macros: macros, img: img, errs: errs}
}

// Run parses the whole expanded source. It continues past errors so every
// problem in the file is reported; the return value is the file's valid
// flag.
func (p *Pass1) Run(expanded string) bool {
	ok := true
	for _, line := range SplitLines(expanded) {
		pos := Position{Filename: p.file, Line: line.Num}
		if line.TooLong {
			ok = p.errs.Report(pos, ErrLineTooLong)
			continue
		}
		if line.Text == "" || IsComment(line.Text) {
			continue
		}
		ok = p.parseLine(line.Text, pos) && ok
	}
	return ok && !p.errs.HasErrors()
}

// parseLine dispatches on the first token of a non-empty line.
func (p *Pass1) parseLine(line string, pos Position) bool {
	first, rest := splitFirstToken(line)

	switch {
	case IsLabelDeclStrict(first):
		return p.parseLabeled(strings.TrimSuffix(first, ":"), rest, pos)

	case IsLabelDeclLoose(first):
		// A glued "name:op" counts as a declaration with a missing space.
		ok := p.errs.Report(pos, ErrMissingSpaceAfterLabel)
		colon := strings.IndexByte(first, ':')
		name := first[:colon]
		glued := strings.TrimSpace(first[colon+1:] + " " + rest)
		return p.parseLabeled(name, glued, pos) && ok

	case IsDirectiveStrict(first) || IsDirectiveLoose(first):
		return p.parseDirective(first, rest, "", pos)

	case strings.HasPrefix(first, "."):
		return p.errs.Report(pos, ErrUndefinedInstruction)

	case inst.IsOperation(first):
		return p.parseOperation(first, rest, "", pos)

	default:
		if len(first) > 1 {
			return p.errs.Report(pos, ErrUndefinedToken)
		}
		return p.errs.Report(pos, ErrIllegalCharAtLineStart)
	}
}

// parseLabeled handles the remainder of a line after a label declaration.
func (p *Pass1) parseLabeled(name, rest string, pos Position) bool {
	ok := ValidateLabel(name, pos, p.errs)
	if ok && p.macros != nil && p.macros.Lookup(name) != nil {
		ok = p.errs.Report(pos, ErrNameAlreadyInUse)
	}

	if rest == "" {
		return p.errs.Report(pos, ErrLabelExpectedOpOrDirective)
	}

	first, args := splitFirstToken(rest)
	switch {
	case IsDirectiveStrict(first) || IsDirectiveLoose(first):
		label := name
		if !ok {
			label = ""
		}
		return p.parseDirective(first, args, label, pos) && ok

	case inst.IsOperation(first):
		label := name
		if !ok {
			label = ""
		}
		return p.parseOperation(first, args, label, pos) && ok

	default:
		return p.errs.Report(pos, ErrLabelExpectedOpOrDirective)
	}
}

// parseDirective handles the four assembler directives. label is the
// (already validated) label preceding the directive, or empty.
func (p *Pass1) parseDirective(tok, args, label string, pos Position) bool {
	ok := true
	typ := DirectiveTypeOf(tok)
	if typ == DirNone {
		return p.errs.Report(pos, ErrUndefinedInstruction)
	}
	if !IsDirectiveStrict(tok) {
		// Arguments glued to the keyword, e.g. ".data5".
		ok = p.errs.Report(pos, ErrMissingSpaceAfterInstruction)
		idx := strings.Index(tok, typ.Keyword())
		args = strings.TrimSpace(tok[idx+len(typ.Keyword()):] + " " + args)
	}

	switch typ {
	case DirData:
		return p.parseData(args, label, pos) && ok
	case DirString:
		return p.parseString(args, label, pos) && ok
	case DirEntry:
		return p.parseEntryExtern(args, label, true, pos) && ok
	case DirExtern:
		return p.parseEntryExtern(args, label, false, pos) && ok
	}
	return ok
}

// parseData validates a .data list, counts its words and registers the
// preceding label at the data counter's current value.
func (p *Pass1) parseData(args, label string, pos Position) bool {
	if strings.TrimSpace(args) == "" {
		p.errs.Report(pos, WarnEmptyDataDeclaration)
		return true
	}

	ok := VerifyCommaSyntax(args, pos, p.errs)
	size := 0
	for _, tok := range splitOperands(args) {
		valid, isInteger := checkNumberToken(tok)
		switch {
		case !valid:
			ok = p.errs.Report(pos, ErrExpectedNumber)
		case !isInteger:
			ok = p.errs.Report(pos, ErrWrongArgumentTypeNotInteger)
		}
		size++
	}

	if label != "" && p.syms.IsNameTaken(label) {
		ok = p.errs.Report(pos, ErrNameAlreadyInUse)
		label = ""
	}

	dcBefore := p.img.DC()
	if ok {
		p.img.IncDC(uint(size))
	}
	if label != "" && ok {
		if kind := p.syms.Add(label, dcBefore, Attributes{Data: true}); kind != ErrNone {
			return p.errs.Report(pos, kind)
		}
	}
	return ok
}

// parseString validates a .string directive and counts one word per
// character plus the terminator.
func (p *Pass1) parseString(args, label string, pos Position) bool {
	args = strings.TrimSpace(args)
	if args == "" {
		return p.errs.Report(pos, ErrEmptyStringDeclaration)
	}
	if args[0] != '"' {
		return p.errs.Report(pos, ErrExpectedQuotes)
	}
	if len(args) < 2 || args[len(args)-1] != '"' {
		return p.errs.Report(pos, ErrClosingQuoteMissing)
	}

	if label != "" && p.syms.IsNameTaken(label) {
		p.errs.Report(pos, ErrNameAlreadyInUse)
		return false
	}

	content := args[1 : len(args)-1]
	dcBefore := p.img.DC()
	p.img.IncDC(uint(len(content)) + 1)
	if label != "" {
		if kind := p.syms.Add(label, dcBefore, Attributes{Data: true}); kind != ErrNone {
			return p.errs.Report(pos, kind)
		}
	}
	return true
}

// parseEntryExtern handles .entry and .extern declarations. A label in
// front of these directives carries no meaning and is dropped.
func (p *Pass1) parseEntryExtern(args, label string, entry bool, pos Position) bool {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		if label != "" {
			p.errs.Report(pos, WarnEmptyLabelDeclaration)
		} else if entry {
			p.errs.Report(pos, WarnEmptyEntryDeclaration)
		} else {
			p.errs.Report(pos, WarnEmptyExternalDeclaration)
		}
		return true
	}
	if len(fields) > 1 {
		return p.errs.Report(pos, ErrIllegalCharAtLineEnd)
	}

	name := fields[0]
	if !ValidateLabel(name, pos, p.errs) {
		return false
	}
	attrs := Attributes{Entry: entry, External: !entry}
	if kind := p.syms.Add(name, 0, attrs); kind != ErrNone {
		return p.errs.Report(pos, kind)
	}
	return true
}

// parseOperation validates an operation line, sizes the instruction and
// grows the instruction counter. The preceding label, if any, is recorded
// at the counter's value before the instruction.
func (p *Pass1) parseOperation(opName, args, label string, pos Position) bool {
	op := inst.Lookup(opName)
	icBefore := p.img.IC()
	ok := true

	if strings.TrimSpace(args) != "" {
		ok = VerifyCommaSyntax(args, pos, p.errs)
	}

	operands := splitOperands(args)
	if len(operands) > 2 {
		ok = p.errs.Report(pos, ErrExtraOperands)
		operands = operands[:2]
	}

	var src, dst string
	switch len(operands) {
	case 2:
		src, dst = operands[0], operands[1]
	case 1:
		if op.OperandCount() == 1 {
			dst = operands[0]
		} else {
			src = operands[0]
		}
	}

	expected := op.OperandCount()
	passed := len(operands)
	if passed > expected {
		ok = p.errs.Report(pos, ErrExtraOperands)
	}

	var srcClass, dstClass operandClass
	if op.Src.Any() {
		if src == "" {
			if passed <= expected {
				ok = p.errs.Report(pos, ErrRequiredSourceMissing)
			}
		} else {
			var valid bool
			srcClass, valid = p.validateOperand(op.Src, src, false, pos)
			ok = valid && ok
		}
	}
	if op.Dst.Any() {
		if dst == "" {
			if passed <= expected {
				ok = p.errs.Report(pos, ErrRequiredDestMissing)
			}
		} else {
			var valid bool
			dstClass, valid = p.validateOperand(op.Dst, dst, true, pos)
			ok = valid && ok
		}
	}

	if ok {
		p.img.IncIC(instructionSize(srcClass, dstClass, src != "", dst != ""))
		if label != "" {
			if kind := p.syms.Add(label, icBefore, Attributes{Code: true}); kind != ErrNone {
				return p.errs.Report(pos, kind)
			}
		}
	}
	return ok
}

// validateOperand classifies one operand and checks it against the
// operation's mode mask for that position.
func (p *Pass1) validateOperand(modes inst.AddrModes, tok string, isDst bool, pos Position) (operandClass, bool) {
	class := classifyOperand(tok)
	if class == classNone {
		if isDst {
			return class, p.errs.Report(pos, ErrIllegalDstOperandKind)
		}
		return class, p.errs.Report(pos, ErrIllegalSrcOperandKind)
	}
	if !class.allowed(modes) {
		if isDst {
			return class, p.errs.Report(pos, ErrDstOperandKindNotAllowed)
		}
		return class, p.errs.Report(pos, ErrSrcOperandKindNotAllowed)
	}
	return class, true
}

// instructionSize computes the word count of an instruction from the
// operand classes: one word for the opcode, a shared word when both
// operands are register-like, otherwise one word per operand.
func instructionSize(srcClass, dstClass operandClass, hasSrc, hasDst bool) uint {
	switch {
	case !hasSrc && !hasDst:
		return 1
	case srcClass.isRegisterLike() && dstClass.isRegisterLike():
		return 2
	case hasSrc && hasDst:
		return 3
	default:
		return 2
	}
}

// splitFirstToken splits a normalized line into its first token and the
// remainder.
func splitFirstToken(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

// splitOperands breaks an operand list on whitespace and commas.
func splitOperands(args string) []string {
	return strings.FieldsFunc(args, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// checkNumberToken validates a .data list element. The first result is
// false when the token is not numeric at all; the second is false when it
// is numeric but not an integer, e.g. 1.5.
func checkNumberToken(tok string) (valid, isInteger bool) {
	s := tok
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	if s == "" {
		return false, false
	}
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.':
			dots++
		default:
			return false, false
		}
	}
	if digits == 0 {
		return false, false
	}
	return true, dots == 0
}
