// Package encoder implements the second pass: it re-parses the expanded
// source and emits bit-packed code and data words into the memory image,
// recording every reference to an external symbol along the way.
package encoder

import (
	"strconv"
	"strings"

	"github.com/w15tools/assembler/inst"
	"github.com/w15tools/assembler/mem"
	"github.com/w15tools/assembler/parser"
)

// Pass2 walks the expanded source a second time, with the symbol table
// complete and the counters finalized, and writes the encoded words.
type Pass2 struct {
	file string
	syms *parser.SymbolTable
	ext  *parser.ExtTable
	img  *mem.Image
	errs *parser.ErrorList
}

// NewPass2 creates the second-pass emitter for one file.
func NewPass2(file string, syms *parser.SymbolTable, ext *parser.ExtTable, img *mem.Image, errs *parser.ErrorList) *Pass2 {
	return &Pass2{file: file, syms: syms, ext: ext, img: img, errs: errs}
}

// Run emits the whole program. Returns the file's valid flag; on false no
// artifacts may be written.
func (p *Pass2) Run(expanded string) bool {
	ok := true
	for _, line := range parser.SplitLines(expanded) {
		if line.Text == "" || parser.IsComment(line.Text) {
			continue
		}
		pos := parser.Position{Filename: p.file, Line: line.Num}
		ok = p.emitLine(line.Text, pos) && ok
	}
	return ok && !p.errs.HasErrors()
}

// emitLine re-dispatches one line. Syntax was fully validated in pass 1,
// so only symbol resolution can still fail here.
func (p *Pass2) emitLine(line string, pos parser.Position) bool {
	first, rest := splitFirst(line)

	if parser.IsLabelDeclStrict(first) || parser.IsLabelDeclLoose(first) {
		if colon := strings.IndexByte(first, ':'); colon < len(first)-1 {
			rest = strings.TrimSpace(first[colon+1:] + " " + rest)
		}
		if rest == "" {
			return true
		}
		first, rest = splitFirst(rest)
	}

	switch {
	case parser.IsDirectiveStrict(first) || parser.IsDirectiveLoose(first):
		return p.emitDirective(first, rest, pos)
	case inst.IsOperation(first):
		return p.emitOperation(first, rest, pos)
	}
	return true
}

// emitDirective contributes data words for .data and .string; .entry and
// .extern produce nothing in the second pass.
func (p *Pass2) emitDirective(tok, args string, pos parser.Position) bool {
	typ := parser.DirectiveTypeOf(tok)
	if !parser.IsDirectiveStrict(tok) {
		idx := strings.Index(tok, typ.Keyword())
		args = strings.TrimSpace(tok[idx+len(typ.Keyword()):] + " " + args)
	}

	switch typ {
	case parser.DirData:
		for _, numTok := range splitList(args) {
			n, err := strconv.Atoi(numTok)
			if err != nil {
				continue
			}
			p.img.AddWord(n, mem.Data)
		}
	case parser.DirString:
		args = strings.TrimSpace(args)
		if len(args) >= 2 && args[0] == '"' && args[len(args)-1] == '"' {
			content := args[1 : len(args)-1]
			for i := 0; i < len(content); i++ {
				p.img.AddWord(int(content[i]), mem.Data)
			}
			p.img.AddWord(0, mem.Data)
		}
	}
	return true
}

// emitOperation writes the first word and the 0-2 operand words of one
// instruction.
func (p *Pass2) emitOperation(opName, args string, pos parser.Position) bool {
	op := inst.Lookup(opName)
	operands := splitList(args)

	var src, dst string
	switch len(operands) {
	case 0:
	case 1:
		dst = operands[0]
	default:
		src, dst = operands[0], operands[1]
	}
	srcClass, ok1 := p.detectOperand(src, pos)
	dstClass, ok2 := p.detectOperand(dst, pos)
	ok := ok1 && ok2

	p.writeFirstWord(op, srcClass, dstClass)
	p.writeOperandWords(src, dst, srcClass, dstClass)
	return ok
}

// detectOperand resolves the addressing mode of an operand and verifies
// that a direct operand names a known, resolvable symbol.
func (p *Pass2) detectOperand(tok string, pos parser.Position) (uint, bool) {
	if tok == "" {
		return 0, true
	}
	switch {
	case parser.IsImmediate(tok):
		return inst.ModeImmediate, true
	case parser.IsIndirect(tok):
		return inst.ModeIndirect, true
	case parser.IsRegister(tok):
		return inst.ModeRegister, true
	}

	sym := p.syms.Lookup(tok)
	if sym == nil {
		return 0, p.errs.Report(pos, parser.ErrLabelNotDefined)
	}
	if sym.Attrs.Entry && !sym.Attrs.Code && !sym.Attrs.Data {
		return 0, p.errs.Report(pos, parser.ErrEntryDeclaredButNotDefined)
	}
	return inst.ModeDirect, true
}

// writeFirstWord packs ARE, the two mode nibbles and the opcode:
// ARE in bits 0-2, destination mode in bits 3-6, source mode in bits
// 7-10, opcode in bits 11-14. The first word is always absolute.
func (p *Pass2) writeFirstWord(op *inst.Operation, srcMode, dstMode uint) {
	word := mem.A | int(dstMode)<<3 | int(srcMode)<<7 | int(op.Opcode)<<11
	p.img.AddWord(word, mem.Code)
}

// writeOperandWords emits the operand words following the first word.
// Register-like operand pairs share a single word; everything else gets a
// word of its own.
func (p *Pass2) writeOperandWords(src, dst string, srcMode, dstMode uint) {
	registerLike := func(m uint) bool {
		return m == inst.ModeRegister || m == inst.ModeIndirect
	}

	if src != "" && dst != "" && registerLike(srcMode) && registerLike(dstMode) {
		word := parser.RegisterNumber(src)<<6 | parser.RegisterNumber(dst)<<3 | mem.A
		p.img.AddWord(word, mem.Code)
		return
	}

	if src != "" {
		switch {
		case registerLike(srcMode):
			p.img.AddWord(parser.RegisterNumber(src)<<6|mem.A, mem.Code)
		case srcMode == inst.ModeDirect:
			p.writeDirectWord(src)
		case srcMode == inst.ModeImmediate:
			p.writeImmediateWord(src)
		}
	}
	if dst != "" {
		switch {
		case registerLike(dstMode):
			p.img.AddWord(parser.RegisterNumber(dst)<<3|mem.A, mem.Code)
		case dstMode == inst.ModeDirect:
			p.writeDirectWord(dst)
		case dstMode == inst.ModeImmediate:
			p.writeImmediateWord(dst)
		}
	}
}

// writeDirectWord emits the word for a direct operand. Internal symbols
// produce a relocatable address word; an external symbol produces a bare E
// word and records the use site in the external-reference list.
func (p *Pass2) writeDirectWord(name string) {
	sym := p.syms.Lookup(name)
	if sym == nil {
		return
	}
	if sym.Attrs.External {
		base := p.img.IC()
		p.img.AddWord(mem.E, mem.Code)
		p.ext.AddRef(name, base, base+1)
		return
	}
	p.img.AddWord(int(sym.Value)<<3|mem.R, mem.Code)
}

// writeImmediateWord emits the word for an immediate operand, the integer
// shifted past the ARE field, truncated two's-complement to 15 bits.
func (p *Pass2) writeImmediateWord(tok string) {
	n, _ := strconv.Atoi(strings.TrimPrefix(tok, "#"))
	p.img.AddWord(n<<3|mem.A, mem.Code)
}

// splitFirst splits a line into its first token and the remainder.
func splitFirst(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

// splitList breaks an operand or data list on whitespace and commas, the
// second pass's tokenization.
func splitList(args string) []string {
	return strings.FieldsFunc(args, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}
