package encoder

import (
	"fmt"
	"strings"

	"github.com/w15tools/assembler/inst"
	"github.com/w15tools/assembler/mem"
)

// DecodeFirstWord renders a first instruction word back into a readable
// form for listing annotations: mnemonic plus the addressing mode of each
// operand position. Words whose mode nibbles do not decode cleanly come
// back as a plain data rendering.
func DecodeFirstWord(w mem.Word) string {
	v := uint(w) & mem.WordMask
	opcode := v >> 11
	srcMode := (v >> 7) & 0xF
	dstMode := (v >> 3) & 0xF

	op := inst.ByOpcode(opcode)
	if op == nil {
		return fmt.Sprintf(".data %d", v)
	}
	if !validModeNibble(srcMode) || !validModeNibble(dstMode) {
		return fmt.Sprintf(".data %d", v)
	}

	var parts []string
	if name := modeName(srcMode); name != "" {
		parts = append(parts, name)
	}
	if name := modeName(dstMode); name != "" {
		parts = append(parts, name)
	}
	if len(parts) == 0 {
		return op.Mnemonic
	}
	return op.Mnemonic + " " + strings.Join(parts, ", ")
}

// validModeNibble accepts the 1-hot mode encodings and the absent marker.
func validModeNibble(m uint) bool {
	switch m {
	case 0, inst.ModeImmediate, inst.ModeDirect, inst.ModeIndirect, inst.ModeRegister:
		return true
	}
	return false
}

func modeName(m uint) string {
	switch m {
	case inst.ModeImmediate:
		return "#imm"
	case inst.ModeDirect:
		return "label"
	case inst.ModeIndirect:
		return "*reg"
	case inst.ModeRegister:
		return "reg"
	}
	return ""
}

// AnnotatedListing is WriteListing's richer sibling: code words that look
// like instruction heads carry a decoded hint column. Operand words cannot
// be told apart from heads without re-parsing, so the hint is best-effort
// and the plain columns stay authoritative.
func AnnotatedListing(img *mem.Image) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "code %d words, data %d words\n", img.CodeLen(), img.DataLen())
	for i, word := range img.Words() {
		addr := uint(mem.MemoryStart + i)
		if addr < img.ICF() {
			fmt.Fprintf(&sb, "%04d  %s  %s\n", addr, word.Octal(), DecodeFirstWord(word))
		} else {
			fmt.Fprintf(&sb, "%04d  %s\n", addr, word.Octal())
		}
	}
	return sb.String()
}
