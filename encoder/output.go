package encoder

import (
	"fmt"
	"io"

	"github.com/w15tools/assembler/mem"
	"github.com/w15tools/assembler/parser"
)

// WriteObjectFile renders the memory image in the object file format. The
// header line carries the code and data word counts; every following line
// is a 4-digit decimal address and the word as five octal digits.
func WriteObjectFile(w io.Writer, img *mem.Image) error {
	if _, err := fmt.Fprintf(w, "%d %d\n", img.CodeLen(), img.DataLen()); err != nil {
		return err
	}
	for i, word := range img.Words() {
		if _, err := fmt.Fprintf(w, "%04d %s\n", mem.MemoryStart+i, word.Octal()); err != nil {
			return err
		}
	}
	return nil
}

// WriteEntriesFile writes one line per entry symbol: the name and its
// final address, zero-padded to four decimal digits. Order is
// symbol-table iteration order.
func WriteEntriesFile(w io.Writer, syms *parser.SymbolTable) error {
	var err error
	syms.ForEach(func(sym *parser.Symbol) {
		if err != nil || !sym.Attrs.Entry {
			return
		}
		_, err = fmt.Fprintf(w, "%s %04d\n", sym.Name, sym.Address())
	})
	return err
}

// WriteExternalsFile writes one line per external reference site: the
// symbol name and the address of the referencing word, zero-padded to
// four decimal digits. Sites of one symbol appear in encounter order.
func WriteExternalsFile(w io.Writer, ext *parser.ExtTable) error {
	var err error
	ext.ForEach(func(e *parser.External) {
		for _, ref := range e.Refs {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(w, "%s %04d\n", e.Name, ref.Base)
		}
	})
	return err
}

// WriteListing dumps the memory image for inspection: address, octal word
// and binary word per line, separated into the code and data segments.
func WriteListing(w io.Writer, img *mem.Image) error {
	if _, err := fmt.Fprintf(w, "code %d words, data %d words\n", img.CodeLen(), img.DataLen()); err != nil {
		return err
	}
	for i, word := range img.Words() {
		addr := uint(mem.MemoryStart + i)
		tag := "code"
		if addr >= img.ICF() {
			tag = "data"
		}
		if _, err := fmt.Fprintf(w, "%04d  %s  %s  %s\n", addr, word.Octal(), word.Binary(), tag); err != nil {
			return err
		}
	}
	return nil
}
