// Package mem holds the assembler's memory image and the instruction/data
// counters that the two passes share. A machine word is 15 bits wide; the
// image is allocated once, after the first pass has fixed the final counter
// values, and is filled during the second pass.
package mem

import (
	"fmt"
	"strings"
)

// MemoryStart is the load address of the first code word.
const MemoryStart = 100

// WordSize is the width of a machine word in bits.
const WordSize = 15

// WordMask keeps the low 15 bits of a value.
const WordMask = 1<<WordSize - 1

// ARE field flags, the three low bits of every emitted word. The flags are
// mutually exclusive.
const (
	A = 0x4 // absolute
	R = 0x2 // relocatable
	E = 0x1 // external
)

// Word is one 15-bit machine word, stored in the low bits of a uint16.
type Word uint16

// Octal renders the word as five octal digits, most significant first,
// three bits per digit. This is the representation used in the object file.
func (w Word) Octal() string {
	return fmt.Sprintf("%05o", uint16(w)&WordMask)
}

// Binary renders the word as 15 binary digits grouped in threes, a debug
// view matching the listing output.
func (w Word) Binary() string {
	var sb strings.Builder
	for i := WordSize - 1; i >= 0; i-- {
		if i != WordSize-1 && (i+1)%3 == 0 {
			sb.WriteByte(' ')
		}
		if w&(1<<i) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Segment selects which counter a word emission advances.
type Segment int

const (
	Code Segment = iota
	Data
)

// Image is the per-file memory image plus its counters. Zero value is ready
// for a new file after Reset.
type Image struct {
	words []Word

	ic  uint // instruction counter
	dc  uint // data counter
	icf uint // final IC after pass 1
	dcf uint // final DC after pass 1
}

// NewImage returns an image with counters set for the start of a file.
func NewImage() *Image {
	img := &Image{}
	img.Reset()
	return img
}

// Reset prepares the image for a new source file: IC back to the load
// address, DC to zero, finals cleared, image released.
func (img *Image) Reset() {
	img.ic = MemoryStart
	img.dc = 0
	img.icf = 0
	img.dcf = 0
	img.words = nil
}

func (img *Image) IC() uint  { return img.ic }
func (img *Image) DC() uint  { return img.dc }
func (img *Image) ICF() uint { return img.icf }
func (img *Image) DCF() uint { return img.dcf }

// IncIC advances the instruction counter by n words.
func (img *Image) IncIC(n uint) { img.ic += n }

// IncDC advances the data counter by n words.
func (img *Image) IncDC(n uint) { img.dc += n }

// FinalizeCounters fixes ICF and DCF at the end of pass 1 and repositions
// the counters for pass 2: data words follow the code segment, code writes
// restart at the load address.
func (img *Image) FinalizeCounters() {
	img.icf = img.ic
	img.dcf = img.icf + img.dc
	img.dc = img.icf
	img.ic = MemoryStart
}

// Alloc sizes the image to hold the whole program, DCF-100 words. It must
// be called exactly once, between the passes.
func (img *Image) Alloc() {
	img.words = make([]Word, img.dcf-MemoryStart)
}

// AddWord truncates value to 15 bits (two's complement for negatives) and
// writes it at the address held by the segment's counter, then advances
// that counter.
func (img *Image) AddWord(value int, seg Segment) {
	w := Word(uint(value) & WordMask)
	if seg == Code {
		img.words[img.ic-MemoryStart] = w
		img.ic++
	} else {
		img.words[img.dc-MemoryStart] = w
		img.dc++
	}
}

// CodeLen returns the number of code words, ICF-100.
func (img *Image) CodeLen() uint { return img.icf - MemoryStart }

// DataLen returns the number of data words, DCF-ICF.
func (img *Image) DataLen() uint { return img.dcf - img.icf }

// Words returns the full image in address order. The slice is nil before
// Alloc.
func (img *Image) Words() []Word { return img.words }

// WordAt returns the word at the given absolute address.
func (img *Image) WordAt(addr uint) Word {
	return img.words[addr-MemoryStart]
}
