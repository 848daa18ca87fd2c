// Package inst defines the machine's operation set: the sixteen mnemonics,
// their opcodes, and the addressing modes each operand position accepts.
package inst

// AddrModes is the set of addressing modes permitted for one operand
// position. A position with no modes set takes no operand at all.
type AddrModes struct {
	Immediate bool
	Direct    bool
	Indirect  bool
	Register  bool
}

// Any reports whether at least one addressing mode is permitted, i.e.
// whether this operand position exists for the operation.
func (m AddrModes) Any() bool {
	return m.Immediate || m.Direct || m.Indirect || m.Register
}

// Mode nibble values used in the first word of an encoded instruction.
// The nibble is 1-hot; 0 means the operand position is absent.
const (
	ModeImmediate = 1
	ModeDirect    = 2
	ModeIndirect  = 4
	ModeRegister  = 8
)

// Operation describes one entry of the operation table.
type Operation struct {
	Opcode   uint
	Mnemonic string
	Src      AddrModes
	Dst      AddrModes
}

// OperandCount returns how many operands the operation requires: 0, 1 or 2.
func (op *Operation) OperandCount() int {
	n := 0
	if op.Src.Any() {
		n++
	}
	if op.Dst.Any() {
		n++
	}
	return n
}

// Operations is the fixed operation table, indexed by opcode.
var Operations = [16]Operation{
	{0, "mov", AddrModes{true, true, true, true}, AddrModes{false, true, true, true}},
	{1, "cmp", AddrModes{true, true, true, true}, AddrModes{true, true, true, true}},
	{2, "add", AddrModes{true, true, true, true}, AddrModes{false, true, true, true}},
	{3, "sub", AddrModes{true, true, true, true}, AddrModes{false, true, true, true}},
	{4, "lea", AddrModes{false, true, false, false}, AddrModes{false, true, true, true}},
	{5, "clr", AddrModes{}, AddrModes{false, true, true, true}},
	{6, "not", AddrModes{}, AddrModes{false, true, true, true}},
	{7, "inc", AddrModes{}, AddrModes{false, true, true, true}},
	{8, "dec", AddrModes{}, AddrModes{false, true, true, true}},
	{9, "jmp", AddrModes{}, AddrModes{false, true, true, false}},
	{10, "bne", AddrModes{}, AddrModes{false, true, true, false}},
	{11, "red", AddrModes{}, AddrModes{false, true, true, true}},
	{12, "prn", AddrModes{}, AddrModes{true, true, true, true}},
	{13, "jsr", AddrModes{}, AddrModes{false, true, true, false}},
	{14, "rts", AddrModes{}, AddrModes{}},
	{15, "stop", AddrModes{}, AddrModes{}},
}

// byName maps each mnemonic to its table entry.
var byName = func() map[string]*Operation {
	m := make(map[string]*Operation, len(Operations))
	for i := range Operations {
		m[Operations[i].Mnemonic] = &Operations[i]
	}
	return m
}()

// Lookup returns the operation for the given mnemonic, or nil if the name
// is not an operation.
func Lookup(name string) *Operation {
	return byName[name]
}

// IsOperation reports whether the given token is an operation mnemonic.
func IsOperation(name string) bool {
	return byName[name] != nil
}

// ByOpcode returns the operation with the given opcode, or nil if the
// opcode is out of range.
func ByOpcode(code uint) *Operation {
	if code >= uint(len(Operations)) {
		return nil
	}
	return &Operations[code]
}
