package parser

import (
	"fmt"
	"sort"
	"strings"
)

// HashSize is the fixed bucket count of the symbol and macro tables. It is
// independent of the input.
const HashSize = 64

// hashName computes the bucket index for a name.
func hashName(s string) int {
	h := uint(0)
	for i := 0; i < len(s); i++ {
		h = uint(s[i]) + 31*h
	}
	return int(h % HashSize)
}

// Attributes is the set of independent attribute flags a symbol carries.
// Code and data are mutually exclusive; external excludes all of code,
// data and entry; entry may coexist with code or data.
type Attributes struct {
	Code     bool
	Data     bool
	Entry    bool
	External bool
}

func (a Attributes) String() string {
	var parts []string
	if a.Code {
		parts = append(parts, "code")
	}
	if a.Data {
		parts = append(parts, "data")
	}
	if a.Entry {
		parts = append(parts, "entry")
	}
	if a.External {
		parts = append(parts, "external")
	}
	return strings.Join(parts, ",")
}

// Symbol is one entry of the symbol table. Base and Offset are derived
// from Value: offset is the value mod 16, base is the value minus offset.
type Symbol struct {
	Name   string
	Value  uint
	Base   uint
	Offset uint
	Attrs  Attributes
}

// setValue stores a new address and rederives base and offset.
func (s *Symbol) setValue(value uint) {
	s.Value = value
	s.Offset = value % 16
	s.Base = value - s.Offset
}

// Address returns the symbol's final address, base plus offset.
func (s *Symbol) Address() uint { return s.Base + s.Offset }

// SymbolTable is a closed-addressing hash table of symbols. Each bucket
// keeps its entries in insertion order; table iteration walks buckets in
// ascending index order, which fixes the order of the .ent output.
type SymbolTable struct {
	buckets [HashSize][]*Symbol

	entries   int
	externals int
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// Lookup returns the symbol with the given name, or nil.
func (st *SymbolTable) Lookup(name string) *Symbol {
	for _, sym := range st.buckets[hashName(name)] {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// Exists reports whether a symbol with the given name is in the table.
func (st *SymbolTable) Exists(name string) bool {
	return st.Lookup(name) != nil
}

// install appends a fresh entry to its bucket chain.
func (st *SymbolTable) install(name string) *Symbol {
	sym := &Symbol{Name: name}
	i := hashName(name)
	st.buckets[i] = append(st.buckets[i], sym)
	return sym
}

// Add inserts a symbol or merges attributes into an existing one.
// Merge rules:
//   - an external symbol cannot gain a location or code/data/entry attrs;
//   - a symbol with code, data or entry cannot be redeclared external;
//   - code and data are mutually exclusive in any order;
//   - otherwise the new attribute bits are ORed in, and a non-zero value
//     replaces the stored address.
//
// Returns ErrNone on success, or the error kind describing the conflict.
func (st *SymbolTable) Add(name string, value uint, attrs Attributes) ErrorKind {
	name = strings.TrimSuffix(name, ":")

	sym := st.Lookup(name)
	if sym == nil {
		sym = st.install(name)
		sym.setValue(value)
		sym.Attrs = attrs
		return ErrNone
	}

	if sym.Attrs.External && (value != 0 || attrs.Code || attrs.Data || attrs.Entry) {
		return ErrOverrideExternal
	}
	if (sym.Attrs.Code || sym.Attrs.Data || sym.Attrs.Entry) && attrs.External {
		return ErrOverrideLocalWithExternal
	}
	if (attrs.Code && attrs.Data) ||
		(attrs.Code && sym.Attrs.Data) || (attrs.Data && sym.Attrs.Code) {
		return ErrNameAlreadyInUse
	}

	if value != 0 {
		sym.setValue(value)
	}
	if attrs.Code {
		sym.Attrs.Code = true
	}
	if attrs.Data {
		sym.Attrs.Data = true
	}
	if attrs.Entry {
		sym.Attrs.Entry = true
	}
	return ErrNone
}

// IsNameTaken reports whether the name already has a code or data
// definition. Entry-only and external-only entries are not taken: a later
// declaration may still complete them.
func (st *SymbolTable) IsNameTaken(name string) bool {
	sym := st.Lookup(strings.TrimSuffix(name, ":"))
	return sym != nil && (sym.Attrs.Code || sym.Attrs.Data)
}

// ForEach visits every symbol in table-iteration order: buckets ascending,
// insertion order within a bucket.
func (st *SymbolTable) ForEach(fn func(*Symbol)) {
	for i := 0; i < HashSize; i++ {
		for _, sym := range st.buckets[i] {
			fn(sym)
		}
	}
}

// Len returns the number of symbols in the table.
func (st *SymbolTable) Len() int {
	n := 0
	for i := 0; i < HashSize; i++ {
		n += len(st.buckets[i])
	}
	return n
}

// EntriesExist reports whether any entry symbols were seen. Valid after
// Finalize.
func (st *SymbolTable) EntriesExist() bool { return st.entries > 0 }

// ExternalsExist reports whether any external symbols were seen. Valid
// after Finalize.
func (st *SymbolTable) ExternalsExist() bool { return st.externals > 0 }

// Finalize runs between the passes. Data symbols move from their
// DC-relative values to final addresses past the code segment; entries and
// externals are counted, and each external symbol gets a head node in the
// external-reference table. An entry symbol that never received a code or
// data definition is diagnosed.
func (st *SymbolTable) Finalize(icf uint, ext *ExtTable, file string, errs *ErrorList) bool {
	ok := true
	st.entries = 0
	st.externals = 0
	st.ForEach(func(sym *Symbol) {
		if sym.Attrs.Entry {
			st.entries++
			if !sym.Attrs.Code && !sym.Attrs.Data {
				ok = errs.Report(Position{Filename: file}, ErrEntryDeclaredButNotDefined)
			}
		}
		if sym.Attrs.External {
			st.externals++
			ext.Add(sym.Name)
		}
		if sym.Attrs.Data {
			sym.setValue(sym.Value + icf)
		}
	})
	return ok
}

// Dump renders the symbol table in a readable aligned format, sorted by
// address for easier reading.
func (st *SymbolTable) Dump() string {
	var syms []*Symbol
	st.ForEach(func(sym *Symbol) { syms = append(syms, sym) })
	sort.Slice(syms, func(i, j int) bool { return syms[i].Value < syms[j].Value })

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-32s %-6s %-6s %-6s %s\n", "Name", "Value", "Base", "Offset", "Attributes"))
	for _, sym := range syms {
		sb.WriteString(fmt.Sprintf("%-32s %-6d %-6d %-6d %s\n",
			sym.Name, sym.Value, sym.Base, sym.Offset, sym.Attrs))
	}
	return sb.String()
}

// ExtRef is one use site of an external symbol: the address of the operand
// word that references it and the following address.
type ExtRef struct {
	Base   uint
	Offset uint
}

// External collects the reference sites of one external symbol, in
// encounter order.
type External struct {
	Name string
	Refs []ExtRef
}

// ExtTable keeps the external symbols in the order their head nodes were
// allocated at finalization, with each symbol's reference list appended in
// encounter order during the second pass.
type ExtTable struct {
	list  []*External
	index map[string]*External
}

// NewExtTable creates an empty external-reference table.
func NewExtTable() *ExtTable {
	return &ExtTable{index: make(map[string]*External)}
}

// Add allocates a head node for an external symbol. Adding an existing
// name is a no-op.
func (et *ExtTable) Add(name string) {
	if _, ok := et.index[name]; ok {
		return
	}
	e := &External{Name: name}
	et.list = append(et.list, e)
	et.index[name] = e
}

// AddRef appends a use site to the named external's reference list.
func (et *ExtTable) AddRef(name string, base, offset uint) {
	e := et.index[name]
	if e == nil {
		et.Add(name)
		e = et.index[name]
	}
	e.Refs = append(e.Refs, ExtRef{Base: base, Offset: offset})
}

// HasRefs reports whether any external symbol was actually referenced.
func (et *ExtTable) HasRefs() bool {
	for _, e := range et.list {
		if len(e.Refs) > 0 {
			return true
		}
	}
	return false
}

// ForEach visits the externals in list order.
func (et *ExtTable) ForEach(fn func(*External)) {
	for _, e := range et.list {
		fn(e)
	}
}
