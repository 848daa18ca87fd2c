package parser

import (
	"fmt"
	"strings"
)

// Macro is a named, parameter-less block of source lines. Start and End
// are byte offsets into the original source: the half-open range of the
// definition body, exclusive of the macr and endmacr delimiter lines.
type Macro struct {
	Name  string
	Start int
	End   int
}

// MacroTable is a closed-addressing hash table of macro definitions,
// sharing the bucket layout of the symbol table. The macro name space and
// the symbol name space are disjoint by construction: macros live in their
// own table and macro invocations never survive into the expanded source.
type MacroTable struct {
	buckets [HashSize][]*Macro
}

// NewMacroTable creates an empty macro table.
func NewMacroTable() *MacroTable {
	return &MacroTable{}
}

// Lookup returns the macro with the given name, or nil.
func (mt *MacroTable) Lookup(name string) *Macro {
	for _, m := range mt.buckets[hashName(name)] {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Add installs a macro definition. A duplicate name yields
// ErrMacroNameInUse.
func (mt *MacroTable) Add(name string, start, end int) ErrorKind {
	if mt.Lookup(name) != nil {
		return ErrMacroNameInUse
	}
	i := hashName(name)
	mt.buckets[i] = append(mt.buckets[i], &Macro{Name: name, Start: start, End: end})
	return ErrNone
}

// Len returns the number of macros in the table.
func (mt *MacroTable) Len() int {
	n := 0
	for i := 0; i < HashSize; i++ {
		n += len(mt.buckets[i])
	}
	return n
}

// ForEach visits every macro in table-iteration order.
func (mt *MacroTable) ForEach(fn func(*Macro)) {
	for i := 0; i < HashSize; i++ {
		for _, m := range mt.buckets[i] {
			fn(m)
		}
	}
}

// Dump renders the macro table in a readable aligned format.
func (mt *MacroTable) Dump() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-32s %-6s %s\n", "Name", "Start", "End"))
	mt.ForEach(func(m *Macro) {
		sb.WriteString(fmt.Sprintf("%-32s %-6d %d\n", m.Name, m.Start, m.End))
	})
	return sb.String()
}
