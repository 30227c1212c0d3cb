package walker

import (
	"encoding/binary"
	"strings"
)

// Flags describes how a struct member is stored.
type Flags uint32

const (
	FlagByte Flags = 1 << iota
	FlagWord
	FlagDword
	FlagQword
	// FlagOffset marks a member holding an address.
	FlagOffset
	FlagStruct
	FlagEnum
	FlagBitfield
)

// Has reports whether all bits of x are set.
func (f Flags) Has(x Flags) bool { return f&x == x }

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagByte, "byte"},
	{FlagWord, "word"},
	{FlagDword, "dword"},
	{FlagQword, "qword"},
	{FlagOffset, "offset"},
	{FlagStruct, "struct"},
	{FlagEnum, "enum"},
	{FlagBitfield, "bitfield"},
}

// ParseFlags parses a "|" separated list such as "qword|offset".
func ParseFlags(s string) (Flags, bool) {
	var f Flags
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		found := false
		for _, fn := range flagNames {
			if fn.name == part {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return f, true
}

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Member is one member of a struct definition.
type Member struct {
	Offset uint64
	Name   string
	Size   int
	Flags  Flags
	ID     int64
	// Type is the declared C type, e.g. "node_t *". Empty when the member
	// was never typed explicitly.
	Type string
}

// Struct is a struct definition as reported by the target.
type Struct struct {
	Name    string
	Size    uint64
	Union   bool
	Members []Member // ordered by offset
}

// Memory reads the target's address space.
type Memory interface {
	ReadBytes(addr uint64, n int) ([]byte, error)
	IsMapped(addr uint64) bool
}

// Types answers struct metadata queries.
type Types interface {
	// LookupStruct returns the definition of the named struct.
	LookupStruct(name string) (Struct, bool)
	// DeclaredType returns the type declared at an address, if any.
	DeclaredType(addr uint64) (string, bool)
}

// Target is the process memory and type metadata provider.
type Target interface {
	Memory
	Types
}

// Host is the interactive side of the disassembler: the current highlight,
// a text prompt and register values.
type Host interface {
	// Highlighted returns the highlighted text and its kind. ok is false
	// when nothing is highlighted.
	Highlighted() (text string, kind HighlightKind, ok bool)
	// PromptString asks the user for a string, offering def. ok is false if
	// the user cancelled.
	PromptString(def string) (answer string, ok bool)
	// RegisterValue returns the value of a named register.
	RegisterValue(name string) (uint64, error)
	// ResolveAddress evaluates an address expression (hex number or symbol).
	ResolveAddress(expr string) (uint64, error)
}

// HighlightKind tells how to interpret highlighted text.
type HighlightKind int

const (
	HighlightAddress  HighlightKind = 1
	HighlightRegister HighlightKind = 3
)

// Arch is the pointer width and byte order of the target.
type Arch struct {
	Bits      int
	ByteOrder binary.ByteOrder
}

// DefaultArch is a 64-bit little-endian target.
var DefaultArch = Arch{Bits: 64, ByteOrder: binary.LittleEndian}

// PointerSize returns the size of an address in bytes.
func (a Arch) PointerSize() int { return a.Bits / 8 }

// Uint decodes an unsigned integer of 1, 2, 4 or 8 bytes.
func (a Arch) Uint(b []byte) (uint64, bool) {
	order := a.ByteOrder
	if order == nil {
		order = binary.LittleEndian
	}
	switch len(b) {
	case 1:
		return uint64(b[0]), true
	case 2:
		return uint64(order.Uint16(b)), true
	case 4:
		return uint64(order.Uint32(b)), true
	case 8:
		return order.Uint64(b), true
	}
	return 0, false
}
