// Package walkertest provides an in-memory walker.Target and walker.Host
// for tests.
package walkertest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/objview/pkg/walker"
)

type segment struct {
	start uint64
	data  []byte
}

// Target is a sparse address space with struct definitions. The zero value
// is not usable; call [New].
type Target struct {
	Arch     walker.Arch
	segments []*segment
	structs  map[string]walker.Struct
	declared map[uint64]string
}

// New returns an empty 64-bit little-endian target.
func New() *Target {
	return &Target{
		Arch:     walker.DefaultArch,
		structs:  make(map[string]walker.Struct),
		declared: make(map[uint64]string),
	}
}

// Map adds a zero-filled segment of n bytes at addr.
func (t *Target) Map(addr uint64, n int) *Target {
	t.segments = append(t.segments, &segment{start: addr, data: make([]byte, n)})
	return t
}

// Define registers a struct definition.
func (t *Target) Define(s walker.Struct) *Target {
	t.structs[s.Name] = s
	return t
}

// Declare records the type declared at addr.
func (t *Target) Declare(addr uint64, typeName string) *Target {
	t.declared[addr] = typeName
	return t
}

// PutUint stores v as a size-byte integer at addr. It panics if addr is not
// mapped, which is always a bug in the test.
func (t *Target) PutUint(addr uint64, size int, v uint64) *Target {
	seg, off := t.locate(addr, size)
	if seg == nil {
		panic(fmt.Sprintf("walkertest: %#x+%d not mapped", addr, size))
	}
	b := seg.data[off : off+uint64(size)]
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		t.Arch.ByteOrder.PutUint16(b, uint16(v))
	case 4:
		t.Arch.ByteOrder.PutUint32(b, uint32(v))
	case 8:
		t.Arch.ByteOrder.PutUint64(b, v)
	default:
		panic(fmt.Sprintf("walkertest: bad integer size %d", size))
	}
	return t
}

// PutBytes copies b to addr.
func (t *Target) PutBytes(addr uint64, b []byte) *Target {
	seg, off := t.locate(addr, len(b))
	if seg == nil {
		panic(fmt.Sprintf("walkertest: %#x+%d not mapped", addr, len(b)))
	}
	copy(seg.data[off:], b)
	return t
}

func (t *Target) locate(addr uint64, n int) (*segment, uint64) {
	for _, s := range t.segments {
		if addr >= s.start && addr-s.start+uint64(n) <= uint64(len(s.data)) {
			return s, addr - s.start
		}
	}
	return nil, 0
}

// ReadBytes implements walker.Memory.
func (t *Target) ReadBytes(addr uint64, n int) ([]byte, error) {
	seg, off := t.locate(addr, n)
	if seg == nil {
		return nil, fmt.Errorf("%#x+%d not mapped", addr, n)
	}
	out := make([]byte, n)
	copy(out, seg.data[off:])
	return out, nil
}

// IsMapped implements walker.Memory.
func (t *Target) IsMapped(addr uint64) bool {
	seg, _ := t.locate(addr, 1)
	return seg != nil
}

// LookupStruct implements walker.Types.
func (t *Target) LookupStruct(name string) (walker.Struct, bool) {
	s, ok := t.structs[name]
	return s, ok
}

// DeclaredType implements walker.Types.
func (t *Target) DeclaredType(addr uint64) (string, bool) {
	s, ok := t.declared[addr]
	return s, ok
}

// Host is a scripted walker.Host.
type Host struct {
	Text      string
	Kind      walker.HighlightKind
	Registers map[string]uint64
	Symbols   map[string]uint64
	// Answer is returned by PromptString unless Cancel is set.
	Answer string
	Cancel bool
	// Prompts records every default offered to PromptString.
	Prompts []string
}

// Highlighted implements walker.Host.
func (h *Host) Highlighted() (string, walker.HighlightKind, bool) {
	return h.Text, h.Kind, h.Text != ""
}

// PromptString implements walker.Host.
func (h *Host) PromptString(def string) (string, bool) {
	h.Prompts = append(h.Prompts, def)
	if h.Cancel {
		return "", false
	}
	return h.Answer, true
}

// RegisterValue implements walker.Host.
func (h *Host) RegisterValue(name string) (uint64, error) {
	v, ok := h.Registers[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown register %q", name)
	}
	return v, nil
}

// ResolveAddress implements walker.Host.
func (h *Host) ResolveAddress(expr string) (uint64, error) {
	if v, ok := h.Symbols[expr]; ok {
		return v, nil
	}
	return strconv.ParseUint(strings.TrimPrefix(strings.ToLower(expr), "0x"), 16, 64)
}

var (
	_ walker.Target = (*Target)(nil)
	_ walker.Host   = (*Host)(nil)
)
