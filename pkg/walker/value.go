package walker

import (
	"fmt"
	"strings"
)

// ValueKind tags the variant held by a [Value].
type ValueKind int

const (
	KindInteger ValueKind = iota
	KindRawBytes
	KindPointer
)

func (k ValueKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindRawBytes:
		return "bytes"
	case KindPointer:
		return "pointer"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is a decoded struct member: an integer of a given width, an opaque
// byte string, or an address.
type Value struct {
	kind  ValueKind
	width int
	n     uint64
	raw   []byte
}

// Integer returns an integer value of width bytes.
func Integer(width int, v uint64) Value { return Value{kind: KindInteger, width: width, n: v} }

// RawBytes returns an opaque value. b is not copied.
func RawBytes(b []byte) Value { return Value{kind: KindRawBytes, width: len(b), raw: b} }

// Pointer returns an address stored in width bytes.
func Pointer(width int, addr uint64) Value { return Value{kind: KindPointer, width: width, n: addr} }

// Kind returns the variant.
func (v Value) Kind() ValueKind { return v.kind }

// Width returns the storage size in bytes.
func (v Value) Width() int { return v.width }

// Uint returns the integer or address. It is zero for raw bytes.
func (v Value) Uint() uint64 { return v.n }

// Bytes returns the raw bytes, or nil for integers and pointers.
func (v Value) Bytes() []byte { return v.raw }

// Address returns the pointed-to address. ok is false unless v is a pointer.
func (v Value) Address() (addr uint64, ok bool) {
	return v.n, v.kind == KindPointer
}

const previewBytes = 8

// String formats integers and pointers as zero padded hex of twice their
// width in digits, and raw bytes as a short hex preview.
func (v Value) String() string {
	if v.kind == KindRawBytes {
		return preview(v.raw)
	}
	return fmt.Sprintf("0x%0*x", v.width*2, v.n)
}

func preview(b []byte) string {
	if len(b) == 0 {
		return "[]"
	}
	n := min(len(b), previewBytes)
	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprintf("%02x", b[i])
	}
	s := "[" + strings.Join(parts, " ")
	if len(b) > n {
		s += " .."
	}
	return s + "]"
}
