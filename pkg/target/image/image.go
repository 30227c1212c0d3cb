// Package image provides a walker target backed by a YAML memory image.
//
// An image describes a snapshot of a process: mapped segments, struct
// definitions, the types declared at some addresses, registers, symbols and
// the text the user had highlighted. It stands in for a live debugger when
// walking objects from the command line or in tests.
//
// # Format
//
//	arch: {bits: 64, endian: little}
//	segments:
//	  - {name: heap, start: 0x1000, size: 0x40}
//	  - {name: data, start: 0x2000, data: "de ad be ef"}
//	structs:
//	  - name: list
//	    size: 16
//	    members:
//	      - {offset: 0, name: next, size: 8, flags: qword|offset, type: "struct list *"}
//	      - {offset: 8, name: value, size: 4, flags: dword}
//	types: {0x1000: struct list}
//	values:
//	  - {address: 0x1000, value: 0x1010}
//	  - {address: 0x1008, size: 4, value: 7}
//	registers: {rdi: 0x1000}
//	symbols: {head: 0x1000}
//	highlight: {text: rdi, kind: register}
//
// Segment data is hex, whitespace is ignored. A value without a size is
// written with the pointer size.
package image

import (
	"encoding/binary"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/walker"
)

// =============================================================================
// File format
// =============================================================================

// File is the YAML document.
type File struct {
	Arch      ArchSpec          `yaml:"arch"`
	Segments  []SegmentSpec     `yaml:"segments" validate:"dive"`
	Structs   []StructSpec      `yaml:"structs" validate:"dive"`
	Types     map[uint64]string `yaml:"types"`
	Values    []ValueSpec       `yaml:"values" validate:"dive"`
	Registers map[string]uint64 `yaml:"registers"`
	Symbols   map[string]uint64 `yaml:"symbols"`
	Highlight HighlightSpec     `yaml:"highlight"`
}

// ArchSpec selects the pointer width and byte order. Zero values mean
// 64-bit little endian.
type ArchSpec struct {
	Bits   int    `yaml:"bits" validate:"omitempty,oneof=16 32 64"`
	Endian string `yaml:"endian" validate:"omitempty,oneof=little big"`
}

// SegmentSpec is one mapped range. Size defaults to the data length.
type SegmentSpec struct {
	Name  string `yaml:"name"`
	Start uint64 `yaml:"start"`
	Size  int    `yaml:"size" validate:"gte=0"`
	Data  string `yaml:"data"`
}

// StructSpec is a struct definition.
type StructSpec struct {
	Name    string       `yaml:"name" validate:"required"`
	Size    uint64       `yaml:"size"`
	Union   bool         `yaml:"union"`
	Members []MemberSpec `yaml:"members" validate:"dive"`
}

// MemberSpec is one struct member. Flags is a "|" separated list of byte,
// word, dword, qword, offset, struct, enum and bitfield.
type MemberSpec struct {
	Offset uint64 `yaml:"offset"`
	Name   string `yaml:"name" validate:"required"`
	Size   int    `yaml:"size" validate:"gt=0"`
	Flags  string `yaml:"flags"`
	ID     int64  `yaml:"id"`
	Type   string `yaml:"type"`
}

// ValueSpec writes an integer into a segment.
type ValueSpec struct {
	Address uint64 `yaml:"address"`
	Size    int    `yaml:"size" validate:"omitempty,oneof=1 2 4 8"`
	Value   uint64 `yaml:"value"`
}

// HighlightSpec is the highlighted text. Kind is "address" (default) or
// "register".
type HighlightSpec struct {
	Text string `yaml:"text"`
	Kind string `yaml:"kind" validate:"omitempty,oneof=address register"`
}

// =============================================================================
// Image
// =============================================================================

// Image is a loaded memory image. It implements [walker.Target] and
// [walker.Host].
type Image struct {
	arch      walker.Arch
	segments  []segment // sorted by start
	structs   map[string]walker.Struct
	types     map[uint64]string
	registers map[string]uint64
	symbols   map[string]uint64
	highlight HighlightSpec

	// Prompt answers PromptString. When nil the default is accepted.
	Prompt func(def string) (string, bool)
}

type segment struct {
	name  string
	start uint64
	data  []byte
}

func (s segment) end() uint64 { return s.start + uint64(len(s.data)) }

// SegmentInfo describes a mapped range.
type SegmentInfo struct {
	Name  string `json:"name"`
	Start uint64 `json:"start"`
	Size  int    `json:"size"`
}

var validate = validator.New()

// Load reads an image from a YAML file.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "read %s", path)
	}
	return Parse(data)
}

// Parse decodes and checks a YAML image.
func Parse(data []byte) (*Image, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "parse image")
	}
	return New(f)
}

// New builds an image from a decoded file.
func New(f File) (*Image, error) {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidImage, "%s: failed %q constraint", verrs[0].Namespace(), verrs[0].Tag())
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "validate image")
	}

	img := &Image{
		arch:      archOf(f.Arch),
		structs:   make(map[string]walker.Struct, len(f.Structs)),
		types:     make(map[uint64]string, len(f.Types)),
		registers: make(map[string]uint64, len(f.Registers)),
		symbols:   f.Symbols,
		highlight: f.Highlight,
	}
	if img.symbols == nil {
		img.symbols = map[string]uint64{}
	}
	for addr, t := range f.Types {
		img.types[addr] = walker.NormalizeType(t)
	}
	for name, v := range f.Registers {
		img.registers[strings.ToLower(name)] = v
	}
	if err := img.addSegments(f.Segments); err != nil {
		return nil, err
	}
	if err := img.addStructs(f.Structs); err != nil {
		return nil, err
	}
	for _, v := range f.Values {
		if err := img.put(v); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func archOf(a ArchSpec) walker.Arch {
	arch := walker.DefaultArch
	if a.Bits != 0 {
		arch.Bits = a.Bits
	}
	if a.Endian == "big" {
		arch.ByteOrder = binary.BigEndian
	}
	return arch
}

func (img *Image) addSegments(specs []SegmentSpec) error {
	for i, s := range specs {
		raw, err := hex.DecodeString(strings.Join(strings.Fields(s.Data), ""))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidImage, err, "segment %d data", i)
		}
		size := s.Size
		if size == 0 {
			size = len(raw)
		}
		if len(raw) > size {
			return errors.New(errors.ErrCodeInvalidImage, "segment %d: %d data bytes exceed size %d", i, len(raw), size)
		}
		if size == 0 {
			return errors.New(errors.ErrCodeInvalidImage, "segment %d is empty", i)
		}
		buf := make([]byte, size)
		copy(buf, raw)
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("seg%d", i)
		}
		img.segments = append(img.segments, segment{name: name, start: s.Start, data: buf})
	}
	sort.Slice(img.segments, func(i, j int) bool { return img.segments[i].start < img.segments[j].start })
	for i := 1; i < len(img.segments); i++ {
		prev, cur := img.segments[i-1], img.segments[i]
		if cur.start < prev.end() {
			return errors.New(errors.ErrCodeInvalidImage, "segments %s and %s overlap", prev.name, cur.name)
		}
	}
	return nil
}

func (img *Image) addStructs(specs []StructSpec) error {
	for _, s := range specs {
		name := walker.NormalizeType(s.Name)
		if _, dup := img.structs[name]; dup {
			return errors.New(errors.ErrCodeInvalidImage, "struct %q defined twice", name)
		}
		def := walker.Struct{Name: name, Size: s.Size, Union: s.Union}
		for _, m := range s.Members {
			flags, ok := walker.ParseFlags(m.Flags)
			if !ok {
				return errors.New(errors.ErrCodeInvalidImage, "%s.%s: bad flags %q", name, m.Name, m.Flags)
			}
			def.Members = append(def.Members, walker.Member{
				Offset: m.Offset,
				Name:   m.Name,
				Size:   m.Size,
				Flags:  flags,
				ID:     m.ID,
				Type:   m.Type,
			})
		}
		sort.SliceStable(def.Members, func(i, j int) bool { return def.Members[i].Offset < def.Members[j].Offset })
		if def.Size == 0 && len(def.Members) > 0 {
			last := def.Members[len(def.Members)-1]
			def.Size = last.Offset + uint64(last.Size)
		}
		img.structs[name] = def
	}
	return nil
}

func (img *Image) put(v ValueSpec) error {
	size := v.Size
	if size == 0 {
		size = img.arch.PointerSize()
	}
	seg, off := img.locate(v.Address, size)
	if seg == nil {
		return errors.New(errors.ErrCodeInvalidImage, "value at %#x is not mapped", v.Address)
	}
	b := seg.data[off : off+uint64(size)]
	order := img.arch.ByteOrder
	switch size {
	case 1:
		b[0] = byte(v.Value)
	case 2:
		order.PutUint16(b, uint16(v.Value))
	case 4:
		order.PutUint32(b, uint32(v.Value))
	case 8:
		order.PutUint64(b, v.Value)
	default:
		return errors.New(errors.ErrCodeInvalidImage, "value at %#x: unsupported size %d", v.Address, size)
	}
	return nil
}

// locate returns the segment holding [addr, addr+n) and the offset of addr.
func (img *Image) locate(addr uint64, n int) (*segment, uint64) {
	i := sort.Search(len(img.segments), func(i int) bool { return img.segments[i].end() > addr })
	if i == len(img.segments) {
		return nil, 0
	}
	s := &img.segments[i]
	if addr < s.start || addr+uint64(n) > s.end() {
		return nil, 0
	}
	return s, addr - s.start
}

// Arch returns the image architecture.
func (img *Image) Arch() walker.Arch { return img.arch }

// Segments lists the mapped ranges in address order.
func (img *Image) Segments() []SegmentInfo {
	out := make([]SegmentInfo, len(img.segments))
	for i, s := range img.segments {
		out[i] = SegmentInfo{Name: s.name, Start: s.start, Size: len(s.data)}
	}
	return out
}

// StructNames returns the defined struct names, sorted.
func (img *Image) StructNames() []string {
	out := make([]string, 0, len(img.structs))
	for name := range img.structs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SetHighlight replaces the highlighted text.
func (img *Image) SetHighlight(text string, kind walker.HighlightKind) {
	img.highlight.Text = text
	img.highlight.Kind = "address"
	if kind == walker.HighlightRegister {
		img.highlight.Kind = "register"
	}
}

// =============================================================================
// walker.Target
// =============================================================================

// ReadBytes implements [walker.Memory].
func (img *Image) ReadBytes(addr uint64, n int) ([]byte, error) {
	seg, off := img.locate(addr, n)
	if seg == nil {
		return nil, errors.New(errors.ErrCodeInvalidAddress, "read %d bytes at %#x: not mapped", n, addr)
	}
	out := make([]byte, n)
	copy(out, seg.data[off:])
	return out, nil
}

// IsMapped implements [walker.Memory].
func (img *Image) IsMapped(addr uint64) bool {
	seg, _ := img.locate(addr, 1)
	return seg != nil
}

// LookupStruct implements [walker.Types].
func (img *Image) LookupStruct(name string) (walker.Struct, bool) {
	s, ok := img.structs[walker.NormalizeType(name)]
	return s, ok
}

// DeclaredType implements [walker.Types].
func (img *Image) DeclaredType(addr uint64) (string, bool) {
	t, ok := img.types[addr]
	return t, ok
}

// =============================================================================
// walker.Host
// =============================================================================

// Highlighted implements [walker.Host].
func (img *Image) Highlighted() (string, walker.HighlightKind, bool) {
	kind := walker.HighlightAddress
	if img.highlight.Kind == "register" {
		kind = walker.HighlightRegister
	}
	return img.highlight.Text, kind, img.highlight.Text != ""
}

// PromptString implements [walker.Host].
func (img *Image) PromptString(def string) (string, bool) {
	if img.Prompt == nil {
		return def, true
	}
	return img.Prompt(def)
}

// RegisterValue implements [walker.Host].
func (img *Image) RegisterValue(name string) (uint64, error) {
	v, ok := img.registers[strings.ToLower(name)]
	if !ok {
		return 0, errors.New(errors.ErrCodeNotFound, "unknown register %q", name)
	}
	return v, nil
}

// ResolveAddress implements [walker.Host]. expr is a symbol or a hex
// number with an optional 0x prefix.
func (img *Image) ResolveAddress(expr string) (uint64, error) {
	expr = strings.TrimSpace(expr)
	if v, ok := img.symbols[expr]; ok {
		return v, nil
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(expr, "0x"), "0X")
	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidAddress, "cannot resolve %q", expr)
	}
	return v, nil
}

var (
	_ walker.Target = (*Image)(nil)
	_ walker.Host   = (*Image)(nil)
)
