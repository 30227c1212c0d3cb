package walker

import (
	"fmt"
	"sort"

	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/layout"
	"github.com/matzehuels/objview/pkg/nodegraph"
)

// Object is one discovered struct instance.
type Object struct {
	Address uint64
	Type    string
	Size    uint64
	Fields  []*Field
	Depth   int

	node     *nodegraph.Node
	parent   *Field
	span     uint64
	children []*Object
}

// Name returns the node name, "type@0xaddr".
func (o *Object) Name() string { return fmt.Sprintf("%s@%#x", o.Type, o.Address) }

// Node returns the graph node backing the object.
func (o *Object) Node() *nodegraph.Node { return o.node }

// Parent returns the field whose pointer discovered the object, or nil for
// the root.
func (o *Object) Parent() *Field { return o.parent }

// Children returns the objects this object discovered, in field order.
func (o *Object) Children() []*Object { return o.children }

// Contains reports whether addr lies inside the range claimed by o.
func (o *Object) Contains(addr uint64) bool {
	return addr >= o.Address && addr-o.Address < o.span
}

// FieldAt returns the field starting at addr. Failing that it returns the
// field whose storage covers addr, and failing that the first field.
func (o *Object) FieldAt(addr uint64) *Field {
	var covering *Field
	for _, f := range o.Fields {
		if f.Address() == addr {
			return f
		}
		if covering == nil && addr >= f.Address() && addr-f.Address() < uint64(max(f.Size, 1)) {
			covering = f
		}
	}
	if covering != nil {
		return covering
	}
	if len(o.Fields) == 0 {
		return nil
	}
	return o.Fields[0]
}

// bottom returns the lowest y reached by the object's node or anything it
// discovered.
func (o *Object) bottom() float64 {
	bounds := func(x *Object) geom.Rect { return x.node.Rect() }
	children := func(x *Object) []*Object { return x.children }
	return layout.BottomExtent(o, bounds, children)
}

// Field is one member of a discovered object.
type Field struct {
	Object *Object
	Offset uint64
	Name   string
	Size   int
	Flags  Flags
	ID     int64
	// Type is the normalized declared type, or empty.
	Type  string
	Value Value

	target *Field
	valid  bool
}

// Address returns the absolute address of the field.
func (f *Field) Address() uint64 { return f.Object.Address + f.Offset }

// Label returns the attribute name, e.g. "next  0x0000000000001000".
func (f *Field) Label() string { return f.Name + "  " + f.Value.String() }

// IsPointer reports whether the field holds an address.
func (f *Field) IsPointer() bool { return f.Value.Kind() == KindPointer }

// ValidPointer reports whether the field holds an address mapped in the
// target.
func (f *Field) ValidPointer() bool { return f.valid }

// Target returns the field this field's pointer was connected to, or nil.
func (f *Field) Target() *Field { return f.target }

// arena stores objects ordered by address.
type arena struct {
	objects []*Object // by address
	order   []*Object // by discovery
}

// find returns the object whose range contains addr.
func (a *arena) find(addr uint64) *Object {
	i := sort.Search(len(a.objects), func(i int) bool { return a.objects[i].Address > addr })
	if i == 0 {
		return nil
	}
	if o := a.objects[i-1]; o.Contains(addr) {
		return o
	}
	return nil
}

// insert adds o, clamping its range so it never overlaps an object that
// starts inside it. The caller guarantees o.Address is not already covered.
func (a *arena) insert(o *Object) {
	o.span = max(o.Size, 1)
	i := sort.Search(len(a.objects), func(i int) bool { return a.objects[i].Address > o.Address })
	if i < len(a.objects) {
		if next := a.objects[i].Address; next-o.Address < o.span {
			o.span = next - o.Address
		}
	}
	a.objects = append(a.objects, nil)
	copy(a.objects[i+1:], a.objects[i:])
	a.objects[i] = o
	a.order = append(a.order, o)
}
