package nodegraph

import (
	"math"

	"github.com/matzehuels/objview/pkg/geom"
)

// Node is a named box holding an ordered list of attributes.
//
// Nodes are created by [Graph.CreateNode] and stay valid until they are
// deleted or the graph is cleared. The attribute order defines both the
// visual row of each attribute and the anchor of its slots.
type Node struct {
	graph    *Graph
	name     string
	preset   string
	pos      geom.Point
	attrs    []*Attribute
	plugs    map[string]*Slot
	sockets  map[string]*Slot
	selected bool
	z        int
}

// Name returns the node's unique name.
func (n *Node) Name() string { return n.name }

// Preset returns the graphical preset the node was created with.
func (n *Node) Preset() string { return n.preset }

// Pos returns the top-left corner of the node in scene coordinates.
func (n *Node) Pos() geom.Point { return n.pos }

// Selected reports whether the node is part of the current selection.
func (n *Node) Selected() bool { return n.selected }

// Z returns the stacking order. Higher values are drawn and hit-tested first.
func (n *Node) Z() int { return n.z }

// Len returns the number of attributes.
func (n *Node) Len() int { return len(n.attrs) }

// Attributes returns the attributes in display order.
func (n *Node) Attributes() []*Attribute {
	out := make([]*Attribute, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// AttributeAt returns the attribute at index i, or nil if out of range.
func (n *Node) AttributeAt(i int) *Attribute {
	if i < 0 || i >= len(n.attrs) {
		return nil
	}
	return n.attrs[i]
}

// Attribute returns the attribute with the given name.
func (n *Node) Attribute(name string) (*Attribute, bool) {
	i := n.indexOf(name)
	if i < 0 {
		return nil, false
	}
	return n.attrs[i], true
}

// Plug returns the plug of the named attribute, if it has one.
func (n *Node) Plug(attr string) (*Slot, bool) {
	s, ok := n.plugs[attr]
	return s, ok
}

// Socket returns the socket of the named attribute, if it has one.
func (n *Node) Socket(attr string) (*Slot, bool) {
	s, ok := n.sockets[attr]
	return s, ok
}

// Size returns the node size derived from its attributes and the graph style.
//
// A node without attributes is BaseWidth x BaseHeight. Otherwise the height
// grows by one AttrHeight per attribute plus the border and half the corner
// radius, and the width widens to fit the longest attribute label.
func (n *Node) Size() geom.Size {
	st := n.graph.style
	h := st.BaseHeight
	if len(n.attrs) > 0 {
		h = st.BaseHeight + st.AttrHeight*float64(len(n.attrs)) + st.Border + 0.5*st.Radius
	}
	w := st.BaseWidth
	for _, a := range n.attrs {
		w = math.Max(w, st.measure(a.name)+2*st.Radius+st.Border)
	}
	return geom.Size{W: w, H: h}
}

// Rect returns the node bounds in scene coordinates.
func (n *Node) Rect() geom.Rect {
	sz := n.Size()
	return geom.Rect{X: n.pos.X, Y: n.pos.Y, W: sz.W, H: sz.H}
}

// Connections returns every connection touching one of the node's slots,
// in attribute order, plugs before sockets.
func (n *Node) Connections() []*Connection {
	var out []*Connection
	for _, a := range n.attrs {
		for _, s := range a.slots() {
			out = append(out, s.conns...)
		}
	}
	return out
}

func (n *Node) indexOf(name string) int {
	for i, a := range n.attrs {
		if a.name == name {
			return i
		}
	}
	return -1
}

// Attribute is a named field of a node.
type Attribute struct {
	node     *Node
	name     string
	preset   string
	dataType string
	plug     *Slot
	socket   *Slot
}

// Name returns the attribute name, unique within its node.
func (a *Attribute) Name() string { return a.name }

// Preset returns the graphical preset the attribute was created with.
func (a *Attribute) Preset() string { return a.preset }

// DataType returns the tag compared when connecting slots.
func (a *Attribute) DataType() string { return a.dataType }

// Node returns the owning node.
func (a *Attribute) Node() *Node { return a.node }

// Plug returns the outgoing slot, or nil.
func (a *Attribute) Plug() *Slot { return a.plug }

// Socket returns the incoming slot, or nil.
func (a *Attribute) Socket() *Slot { return a.socket }

// Index returns the attribute's position within its node, or -1 once the
// attribute has been deleted.
func (a *Attribute) Index() int {
	for i, x := range a.node.attrs {
		if x == a {
			return i
		}
	}
	return -1
}

func (a *Attribute) slots() []*Slot {
	out := make([]*Slot, 0, 2)
	if a.plug != nil {
		out = append(out, a.plug)
	}
	if a.socket != nil {
		out = append(out, a.socket)
	}
	return out
}
