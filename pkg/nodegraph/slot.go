package nodegraph

import "github.com/matzehuels/objview/pkg/geom"

// SlotKind distinguishes outgoing from incoming slots.
type SlotKind int

const (
	// PlugSlot is the outgoing end of a connection.
	PlugSlot SlotKind = iota
	// SocketSlot is the incoming end of a connection.
	SocketSlot
)

func (k SlotKind) String() string {
	if k == PlugSlot {
		return "plug"
	}
	return "socket"
}

// Slot is a connection endpoint owned by an attribute.
//
// A plug may carry any number of connections to distinct sockets. A socket
// carries at most one.
type Slot struct {
	kind  SlotKind
	attr  *Attribute
	conns []*Connection
}

// Kind returns whether the slot is a plug or a socket.
func (s *Slot) Kind() SlotKind { return s.kind }

// Attribute returns the owning attribute.
func (s *Slot) Attribute() *Attribute { return s.attr }

// Node returns the node owning the slot's attribute.
func (s *Slot) Node() *Node { return s.attr.node }

// DataType returns the data type of the owning attribute.
func (s *Slot) DataType() string { return s.attr.dataType }

// Connections returns the live connections bound to this slot.
func (s *Slot) Connections() []*Connection {
	out := make([]*Connection, len(s.conns))
	copy(out, s.conns)
	return out
}

// Rect returns the slot hit area in scene coordinates. Its side is a quarter
// of the attribute height; plugs straddle the right edge of the node and
// sockets the left edge.
func (s *Slot) Rect() geom.Rect {
	n := s.attr.node
	st := n.graph.style
	side := st.slotSize()
	x := -side / 2
	if s.kind == PlugSlot {
		x = n.Size().W - side/2
	}
	y := st.BaseHeight - st.Radius + st.AttrHeight*3/8 + float64(s.attr.Index())*st.AttrHeight
	return geom.Rect{X: n.pos.X + x, Y: n.pos.Y + y, W: side, H: side}
}

// Anchor returns the center of the slot, where connection paths attach.
func (s *Slot) Anchor() geom.Point { return s.Rect().Center() }

// ConnectedTo reports whether a live connection joins s and other.
func (s *Slot) ConnectedTo(other *Slot) bool {
	for _, c := range s.conns {
		if c.plug == other || c.socket == other {
			return true
		}
	}
	return false
}

// Accepts reports whether a connection may be drawn between s and other.
//
// The slots must be of opposite kinds, belong to different nodes, carry the
// same data type, and not already be connected to each other. A socket that
// already has a connection still accepts; binding evicts the old one.
func (s *Slot) Accepts(other *Slot) bool {
	return s.accepts(other, false)
}

func (s *Slot) accepts(other *Slot, allowSelf bool) bool {
	if other == nil || other.kind == s.kind {
		return false
	}
	if !allowSelf && other.attr.node == s.attr.node {
		return false
	}
	if other.attr.dataType != s.attr.dataType {
		return false
	}
	return !s.ConnectedTo(other)
}

// Connectable reports whether s could complete a connection started at
// source. Editors use it to highlight the slots of the node under the
// pointer while a connection is being drawn.
func (s *Slot) Connectable(source *Slot) bool {
	return source != nil && s.kind != source.kind && s.attr.dataType == source.attr.dataType
}

func (s *Slot) remove(c *Connection) {
	for i, x := range s.conns {
		if x == c {
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			return
		}
	}
}
