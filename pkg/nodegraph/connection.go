package nodegraph

import (
	"fmt"
	"math"

	"github.com/matzehuels/objview/pkg/geom"
)

// End names one side of a connection.
type End int

const (
	// PlugEnd is the source side of a connection.
	PlugEnd End = iota
	// SocketEnd is the target side of a connection.
	SocketEnd
)

func (e End) String() string {
	if e == PlugEnd {
		return "plug"
	}
	return "socket"
}

// Connection is a directed edge from a plug to a socket.
//
// Besides the live slot references, a connection keeps the node and
// attribute names of both ends. The graph rewrites them whenever a node or
// attribute is renamed.
//
// A connection returned by [Graph.StartConnection] or [Graph.Detach] is
// pending: exactly one end is bound and the other follows a free point
// until [Graph.FinishConnection] or [Graph.CancelConnection].
type Connection struct {
	plug   *Slot
	socket *Slot

	plugNode, plugAttr     string
	socketNode, socketAttr string

	live bool
	free geom.Point
}

// Plug returns the source slot, or nil while that end is free.
func (c *Connection) Plug() *Slot { return c.plug }

// Socket returns the target slot, or nil while that end is free.
func (c *Connection) Socket() *Slot { return c.socket }

// Live reports whether the connection is part of its graph.
func (c *Connection) Live() bool { return c.live }

// Pending reports whether the connection has a free end.
func (c *Connection) Pending() bool { return c.plug == nil || c.socket == nil }

// Endpoints returns the names of both ends. A free end has empty names.
func (c *Connection) Endpoints() Endpoints {
	return Endpoints{
		PlugNode:   c.plugNode,
		PlugAttr:   c.plugAttr,
		SocketNode: c.socketNode,
		SocketAttr: c.socketAttr,
	}
}

// Source returns "PlugNode.plugAttr".
func (c *Connection) Source() string { return c.plugNode + "." + c.plugAttr }

// Target returns "SocketNode.socketAttr".
func (c *Connection) Target() string { return c.socketNode + "." + c.socketAttr }

func (c *Connection) String() string {
	return fmt.Sprintf("%s -> %s", c.Source(), c.Target())
}

// FreeEnd returns which end is unbound. ok is false for a fully bound
// connection.
func (c *Connection) FreeEnd() (end End, ok bool) {
	switch {
	case c.plug == nil && c.socket != nil:
		return PlugEnd, true
	case c.socket == nil && c.plug != nil:
		return SocketEnd, true
	}
	return 0, false
}

// Anchored returns the bound slot of a pending connection.
func (c *Connection) Anchored() *Slot {
	if c.plug == nil {
		return c.socket
	}
	if c.socket == nil {
		return c.plug
	}
	return nil
}

// MoveFreeEnd sets the position of the free end of a pending connection.
func (c *Connection) MoveFreeEnd(p geom.Point) { c.free = p }

// Point returns the scene position of the given end.
func (c *Connection) Point(e End) geom.Point {
	s := c.plug
	if e == SocketEnd {
		s = c.socket
	}
	if s == nil {
		return c.free
	}
	return s.Anchor()
}

// Nearest returns the end closest to p by manhattan distance. Ties go to
// the plug end.
func (c *Connection) Nearest(p geom.Point) End {
	dPlug := p.Sub(c.Point(PlugEnd)).ManhattanLength()
	dSocket := p.Sub(c.Point(SocketEnd)).ManhattanLength()
	if dSocket < dPlug {
		return SocketEnd
	}
	return PlugEnd
}

// Path returns the curve drawn from the plug end to the socket end.
func (c *Connection) Path() Path {
	return NewPath(c.Point(PlugEnd), c.Point(SocketEnd))
}

func (c *Connection) bindNames() {
	if c.plug != nil {
		c.plugNode, c.plugAttr = c.plug.attr.node.name, c.plug.attr.name
	} else {
		c.plugNode, c.plugAttr = "", ""
	}
	if c.socket != nil {
		c.socketNode, c.socketAttr = c.socket.attr.node.name, c.socket.attr.name
	} else {
		c.socketNode, c.socketAttr = "", ""
	}
}

// Path is a cubic Bezier curve. Connections bend horizontally: both control
// points sit on the vertical line halfway between the ends.
type Path struct {
	Start, Ctrl1, Ctrl2, End geom.Point
}

// NewPath returns the connection curve from s to t.
func NewPath(s, t geom.Point) Path {
	dx := (t.X - s.X) * 0.5
	return Path{
		Start: s,
		Ctrl1: geom.Pt(s.X+dx, s.Y),
		Ctrl2: geom.Pt(s.X+dx, t.Y),
		End:   t,
	}
}

// At evaluates the curve at t in [0, 1].
func (p Path) At(t float64) geom.Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return geom.Pt(
		a*p.Start.X+b*p.Ctrl1.X+c*p.Ctrl2.X+d*p.End.X,
		a*p.Start.Y+b*p.Ctrl1.Y+c*p.Ctrl2.Y+d*p.End.Y,
	)
}

const pathSegments = 32

// Distance approximates the shortest distance from q to the curve by
// flattening it into line segments.
func (p Path) Distance(q geom.Point) float64 {
	best := math.Inf(1)
	prev := p.Start
	for i := 1; i <= pathSegments; i++ {
		cur := p.At(float64(i) / pathSegments)
		best = math.Min(best, segmentDistance(q, prev, cur))
		prev = cur
	}
	return best
}

// Bounds returns the bounding box of the control polygon, which contains
// the curve.
func (p Path) Bounds() geom.Rect {
	minX := math.Min(math.Min(p.Start.X, p.Ctrl1.X), math.Min(p.Ctrl2.X, p.End.X))
	minY := math.Min(math.Min(p.Start.Y, p.Ctrl1.Y), math.Min(p.Ctrl2.Y, p.End.Y))
	maxX := math.Max(math.Max(p.Start.X, p.Ctrl1.X), math.Max(p.Ctrl2.X, p.End.X))
	maxY := math.Max(math.Max(p.Start.Y, p.Ctrl1.Y), math.Max(p.Ctrl2.Y, p.End.Y))
	return geom.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func segmentDistance(q, a, b geom.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return math.Hypot(q.X-a.X, q.Y-a.Y)
	}
	t := ((q.X-a.X)*ab.X + (q.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	proj := a.Add(ab.Scale(t))
	return math.Hypot(q.X-proj.X, q.Y-proj.Y)
}
