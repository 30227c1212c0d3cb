package nodegraph

import (
	"sort"

	"github.com/matzehuels/objview/pkg/geom"
)

// SelectOp combines a set of nodes with the current selection.
type SelectOp int

const (
	SelectReplace SelectOp = iota
	SelectAdd
	SelectSubtract
	SelectToggle
)

// SetSelection updates the selection and emits NodeSelected with the full
// list of selected names when anything changed. Unknown nodes are ignored.
func (g *Graph) SetSelection(nodes []*Node, op SelectOp) {
	in := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		if g.owns(n) {
			in[n] = true
		}
	}
	changed := false
	for _, n := range g.order {
		next := n.selected
		switch op {
		case SelectReplace:
			next = in[n]
		case SelectAdd:
			next = n.selected || in[n]
		case SelectSubtract:
			next = n.selected && !in[n]
		case SelectToggle:
			next = n.selected != in[n]
		}
		if next != n.selected {
			n.selected = next
			changed = true
		}
	}
	if changed {
		g.events.NodeSelected(g.selectedNames())
	}
}

// Selected returns the selected nodes in creation order.
func (g *Graph) Selected() []*Node {
	var out []*Node
	for _, n := range g.order {
		if n.selected {
			out = append(out, n)
		}
	}
	return out
}

func (g *Graph) selectedNames() []string {
	names := []string{}
	for _, n := range g.order {
		if n.selected {
			names = append(names, n.name)
		}
	}
	return names
}

// byZ returns the nodes topmost first.
func (g *Graph) byZ() []*Node {
	out := g.Nodes()
	sort.SliceStable(out, func(i, j int) bool { return out[i].z > out[j].z })
	return out
}

// NodeAt returns the topmost node containing p.
func (g *Graph) NodeAt(p geom.Point) *Node {
	for _, n := range g.byZ() {
		if n.Rect().Contains(p) {
			return n
		}
	}
	return nil
}

// SlotAt returns the slot whose hit area contains p, searching the topmost
// nodes first.
func (g *Graph) SlotAt(p geom.Point) *Slot {
	for _, n := range g.byZ() {
		for _, a := range n.attrs {
			for _, s := range a.slots() {
				if s.Rect().Contains(p) {
					return s
				}
			}
		}
	}
	return nil
}

// ConnectionAt returns the most recently created connection passing within
// tol of p.
func (g *Graph) ConnectionAt(p geom.Point, tol float64) *Connection {
	for i := len(g.conns) - 1; i >= 0; i-- {
		c := g.conns[i]
		path := c.Path()
		b := path.Bounds()
		b = geom.Rect{X: b.X - tol, Y: b.Y - tol, W: b.W + 2*tol, H: b.H + 2*tol}
		if !b.Contains(p) {
			continue
		}
		if path.Distance(p) <= tol {
			return c
		}
	}
	return nil
}

// Item is whatever lies under a point: exactly one field is set, or none.
type Item struct {
	Slot       *Slot
	Node       *Node
	Connection *Connection
}

// Empty reports whether nothing was hit.
func (it Item) Empty() bool {
	return it.Slot == nil && it.Node == nil && it.Connection == nil
}

// ItemAt returns the item under p. Slots win over nodes, and nodes win over
// connections, which are drawn beneath them.
func (g *Graph) ItemAt(p geom.Point, tol float64) Item {
	if s := g.SlotAt(p); s != nil {
		return Item{Slot: s}
	}
	if n := g.NodeAt(p); n != nil {
		return Item{Node: n}
	}
	if c := g.ConnectionAt(p, tol); c != nil {
		return Item{Connection: c}
	}
	return Item{}
}

// NodesIntersecting returns the nodes overlapping r in creation order.
func (g *Graph) NodesIntersecting(r geom.Rect) []*Node {
	r = r.Normalize()
	var out []*Node
	for _, n := range g.order {
		if n.Rect().Intersects(r) {
			out = append(out, n)
		}
	}
	return out
}

// BoundingRect returns the union of the bounds of the given nodes, or of
// every node when nodes is empty. It is the zero Rect for an empty graph.
func (g *Graph) BoundingRect(nodes []*Node) geom.Rect {
	if len(nodes) == 0 {
		nodes = g.order
	}
	var r geom.Rect
	for _, n := range nodes {
		r = r.Union(n.Rect())
	}
	return r
}
