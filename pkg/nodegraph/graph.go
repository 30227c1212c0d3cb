package nodegraph

import (
	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/geom"
)

// Graph owns nodes, attributes, slots and connections.
type Graph struct {
	style  Style
	events Events

	nodes map[string]*Node
	order []*Node
	conns []*Connection
	zTop  int
}

// Option configures a [Graph].
type Option func(*Graph)

// WithStyle sets the dimensions used to derive node geometry.
func WithStyle(s Style) Option {
	return func(g *Graph) { g.style = s }
}

// WithEvents sets the listener notified of every graph change.
func WithEvents(e Events) Option {
	return func(g *Graph) {
		if e != nil {
			g.events = e
		}
	}
}

// New returns an empty graph using [DefaultStyle] and no listener.
func New(opts ...Option) *Graph {
	g := &Graph{
		style:  DefaultStyle(),
		events: NoopEvents{},
		nodes:  make(map[string]*Node),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Style returns the geometry settings.
func (g *Graph) Style() Style { return g.style }

// Events returns the listener. It is never nil.
func (g *Graph) Events() Events { return g.events }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Nodes returns the nodes in creation order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	copy(out, g.order)
	return out
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Connections returns the live connections in creation order.
func (g *Graph) Connections() []*Connection {
	out := make([]*Connection, len(g.conns))
	copy(out, g.conns)
	return out
}

// owns reports whether n is a live node of g.
func (g *Graph) owns(n *Node) bool {
	return n != nil && n.graph == g && g.nodes[n.name] == n
}

func (g *Graph) check(n *Node) error {
	if g.owns(n) {
		return nil
	}
	if n == nil {
		return unknownNode("<nil>")
	}
	return unknownNode(n.name)
}

// =============================================================================
// Nodes
// =============================================================================

// CreateNode adds a node at pos. The caller chooses the position; editors
// typically pass the viewport center.
func (g *Graph) CreateNode(name, preset string, pos geom.Point) (*Node, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	if _, ok := g.nodes[name]; ok {
		return nil, duplicateName(name)
	}
	g.zTop++
	n := &Node{
		graph:   g,
		name:    name,
		preset:  preset,
		pos:     pos,
		plugs:   make(map[string]*Slot),
		sockets: make(map[string]*Slot),
		z:       g.zTop,
	}
	g.nodes[name] = n
	g.order = append(g.order, n)
	g.events.NodeCreated(name)
	return n, nil
}

// DeleteNode removes n and every connection touching its attributes.
func (g *Graph) DeleteNode(n *Node) error {
	return g.DeleteNodes([]*Node{n})
}

// DeleteNodes removes several nodes at once and emits a single NodeDeleted
// event listing them. Nothing is removed if any node is unknown.
func (g *Graph) DeleteNodes(nodes []*Node) error {
	for _, n := range nodes {
		if err := g.check(n); err != nil {
			return err
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	names := make([]string, 0, len(nodes))
	wasSelected := false
	for _, n := range nodes {
		if !g.owns(n) {
			// listed twice
			continue
		}
		for _, a := range n.attrs {
			g.disconnectAttribute(a)
		}
		wasSelected = wasSelected || n.selected
		delete(g.nodes, n.name)
		g.order = removeNode(g.order, n)
		names = append(names, n.name)
	}
	g.events.NodeDeleted(names)
	if wasSelected {
		g.events.NodeSelected(g.selectedNames())
	}
	return nil
}

// EditNode renames n. An empty newName, or the current name, is a no-op.
// Every connection touching n keeps its slots and has its node names
// rewritten.
func (g *Graph) EditNode(n *Node, newName string) error {
	if err := g.check(n); err != nil {
		return err
	}
	if newName == "" || newName == n.name {
		return nil
	}
	if err := errors.ValidateName(newName); err != nil {
		return err
	}
	if _, ok := g.nodes[newName]; ok {
		return duplicateName(newName)
	}
	old := n.name
	delete(g.nodes, old)
	n.name = newName
	g.nodes[newName] = n
	for _, a := range n.attrs {
		for _, s := range a.slots() {
			for _, c := range s.conns {
				if c.plug == s {
					c.plugNode = newName
				}
				if c.socket == s {
					c.socketNode = newName
				}
			}
		}
	}
	g.events.NodeEdited(old, newName)
	return nil
}

// MoveNode sets the top-left corner of n. Slot anchors and connection paths
// follow automatically.
func (g *Graph) MoveNode(n *Node, pos geom.Point) error {
	if err := g.check(n); err != nil {
		return err
	}
	n.pos = pos
	return nil
}

// Raise puts n above every other node.
func (g *Graph) Raise(n *Node) error {
	if err := g.check(n); err != nil {
		return err
	}
	if n.z == g.zTop {
		return nil
	}
	g.zTop++
	n.z = g.zTop
	return nil
}

// =============================================================================
// Graph-wide operations
// =============================================================================

// EdgeData is one connection as returned by [Graph.Evaluate].
type EdgeData struct {
	Source string `json:"source"` // "PlugNode.plugAttr"
	Target string `json:"target"` // "SocketNode.socketAttr"
}

// Evaluate returns every live connection as a (source, target) pair in
// creation order.
func (g *Graph) Evaluate() []EdgeData {
	out := make([]EdgeData, 0, len(g.conns))
	for _, c := range g.conns {
		out = append(out, EdgeData{Source: c.Source(), Target: c.Target()})
	}
	g.events.GraphEvaluated()
	return out
}

// Clear removes every node, attribute and connection.
func (g *Graph) Clear() {
	for _, c := range g.conns {
		c.live = false
	}
	g.nodes = make(map[string]*Node)
	g.order = nil
	g.conns = nil
	g.zTop = 0
	g.events.GraphCleared()
}

// MarkSaved notifies listeners that the graph was written somewhere.
func (g *Graph) MarkSaved() { g.events.GraphSaved() }

// MarkLoaded notifies listeners that the graph was populated from a source.
func (g *Graph) MarkLoaded() { g.events.GraphLoaded() }

func removeNode(s []*Node, n *Node) []*Node {
	for i, x := range s {
		if x == n {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
