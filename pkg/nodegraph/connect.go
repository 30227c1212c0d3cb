package nodegraph

import (
	"fmt"

	"github.com/matzehuels/objview/pkg/errors"
)

// ConnectOption adjusts [Graph.CreateConnection].
type ConnectOption func(*connectConfig)

type connectConfig struct {
	allowSelfLoop bool
}

// AllowSelfLoop permits a plug to connect to a socket on its own node.
// The object walker uses it for structures that point at themselves.
// Interactive connections never set it.
func AllowSelfLoop() ConnectOption {
	return func(c *connectConfig) { c.allowSelfLoop = true }
}

// CreateConnection connects the plug of srcNode.srcAttr to the socket of
// dstNode.dstAttr. A connection already bound to the socket is removed
// first.
func (g *Graph) CreateConnection(srcNode, srcAttr, dstNode, dstAttr string, opts ...ConnectOption) (*Connection, error) {
	var cfg connectConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	src, ok := g.nodes[srcNode]
	if !ok {
		return nil, unknownNode(srcNode)
	}
	dst, ok := g.nodes[dstNode]
	if !ok {
		return nil, unknownNode(dstNode)
	}
	plug, ok := src.plugs[srcAttr]
	if !ok {
		return nil, unknownAttribute(srcNode, fmt.Sprintf("no plug %q", srcAttr))
	}
	socket, ok := dst.sockets[dstAttr]
	if !ok {
		return nil, unknownAttribute(dstNode, fmt.Sprintf("no socket %q", dstAttr))
	}
	if !plug.accepts(socket, cfg.allowSelfLoop) {
		return nil, errors.New(errors.ErrCodeIncompatibleSlots,
			"%s.%s (%s) cannot connect to %s.%s (%s)",
			srcNode, srcAttr, plug.DataType(), dstNode, dstAttr, socket.DataType())
	}
	c := &Connection{plug: plug, socket: socket}
	g.bind(c)
	return c, nil
}

// RemoveConnection removes a live connection. It reports false if c was not
// part of the graph.
func (g *Graph) RemoveConnection(c *Connection) bool {
	if c == nil || !c.live {
		return false
	}
	g.unbind(c)
	return true
}

// bind adds c to the graph. Both ends must be set.
func (g *Graph) bind(c *Connection) {
	for len(c.socket.conns) > 0 {
		g.unbind(c.socket.conns[0])
	}
	c.bindNames()
	c.plug.conns = append(c.plug.conns, c)
	c.socket.conns = append(c.socket.conns, c)
	g.conns = append(g.conns, c)
	c.live = true
	ep := c.Endpoints()
	g.events.PlugConnected(ep)
	g.events.SocketConnected(ep)
}

// unbind removes c from both slots and the graph. Its slot references are
// kept so callers can still inspect the former ends.
func (g *Graph) unbind(c *Connection) {
	ep := c.Endpoints()
	g.events.PlugDisconnected(ep)
	g.events.SocketDisconnected(ep)
	c.plug.remove(c)
	c.socket.remove(c)
	for i, x := range g.conns {
		if x == c {
			g.conns = append(g.conns[:i], g.conns[i+1:]...)
			break
		}
	}
	c.live = false
}

// =============================================================================
// Interactive connections
// =============================================================================

// StartConnection returns a pending connection anchored at from, with its
// free end at the slot anchor. The graph is not changed until
// [Graph.FinishConnection].
func (g *Graph) StartConnection(from *Slot) (*Connection, error) {
	if from == nil {
		return nil, unknownAttribute("<nil>", "no slot")
	}
	if err := g.check(from.attr.node); err != nil {
		return nil, err
	}
	if !g.attached(from) {
		return nil, unknownAttribute(from.attr.node.name, "deleted attribute "+from.attr.name)
	}
	c := &Connection{free: from.Anchor()}
	if from.kind == PlugSlot {
		c.plug = from
	} else {
		c.socket = from
	}
	c.bindNames()
	return c, nil
}

// Detach removes a live connection from the graph and frees the given end,
// leaving it pending with the other end anchored. The free end starts at
// the detached slot's anchor.
func (g *Graph) Detach(c *Connection, end End) error {
	if c == nil || !c.live {
		return unknownAttribute("<detached>", "connection is not live")
	}
	g.unbind(c)
	if end == PlugEnd {
		c.free = c.plug.Anchor()
		c.plug = nil
	} else {
		c.free = c.socket.Anchor()
		c.socket = nil
	}
	c.bindNames()
	return nil
}

// FinishConnection binds the free end of a pending connection to target.
// If target is nil, does not accept the anchored slot, or either slot's
// attribute has been deleted since, the connection is discarded and false
// is returned.
func (g *Graph) FinishConnection(c *Connection, target *Slot) bool {
	anchor := c.Anchored()
	if anchor == nil || c.live {
		return false
	}
	if target == nil || !g.attached(anchor) || !g.attached(target) || !target.Accepts(anchor) {
		g.CancelConnection(c)
		return false
	}
	if target.kind == PlugSlot {
		c.plug = target
	} else {
		c.socket = target
	}
	g.bind(c)
	return true
}

// attached reports whether s still belongs to an attribute of a node in g.
func (g *Graph) attached(s *Slot) bool {
	return g.owns(s.attr.node) && s.attr.Index() >= 0
}

// CancelConnection discards a pending connection.
func (g *Graph) CancelConnection(c *Connection) {
	if c == nil || c.live {
		return
	}
	c.plug, c.socket = nil, nil
	c.bindNames()
}
