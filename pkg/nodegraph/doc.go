// Package nodegraph is the node-graph data model behind the object viewer.
//
// # Overview
//
// A [Graph] owns four linked entity kinds:
//
//   - [Node]: a named box with an ordered list of attributes. Names are unique
//     among live nodes and are the node's identity.
//   - [Attribute]: a named field of a node with a data-type tag. Names are
//     unique within their node.
//   - [Slot]: a connection endpoint owned by an attribute, either a plug
//     (outgoing) or a socket (incoming).
//   - [Connection]: a directed edge from a plug to a socket.
//
// Entities are created and destroyed only through Graph methods so that the
// cross references stay consistent after every call:
//
//   - every connection in the graph is listed by both of its slots, and every
//     connection listed by a slot is in the graph;
//   - a socket has at most one connection; binding a second plug evicts the
//     first connection;
//   - a connection's denormalized node and attribute names always match the
//     live names of its endpoints.
//
// # Basic Usage
//
//	g := nodegraph.New()
//	a, _ := g.CreateNode("A", "", geom.Pt(0, 0))
//	b, _ := g.CreateNode("B", "", geom.Pt(300, 0))
//	g.CreateAttribute(a, nodegraph.AttributeSpec{Name: "a1", Index: -1, Plug: true, DataType: "int"})
//	g.CreateAttribute(b, nodegraph.AttributeSpec{Name: "b1", Index: -1, Socket: true, DataType: "int"})
//	g.CreateConnection("A", "a1", "B", "b1")
//	g.Evaluate() // [{A.a1 B.b1}]
//
// # Failures
//
// Every operation validates its preconditions first and reports a named
// failure ([ErrDuplicateName], [ErrDuplicateAttribute], [ErrUnknownNode],
// [ErrUnknownAttribute], [ErrIncompatibleSlots]) without mutating anything.
//
// # Geometry
//
// Node sizes, slot anchors and connection paths are derived from the node
// position, the attribute order and the [Style]. They are recomputed on every
// read, so renaming, reordering or moving never leaves a stale anchor behind.
//
// # Interactive connections
//
// [Graph.StartConnection] and [Graph.Detach] produce a pending connection with
// one free end. A pending connection is not part of the graph until
// [Graph.FinishConnection] binds it; a failed finish discards it.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. The editor runs every mutation on a
// single event loop.
package nodegraph
