package nodegraph

import "github.com/matzehuels/objview/pkg/errors"

var (
	// ErrDuplicateName is returned by [Graph.CreateNode] and [Graph.EditNode]
	// when another live node already uses the name.
	ErrDuplicateName = errors.New(errors.ErrCodeDuplicateName, "duplicate node name")

	// ErrDuplicateAttribute is returned by [Graph.CreateAttribute] and
	// [Graph.RenameAttribute] when the node already has an attribute with the name.
	ErrDuplicateAttribute = errors.New(errors.ErrCodeDuplicateAttribute, "duplicate attribute name")

	// ErrUnknownNode is returned when a node reference is stale or a node name
	// is not in the graph.
	ErrUnknownNode = errors.New(errors.ErrCodeUnknownNode, "unknown node")

	// ErrUnknownAttribute is returned when an attribute index is out of range,
	// an attribute name is unknown, or the attribute lacks the requested slot.
	ErrUnknownAttribute = errors.New(errors.ErrCodeUnknownAttribute, "unknown attribute")

	// ErrIncompatibleSlots is returned by [Graph.CreateConnection] when the plug
	// does not accept the socket.
	ErrIncompatibleSlots = errors.New(errors.ErrCodeIncompatibleSlots, "incompatible slots")
)

func duplicateName(name string) error {
	return errors.New(errors.ErrCodeDuplicateName, "a node with the same name already exists: %q", name)
}

func duplicateAttribute(node, name string) error {
	return errors.New(errors.ErrCodeDuplicateAttribute, "an attribute with the same name already exists on %q: %q", node, name)
}

func unknownNode(name string) error {
	return errors.New(errors.ErrCodeUnknownNode, "node does not exist: %q", name)
}

func unknownAttribute(node, what string) error {
	return errors.New(errors.ErrCodeUnknownAttribute, "%s on node %q", what, node)
}
