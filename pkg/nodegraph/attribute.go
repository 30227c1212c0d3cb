package nodegraph

import (
	"github.com/matzehuels/objview/pkg/errors"
)

// AttributeSpec describes an attribute to create.
type AttributeSpec struct {
	Name string
	// Index is the insertion position. -1 or any out-of-range value appends.
	Index    int
	Preset   string
	Plug     bool
	Socket   bool
	DataType string
}

// AttributeEdit describes a change to an existing attribute. Renaming and
// moving are independent: either, both or neither may be set.
type AttributeEdit struct {
	NewName  string // empty keeps the name
	NewIndex *int   // nil keeps the position; -1 moves to the end
}

// CreateAttribute inserts a new attribute into n with the requested slots.
func (g *Graph) CreateAttribute(n *Node, spec AttributeSpec) (*Attribute, error) {
	if err := g.check(n); err != nil {
		return nil, err
	}
	if err := errors.ValidateName(spec.Name); err != nil {
		return nil, err
	}
	if n.indexOf(spec.Name) >= 0 {
		return nil, duplicateAttribute(n.name, spec.Name)
	}
	a := &Attribute{
		node:     n,
		name:     spec.Name,
		preset:   spec.Preset,
		dataType: spec.DataType,
	}
	if spec.Plug {
		a.plug = &Slot{kind: PlugSlot, attr: a}
		n.plugs[a.name] = a.plug
	}
	if spec.Socket {
		a.socket = &Slot{kind: SocketSlot, attr: a}
		n.sockets[a.name] = a.socket
	}
	idx := spec.Index
	if idx < 0 || idx > len(n.attrs) {
		idx = len(n.attrs)
	}
	n.attrs = append(n.attrs, nil)
	copy(n.attrs[idx+1:], n.attrs[idx:])
	n.attrs[idx] = a
	g.events.AttrCreated(n.name, idx)
	return a, nil
}

// DeleteAttribute removes the attribute at index (-1 means the last one)
// after removing every connection through its slots.
func (g *Graph) DeleteAttribute(n *Node, index int) error {
	if err := g.check(n); err != nil {
		return err
	}
	idx, err := resolveIndex(n, index)
	if err != nil {
		return err
	}
	a := n.attrs[idx]
	g.disconnectAttribute(a)
	delete(n.plugs, a.name)
	delete(n.sockets, a.name)
	n.attrs = append(n.attrs[:idx], n.attrs[idx+1:]...)
	g.events.AttrDeleted(n.name, idx)
	return nil
}

// RenameAttribute renames the attribute at index and rewrites the attribute
// names stored on its connections.
func (g *Graph) RenameAttribute(n *Node, index int, newName string) error {
	return g.EditAttribute(n, index, AttributeEdit{NewName: newName})
}

// MoveAttribute moves the attribute at index to newIndex. -1 as index means
// the last attribute, -1 as newIndex means the end of the list.
func (g *Graph) MoveAttribute(n *Node, index, newIndex int) error {
	return g.EditAttribute(n, index, AttributeEdit{NewIndex: &newIndex})
}

// EditAttribute renames and/or moves the attribute at index. All checks run
// before anything changes, so a rejected edit leaves the node untouched.
func (g *Graph) EditAttribute(n *Node, index int, edit AttributeEdit) error {
	if err := g.check(n); err != nil {
		return err
	}
	idx, err := resolveIndex(n, index)
	if err != nil {
		return err
	}
	a := n.attrs[idx]
	rename := edit.NewName != "" && edit.NewName != a.name
	if rename {
		if err := errors.ValidateName(edit.NewName); err != nil {
			return err
		}
		if n.indexOf(edit.NewName) >= 0 {
			return duplicateAttribute(n.name, edit.NewName)
		}
	}
	to := idx
	if edit.NewIndex != nil {
		to = *edit.NewIndex
		if to < 0 || to >= len(n.attrs) {
			to = len(n.attrs) - 1
		}
	}

	if rename {
		g.renameAttribute(a, edit.NewName)
	}
	if to != idx {
		n.attrs = append(n.attrs[:idx], n.attrs[idx+1:]...)
		n.attrs = append(n.attrs, nil)
		copy(n.attrs[to+1:], n.attrs[to:])
		n.attrs[to] = a
	}
	if rename || to != idx {
		g.events.AttrEdited(n.name, idx, to)
	}
	return nil
}

func (g *Graph) renameAttribute(a *Attribute, newName string) {
	n := a.node
	if a.plug != nil {
		delete(n.plugs, a.name)
		n.plugs[newName] = a.plug
		for _, c := range a.plug.conns {
			c.plugAttr = newName
		}
	}
	if a.socket != nil {
		delete(n.sockets, a.name)
		n.sockets[newName] = a.socket
		for _, c := range a.socket.conns {
			c.socketAttr = newName
		}
	}
	a.name = newName
}

// disconnectAttribute removes every connection through a's slots.
func (g *Graph) disconnectAttribute(a *Attribute) {
	for _, s := range a.slots() {
		for len(s.conns) > 0 {
			g.unbind(s.conns[0])
		}
	}
}

func resolveIndex(n *Node, index int) (int, error) {
	if index == -1 {
		index = len(n.attrs) - 1
	}
	if index < 0 || index >= len(n.attrs) {
		return 0, unknownAttribute(n.name, "attribute index out of range")
	}
	return index, nil
}
