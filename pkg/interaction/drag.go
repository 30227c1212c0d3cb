package interaction

import (
	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/nodegraph"
)

// pressItem starts a DRAG_ITEM interaction on whatever was hit.
func (c *Controller) pressItem(item nodegraph.Item, scene geom.Point) {
	switch {
	case item.Slot != nil:
		conn, err := c.graph.StartConnection(item.Slot)
		if err != nil {
			c.logger.Warn("start connection", "error", err)
			return
		}
		c.startDrawing(conn, item.Slot, scene)

	case item.Node != nil:
		n := item.Node
		_ = c.graph.Raise(n)
		if !n.Selected() {
			c.graph.SetSelection([]*nodegraph.Node{n}, nodegraph.SelectReplace)
		}
		c.grabbed = n
		c.grabAt = scene
		c.dragged = c.graph.Selected()
		c.origins = make([]geom.Point, len(c.dragged))
		for i, d := range c.dragged {
			c.origins[i] = d.Pos()
		}
		c.moved = false

	case item.Connection != nil:
		conn := item.Connection
		end := conn.Nearest(scene)
		if err := c.graph.Detach(conn, end); err != nil {
			c.logger.Warn("detach connection", "error", err)
			return
		}
		c.startDrawing(conn, conn.Anchored(), scene)
	}
}

func (c *Controller) startDrawing(conn *nodegraph.Connection, source *nodegraph.Slot, scene geom.Point) {
	conn.MoveFreeEnd(scene)
	c.drawing = true
	c.conn = conn
	c.source = source
	c.hovered = nil
	c.logger.Debug("drawing", "from", source.Node().Name()+"."+source.Attribute().Name(), "kind", source.Kind())
}

// hoverNode returns the first node other than the source node that
// intersects the mouse bounding box around p.
func (c *Controller) hoverNode(p geom.Point) *nodegraph.Node {
	box := geom.RectAround(p, c.cfg.MouseBoundingBox/c.view.Scale)
	for _, n := range c.graph.NodesIntersecting(box) {
		if n != c.source.Node() {
			return n
		}
	}
	return nil
}

func (c *Controller) finishDrawing(scene geom.Point) {
	conn := c.conn
	conn.MoveFreeEnd(scene)
	if c.graph.FinishConnection(conn, c.graph.SlotAt(scene)) {
		c.logger.Debug("connected", "connection", conn)
	} else {
		c.logger.Debug("connection discarded")
	}
	c.clearDrawing()
}

func (c *Controller) clearDrawing() {
	c.drawing = false
	c.conn = nil
	c.source = nil
	c.hovered = nil
}

// dragNodes moves every dragged node by the pointer delta. When snapping,
// the grabbed node lands on the grid and the others keep their offsets.
func (c *Controller) dragNodes(scene geom.Point) {
	delta := scene.Sub(c.grabAt)
	if c.snapping() {
		for i, n := range c.dragged {
			if n == c.grabbed {
				delta = c.snap(c.origins[i].Add(delta)).Sub(c.origins[i])
				break
			}
		}
	}
	for i, n := range c.dragged {
		if err := c.graph.MoveNode(n, c.origins[i].Add(delta)); err == nil {
			c.moved = true
		}
	}
}

// finishDrag emits NodeMoved for every dragged node still in the graph
// whose position changed.
func (c *Controller) finishDrag() {
	if c.moved {
		for i, n := range c.dragged {
			if cur, ok := c.graph.Node(n.Name()); !ok || cur != n || n.Pos() == c.origins[i] {
				continue
			}
			c.graph.Events().NodeMoved(n.Name(), n.Pos())
		}
	}
	c.grabbed = nil
	c.dragged = nil
	c.origins = nil
	c.moved = false
}
