package interaction

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/objview/pkg/editor"
	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/nodegraph"
)

// Controller translates input events into graph mutations. It is not safe
// for concurrent use.
type Controller struct {
	graph  *nodegraph.Graph
	cfg    editor.Config
	logger *log.Logger
	view   *View

	state    State
	pressed  map[Key]bool
	showGrid bool
	snapGrid bool
	nodeSnap bool

	// ZOOM_VIEW
	zoomOrigin geom.Point
	zoomPrev   float64
	zoomDir    int
	zoomIncr   int

	// DRAG_VIEW
	panPrev geom.Point

	// rubber band, in view coordinates
	bandOrigin geom.Point
	bandEnd    geom.Point

	// connection drawing
	drawing bool
	conn    *nodegraph.Connection
	source  *nodegraph.Slot
	hovered *nodegraph.Node

	// node drag
	grabbed *nodegraph.Node
	grabAt  geom.Point
	dragged []*nodegraph.Node
	origins []geom.Point
	moved   bool
}

// New returns a controller for the session graph with an identity view of
// the given viewport size.
func New(s *editor.Session, viewport geom.Size) *Controller {
	return &Controller{
		graph:    s.Graph,
		cfg:      s.Config,
		logger:   s.Logger,
		view:     NewView(viewport),
		pressed:  make(map[Key]bool),
		showGrid: s.Config.ShowGrid,
		snapGrid: s.Config.SnapToGrid,
	}
}

// =============================================================================
// Accessors
// =============================================================================

// State returns the active interaction state.
func (c *Controller) State() State { return c.state }

// View returns the view transform.
func (c *Controller) View() *View { return c.view }

// Graph returns the controlled graph.
func (c *Controller) Graph() *nodegraph.Graph { return c.graph }

// Drawing reports whether a connection is being drawn or redragged.
func (c *Controller) Drawing() bool { return c.drawing }

// Pending returns the connection being drawn, or nil.
func (c *Controller) Pending() *nodegraph.Connection { return c.conn }

// Source returns the anchored slot of the connection being drawn, or nil.
func (c *Controller) Source() *nodegraph.Slot { return c.source }

// Hovered returns the node near the pointer while drawing, or nil.
func (c *Controller) Hovered() *nodegraph.Node { return c.hovered }

// KeyHeld reports whether k is currently pressed.
func (c *Controller) KeyHeld(k Key) bool { return c.pressed[k] }

// NodeSnap reports whether the snap key is held.
func (c *Controller) NodeSnap() bool { return c.nodeSnap }

// ShowGrid reports whether the grid is visible.
func (c *Controller) ShowGrid() bool { return c.showGrid }

// SetShowGrid shows or hides the grid. Snapping needs a visible grid.
func (c *Controller) SetShowGrid(on bool) { c.showGrid = on }

// SnapToGrid reports whether node drags always snap.
func (c *Controller) SnapToGrid() bool { return c.snapGrid }

// SetSnapToGrid makes node drags snap without holding the snap key.
func (c *Controller) SetSnapToGrid(on bool) { c.snapGrid = on }

// Band returns the rubber band in view coordinates while a selection
// state is active.
func (c *Controller) Band() (geom.Rect, bool) {
	if !c.state.selecting() {
		return geom.Rect{}, false
	}
	return geom.RectFromPoints(c.bandOrigin, c.bandEnd), true
}

// Connectable reports whether s is a valid drop target for the connection
// being drawn. Only slots of the hovered node are considered.
func (c *Controller) Connectable(s *nodegraph.Slot) bool {
	if !c.drawing || c.hovered == nil || s == nil || s.Node() != c.hovered {
		return false
	}
	return s.Connectable(c.source)
}

func (c *Controller) setState(s State) {
	if s != c.state {
		c.logger.Debug("state", "from", c.state, "to", s)
	}
	c.state = s
}

// =============================================================================
// Pointer events
// =============================================================================

// Press starts an interaction.
func (c *Controller) Press(ev PointerEvent) {
	c.abort()
	scene := c.view.ToScene(ev.Pos)
	item := c.graph.ItemAt(scene, c.cfg.ConnectionTolerance/c.view.Scale)
	c.setState(pick(ev.Button, ev.Mods, !item.Empty()))

	switch c.state {
	case StateZoomView:
		c.zoomOrigin = ev.Pos
		c.zoomPrev, c.zoomDir, c.zoomIncr = 0, 0, 0
	case StateDragView:
		c.panPrev = ev.Pos
	case StateDragWindow, StateAddSelection, StateSubtractSelection, StateToggleSelection:
		c.bandOrigin, c.bandEnd = ev.Pos, ev.Pos
	case StateDragItem:
		c.pressItem(item, scene)
	}
}

// Move updates the active interaction.
func (c *Controller) Move(ev PointerEvent) {
	switch c.state {
	case StateZoomView:
		c.zoomDrag(ev.Pos)
	case StateDragView:
		c.view.Pan(ev.Pos.Sub(c.panPrev))
		c.panPrev = ev.Pos
	case StateDragWindow, StateAddSelection, StateSubtractSelection, StateToggleSelection:
		c.bandEnd = ev.Pos
	case StateDragItem:
		scene := c.view.ToScene(ev.Pos)
		if c.drawing {
			c.conn.MoveFreeEnd(scene)
			c.hovered = c.hoverNode(scene)
		} else if c.grabbed != nil {
			c.dragNodes(scene)
		}
	}
}

// Release applies the active interaction and returns to DEFAULT.
func (c *Controller) Release(ev PointerEvent) {
	switch c.state {
	case StateZoomView:
		c.zoomPrev, c.zoomDir, c.zoomIncr = 0, 0, 0
	case StateDragWindow, StateAddSelection, StateSubtractSelection, StateToggleSelection:
		c.bandEnd = ev.Pos
		c.releaseBand()
	case StateDragItem:
		if c.drawing {
			c.finishDrawing(c.view.ToScene(ev.Pos))
		} else if c.grabbed != nil {
			c.finishDrag()
		}
	}
	c.setState(StateDefault)
}

// Wheel zooms by the wheel step around the pointer.
func (c *Controller) Wheel(ev WheelEvent) {
	c.setState(StateZoomView)
	factor := c.cfg.WheelZoomStep
	if ev.Delta <= 0 {
		factor = 1 / factor
	}
	c.view.ZoomAt(factor, ev.Pos)
	c.setState(StateDefault)
}

// abort discards an interaction left open by a missing release.
func (c *Controller) abort() {
	if c.drawing {
		c.graph.CancelConnection(c.conn)
		c.clearDrawing()
	}
	if c.grabbed != nil {
		c.finishDrag()
	}
	c.setState(StateDefault)
}

// zoomDrag compares the horizontal offset from the press with the previous
// one. Moving left zooms out, moving right zooms in, and standing still
// keeps the last direction.
func (c *Controller) zoomDrag(p geom.Point) {
	offset := c.zoomOrigin.X - p.X
	switch {
	case offset > c.zoomPrev:
		c.zoomDir = -1
		c.zoomIncr--
	case offset == c.zoomPrev:
		if c.zoomDir != -1 {
			c.zoomDir = 1
		}
	default:
		c.zoomDir = 1
		c.zoomIncr++
	}
	c.zoomPrev = offset

	factor := c.cfg.ZoomStep
	if c.zoomDir != 1 {
		factor = 1 / factor
	}
	c.view.ZoomAt(factor, c.zoomOrigin)
}

func (c *Controller) releaseBand() {
	r := c.view.RectToScene(geom.RectFromPoints(c.bandOrigin, c.bandEnd))
	nodes := c.graph.NodesIntersecting(r)
	op := nodegraph.SelectReplace
	switch c.state {
	case StateAddSelection:
		op = nodegraph.SelectAdd
	case StateSubtractSelection:
		op = nodegraph.SelectSubtract
	case StateToggleSelection:
		op = nodegraph.SelectToggle
	}
	c.graph.SetSelection(nodes, op)
}

// =============================================================================
// Keyboard
// =============================================================================

// KeyPress records k as held and runs its shortcut, if any.
func (c *Controller) KeyPress(k Key) {
	c.pressed[k] = true
	switch k {
	case KeyDelete:
		c.deleteSelected()
	case KeyFrame:
		c.Frame()
	case KeySnap:
		c.nodeSnap = true
	}
	c.graph.Events().KeyPressed(string(k))
}

// KeyRelease forgets k.
func (c *Controller) KeyRelease(k Key) {
	if k == KeySnap {
		c.nodeSnap = false
	}
	delete(c.pressed, k)
}

// Frame fits the view to the selection, or to the whole graph when nothing
// is selected.
func (c *Controller) Frame() {
	c.view.Fit(c.graph.BoundingRect(c.graph.Selected()))
}

func (c *Controller) deleteSelected() {
	sel := c.graph.Selected()
	if len(sel) == 0 {
		return
	}
	if err := c.graph.DeleteNodes(sel); err != nil {
		c.logger.Warn("delete failed", "error", err)
	}
}

// snap rounds p to the nearest grid cell, offset by a quarter cell.
func (c *Controller) snap(p geom.Point) geom.Point {
	g := c.cfg.GridSize
	return geom.Pt(math.Round(p.X/g)*g-g/4, math.Round(p.Y/g)*g-g/4)
}

func (c *Controller) snapping() bool {
	return c.showGrid && (c.snapGrid || c.nodeSnap)
}
