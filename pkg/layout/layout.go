// Package layout places nodes while the object walker discovers them.
//
// Placement is a greedy column stack: the children of a node go to its
// right, one below the other, each below everything placed under the
// previous sibling. Directly chained descendants never overlap; aliasing
// across branches can still produce overlaps.
package layout

import (
	"math"

	"github.com/matzehuels/objview/pkg/geom"
)

// DefaultMargin is the gap between a parent and its children and between
// stacked siblings.
const DefaultMargin = 40

// Placer computes placement hints. It holds no state besides the margin.
type Placer struct {
	Margin float64
}

// New returns a Placer with the given margin. A negative margin is
// replaced by [DefaultMargin].
func New(margin float64) Placer {
	if margin < 0 {
		margin = DefaultMargin
	}
	return Placer{Margin: margin}
}

// FirstChild returns the position of the first child of a node with the
// given bounds: one margin right of its right edge, aligned with its top.
func (p Placer) FirstChild(parent geom.Rect) geom.Point {
	return geom.Pt(parent.Right()+p.Margin, parent.Y)
}

// Below returns the position of the sibling that follows one placed at
// prev whose subtree reaches down to bottom.
func (p Placer) Below(prev geom.Point, bottom float64) geom.Point {
	return geom.Pt(prev.X, bottom+p.Margin)
}

// Column tracks the next free position to the right of one parent.
type Column struct {
	placer Placer
	next   geom.Point
}

// Column starts a column of children for a node with the given bounds.
func (p Placer) Column(parent geom.Rect) *Column {
	return &Column{placer: p, next: p.FirstChild(parent)}
}

// Next returns the position for the next child.
func (c *Column) Next() geom.Point { return c.next }

// Advance moves the column below a child whose subtree reaches bottom.
func (c *Column) Advance(bottom float64) {
	c.next = c.placer.Below(c.next, bottom)
}

// BottomExtent returns the lowest y reached by root or anything placed
// beneath it. children must describe a tree; the walker passes only the
// objects each object discovered itself, so shared or cyclic references
// are never followed twice.
func BottomExtent[T any](root T, bounds func(T) geom.Rect, children func(T) []T) float64 {
	bottom := bounds(root).Bottom()
	for _, c := range children(root) {
		bottom = math.Max(bottom, BottomExtent(c, bounds, children))
	}
	return bottom
}
