// Package geom provides the small 2D value types shared by the graph model,
// the layout placer and the interaction controller.
//
// All coordinates are float64 scene units. Rectangles are stored as an origin
// plus a size and are half-open on their far edges for containment tests.
package geom

import "math"

// Point is a position in scene or view coordinates.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p multiplied by f on both axes.
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

// ManhattanLength returns |x| + |y|.
func (p Point) ManhattanLength() float64 { return math.Abs(p.X) + math.Abs(p.Y) }

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// R is shorthand for Rect{X: x, Y: y, W: w, H: h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromPoints returns the normalized rectangle spanned by two corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{X: a.X, Y: a.Y, W: b.X - a.X, H: b.Y - a.Y}.Normalize()
}

// RectAround returns a square of the given side centered on p.
func RectAround(p Point, side float64) Rect {
	return Rect{X: p.X - side/2, Y: p.Y - side/2, W: side, H: side}
}

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{r.X, r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{r.X + r.W, r.Y + r.H} }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the center point.
func (r Rect) Center() Point { return Point{r.X + r.W/2, r.Y + r.H/2} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Normalize flips negative widths and heights so that W and H are >= 0.
func (r Rect) Normalize() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersects reports whether r and s overlap. Degenerate rectangles
// (a zero-size rubber band, for example) intersect whatever contains them.
func (r Rect) Intersects(s Rect) bool {
	return r.X <= s.X+s.W && s.X <= r.X+r.W && r.Y <= s.Y+s.H && s.Y <= r.Y+r.H
}

// Union returns the smallest rectangle containing both r and s.
// An empty receiver yields s.
func (r Rect) Union(s Rect) Rect {
	if r == (Rect{}) {
		return s
	}
	x0 := math.Min(r.X, s.X)
	y0 := math.Min(r.Y, s.Y)
	x1 := math.Max(r.Right(), s.Right())
	y1 := math.Max(r.Bottom(), s.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
