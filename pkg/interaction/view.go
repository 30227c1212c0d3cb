package interaction

import (
	"math"

	"github.com/matzehuels/objview/pkg/geom"
)

// View maps scene coordinates to view coordinates with a uniform scale
// followed by a translation:
//
//	view = scene*Scale + Offset
type View struct {
	Scale    float64
	Offset   geom.Point
	Viewport geom.Size
}

// NewView returns the identity view of the given viewport size.
func NewView(viewport geom.Size) *View {
	return &View{Scale: 1, Viewport: viewport}
}

// ToScene maps a view point to the scene.
func (v *View) ToScene(p geom.Point) geom.Point {
	return p.Sub(v.Offset).Scale(1 / v.Scale)
}

// ToView maps a scene point to the view.
func (v *View) ToView(p geom.Point) geom.Point {
	return p.Scale(v.Scale).Add(v.Offset)
}

// RectToScene maps a view rectangle to the scene.
func (v *View) RectToScene(r geom.Rect) geom.Rect {
	return geom.RectFromPoints(v.ToScene(r.Min()), v.ToScene(r.Max()))
}

// Visible returns the part of the scene shown in the viewport.
func (v *View) Visible() geom.Rect {
	return v.RectToScene(geom.R(0, 0, v.Viewport.W, v.Viewport.H))
}

// ZoomAt multiplies the scale by factor while keeping the scene point under
// anchor fixed on screen.
func (v *View) ZoomAt(factor float64, anchor geom.Point) {
	before := v.ToScene(anchor)
	v.Scale *= factor
	v.Offset = anchor.Sub(before.Scale(v.Scale))
}

// Pan moves the view contents by d view units.
func (v *View) Pan(d geom.Point) {
	v.Offset = v.Offset.Add(d)
}

// Fit scales and centers the view so r is fully visible, keeping the
// aspect ratio. Empty rectangles and empty viewports leave the view as is.
func (v *View) Fit(r geom.Rect) {
	if r.Empty() || v.Viewport.W <= 0 || v.Viewport.H <= 0 {
		return
	}
	v.Scale = math.Min(v.Viewport.W/r.W, v.Viewport.H/r.H)
	center := geom.Pt(v.Viewport.W/2, v.Viewport.H/2)
	v.Offset = center.Sub(r.Center().Scale(v.Scale))
}
