package interaction

import (
	"math"
	"testing"

	"github.com/matzehuels/objview/pkg/geom"
)

func near(a, b geom.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestViewRoundTrip(t *testing.T) {
	v := NewView(geom.Size{W: 800, H: 600})
	v.ZoomAt(2, geom.Pt(100, 50))
	v.Pan(geom.Pt(-30, 12))

	for _, p := range []geom.Point{{}, geom.Pt(10, 20), geom.Pt(-400, 1e4)} {
		if got := v.ToScene(v.ToView(p)); !near(got, p) {
			t.Errorf("ToScene(ToView(%v)) = %v", p, got)
		}
	}
}

func TestViewZoomAtKeepsAnchor(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		anchor geom.Point
	}{
		{"in", 1.15, geom.Pt(100, 100)},
		{"out", 1 / 1.15, geom.Pt(640, 20)},
		{"origin", 3, geom.Pt(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView(geom.Size{W: 800, H: 600})
			v.Pan(geom.Pt(17, -5))
			before := v.ToScene(tt.anchor)
			v.ZoomAt(tt.factor, tt.anchor)
			if after := v.ToScene(tt.anchor); !near(before, after) {
				t.Errorf("anchor moved from %v to %v", before, after)
			}
		})
	}
}

func TestViewFit(t *testing.T) {
	v := NewView(geom.Size{W: 400, H: 400})
	v.Fit(geom.R(100, 100, 200, 100))
	if v.Scale != 2 {
		t.Errorf("Scale = %v, want 2", v.Scale)
	}
	if got := v.ToView(geom.Pt(200, 150)); !near(got, geom.Pt(200, 200)) {
		t.Errorf("center maps to %v", got)
	}
	vis := v.Visible()
	if !near(vis.Min(), geom.Pt(100, 50)) || !near(vis.Max(), geom.Pt(300, 250)) {
		t.Errorf("Visible() = %v", vis)
	}

	// Empty rectangles leave the view alone.
	v.Fit(geom.Rect{})
	if v.Scale != 2 {
		t.Errorf("Fit(empty) changed the scale to %v", v.Scale)
	}
}

func TestPick(t *testing.T) {
	tests := []struct {
		button Button
		mods   Modifiers
		over   bool
		want   State
	}{
		{ButtonSecondary, ModAlt, false, StateZoomView},
		{ButtonSecondary, ModAlt, true, StateZoomView},
		{ButtonMiddle, ModAlt, true, StateDragView},
		{ButtonPrimary, 0, false, StateDragWindow},
		{ButtonPrimary, 0, true, StateDragItem},
		{ButtonPrimary, ModShift | ModCtrl, true, StateAddSelection},
		{ButtonPrimary, ModCtrl, false, StateSubtractSelection},
		{ButtonPrimary, ModShift, true, StateToggleSelection},
		{ButtonPrimary, ModAlt, false, StateDefault},
		{ButtonSecondary, 0, false, StateDefault},
		{ButtonMiddle, 0, true, StateDefault},
		{ButtonNone, 0, false, StateDefault},
	}

	for _, tt := range tests {
		if got := pick(tt.button, tt.mods, tt.over); got != tt.want {
			t.Errorf("pick(%v, %v, %v) = %v, want %v", tt.button, tt.mods, tt.over, got, tt.want)
		}
	}
}

func TestStateString(t *testing.T) {
	if got := StateSubtractSelection.String(); got != "SUBTRACT_SELECTION" {
		t.Errorf("String() = %q", got)
	}
	if got := State(42).String(); got != "UNKNOWN" {
		t.Errorf("String() = %q", got)
	}
	if got := (ModShift | ModAlt).String(); got != "shift+alt" {
		t.Errorf("Modifiers.String() = %q", got)
	}
}
