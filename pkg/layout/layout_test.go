package layout

import (
	"testing"

	"github.com/matzehuels/objview/pkg/geom"
)

type box struct {
	r    geom.Rect
	kids []*box
}

func bounds(b *box) geom.Rect { return b.r }
func children(b *box) []*box  { return b.kids }

func TestPlacer(t *testing.T) {
	p := New(40)
	parent := geom.R(10, 20, 200, 92)

	if got, want := p.FirstChild(parent), geom.Pt(250, 20); got != want {
		t.Errorf("FirstChild = %v, want %v", got, want)
	}
	if got, want := p.Below(geom.Pt(250, 20), 112), geom.Pt(250, 152); got != want {
		t.Errorf("Below = %v, want %v", got, want)
	}
	if got := New(-1).Margin; got != DefaultMargin {
		t.Errorf("New(-1).Margin = %v, want %v", got, DefaultMargin)
	}
}

func TestColumn(t *testing.T) {
	col := New(40).Column(geom.R(0, 0, 200, 100))

	positions := []geom.Point{col.Next()}
	col.Advance(62)
	positions = append(positions, col.Next())
	col.Advance(400)
	positions = append(positions, col.Next())

	want := []geom.Point{geom.Pt(240, 0), geom.Pt(240, 102), geom.Pt(240, 440)}
	for i := range want {
		if positions[i] != want[i] {
			t.Errorf("position %d = %v, want %v", i, positions[i], want[i])
		}
	}
}

func TestBottomExtent(t *testing.T) {
	tests := []struct {
		name string
		root *box
		want float64
	}{
		{
			name: "Leaf",
			root: &box{r: geom.R(0, 0, 200, 62)},
			want: 62,
		},
		{
			name: "ChildBelow",
			root: &box{r: geom.R(0, 0, 200, 62), kids: []*box{
				{r: geom.R(240, 0, 200, 122)},
			}},
			want: 122,
		},
		{
			name: "Grandchild",
			root: &box{r: geom.R(0, 0, 200, 300), kids: []*box{
				{r: geom.R(240, 0, 200, 62), kids: []*box{
					{r: geom.R(480, 200, 200, 152)},
				}},
			}},
			want: 352,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BottomExtent(tt.root, bounds, children); got != tt.want {
				t.Errorf("BottomExtent = %v, want %v", got, tt.want)
			}
		})
	}
}
