package nodegraph

import "github.com/mattn/go-runewidth"

// TextMeasurer reports the rendered width of a label in scene units.
type TextMeasurer interface {
	Width(s string) float64
}

// CellMeasurer measures text as terminal cells times a fixed cell width.
// Wide runes (CJK, emoji) count as two cells.
type CellMeasurer struct {
	CellWidth float64
}

// Width implements TextMeasurer.
func (m CellMeasurer) Width(s string) float64 {
	return float64(runewidth.StringWidth(s)) * m.CellWidth
}

// Style holds the dimensions that node geometry is derived from.
// The zero value is not useful; start from [DefaultStyle].
type Style struct {
	BaseWidth  float64 // minimum node width
	BaseHeight float64 // header height of a node without attributes
	AttrHeight float64 // height of one attribute row
	Border     float64
	Radius     float64

	// Measure sizes attribute labels. Nil falls back to a 7-unit cell width.
	Measure TextMeasurer
}

// DefaultStyle returns the dimensions used by the object viewer.
func DefaultStyle() Style {
	return Style{
		BaseWidth:  200,
		BaseHeight: 25,
		AttrHeight: 30,
		Border:     2,
		Radius:     10,
		Measure:    CellMeasurer{CellWidth: 7},
	}
}

func (s Style) measure(label string) float64 {
	if s.Measure == nil {
		return CellMeasurer{CellWidth: 7}.Width(label)
	}
	return s.Measure.Width(label)
}

// slotSize is the side of the square slot hit area.
func (s Style) slotSize() float64 { return s.AttrHeight / 4 }
