package cli

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/objview/pkg/geom"
	"github.com/matzehuels/objview/pkg/interaction"
	"github.com/matzehuels/objview/pkg/nodegraph"
)

// One terminal cell covers cellWidth x cellHeight view units.
const (
	cellWidth  = 8
	cellHeight = 16
)

// pathSamples is how many points of a connection curve are plotted.
const pathSamples = 96

type ink int

const (
	inkPlain ink = iota
	inkGrid
	inkConnection
	inkPending
	inkNode
	inkSelected
	inkHovered
	inkAccept
	inkRefuse
	inkBand
)

var inks = map[ink]lipgloss.Style{
	inkPlain:      lipgloss.NewStyle(),
	inkGrid:       lipgloss.NewStyle().Foreground(colorDim),
	inkConnection: lipgloss.NewStyle().Foreground(colorBlue),
	inkPending:    lipgloss.NewStyle().Foreground(colorYellow),
	inkNode:       lipgloss.NewStyle().Foreground(colorWhite),
	inkSelected:   lipgloss.NewStyle().Foreground(colorCyan).Bold(true),
	inkHovered:    lipgloss.NewStyle().Foreground(colorYellow),
	inkAccept:     lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	inkRefuse:     lipgloss.NewStyle().Foreground(colorRed),
	inkBand:       lipgloss.NewStyle().Foreground(colorGray),
}

type cell struct {
	r   rune // 0 marks the second half of a wide rune
	ink ink
}

// canvas is a character grid the editor scene is drawn on.
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	cv := &canvas{w: max(w, 0), h: max(h, 0)}
	cv.cells = make([]cell, cv.w*cv.h)
	for i := range cv.cells {
		cv.cells[i] = cell{r: ' '}
	}
	return cv
}

func (cv *canvas) set(x, y int, r rune, k ink) {
	if x < 0 || y < 0 || x >= cv.w || y >= cv.h {
		return
	}
	cv.cells[y*cv.w+x] = cell{r: r, ink: k}
}

// text writes s from (x, y), clipped to at most n columns.
func (cv *canvas) text(x, y, n int, s string, k ink) {
	if n <= 0 {
		return
	}
	for _, r := range runewidth.Truncate(s, n, "…") {
		rw := runewidth.RuneWidth(r)
		cv.set(x, y, r, k)
		if rw == 2 {
			cv.set(x+1, y, 0, k)
		}
		x += max(rw, 1)
	}
}

// box draws a rectangle outline.
func (cv *canvas) box(x0, y0, x1, y1 int, k ink, light bool) {
	h, v, tl, tr, bl, br := '─', '│', '╭', '╮', '╰', '╯'
	if light {
		h, v, tl, tr, bl, br = '┄', '┆', '┌', '┐', '└', '┘'
	}
	for x := x0 + 1; x < x1; x++ {
		cv.set(x, y0, h, k)
		cv.set(x, y1, h, k)
	}
	for y := y0 + 1; y < y1; y++ {
		cv.set(x0, y, v, k)
		cv.set(x1, y, v, k)
	}
	cv.set(x0, y0, tl, k)
	cv.set(x1, y0, tr, k)
	cv.set(x0, y1, bl, k)
	cv.set(x1, y1, br, k)
}

func (cv *canvas) fill(x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			cv.set(x, y, ' ', inkPlain)
		}
	}
}

// String renders the grid, one styled run per ink change.
func (cv *canvas) String() string {
	var b strings.Builder
	for y := 0; y < cv.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		row := cv.cells[y*cv.w : (y+1)*cv.w]
		for i := 0; i < len(row); {
			j := i
			var run strings.Builder
			for j < len(row) && row[j].ink == row[i].ink {
				if row[j].r != 0 {
					run.WriteRune(row[j].r)
				}
				j++
			}
			b.WriteString(inks[row[i].ink].Render(run.String()))
			i = j
		}
	}
	return b.String()
}

// =============================================================================
// Scene drawing
// =============================================================================

// toCell maps a view point to the cell containing it.
func toCell(p geom.Point) (int, int) {
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
}

// cellCenter maps a cell back to the view point at its center.
func cellCenter(x, y int) geom.Point {
	return geom.Pt(float64(x)*cellWidth+cellWidth/2, float64(y)*cellHeight+cellHeight/2)
}

// drawScene paints the controller's graph as seen through its view.
func drawScene(cv *canvas, c *interaction.Controller, gridSize float64) {
	v := c.View()
	g := c.Graph()

	if c.ShowGrid() {
		drawGrid(cv, v, gridSize)
	}
	for _, conn := range g.Connections() {
		drawPath(cv, v, conn.Path(), inkConnection)
	}
	if p := c.Pending(); p != nil {
		drawPath(cv, v, p.Path(), inkPending)
	}

	nodes := g.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Z() < nodes[j].Z() })
	for _, n := range nodes {
		drawNode(cv, c, n)
	}

	if band, ok := c.Band(); ok {
		x0, y0 := toCell(band.Min())
		x1, y1 := toCell(band.Max())
		if x1 > x0 && y1 > y0 {
			cv.box(x0, y0, x1, y1, inkBand, true)
		}
	}
}

func drawGrid(cv *canvas, v *interaction.View, size float64) {
	if size*v.Scale < cellWidth {
		return
	}
	vis := v.Visible()
	for x := math.Ceil(vis.X/size) * size; x <= vis.Right(); x += size {
		for y := math.Ceil(vis.Y/size) * size; y <= vis.Bottom(); y += size {
			cx, cy := toCell(v.ToView(geom.Pt(x, y)))
			cv.set(cx, cy, '·', inkGrid)
		}
	}
}

func drawPath(cv *canvas, v *interaction.View, p nodegraph.Path, k ink) {
	for i := 0; i <= pathSamples; i++ {
		x, y := toCell(v.ToView(p.At(float64(i) / pathSamples)))
		cv.set(x, y, '•', k)
	}
}

func drawNode(cv *canvas, c *interaction.Controller, n *nodegraph.Node) {
	v := c.View()
	r := n.Rect()
	x0, y0 := toCell(v.ToView(r.Min()))
	x1, y1 := toCell(v.ToView(r.Max()))
	if x1-x0 < 2 {
		x1 = x0 + 2
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	k := inkNode
	switch {
	case n == c.Hovered():
		k = inkHovered
	case n.Selected():
		k = inkSelected
	}
	cv.fill(x0, y0, x1, y1)
	cv.box(x0, y0, x1, y1, k, false)
	cv.text(x0+1, y0, x1-x0-1, n.Name(), k)

	for _, a := range n.Attributes() {
		drawAttribute(cv, c, a, x0, x1)
	}
}

func drawAttribute(cv *canvas, c *interaction.Controller, a *nodegraph.Attribute, x0, x1 int) {
	v := c.View()
	var anchor geom.Point
	switch {
	case a.Socket() != nil:
		anchor = a.Socket().Anchor()
	case a.Plug() != nil:
		anchor = a.Plug().Anchor()
	default:
		return
	}
	_, y := toCell(v.ToView(anchor))
	cv.text(x0+2, y, x1-x0-3, a.Name(), inkPlain)

	if s := a.Socket(); s != nil {
		cv.set(x0, y, '○', slotInk(c, s))
	}
	if p := a.Plug(); p != nil {
		cv.set(x1, y, '●', slotInk(c, p))
	}
}

// slotInk marks the slots of the hovered node as accepting or refusing the
// connection being drawn.
func slotInk(c *interaction.Controller, s *nodegraph.Slot) ink {
	if !c.Drawing() || s.Node() != c.Hovered() {
		return inkNode
	}
	if c.Connectable(s) {
		return inkAccept
	}
	return inkRefuse
}
