package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/objview/pkg/errors"
	"github.com/matzehuels/objview/pkg/nodegraph"
)

// ToDOT converts g to Graphviz DOT. Each node is a record whose fields are
// the attributes, in order; edges connect the field ports.
func ToDOT(g *nodegraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=record, style=\"rounded,filled\", fillcolor=white, fontname=\"monospace\", fontsize=10];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name(), strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, c := range g.Connections() {
		plug, socket := c.Plug(), c.Socket()
		fmt.Fprintf(&buf, "  %q:f%d:e -> %q:f%d:w;\n",
			plug.Node().Name(), plug.Attribute().Index(),
			socket.Node().Name(), socket.Attribute().Index())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *nodegraph.Node, detailed bool) []string {
	title := recordEscape(n.Name())
	if detailed {
		title += fmt.Sprintf("\\n(%g, %g)", n.Pos().X, n.Pos().Y)
	}
	fields := []string{title}
	for i, a := range n.Attributes() {
		label := recordEscape(a.Name())
		if detailed && a.DataType() != "" {
			label += " : " + recordEscape(a.DataType())
		}
		fields = append(fields, fmt.Sprintf("<f%d> %s\\l", i, label))
	}
	attrs := []string{fmt.Sprintf("label=\"{%s}\"", strings.Join(fields, "|"))}
	if n.Selected() {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

var recordSpecial = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

// recordEscape escapes the characters that structure a record label.
func recordEscape(s string) string {
	return recordSpecial.Replace(s)
}

// RenderSVG lays out a DOT graph with Graphviz and returns the SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg tag, which sizes the drawing
// in points, with one sized by its viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
